package state

import (
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
)

var accountPattern = regexp.MustCompile("^[a-zA-Z0-9_~.-]+$")

func PathValidator(s string) error {
	_, err := os.Stat(path.Dir(s))
	return err
}

func AccountIdValidator(id AccountId) error {
	if !accountPattern.MatchString(string(id)) {
		return fmt.Errorf("%s is not a valid account id, must match pattern %s", id, accountPattern.String())
	}
	if len(id) > MaxIdLength {
		return fmt.Errorf("len(\"%s\") = %d > %d is too long", id, len(id), MaxIdLength)
	}
	return nil
}

// PluginExists is set by the plugin package to check that an adapter type is registered
var PluginExists = func(name string) bool { return name != "" }

func AccountConfigValidator(id AccountId, cfg AccountCfg) error {
	if err := AccountIdValidator(id); err != nil {
		return err
	}
	if !cfg.Relation.IsValid() {
		return fmt.Errorf("account %s: invalid relation %q", id, cfg.Relation)
	}
	if cfg.AssetCode == "" {
		return fmt.Errorf("account %s: asset_code must not be empty", id)
	}
	if !PluginExists(cfg.Plugin) {
		return fmt.Errorf("account %s: unknown plugin %q", id, cfg.Plugin)
	}
	return nil
}

func NodeConfigValidator(cfg *NodeCfg) error {
	if err := AddressValidator(cfg.Address); err != nil {
		return fmt.Errorf("node address: %w", err)
	}
	if cfg.RoutingSecret.IsZero() {
		return errors.New("routing_secret must be set")
	}
	for _, id := range cfg.SortedAccounts() {
		if err := AccountConfigValidator(id, cfg.Accounts[id]); err != nil {
			return err
		}
	}
	for _, route := range cfg.Routes {
		if !IsValidPrefix(route.TargetPrefix) {
			return fmt.Errorf("static route: %q is not a valid prefix", route.TargetPrefix)
		}
		if _, ok := cfg.Accounts[route.NextHop]; !ok {
			return fmt.Errorf("static route %s: next hop %s is not a configured account", route.TargetPrefix, route.NextHop)
		}
	}
	if cfg.DefaultRoute != "" && cfg.DefaultRoute != DefaultRouteAuto {
		if _, ok := cfg.Accounts[AccountId(cfg.DefaultRoute)]; !ok {
			return fmt.Errorf("default_route %s is not a configured account", cfg.DefaultRoute)
		}
	}
	if cfg.LogPath != "" {
		if err := PathValidator(cfg.LogPath); err != nil {
			return fmt.Errorf("log_path: %w", err)
		}
	}
	return nil
}

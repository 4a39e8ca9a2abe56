//go:build e2e

package e2e

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/encodeous/strand/state"
	"github.com/goccy/go-yaml"
)

// TestDir returns a directory for the configs of the current test run
func (h *Harness) TestDir() string {
	dir := filepath.Join(h.RootDir, "e2e", "runs", strings.ReplaceAll(h.t.Name(), "/", "-"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		h.t.Fatal(err)
	}
	return dir
}

// WriteConfig marshals the config to YAML and writes it to the specified directory with the given filename
func (h *Harness) WriteConfig(dir, filename string, cfg any) string {
	path := filepath.Join(dir, filename)
	data, err := yaml.Marshal(cfg)
	if err != nil {
		h.t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		h.t.Fatal(err)
	}
	return path
}

// SimpleNode creates a node config with a short hold-down, so tests notice failures quickly
func SimpleNode(address string) state.NodeCfg {
	return state.NodeCfg{
		Address:       address,
		RoutingSecret: state.GenerateRoutingSecret(),
		Accounts:      make(map[state.AccountId]state.AccountCfg),
		DefaultRoute:  state.DefaultRouteAuto,
		Broadcast: state.BroadcastCfg{
			Interval: 500 * time.Millisecond,
			HoldDown: 3 * time.Second,
		},
		DebugAddr: DebugAddr,
	}
}

func tcpAccount(rel state.Relation, opts map[string]any) state.AccountCfg {
	cfg := state.AccountCfg{
		Relation:   rel,
		AssetCode:  "USD",
		AssetScale: 9,
		Plugin:     "tcp",
		Options:    opts,
	}
	if rel == state.RelationChild {
		yes := true
		cfg.SendRoutes = &yes
		cfg.ReceiveRoutes = &yes
	}
	return cfg
}

// Listen adds an account to cfg that accepts the counterparty on port
func Listen(cfg state.NodeCfg, id state.AccountId, rel state.Relation, port string) {
	cfg.Accounts[id] = tcpAccount(rel, map[string]any{"listen": "0.0.0.0:" + port})
}

// Dial adds an account to cfg that connects to port of the container named host
func Dial(cfg state.NodeCfg, id state.AccountId, rel state.Relation, host, port string) {
	cfg.Accounts[id] = tcpAccount(rel, map[string]any{"connect": host + ":" + port, "retry_delay": "500ms"})
}

// Wallet adds an account with no counterparty, its address is still routed
func Wallet(cfg state.NodeCfg, id state.AccountId) {
	cfg.Accounts[id] = state.AccountCfg{
		Relation:   state.RelationChild,
		AssetCode:  "USD",
		AssetScale: 9,
		Plugin:     "mock",
	}
}

package state

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

type AccountId string

type Relation string

const (
	RelationParent Relation = "parent"
	RelationPeer   Relation = "peer"
	RelationChild  Relation = "child"
)

func (r Relation) IsValid() bool {
	switch r {
	case RelationParent, RelationPeer, RelationChild:
		return true
	}
	return false
}

func (r *Relation) UnmarshalText(text []byte) error {
	rel := Relation(text)
	if !rel.IsValid() {
		return fmt.Errorf("invalid relation %q, must be one of parent, peer or child", text)
	}
	*r = rel
	return nil
}

// AccountCfg describes a single ledger connection
type AccountCfg struct {
	Relation   Relation `yaml:"relation"`
	AssetCode  string   `yaml:"asset_code"`
	AssetScale uint8    `yaml:"asset_scale"`
	// Plugin is the name of the transport adapter, see the plugin package
	Plugin  string         `yaml:"plugin"`
	Options map[string]any `yaml:"options,omitempty"` // passed verbatim to the plugin
	// SendRoutes controls whether we advertise routes to this account, defaults to true unless the account is a child
	SendRoutes *bool `yaml:"send_routes,omitempty"`
	// ReceiveRoutes controls whether we accept routes from this account, defaults to true unless the account is a child
	ReceiveRoutes *bool `yaml:"receive_routes,omitempty"`
}

func (c AccountCfg) ShouldSendRoutes() bool {
	if c.SendRoutes != nil {
		return *c.SendRoutes
	}
	return c.Relation != RelationChild
}

func (c AccountCfg) ShouldReceiveRoutes() bool {
	if c.ReceiveRoutes != nil {
		return *c.ReceiveRoutes
	}
	return c.Relation != RelationChild
}

// ExchangesRoutes is true if a route broadcaster peer should exist for this account
func (c AccountCfg) ExchangesRoutes() bool {
	return c.ShouldSendRoutes() || c.ShouldReceiveRoutes()
}

// StaticRouteCfg pins a prefix to an account, regardless of what peers advertise
type StaticRouteCfg struct {
	TargetPrefix string    `yaml:"target_prefix"`
	NextHop      AccountId `yaml:"next_hop"`
}

type BroadcastCfg struct {
	Interval time.Duration `yaml:"interval,omitempty"`
	// HoldDown is advertised to peers as how long our routes remain valid without an update
	HoldDown time.Duration `yaml:"hold_down,omitempty"`
}

// DefaultRouteAuto selects the first parent account as the default route
const DefaultRouteAuto = "auto"

// NodeCfg represents the configuration of this node
type NodeCfg struct {
	Address       string                   `yaml:"address"`
	RoutingSecret RoutingSecret            `yaml:"routing_secret"`
	Accounts      map[AccountId]AccountCfg `yaml:"accounts,omitempty"`
	Routes        []StaticRouteCfg         `yaml:"routes,omitempty"`
	DefaultRoute  string                   `yaml:"default_route,omitempty"` // account id, "auto" or empty for none
	Broadcast     BroadcastCfg             `yaml:"broadcast,omitempty"`
	LogPath       string                   `yaml:"log_path,omitempty"` // if not empty, logs are also written to this file
	// DebugAddr serves pprof, expvar metrics and the inspect dump over HTTP, disabled when empty
	DebugAddr string `yaml:"debug_addr,omitempty"`
}

// SortedAccounts returns configured account ids in a stable order
func (c *NodeCfg) SortedAccounts() []AccountId {
	return slices.Sorted(maps.Keys(c.Accounts))
}

func (c *NodeCfg) BroadcastInterval() time.Duration {
	if c.Broadcast.Interval > 0 {
		return c.Broadcast.Interval
	}
	return RouteBroadcastInterval
}

func (c *NodeCfg) HoldDownTime() time.Duration {
	if c.Broadcast.HoldDown > 0 {
		return c.Broadcast.HoldDown
	}
	return RouteExpiry
}

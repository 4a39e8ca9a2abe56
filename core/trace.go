package core

import (
	"fmt"

	"github.com/dustin/go-broadcast"
	"github.com/encodeous/strand/state"
)

type TraceKind int

const (
	// TopologyChanged is emitted when an account is added or removed
	TopologyChanged TraceKind = iota
	// RouteChanged is emitted when the selected route for a prefix changes
	RouteChanged
	// RouteWithdrawn is emitted when a prefix no longer has a route
	RouteWithdrawn
	// PeerStateChanged is emitted when a peer's receiver moves between IDLE, SYNC_REQUESTED and SYNCED
	PeerStateChanged
)

func (k TraceKind) String() string {
	switch k {
	case TopologyChanged:
		return "TOPOLOGY_CHANGED"
	case RouteChanged:
		return "ROUTE_CHANGED"
	case RouteWithdrawn:
		return "ROUTE_WITHDRAWN"
	case PeerStateChanged:
		return "PEER_STATE_CHANGED"
	}
	return fmt.Sprintf("TraceKind(%d)", int(k))
}

type TraceEvent struct {
	Kind    TraceKind
	Account state.AccountId
	Prefix  string
	Route   state.Route
	Detail  string
}

func (e TraceEvent) String() string {
	switch e.Kind {
	case RouteChanged:
		return fmt.Sprintf("%s %q %s", e.Kind, e.Prefix, e.Route)
	case RouteWithdrawn:
		return fmt.Sprintf("%s %q", e.Kind, e.Prefix)
	}
	return fmt.Sprintf("%s %s %s", e.Kind, e.Account, e.Detail)
}

// NodeTrace fans out TraceEvents to any registered listener. Listeners must keep up, a slow listener stalls the
// dispatch loop once the buffer fills.
type NodeTrace struct {
	broadcast.Broadcaster
}

func (n *NodeTrace) Init(s *state.State) error {
	n.Broadcaster = broadcast.NewBroadcaster(1024)
	return nil
}

func (n *NodeTrace) Emit(ev TraceEvent) {
	n.Submit(ev)
}

func (n *NodeTrace) Cleanup(s *state.State) error {
	if n.Broadcaster == nil {
		return nil
	}
	return n.Broadcaster.Close()
}

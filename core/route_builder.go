package core

import (
	"slices"

	"github.com/encodeous/strand/protocol"
	"github.com/encodeous/strand/state"
)

// RouteBuilder resolves the next hop of a packet. It only reads published snapshots and may be used from any
// goroutine.
type RouteBuilder struct {
	table    *state.RoutingTable
	accounts *Accounts
}

func (r *RouteBuilder) Init(s *state.State) error {
	r.table = Get[*RouteBroadcaster](s).Table
	r.accounts = Get[*Accounts](s)
	return nil
}

func (r *RouteBuilder) Cleanup(s *state.State) error {
	return nil
}

// GetNextHopPacket finds the account a prepare arriving from source should be forwarded to. The returned packet is
// a copy of the prepare, amounts and expiry are left untouched.
func (r *RouteBuilder) GetNextHopPacket(source state.AccountId, prepare *protocol.Prepare) (state.AccountId, *protocol.Prepare, error) {
	accounts := r.accounts.snapshot()
	if _, ok := accounts[source]; !ok {
		return "", nil, &state.UnknownAccountError{AccountId: source}
	}
	_, route, ok := r.table.ResolveFunc(prepare.Destination, func(prefix string, route state.Route) bool {
		if route.IsLocal() {
			// addresses under a local prefix never leave this node
			return true
		}
		if route.NextHop == source {
			return false
		}
		if slices.Contains(route.Path, string(source)) {
			return false
		}
		_, registered := accounts[route.NextHop]
		return registered
	})
	if !ok || route.IsLocal() {
		return "", nil, &state.UnreachableError{Source: source, Destination: prepare.Destination}
	}
	return route.NextHop, prepare.Clone(), nil
}

package core

import (
	"cmp"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/encodeous/strand/perf"
	"github.com/encodeous/strand/protocol"
	"github.com/encodeous/strand/state"
	"github.com/google/uuid"
)

type routeOrigin int

const (
	// originLocal routes terminate at this node
	originLocal routeOrigin = iota
	// originStatic routes come from the node config
	originStatic
	// originChild routes point at the address space of a child account
	originChild
	// originLearned routes were advertised by a peer
	originLearned
)

func (o routeOrigin) String() string {
	switch o {
	case originLocal:
		return "local"
	case originStatic:
		return "static"
	case originChild:
		return "child"
	case originLearned:
		return "learned"
	}
	return "unknown"
}

// routeRank orders candidates for a prefix, lower is better
type routeRank struct {
	class   int
	pathLen int
	nextHop state.AccountId
}

func (r routeRank) compare(o routeRank) int {
	return cmp.Or(
		cmp.Compare(r.class, o.class),
		cmp.Compare(r.pathLen, o.pathLen),
		cmp.Compare(r.nextHop, o.nextHop),
	)
}

func (r routeRank) better(o routeRank) bool {
	return r.compare(o) < 0
}

// outranks compares priority only, a different next hop with the same class and path length is not outranked
func (r routeRank) outranks(o routeRank) bool {
	return cmp.Or(cmp.Compare(r.class, o.class), cmp.Compare(r.pathLen, o.pathLen)) < 0
}

func relationClass(rel state.Relation) int {
	switch rel {
	case state.RelationChild:
		return 1
	case state.RelationPeer:
		return 2
	default:
		return 3
	}
}

type candidate struct {
	route  state.Route
	origin routeOrigin
	// relation of the next hop account
	relation state.Relation
}

func (c candidate) rank() routeRank {
	class := 0
	switch c.origin {
	case originChild:
		class = 1
	case originLearned:
		class = relationClass(c.relation)
	}
	return routeRank{class: class, pathLen: len(c.route.Path), nextHop: c.route.NextHop}
}

// ForwardingEntry is one change to the routes this node advertises, Route is nil for a withdrawal
type ForwardingEntry struct {
	Prefix   string
	Route    *state.Route
	Origin   routeOrigin
	Relation state.Relation
}

// ForwardingTable is the epoch log of routes selected by this node. Log[i] moves the table from epoch Base+i to
// Base+i+1. Entries every peer has acknowledged are folded into Snapshot, which keeps the latest entry per prefix.
type ForwardingTable struct {
	Id           uuid.UUID
	CurrentEpoch uint32
	Base         uint32
	Snapshot     map[string]ForwardingEntry
	Log          []ForwardingEntry
}

func (f *ForwardingTable) record(e ForwardingEntry) {
	f.Log = append(f.Log, e)
	f.CurrentEpoch++
}

// Changes returns the latest entry of every prefix changed in [from, to). When from is before Base, every prefix in
// the snapshot is included, so the result may contain prefixes that did not change in the range.
func (f *ForwardingTable) Changes(from, to uint32) map[string]ForwardingEntry {
	latest := make(map[string]ForwardingEntry)
	if from < f.Base {
		maps.Copy(latest, f.Snapshot)
		from = f.Base
	}
	for _, e := range f.Log[from-f.Base : to-f.Base] {
		latest[e.Prefix] = e
	}
	return latest
}

// Compact folds the log entries before epoch into the snapshot
func (f *ForwardingTable) Compact(epoch uint32) {
	epoch = min(epoch, f.CurrentEpoch)
	if epoch <= f.Base {
		return
	}
	if f.Snapshot == nil {
		f.Snapshot = make(map[string]ForwardingEntry)
	}
	n := epoch - f.Base
	for _, e := range f.Log[:n] {
		f.Snapshot[e.Prefix] = e
	}
	f.Log = slices.Clone(f.Log[n:])
	f.Base = epoch
}

// RouteBroadcaster owns the routing table. It selects the best route for every prefix from local routes and the
// routes learned by each Peer, and sends the resulting changes to peers.
type RouteBroadcaster struct {
	Table      *state.RoutingTable
	Forwarding *ForwardingTable
	Peers      map[state.AccountId]*Peer

	local            map[string]candidate
	broadcastPending bool
	// in-flight protocol sends
	wg sync.WaitGroup
}

func (b *RouteBroadcaster) Init(s *state.State) error {
	s.Log.Debug("init route broadcaster")
	b.Table = state.NewRoutingTable()
	b.Forwarding = &ForwardingTable{Id: uuid.New()}
	b.Peers = make(map[state.AccountId]*Peer)
	b.local = make(map[string]candidate)
	b.updatePrefixes(s, b.reloadLocalRoutes(s, "")...)

	s.Env.RepeatTask(func(s *state.State) error {
		b.broadcast(s, false)
		return nil
	}, s.BroadcastInterval())
	return nil
}

func (b *RouteBroadcaster) Cleanup(s *state.State) error {
	for _, p := range b.Peers {
		p.destroy(s)
	}
	b.wg.Wait()
	return nil
}

func (b *RouteBroadcaster) sortedPeers() []*Peer {
	ids := slices.Sorted(maps.Keys(b.Peers))
	peers := make([]*Peer, 0, len(ids))
	for _, id := range ids {
		peers = append(peers, b.Peers[id])
	}
	return peers
}

// localRoutes computes the routes that originate at this node, ignoring the account exclude
func (b *RouteBroadcaster) localRoutes(s *state.State, exclude state.AccountId) map[string]candidate {
	addr := s.Address()
	accounts := Get[*Accounts](s)
	out := make(map[string]candidate)
	out[addr] = candidate{origin: originLocal}

	registered := func(id state.AccountId) (*Account, bool) {
		if id == exclude {
			return nil, false
		}
		acct, err := accounts.Get(id)
		return acct, err == nil
	}

	var firstParent state.AccountId
	for _, id := range accounts.Ids() {
		acct, ok := registered(id)
		if !ok {
			continue
		}
		switch acct.Info.Relation {
		case state.RelationChild:
			out[state.JoinAddress(addr, string(id))] = candidate{
				route:    state.Route{NextHop: id},
				origin:   originChild,
				relation: state.RelationChild,
			}
		case state.RelationParent:
			if firstParent == "" {
				firstParent = id
			}
		}
	}
	for _, r := range s.Routes {
		if acct, ok := registered(r.NextHop); ok {
			out[r.TargetPrefix] = candidate{
				route:    state.Route{NextHop: r.NextHop},
				origin:   originStatic,
				relation: acct.Info.Relation,
			}
		}
	}

	def := state.AccountId(s.DefaultRoute)
	if s.DefaultRoute == state.DefaultRouteAuto {
		def = firstParent
	}
	if acct, ok := registered(def); ok && def != "" {
		out[""] = candidate{
			route:    state.Route{NextHop: def},
			origin:   originStatic,
			relation: acct.Info.Relation,
		}
	}
	return out
}

// reloadLocalRoutes recomputes local routes, returning the prefixes that changed
func (b *RouteBroadcaster) reloadLocalRoutes(s *state.State, exclude state.AccountId) []string {
	next := b.localRoutes(s, exclude)
	var changed []string
	for prefix, c := range next {
		if old, ok := b.local[prefix]; !ok || !old.route.Equal(c.route) || old.origin != c.origin {
			changed = append(changed, prefix)
		}
	}
	for prefix := range b.local {
		if _, ok := next[prefix]; !ok {
			changed = append(changed, prefix)
		}
	}
	b.local = next
	return changed
}

func (b *RouteBroadcaster) selectBest(s *state.State, prefix string) (candidate, bool) {
	var cands []candidate
	if c, ok := b.local[prefix]; ok {
		cands = append(cands, c)
	}
	peers := b.sortedPeers()
	peerIds := make([]state.AccountId, 0, len(peers))
	for _, p := range peers {
		peerIds = append(peerIds, p.Id)
		if r, ok := p.Routes[prefix]; ok {
			cands = append(cands, candidate{route: r, origin: originLearned, relation: p.Relation})
		}
	}

	holds := Get[*HoldDowns](s)
	addr := s.Address()
	var best candidate
	found := false
	for _, c := range cands {
		if slices.Contains(c.route.Path, addr) {
			continue
		}
		if holds.Suppresses(peerIds, prefix, c.rank()) {
			continue
		}
		if !found || c.rank().better(best.rank()) {
			best = c
			found = true
		}
	}
	return best, found
}

// updatePrefixes re-selects the best route of each prefix. Every change is published to the routing table in a
// single snapshot and appended to the forwarding table.
func (b *RouteBroadcaster) updatePrefixes(s *state.State, prefixes ...string) {
	type change struct {
		prefix string
		best   *candidate
	}
	var changes []change
	seen := make(map[string]struct{}, len(prefixes))
	for _, prefix := range prefixes {
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		best, ok := b.selectBest(s, prefix)
		cur, had := b.Table.Get(prefix)
		switch {
		case !ok && had:
			changes = append(changes, change{prefix: prefix})
		case ok && (!had || !cur.Equal(best.route)):
			changes = append(changes, change{prefix: prefix, best: &best})
		}
	}
	if len(changes) == 0 {
		return
	}
	slices.SortFunc(changes, func(a, b change) int {
		return cmp.Compare(a.prefix, b.prefix)
	})

	b.Table.Update(func(routes map[string]state.Route) {
		for _, c := range changes {
			if c.best == nil {
				delete(routes, c.prefix)
			} else {
				routes[c.prefix] = c.best.route
			}
		}
	})
	perf.RoutingTableMutations.Add(1)

	trace := Get[*NodeTrace](s)
	for _, c := range changes {
		if c.best == nil {
			b.Forwarding.record(ForwardingEntry{Prefix: c.prefix})
			trace.Emit(TraceEvent{Kind: RouteWithdrawn, Prefix: c.prefix})
			s.Log.Debug("route withdrawn", "prefix", c.prefix)
			continue
		}
		route := c.best.route
		b.Forwarding.record(ForwardingEntry{
			Prefix:   c.prefix,
			Route:    &route,
			Origin:   c.best.origin,
			Relation: c.best.relation,
		})
		trace.Emit(TraceEvent{Kind: RouteChanged, Account: route.NextHop, Prefix: c.prefix, Route: route})
		s.Log.Debug("route changed", "prefix", c.prefix, "route", route, "origin", c.best.origin)
	}
	b.scheduleBroadcast(s)
}

// visible reports whether a forwarding entry may be advertised to p
func (b *RouteBroadcaster) visible(p *Peer, e ForwardingEntry) bool {
	if e.Prefix == "" || e.Route == nil {
		return false
	}
	if e.Route.NextHop == p.Id {
		return false
	}
	if p.Relation == state.RelationChild {
		return true
	}
	switch e.Origin {
	case originLocal, originChild:
		return true
	case originLearned:
		return e.Relation == state.RelationChild
	}
	return false
}

// advertise converts a selected route into the form sent to peers, with this node prepended to the path
func (b *RouteBroadcaster) advertise(s *state.State, e ForwardingEntry) *protocol.Route {
	r := &protocol.Route{
		Prefix: e.Prefix,
		Path:   []string{s.Address()},
	}
	if e.Origin == originLearned {
		// the first element is the account we learned the route from
		r.Path = append(r.Path, e.Route.Path[1:]...)
		r.Auth = state.ForwardedRouteAuth(e.Route.Auth)
	} else {
		r.Auth = state.LocalRouteAuth(s.RoutingSecret, e.Prefix)
	}
	for _, prop := range e.Route.Props {
		r.Props = append(r.Props, &protocol.RouteProp{Key: prop.Key, Value: prop.Value})
	}
	return r
}

// buildUpdate collects the forwarding table changes in [from, to) that concern p
func (b *RouteBroadcaster) buildUpdate(s *state.State, p *Peer, from, to uint32) *protocol.RouteUpdateRequest {
	ft := b.Forwarding
	latest := ft.Changes(from, to)
	req := &protocol.RouteUpdateRequest{
		Speaker:           s.Address(),
		RoutingTableId:    ft.Id.String(),
		CurrentEpochIndex: ft.CurrentEpoch,
		FromEpochIndex:    from,
		ToEpochIndex:      to,
		HoldDownTime:      millis(s.HoldDownTime()),
	}
	for _, prefix := range slices.Sorted(maps.Keys(latest)) {
		if prefix == "" {
			continue
		}
		e := latest[prefix]
		if !b.visible(p, e) {
			// a full table does not need withdrawals
			if from != 0 {
				req.WithdrawnRoutes = append(req.WithdrawnRoutes, prefix)
			}
			continue
		}
		req.NewRoutes = append(req.NewRoutes, b.advertise(s, e))
	}
	return req
}

// compact drops the forwarding log entries every peer has acknowledged
func (b *RouteBroadcaster) compact() {
	low := b.Forwarding.CurrentEpoch
	for _, p := range b.Peers {
		low = min(low, p.LastAckEpoch)
	}
	b.Forwarding.Compact(low)
}

func (b *RouteBroadcaster) broadcast(s *state.State, force bool) {
	for _, p := range b.sortedPeers() {
		p.sendUpdate(s, force)
	}
}

// scheduleBroadcast sends pending changes to peers soon, without waiting for the next tick
func (b *RouteBroadcaster) scheduleBroadcast(s *state.State) {
	if b.broadcastPending {
		return
	}
	b.broadcastPending = true
	s.Env.ScheduleTask(func(s *state.State) error {
		b.broadcastPending = false
		b.broadcast(s, false)
		return nil
	}, 0)
}

// AddAccount creates a peer for accounts that exchange routes and installs the account's local routes
func (b *RouteBroadcaster) AddAccount(s *state.State, acct *Account) {
	if acct.Info.ExchangesRoutes() {
		p := newPeer(b, acct)
		b.Peers[acct.Id] = p
		s.Log.Debug("added peer", "peer", acct.Id, "relation", acct.Info.Relation)
		if acct.Plugin.IsConnected() {
			p.requestRoutes(s)
		}
	}
	b.updatePrefixes(s, b.reloadLocalRoutes(s, "")...)
}

// RemoveAccount destroys the account's peer and removes every route through the account, in one table update
func (b *RouteBroadcaster) RemoveAccount(s *state.State, id state.AccountId) {
	var changed []string
	if p, ok := b.Peers[id]; ok {
		delete(b.Peers, id)
		changed = append(changed, p.destroy(s)...)
		changed = append(changed, Get[*HoldDowns](s).CancelPeer(id)...)
		s.Log.Debug("removed peer", "peer", id)
	}
	changed = append(changed, b.reloadLocalRoutes(s, id)...)
	b.updatePrefixes(s, changed...)
}

// OnConnected is called once an account's plugin has connected
func (b *RouteBroadcaster) OnConnected(s *state.State, id state.AccountId) {
	p, ok := b.Peers[id]
	if !ok {
		return
	}
	if p.State != PeerSynced {
		p.requestRoutes(s)
	}
	p.sendUpdate(s, true)
}

// HandleRouteUpdate applies a route update received from account from
func (b *RouteBroadcaster) HandleRouteUpdate(s *state.State, from state.AccountId, req *protocol.RouteUpdateRequest) error {
	p, ok := b.Peers[from]
	if !ok {
		return &state.UnknownAccountError{AccountId: from}
	}
	changed, withdrawn, err := p.handleRouteUpdate(s, req)
	if err != nil {
		s.Log.Warn("dropped route update", "peer", from, "err", err)
		return err
	}

	holds := Get[*HoldDowns](s)
	holdDown := time.Duration(req.HoldDownTime) * time.Millisecond
	if holdDown == 0 {
		holdDown = s.HoldDownTime()
	}
	for _, prefix := range withdrawn {
		if _, back := p.Routes[prefix]; back {
			continue
		}
		if cur, ok := b.Table.Get(prefix); ok && cur.NextHop == from {
			rank := candidate{route: cur, origin: originLearned, relation: p.Relation}.rank()
			holds.Hold(from, prefix, rank, holdDown)
		}
	}
	for _, prefix := range changed {
		if _, ok := p.Routes[prefix]; ok {
			holds.Release(from, prefix)
		}
	}
	b.updatePrefixes(s, changed...)
	return nil
}

// HandleRouteControl applies a route control request received from account from
func (b *RouteBroadcaster) HandleRouteControl(s *state.State, from state.AccountId, req *protocol.RouteControlRequest) error {
	p, ok := b.Peers[from]
	if !ok {
		return &state.UnknownAccountError{AccountId: from}
	}
	p.handleRouteControl(s, req)
	return nil
}

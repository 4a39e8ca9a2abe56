package core

import (
	"maps"
	"slices"
	"testing"
	"time"

	"github.com/encodeous/strand/protocol"
	"github.com/encodeous/strand/state"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/protobuf/testing/protocmp"
)

const (
	tableA = "0b7c5a43-2f3e-4bd4-9a55-a1f0c8d1e001"
	tableB = "0b7c5a43-2f3e-4bd4-9a55-a1f0c8d1e002"
)

func exchanging(cfg state.AccountCfg) state.AccountCfg {
	yes := true
	cfg.SendRoutes = &yes
	cfg.ReceiveRoutes = &yes
	return cfg
}

// topologyNode has a parent, two peers and a child that exchanges routes
func topologyNode(t *testing.T) (*state.State, func()) {
	cfg := newTestConfig(map[state.AccountId]state.AccountCfg{
		"test.parent": mockAccount(state.RelationParent, "USD"),
		"test.peer-a": mockAccount(state.RelationPeer, "USD"),
		"test.peer-b": mockAccount(state.RelationPeer, "USD"),
		"test.child":  exchanging(mockAccount(state.RelationChild, "USD")),
	})
	cfg.DefaultRoute = state.DefaultRouteAuto
	return startNode(t, cfg)
}

func nextHopOf(t *testing.T, s *state.State, prefix string) state.AccountId {
	t.Helper()
	r, ok := Get[*RouteBroadcaster](s).Table.Get(prefix)
	require.True(t, ok, "no route for %q", prefix)
	return r.NextHop
}

func hasRoute(s *state.State, prefix string) bool {
	_, ok := Get[*RouteBroadcaster](s).Table.Get(prefix)
	return ok
}

func peerOf(t *testing.T, s *state.State, id state.AccountId) peerSnapshot {
	t.Helper()
	snap := onLoop(t, s, func(s *state.State) *peerSnapshot {
		p, ok := Get[*RouteBroadcaster](s).Peers[id]
		if !ok {
			return nil
		}
		return &peerSnapshot{
			State:          p.State,
			RoutingTableId: p.RoutingTableId,
			Epoch:          p.Epoch,
			Prefixes:       slices.Sorted(maps.Keys(p.Routes)),
		}
	})
	require.NotNil(t, snap, "%s is not a peer", id)
	return *snap
}

type peerSnapshot struct {
	State          PeerState
	RoutingTableId string
	Epoch          uint32
	Prefixes       []string
}

// syncWith asks the node to send its routes to account id and returns the full table it sends back
func syncWith(t *testing.T, s *state.State, id state.AccountId) *protocol.RouteUpdateRequest {
	t.Helper()
	m := mockOf(t, s, id)
	before := len(sentOf[*protocol.RouteUpdateRequest](t, m))
	requireAck(t, deliver(t, m, &protocol.RouteControlRequest{Mode: protocol.Mode_SYNC}))
	var updates []*protocol.RouteUpdateRequest
	require.Eventually(t, func() bool {
		updates = sentOf[*protocol.RouteUpdateRequest](t, m)
		return len(updates) > before
	}, time.Second, 5*time.Millisecond)
	return updates[before]
}

func prefixesOf(routes []*protocol.Route) []string {
	out := make([]string, 0, len(routes))
	for _, r := range routes {
		out = append(out, r.Prefix)
	}
	return out
}

func TestLocalRoutes(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()

	r, ok := Get[*RouteBroadcaster](s).Table.Get(localAddress)
	require.True(t, ok)
	assert.True(t, r.IsLocal())
	assert.Equal(t, state.AccountId("test.child"), nextHopOf(t, s, "test.connie.test.child"))
	assert.Equal(t, state.AccountId("test.parent"), nextHopOf(t, s, ""), "auto default route uses the parent")

	nh, err := nextHop(s, "test.peer-a", "g.anywhere")
	require.NoError(t, err)
	assert.Equal(t, state.AccountId("test.parent"), nh)
}

func TestUnknownLocalAddressIsUnreachable(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()
	parent := mockOf(t, s, "test.parent")

	_, err := nextHop(s, "test.peer-a", "test.connie.nobody")
	var unreachable *state.UnreachableError
	require.ErrorAs(t, err, &unreachable)

	rej := requireReject(t, deliver(t, mockOf(t, s, "test.peer-a"), testPrepare("test.connie.nobody")), protocol.CodeUnreachable)
	assert.Equal(t, localAddress, rej.TriggeredBy)
	assert.Empty(t, sentOf[*protocol.Prepare](t, parent), "the default route is not used for the local address space")
}

func TestStaticRoutesOverrideLearned(t *testing.T) {
	defer goleak.VerifyNone(t)
	cfg := newTestConfig(map[state.AccountId]state.AccountCfg{
		"test.peer-a": mockAccount(state.RelationPeer, "USD"),
		"test.peer-b": mockAccount(state.RelationPeer, "USD"),
	})
	cfg.Routes = []state.StaticRouteCfg{{TargetPrefix: "g.usd", NextHop: "test.peer-b"}}
	s, stop := startNode(t, cfg)
	defer stop()

	assert.Equal(t, state.AccountId("test.peer-b"), nextHopOf(t, s, "g.usd"))
	requireAck(t, deliver(t, mockOf(t, s, "test.peer-a"), routeUpdate(tableA, 0, 1, advertised("g.usd", "test.a"))))
	assert.Equal(t, state.AccountId("test.peer-b"), nextHopOf(t, s, "g.usd"))
}

func TestRoutePreference(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()

	requireAck(t, deliver(t, mockOf(t, s, "test.parent"), routeUpdate(tableA, 0, 1, advertised("g.usd", "test.p"))))
	assert.Equal(t, state.AccountId("test.parent"), nextHopOf(t, s, "g.usd"))

	// peers are preferred over parents, regardless of path length
	requireAck(t, deliver(t, mockOf(t, s, "test.peer-b"), routeUpdate(tableA, 0, 1, advertised("g.usd", "test.b", "test.x", "test.y"))))
	assert.Equal(t, state.AccountId("test.peer-b"), nextHopOf(t, s, "g.usd"))

	// then shorter paths
	requireAck(t, deliver(t, mockOf(t, s, "test.peer-a"), routeUpdate(tableA, 0, 1, advertised("g.usd", "test.a"))))
	assert.Equal(t, state.AccountId("test.peer-a"), nextHopOf(t, s, "g.usd"))

	// then the lexically smaller next hop
	requireAck(t, deliver(t, mockOf(t, s, "test.peer-b"), routeUpdate(tableA, 1, 2, advertised("g.usd", "test.b"))))
	assert.Equal(t, state.AccountId("test.peer-a"), nextHopOf(t, s, "g.usd"))

	// children are confined to their own subtree
	requireAck(t, deliver(t, mockOf(t, s, "test.child"), routeUpdate(tableA, 0, 1, advertised("g.usd", "test.c", "test.x", "test.y"))))
	assert.Equal(t, state.AccountId("test.peer-a"), nextHopOf(t, s, "g.usd"), "children may only advertise their own address space")
	requireAck(t, deliver(t, mockOf(t, s, "test.child"), routeUpdate(tableA, 1, 2, advertised("test.connie.test.child.usd", "test.c"))))
	assert.Equal(t, state.AccountId("test.child"), nextHopOf(t, s, "test.connie.test.child.usd"))
}

func TestRouteRankOrder(t *testing.T) {
	local := candidate{origin: originLocal}.rank()
	child := candidate{origin: originChild, route: state.Route{NextHop: "c"}}.rank()
	learnedChild := candidate{origin: originLearned, relation: state.RelationChild, route: state.Route{NextHop: "c", Path: []string{"c"}}}.rank()
	peer := candidate{origin: originLearned, relation: state.RelationPeer, route: state.Route{NextHop: "p", Path: []string{"p"}}}.rank()
	longPeer := candidate{origin: originLearned, relation: state.RelationPeer, route: state.Route{NextHop: "a", Path: []string{"a", "x"}}}.rank()
	parent := candidate{origin: originLearned, relation: state.RelationParent, route: state.Route{NextHop: "a", Path: []string{"a"}}}.rank()

	ordered := []routeRank{local, child, learnedChild, peer, longPeer, parent}
	for i := range ordered {
		for j := i + 1; j < len(ordered); j++ {
			assert.True(t, ordered[i].better(ordered[j]), "%v should beat %v", ordered[i], ordered[j])
			assert.False(t, ordered[j].better(ordered[i]))
		}
	}

	samePriority := candidate{origin: originLearned, relation: state.RelationPeer, route: state.Route{NextHop: "q", Path: []string{"q"}}}.rank()
	assert.True(t, peer.better(samePriority))
	assert.False(t, peer.outranks(samePriority))
	assert.True(t, peer.outranks(parent))
}

func TestVisibility(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()

	requireAck(t, deliver(t, mockOf(t, s, "test.parent"), routeUpdate(tableA, 0, 1, advertised("g.parent", "test.p"))))
	requireAck(t, deliver(t, mockOf(t, s, "test.peer-a"), routeUpdate(tableA, 0, 1, advertised("g.peer", "test.a"))))
	requireAck(t, deliver(t, mockOf(t, s, "test.child"), routeUpdate(tableA, 0, 1, advertised("test.connie.test.child.alice", "test.c"))))

	toPeer := syncWith(t, s, "test.peer-b")
	assert.Equal(t, []string{"test.connie", "test.connie.test.child", "test.connie.test.child.alice"}, prefixesOf(toPeer.NewRoutes))
	assert.Empty(t, toPeer.WithdrawnRoutes, "a full table carries no withdrawals")
	assert.Equal(t, uint32(0), toPeer.FromEpochIndex)
	assert.Equal(t, toPeer.CurrentEpochIndex, toPeer.ToEpochIndex)
	assert.Equal(t, localAddress, toPeer.Speaker)

	toParent := syncWith(t, s, "test.parent")
	assert.Equal(t, prefixesOf(toPeer.NewRoutes), prefixesOf(toParent.NewRoutes))

	// children see everything except routes through themselves and the default route
	toChild := syncWith(t, s, "test.child")
	assert.Equal(t, []string{"g.parent", "g.peer", "test.connie"}, prefixesOf(toChild.NewRoutes))
}

func TestAdvertisedRoutes(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()

	requireAck(t, deliver(t, mockOf(t, s, "test.child"), routeUpdate(tableA, 0, 1, advertised("test.connie.test.child.alice", "test.c", "test.d"))))
	update := syncWith(t, s, "test.peer-b")

	secret := s.RoutingSecret
	want := []*protocol.Route{
		{Prefix: "test.connie", Path: []string{localAddress}, Auth: state.LocalRouteAuth(secret, "test.connie")},
		{Prefix: "test.connie.test.child", Path: []string{localAddress}, Auth: state.LocalRouteAuth(secret, "test.connie.test.child")},
		{Prefix: "test.connie.test.child.alice", Path: []string{localAddress, "test.c", "test.d"}, Auth: state.ForwardedRouteAuth(testAuth)},
	}
	if diff := cmp.Diff(want, update.NewRoutes, protocmp.Transform()); diff != "" {
		t.Errorf("advertised routes mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, millis(s.HoldDownTime()), update.HoldDownTime)
}

func TestIncrementalUpdateWithdraws(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()

	full := syncWith(t, s, "test.peer-b")
	peerB := mockOf(t, s, "test.peer-b")
	require.Eventually(t, func() bool {
		return onLoop(t, s, func(s *state.State) bool {
			return Get[*RouteBroadcaster](s).Peers["test.peer-b"].LastAckEpoch == full.ToEpochIndex
		})
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, RemovePlugin(s.Env, "test.child"))
	var last *protocol.RouteUpdateRequest
	require.Eventually(t, func() bool {
		updates := sentOf[*protocol.RouteUpdateRequest](t, peerB)
		last = updates[len(updates)-1]
		return last.FromEpochIndex == full.ToEpochIndex && last.ToEpochIndex > last.FromEpochIndex
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"test.connie.test.child"}, last.WithdrawnRoutes)
	assert.Empty(t, last.NewRoutes)
	assert.Equal(t, full.RoutingTableId, last.RoutingTableId)
}

func TestPeerFollowsEpochs(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()
	m := mockOf(t, s, "test.peer-a")

	requireAck(t, deliver(t, m, routeUpdate(tableA, 0, 2, advertised("g.usd", "test.a"))))
	assert.Equal(t, peerSnapshot{State: PeerSynced, RoutingTableId: tableA, Epoch: 2, Prefixes: []string{"g.usd"}}, peerOf(t, s, "test.peer-a"))

	// stale updates are acknowledged and ignored
	requireAck(t, deliver(t, m, routeUpdate(tableA, 0, 1, advertised("g.stale", "test.a"))))
	assert.Equal(t, uint32(2), peerOf(t, s, "test.peer-a").Epoch)
	assert.False(t, hasRoute(s, "g.stale"))

	// keepalive
	requireAck(t, deliver(t, m, routeUpdate(tableA, 2, 2)))
	assert.Equal(t, uint32(2), peerOf(t, s, "test.peer-a").Epoch)

	withdraw := routeUpdate(tableA, 2, 3, advertised("g.eur", "test.a"))
	withdraw.WithdrawnRoutes = []string{"g.usd"}
	requireAck(t, deliver(t, m, withdraw))
	assert.Equal(t, []string{"g.eur"}, peerOf(t, s, "test.peer-a").Prefixes)
	assert.False(t, hasRoute(s, "g.usd"))
	assert.Equal(t, state.AccountId("test.peer-a"), nextHopOf(t, s, "g.eur"))
}

func TestPeerNewRoutingTable(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()
	m := mockOf(t, s, "test.peer-a")

	requireAck(t, deliver(t, m, routeUpdate(tableA, 0, 5, advertised("g.usd", "test.a"))))
	requireAck(t, deliver(t, m, routeUpdate(tableB, 0, 1, advertised("g.eur", "test.a"))))

	assert.Equal(t, peerSnapshot{State: PeerSynced, RoutingTableId: tableB, Epoch: 1, Prefixes: []string{"g.eur"}}, peerOf(t, s, "test.peer-a"))
	assert.False(t, hasRoute(s, "g.usd"))
	assert.True(t, hasRoute(s, "g.eur"))
}

func TestPeerEpochGap(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()
	m := mockOf(t, s, "test.peer-a")

	requireAck(t, deliver(t, m, routeUpdate(tableA, 0, 1, advertised("g.usd", "test.a"))))
	controls := len(sentOf[*protocol.RouteControlRequest](t, m))

	requireAck(t, deliver(t, m, routeUpdate(tableA, 3, 4, advertised("g.eur", "test.a"))))
	var ctl []*protocol.RouteControlRequest
	require.Eventually(t, func() bool {
		ctl = sentOf[*protocol.RouteControlRequest](t, m)
		return len(ctl) > controls
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, tableA, ctl[len(ctl)-1].LastKnownRoutingTableId)
	assert.Equal(t, uint32(1), ctl[len(ctl)-1].LastKnownEpoch)

	snap := peerOf(t, s, "test.peer-a")
	assert.Equal(t, uint32(1), snap.Epoch)
	assert.Equal(t, []string{"g.usd"}, snap.Prefixes, "routes survive a gap")
	assert.False(t, hasRoute(s, "g.eur"))

	// filling the gap resumes the exchange
	requireAck(t, deliver(t, m, routeUpdate(tableA, 1, 4, advertised("g.eur", "test.a"))))
	assert.Equal(t, peerSnapshot{State: PeerSynced, RoutingTableId: tableA, Epoch: 4, Prefixes: []string{"g.eur", "g.usd"}}, peerOf(t, s, "test.peer-a"))
}

func TestPeerDesync(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()
	m := mockOf(t, s, "test.peer-a")

	requireAck(t, deliver(t, m, routeUpdate(tableA, 0, 1, advertised("g.usd", "test.a"))))
	for range state.MaxEpochGapRetries {
		requireAck(t, deliver(t, m, routeUpdate(tableA, 5, 6)))
	}
	assert.True(t, hasRoute(s, "g.usd"))

	requireAck(t, deliver(t, m, routeUpdate(tableA, 5, 6)))
	snap := peerOf(t, s, "test.peer-a")
	assert.Equal(t, "", snap.RoutingTableId)
	assert.Equal(t, uint32(0), snap.Epoch)
	assert.Empty(t, snap.Prefixes)
	assert.False(t, hasRoute(s, "g.usd"))

	require.Eventually(t, func() bool {
		ctl := sentOf[*protocol.RouteControlRequest](t, m)
		last := ctl[len(ctl)-1]
		return last.LastKnownRoutingTableId == "" && last.LastKnownEpoch == 0
	}, time.Second, 5*time.Millisecond, "the full table is requested again")
}

func TestPeerRoutesExpire(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()
	m := mockOf(t, s, "test.peer-a")

	update := routeUpdate(tableA, 0, 1, advertised("g.usd", "test.a"))
	update.HoldDownTime = 150
	requireAck(t, deliver(t, m, update))
	assert.True(t, hasRoute(s, "g.usd"))
	controls := len(sentOf[*protocol.RouteControlRequest](t, m))

	require.Eventually(t, func() bool {
		return !hasRoute(s, "g.usd")
	}, time.Second, 10*time.Millisecond, "routes are dropped when the peer stops refreshing them")
	require.Eventually(t, func() bool {
		return len(sentOf[*protocol.RouteControlRequest](t, m)) > controls
	}, time.Second, 5*time.Millisecond, "the routes are requested again")

	snap := peerOf(t, s, "test.peer-a")
	assert.Equal(t, PeerSyncRequested, snap.State)
	assert.Equal(t, "", snap.RoutingTableId)
	assert.Empty(t, snap.Prefixes)
}

func TestKeepaliveRefreshesExpiry(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()
	m := mockOf(t, s, "test.peer-a")

	update := routeUpdate(tableA, 0, 1, advertised("g.usd", "test.a"))
	update.HoldDownTime = 200
	requireAck(t, deliver(t, m, update))
	keepalive := routeUpdate(tableA, 1, 1)
	keepalive.HoldDownTime = 200
	for range 4 {
		time.Sleep(100 * time.Millisecond)
		requireAck(t, deliver(t, m, keepalive))
	}
	assert.True(t, hasRoute(s, "g.usd"))
	assert.Equal(t, PeerSynced, peerOf(t, s, "test.peer-a").State)
}

func TestRemovingPeerCancelsExpiry(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()

	update := routeUpdate(tableA, 0, 1, advertised("g.usd", "test.a"))
	update.HoldDownTime = 150
	requireAck(t, deliver(t, mockOf(t, s, "test.peer-a"), update))

	require.NoError(t, RemovePlugin(s.Env, "test.peer-a"))
	require.NoError(t, AddPlugin(s.Env, "test.peer-a", mockAccount(state.RelationPeer, "USD")))
	requireAck(t, deliver(t, mockOf(t, s, "test.peer-a"), routeUpdate(tableB, 0, 1, advertised("g.jpy", "test.a"))))
	assert.True(t, hasRoute(s, "g.jpy"))

	assert.Never(t, func() bool {
		return !hasRoute(s, "g.jpy")
	}, 400*time.Millisecond, 20*time.Millisecond, "the expiry of the removed peer does not touch the new one")
	assert.Equal(t, PeerSynced, peerOf(t, s, "test.peer-a").State)
}

func TestMalformedUpdateIsRejected(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()
	m := mockOf(t, s, "test.peer-a")

	bad := advertised("g.usd", "test.a")
	bad.Auth = bad.Auth[:31]
	res := deliver(t, m, routeUpdate(tableA, 0, 1, bad))
	require.IsType(t, &protocol.Reject{}, res)
	assert.Equal(t, protocol.CodeBadRequest, res.(*protocol.Reject).Code)
	assert.Equal(t, localAddress, res.(*protocol.Reject).TriggeredBy)

	inverted := routeUpdate(tableA, 2, 1)
	require.IsType(t, &protocol.Reject{}, deliver(t, m, inverted))

	assert.False(t, hasRoute(s, "g.usd"))
	assert.Equal(t, uint32(0), peerOf(t, s, "test.peer-a").Epoch)
	assert.NoError(t, s.Context.Err(), "a bad message does not stop the node")
}

func TestLearnedRouteFilters(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()

	requireAck(t, deliver(t, mockOf(t, s, "test.peer-a"), routeUpdate(tableA, 0, 1,
		advertised("g.loop", "test.a", localAddress),
		advertised("test.connie.stolen", "test.a"),
		advertised("g.ok", "test.a"),
	)))
	assert.Equal(t, []string{"g.ok"}, peerOf(t, s, "test.peer-a").Prefixes)

	requireAck(t, deliver(t, mockOf(t, s, "test.child"), routeUpdate(tableA, 0, 1,
		advertised("g.usd", "test.c"),
		advertised("test.connie.test.other", "test.c"),
		advertised("test.connie.test.child.alice", "test.c"),
	)))
	assert.Equal(t, []string{"test.connie.test.child.alice"}, peerOf(t, s, "test.child").Prefixes)
	assert.Equal(t, state.AccountId("test.parent"), nextHopOf(t, s, ""))
}

func TestHoldDown(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()
	peerA := mockOf(t, s, "test.peer-a")

	requireAck(t, deliver(t, mockOf(t, s, "test.parent"), routeUpdate(tableA, 0, 1, advertised("g.usd", "test.p"))))
	requireAck(t, deliver(t, peerA, routeUpdate(tableA, 0, 1, advertised("g.usd", "test.a"))))
	assert.Equal(t, state.AccountId("test.peer-a"), nextHopOf(t, s, "g.usd"))

	withdraw := routeUpdate(tableA, 1, 2)
	withdraw.WithdrawnRoutes = []string{"g.usd"}
	withdraw.HoldDownTime = 300
	requireAck(t, deliver(t, peerA, withdraw))

	// the worse parent route is held down
	assert.False(t, hasRoute(s, "g.usd"))
	assert.Len(t, onLoop(t, s, func(s *state.State) []activeHoldDown {
		return Get[*HoldDowns](s).Active()
	}), 1)

	require.Eventually(t, func() bool {
		r, ok := Get[*RouteBroadcaster](s).Table.Get("g.usd")
		return ok && r.NextHop == "test.parent"
	}, 3*time.Second, 10*time.Millisecond, "the parent route is used once the hold-down expires")
}

func TestHoldDownAllowsEqualAlternative(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()
	peerA := mockOf(t, s, "test.peer-a")

	requireAck(t, deliver(t, peerA, routeUpdate(tableA, 0, 1, advertised("g.usd", "test.a"))))
	requireAck(t, deliver(t, mockOf(t, s, "test.peer-b"), routeUpdate(tableA, 0, 1, advertised("g.usd", "test.b"))))
	assert.Equal(t, state.AccountId("test.peer-a"), nextHopOf(t, s, "g.usd"))

	withdraw := routeUpdate(tableA, 1, 2)
	withdraw.WithdrawnRoutes = []string{"g.usd"}
	requireAck(t, deliver(t, peerA, withdraw))
	assert.Equal(t, state.AccountId("test.peer-b"), nextHopOf(t, s, "g.usd"))
}

func TestHoldDownReleasedByReadvertisement(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()
	peerA := mockOf(t, s, "test.peer-a")

	requireAck(t, deliver(t, mockOf(t, s, "test.parent"), routeUpdate(tableA, 0, 1, advertised("g.usd", "test.p"))))
	requireAck(t, deliver(t, peerA, routeUpdate(tableA, 0, 1, advertised("g.usd", "test.a"))))
	withdraw := routeUpdate(tableA, 1, 2)
	withdraw.WithdrawnRoutes = []string{"g.usd"}
	requireAck(t, deliver(t, peerA, withdraw))
	assert.False(t, hasRoute(s, "g.usd"))

	requireAck(t, deliver(t, peerA, routeUpdate(tableA, 2, 3, advertised("g.usd", "test.a"))))
	assert.Equal(t, state.AccountId("test.peer-a"), nextHopOf(t, s, "g.usd"))
	assert.Empty(t, onLoop(t, s, func(s *state.State) []activeHoldDown {
		return Get[*HoldDowns](s).Active()
	}))
}

func TestRemovingPeerCancelsHoldDown(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()
	peerA := mockOf(t, s, "test.peer-a")

	requireAck(t, deliver(t, mockOf(t, s, "test.parent"), routeUpdate(tableA, 0, 1, advertised("g.usd", "test.p"))))
	requireAck(t, deliver(t, peerA, routeUpdate(tableA, 0, 1, advertised("g.usd", "test.a"))))
	withdraw := routeUpdate(tableA, 1, 2)
	withdraw.WithdrawnRoutes = []string{"g.usd"}
	requireAck(t, deliver(t, peerA, withdraw))
	assert.False(t, hasRoute(s, "g.usd"))

	require.NoError(t, RemovePlugin(s.Env, "test.peer-a"))
	assert.Equal(t, state.AccountId("test.parent"), nextHopOf(t, s, "g.usd"))
}

func TestRouteChangesAreTraced(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()

	events := make(chan any, 1024)
	trace := Get[*NodeTrace](s)
	trace.Register(events)
	defer trace.Unregister(events)

	requireAck(t, deliver(t, mockOf(t, s, "test.peer-a"), routeUpdate(tableA, 0, 1, advertised("g.usd", "test.a"))))
	require.Eventually(t, func() bool {
		for {
			select {
			case ev := <-events:
				e := ev.(TraceEvent)
				if e.Kind == RouteChanged && e.Prefix == "g.usd" {
					assert.Equal(t, state.AccountId("test.peer-a"), e.Account)
					return true
				}
			default:
				return false
			}
		}
	}, time.Second, 5*time.Millisecond)
}

func TestForwardingTableEpochs(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := topologyNode(t)
	defer stop()

	before := onLoop(t, s, func(s *state.State) uint32 {
		return Get[*RouteBroadcaster](s).Forwarding.CurrentEpoch
	})
	requireAck(t, deliver(t, mockOf(t, s, "test.peer-a"), routeUpdate(tableA, 0, 1,
		advertised("g.eur", "test.a"),
		advertised("g.usd", "test.a"),
	)))
	ft := onLoop(t, s, func(s *state.State) ForwardingTable {
		f := Get[*RouteBroadcaster](s).Forwarding
		return ForwardingTable{Id: f.Id, CurrentEpoch: f.CurrentEpoch, Base: f.Base, Log: slices.Clone(f.Log)}
	})
	assert.Equal(t, before+2, ft.CurrentEpoch)
	assert.Len(t, ft.Log, int(ft.CurrentEpoch-ft.Base))
	assert.Equal(t, "g.eur", ft.Log[before-ft.Base].Prefix)
	assert.Equal(t, "g.usd", ft.Log[before+1-ft.Base].Prefix)
	assert.Equal(t, originLearned, ft.Log[before-ft.Base].Origin)
}

func TestForwardingTableCompaction(t *testing.T) {
	route := &state.Route{NextHop: "a"}
	ft := &ForwardingTable{}
	ft.record(ForwardingEntry{Prefix: "g.a", Route: route})
	ft.record(ForwardingEntry{Prefix: "g.b", Route: route})
	ft.record(ForwardingEntry{Prefix: "g.a"})
	ft.record(ForwardingEntry{Prefix: "g.c", Route: route})

	ft.Compact(3)
	assert.Equal(t, uint32(3), ft.Base)
	assert.Equal(t, uint32(4), ft.CurrentEpoch)
	require.Len(t, ft.Log, 1)
	assert.Equal(t, "g.c", ft.Log[0].Prefix)
	assert.Len(t, ft.Snapshot, 2, "the snapshot keeps one entry per prefix")
	assert.Nil(t, ft.Snapshot["g.a"].Route)

	assert.Equal(t, []string{"g.c"}, slices.Sorted(maps.Keys(ft.Changes(3, 4))))
	assert.Equal(t, []string{"g.a", "g.b", "g.c"}, slices.Sorted(maps.Keys(ft.Changes(0, 4))))
	changes := ft.Changes(1, 4)
	assert.Nil(t, changes["g.a"].Route, "withdrawals before the base are still reported")
	assert.Empty(t, ft.Changes(4, 4))

	ft.Compact(2)
	assert.Equal(t, uint32(3), ft.Base, "compaction never moves backwards")
	ft.Compact(10)
	assert.Equal(t, uint32(4), ft.Base)
	assert.Empty(t, ft.Log)
	assert.Len(t, ft.Snapshot, 3)
}

func TestForwardingLogIsCompactedAfterAcks(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, stop := startNode(t, newTestConfig(map[state.AccountId]state.AccountCfg{
		"test.child": exchanging(mockAccount(state.RelationChild, "USD")),
	}))
	defer stop()

	full := syncWith(t, s, "test.child")
	require.Eventually(t, func() bool {
		return onLoop(t, s, func(s *state.State) bool {
			b := Get[*RouteBroadcaster](s)
			return b.Forwarding.Base >= full.ToEpochIndex && len(b.Forwarding.Log) == int(b.Forwarding.CurrentEpoch-b.Forwarding.Base)
		})
	}, time.Second, 5*time.Millisecond, "entries acknowledged by every peer leave the log")

	again := syncWith(t, s, "test.child")
	assert.Equal(t, prefixesOf(full.NewRoutes), prefixesOf(again.NewRoutes), "a full table is still served from the snapshot")
}

package core

import (
	"fmt"
	"slices"
	"time"

	"github.com/encodeous/strand/perf"
	"github.com/encodeous/strand/plugin"
	"github.com/encodeous/strand/protocol"
	"github.com/encodeous/strand/state"
)

// PeerState is the receiver side of the route exchange with a neighbour
type PeerState int

const (
	PeerIdle PeerState = iota
	PeerSyncRequested
	PeerSynced
)

func (p PeerState) String() string {
	switch p {
	case PeerIdle:
		return "IDLE"
	case PeerSyncRequested:
		return "SYNC_REQUESTED"
	case PeerSynced:
		return "SYNCED"
	}
	return fmt.Sprintf("PeerState(%d)", int(p))
}

// Peer exchanges routes with a single account. All methods run on the dispatch goroutine.
type Peer struct {
	Id       state.AccountId
	Relation state.Relation
	Info     state.AccountCfg
	plugin   plugin.Plugin
	b        *RouteBroadcaster

	// receiver
	State          PeerState
	RoutingTableId string
	Epoch          uint32
	Routes         map[string]state.Route
	Expiry         time.Time
	Speaker        string
	gaps           int
	retry          *state.Task
	expiry         *state.Task

	// sender
	Mode         protocol.Mode
	LastAckEpoch uint32
	inflight     bool
	sendSeq      uint64
	lastSent     time.Time

	destroyed bool
}

func newPeer(b *RouteBroadcaster, acct *Account) *Peer {
	return &Peer{
		Id:       acct.Id,
		Relation: acct.Info.Relation,
		Info:     acct.Info,
		plugin:   acct.Plugin,
		b:        b,
		Routes:   make(map[string]state.Route),
	}
}

func (p *Peer) setState(s *state.State, st PeerState) {
	if p.State == st {
		return
	}
	s.Log.Debug("peer state changed", "peer", p.Id, "from", p.State, "to", st)
	p.State = st
	Get[*NodeTrace](s).Emit(TraceEvent{Kind: PeerStateChanged, Account: p.Id, Detail: st.String()})
}

// expectAck interprets the response to a route control or route update request
func expectAck(res []byte) error {
	msg, err := protocol.Unmarshal(res)
	if err != nil {
		return err
	}
	switch m := msg.(type) {
	case *protocol.RouteUpdateResponse:
		return nil
	case *protocol.Reject:
		return m
	default:
		return fmt.Errorf("unexpected response %T", msg)
	}
}

// send delivers a message to the peer off the dispatch goroutine, then calls done on the dispatch goroutine
func (p *Peer) send(s *state.State, msg protocol.Message, done func(s *state.State, err error)) {
	data, err := protocol.Marshal(msg)
	if err != nil {
		s.Log.Error("failed to encode message", "peer", p.Id, "err", err)
		return
	}
	env := s.Env
	pl := p.plugin
	p.b.wg.Go(func() {
		ctx, cancel := sendTimeout(env)
		defer cancel()
		res, err := pl.SendData(ctx, data)
		if err == nil {
			err = expectAck(res)
		}
		env.Dispatch(func(s *state.State) error {
			if p.destroyed {
				return nil
			}
			done(s, err)
			return nil
		})
	})
}

// requestRoutes asks the peer to send us everything after the last epoch we applied
func (p *Peer) requestRoutes(s *state.State) {
	if p.destroyed || !p.Info.ShouldReceiveRoutes() {
		return
	}
	p.retry.Cancel()
	p.retry = nil
	req := &protocol.RouteControlRequest{
		Mode:                    protocol.Mode_SYNC,
		LastKnownRoutingTableId: p.RoutingTableId,
		LastKnownEpoch:          p.Epoch,
	}
	p.setState(s, PeerSyncRequested)
	perf.RouteControlsSent.Add(1)
	s.Log.Debug("requesting routes", "peer", p.Id, "routingTableId", req.LastKnownRoutingTableId, "epoch", req.LastKnownEpoch)
	p.send(s, req, func(s *state.State, err error) {
		if err == nil {
			return
		}
		s.Log.Debug("route control request failed, retrying", "peer", p.Id, "err", err, "delay", state.RouteControlRetryDelay)
		if p.State == PeerSyncRequested {
			p.setState(s, PeerIdle)
		}
		p.retry.Cancel()
		p.retry = s.Env.ScheduleTask(func(s *state.State) error {
			p.requestRoutes(s)
			return nil
		}, state.RouteControlRetryDelay)
	})
}

// dropRoutes forgets every learned route, returning the affected prefixes
func (p *Peer) dropRoutes() []string {
	prefixes := make([]string, 0, len(p.Routes))
	for prefix := range p.Routes {
		prefixes = append(prefixes, prefix)
	}
	clear(p.Routes)
	return prefixes
}

func (p *Peer) refreshExpiry(s *state.State, holdDown time.Duration) {
	p.Expiry = time.Now().Add(holdDown)
	p.expiry.Cancel()
	p.expiry = s.Env.ScheduleTask(func(s *state.State) error {
		p.expire(s)
		return nil
	}, holdDown)
}

// expire runs when the peer has not refreshed its routes within the hold down time
func (p *Peer) expire(s *state.State) {
	if p.destroyed {
		return
	}
	s.Log.Info("routes from peer expired", "peer", p.Id, "routes", len(p.Routes))
	changed := p.dropRoutes()
	p.RoutingTableId = ""
	p.Epoch = 0
	p.setState(s, PeerIdle)
	p.b.updatePrefixes(s, changed...)
	p.requestRoutes(s)
}

// rejectRoute returns why a learned route cannot be installed, or "" if it is acceptable
func (p *Peer) rejectRoute(s *state.State, r *protocol.Route) string {
	addr := s.Address()
	if slices.Contains(r.Path, addr) {
		return "route loops through this node"
	}
	if p.Relation == state.RelationChild {
		if !state.HasAddressPrefix(r.Prefix, state.JoinAddress(addr, string(p.Id))) {
			return "child advertised a prefix outside of its address space"
		}
		return ""
	}
	if state.HasAddressPrefix(r.Prefix, addr) {
		return "prefix is inside the address space of this node"
	}
	return ""
}

// handleRouteUpdate applies an update to the routes learned from this peer. It returns the prefixes whose learned
// route changed and the prefixes the peer withdrew.
func (p *Peer) handleRouteUpdate(s *state.State, req *protocol.RouteUpdateRequest) (changed []string, withdrawn []string, err error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	perf.RouteUpdatesReceived.Add(1)
	if !p.Info.ShouldReceiveRoutes() {
		s.Log.Debug("ignoring route update from peer we do not receive routes from", "peer", p.Id)
		return nil, nil, nil
	}
	holdDown := time.Duration(req.HoldDownTime) * time.Millisecond
	if holdDown == 0 {
		holdDown = s.HoldDownTime()
	}

	if p.RoutingTableId != req.RoutingTableId {
		if p.RoutingTableId != "" {
			s.Log.Info("peer started a new routing table", "peer", p.Id, "old", p.RoutingTableId, "new", req.RoutingTableId)
		}
		changed = append(changed, p.dropRoutes()...)
		p.RoutingTableId = req.RoutingTableId
		p.Epoch = 0
		p.gaps = 0
	}
	p.Speaker = req.Speaker

	if req.FromEpochIndex > p.Epoch {
		p.gaps++
		s.Log.Debug("gap in route update epochs", "peer", p.Id, "expected", p.Epoch, "from", req.FromEpochIndex, "gaps", p.gaps)
		if p.gaps > state.MaxEpochGapRetries {
			err := &state.ProtocolDesyncError{
				Peer:     p.Id,
				Expected: p.Epoch,
				Received: req.FromEpochIndex,
				Attempts: p.gaps,
			}
			s.Log.Warn("peer is out of sync, requesting the full table", "err", err)
			changed = append(changed, p.dropRoutes()...)
			p.RoutingTableId = ""
			p.Epoch = 0
			p.gaps = 0
		}
		p.setState(s, PeerIdle)
		p.requestRoutes(s)
		return changed, nil, nil
	}
	if req.ToEpochIndex <= p.Epoch {
		if req.ToEpochIndex == p.Epoch {
			// keepalive
			p.refreshExpiry(s, holdDown)
		} else {
			s.Log.Debug("ignoring stale route update", "peer", p.Id, "epoch", p.Epoch, "to", req.ToEpochIndex)
		}
		return changed, nil, nil
	}
	p.gaps = 0

	for _, prefix := range req.WithdrawnRoutes {
		if _, ok := p.Routes[prefix]; ok {
			delete(p.Routes, prefix)
			changed = append(changed, prefix)
			withdrawn = append(withdrawn, prefix)
		}
	}
	for _, r := range req.NewRoutes {
		if reason := p.rejectRoute(s, r); reason != "" {
			s.Log.Debug("rejected route", "peer", p.Id, "prefix", r.Prefix, "reason", reason)
			if _, ok := p.Routes[r.Prefix]; ok {
				delete(p.Routes, r.Prefix)
				changed = append(changed, r.Prefix)
			}
			continue
		}
		route := state.Route{
			NextHop: p.Id,
			Path:    append([]string{string(p.Id)}, r.Path...),
			Auth:    slices.Clone(r.Auth),
		}
		for _, prop := range r.Props {
			route.Props = append(route.Props, state.RouteProp{Key: prop.Key, Value: slices.Clone(prop.Value)})
		}
		if old, ok := p.Routes[r.Prefix]; ok && old.Equal(route) {
			continue
		}
		p.Routes[r.Prefix] = route
		changed = append(changed, r.Prefix)
	}
	p.Epoch = req.ToEpochIndex
	p.setState(s, PeerSynced)
	p.refreshExpiry(s, holdDown)
	return changed, withdrawn, nil
}

// handleRouteControl configures how we send routes to this peer
func (p *Peer) handleRouteControl(s *state.State, req *protocol.RouteControlRequest) {
	ft := p.b.Forwarding
	p.Mode = req.Mode
	if req.LastKnownRoutingTableId == ft.Id.String() && req.LastKnownEpoch <= ft.CurrentEpoch {
		p.LastAckEpoch = req.LastKnownEpoch
	} else {
		p.LastAckEpoch = 0
	}
	// results of updates sent before this request no longer apply
	p.sendSeq++
	p.inflight = false
	s.Log.Debug("peer requested routes", "peer", p.Id, "mode", p.Mode, "from", p.LastAckEpoch)
	if p.Mode == protocol.Mode_SYNC {
		p.sendUpdate(s, true)
	}
}

// sendUpdate sends the forwarding table changes the peer has not acknowledged. Unless force is set, nothing is sent
// when there are no changes and the keepalive interval has not elapsed.
func (p *Peer) sendUpdate(s *state.State, force bool) {
	if p.destroyed || p.inflight || p.Mode != protocol.Mode_SYNC || !p.Info.ShouldSendRoutes() {
		return
	}
	if !p.plugin.IsConnected() {
		return
	}
	ft := p.b.Forwarding
	from := min(p.LastAckEpoch, ft.CurrentEpoch)
	to := ft.CurrentEpoch
	if from == to && !force && time.Since(p.lastSent) < state.RouteKeepaliveInterval {
		return
	}
	req := p.b.buildUpdate(s, p, from, to)
	p.inflight = true
	p.lastSent = time.Now()
	seq := p.sendSeq
	perf.RouteUpdatesSent.Add(1)
	s.Log.Debug("sending route update", "peer", p.Id, "from", from, "to", to,
		"new", len(req.NewRoutes), "withdrawn", len(req.WithdrawnRoutes))
	p.send(s, req, func(s *state.State, err error) {
		if seq != p.sendSeq {
			return
		}
		p.inflight = false
		if err != nil {
			s.Log.Debug("route update failed, resending next cycle", "peer", p.Id, "err", err)
			return
		}
		p.LastAckEpoch = to
		p.b.compact()
	})
}

// destroy stops the peer, returning the prefixes it had learned
func (p *Peer) destroy(s *state.State) []string {
	p.destroyed = true
	p.retry.Cancel()
	p.expiry.Cancel()
	p.retry = nil
	p.expiry = nil
	p.inflight = false
	p.setState(s, PeerIdle)
	return p.dropRoutes()
}

//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime/pprof"
	"slices"
	"strings"
	"time"

	"github.com/encodeous/strand/core"
	"github.com/encodeous/strand/plugin"
	"github.com/encodeous/strand/protocol"
	"github.com/encodeous/strand/state"
)

type Signal chan bool

func NewSignal() Signal {
	return make(chan bool)
}
func (s Signal) Trigger() {
	select {
	case <-s:
	default:
		close(s)
	}
}
func (s Signal) Triggered() bool {
	select {
	case <-s:
		return true
	default:
		return false
	}
}
func (s Signal) Wait() {
	<-s
}

type Transport int

const (
	TransportPair Transport = iota
	TransportTCP
)

// VirtualLink connects two nodes of the harness. From sees To through an account with relation Relation.
type VirtualLink struct {
	Edge     state.Pair[string, string]
	Relation state.Relation
	Channel  string
}

type VirtualHarness struct {
	Context   context.Context
	Cancel    context.CancelCauseFunc
	Nodes     []state.NodeCfg
	States    []*state.State
	Links     []*VirtualLink
	Transport Transport
	done      []chan error
}

func (v *VirtualHarness) IndexOf(address string) int {
	return slices.IndexFunc(v.Nodes, func(cfg state.NodeCfg) bool {
		return cfg.Address == address
	})
}

// State returns the running node with the given address
func (v *VirtualHarness) State(address string) *state.State {
	return v.States[v.IndexOf(address)]
}

func (v *VirtualHarness) NewNode(address string) {
	v.Nodes = append(v.Nodes, state.NodeCfg{
		Address:       address,
		RoutingSecret: state.GenerateRoutingSecret(),
		Accounts:      make(map[state.AccountId]state.AccountCfg),
		DefaultRoute:  state.DefaultRouteAuto,
	})
}

// AddWallet attaches a mock child account, so tests can inject and answer packets at the edge of the network
func (v *VirtualHarness) AddWallet(address string, id state.AccountId) {
	v.Nodes[v.IndexOf(address)].Accounts[id] = state.AccountCfg{
		Relation:   state.RelationChild,
		AssetCode:  "USD",
		AssetScale: 9,
		Plugin:     "mock",
	}
}

func inverse(rel state.Relation) state.Relation {
	switch rel {
	case state.RelationParent:
		return state.RelationChild
	case state.RelationChild:
		return state.RelationParent
	}
	return rel
}

// accountIds names both ends of a link. A child is known to its parent by the last segment of its address.
func accountIds(from, to string, rel state.Relation) (state.AccountId, state.AccountId) {
	switch rel {
	case state.RelationChild:
		return state.AccountId(strings.TrimPrefix(to, from+".")), state.AccountId(from)
	case state.RelationParent:
		return state.AccountId(to), state.AccountId(strings.TrimPrefix(from, to+"."))
	}
	return state.AccountId(to), state.AccountId(from)
}

func freePort() (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer ln.Close()
	return ln.Addr().String(), nil
}

// LinkAccounts returns the account configs for both ends of a link
func (v *VirtualHarness) LinkAccounts(link *VirtualLink) (state.AccountCfg, state.AccountCfg, error) {
	yes := true
	mk := func(rel state.Relation, opts map[string]any) state.AccountCfg {
		cfg := state.AccountCfg{
			Relation:   rel,
			AssetCode:  "USD",
			AssetScale: 9,
			Options:    opts,
		}
		if rel == state.RelationChild {
			// children of the harness are full routers
			cfg.SendRoutes = &yes
			cfg.ReceiveRoutes = &yes
		}
		return cfg
	}
	var a, b state.AccountCfg
	switch v.Transport {
	case TransportTCP:
		addr, err := freePort()
		if err != nil {
			return a, b, err
		}
		a = mk(link.Relation, map[string]any{"listen": addr})
		b = mk(inverse(link.Relation), map[string]any{"connect": addr, "retry_delay": "50ms"})
		a.Plugin, b.Plugin = "tcp", "tcp"
	default:
		a = mk(link.Relation, map[string]any{"channel": link.Channel})
		b = mk(inverse(link.Relation), map[string]any{"channel": link.Channel})
		a.Plugin, b.Plugin = "pair", "pair"
	}
	return a, b, nil
}

// AddLink connects two configured nodes before Start
func (v *VirtualHarness) AddLink(from, to string, rel state.Relation) *VirtualLink {
	link := &VirtualLink{
		Edge:     state.Pair[string, string]{V1: from, V2: to},
		Relation: rel,
		Channel:  fmt.Sprintf("harness-%p-%d", v, len(v.Links)),
	}
	v.Links = append(v.Links, link)
	return link
}

// Connect links two running nodes
func (v *VirtualHarness) Connect(from, to string, rel state.Relation) error {
	link := v.AddLink(from, to, rel)
	a, b, err := v.LinkAccounts(link)
	if err != nil {
		return err
	}
	idA, idB := accountIds(from, to, rel)
	if err := core.AddPlugin(v.State(from).Env, idA, a); err != nil {
		return err
	}
	return core.AddPlugin(v.State(to).Env, idB, b)
}

// Disconnect removes the accounts of a link from both running nodes
func (v *VirtualHarness) Disconnect(from, to string, rel state.Relation) error {
	idA, idB := accountIds(from, to, rel)
	return errors.Join(
		core.RemovePlugin(v.State(from).Env, idA),
		core.RemovePlugin(v.State(to).Env, idB),
	)
}

func (v *VirtualHarness) Start() chan error {
	ctx, cancel := context.WithCancelCause(context.Background())
	v.Context = ctx
	v.Cancel = cancel
	errChan := make(chan error, 128)

	for _, link := range v.Links {
		a, b, err := v.LinkAccounts(link)
		if err != nil {
			errChan <- err
			return errChan
		}
		idA, idB := accountIds(link.Edge.V1, link.Edge.V2, link.Relation)
		v.Nodes[v.IndexOf(link.Edge.V1)].Accounts[idA] = a
		v.Nodes[v.IndexOf(link.Edge.V2)].Accounts[idB] = b
	}

	v.States = make([]*state.State, len(v.Nodes))
	v.done = make([]chan error, len(v.Nodes))
	for idx, cfg := range v.Nodes {
		s, err := core.NewNode(cfg, slog.LevelDebug, "")
		if err != nil {
			errChan <- fmt.Errorf("node %s: %w", cfg.Address, err)
			return errChan
		}
		v.States[idx] = s
		done := make(chan error, 1)
		v.done[idx] = done
		go func() {
			labels := pprof.Labels("strand node", cfg.Address)
			pprof.Do(context.Background(), labels, func(_ context.Context) {
				err := core.Run(s)
				if err != nil {
					errChan <- err
				}
				done <- err
			})
		}()
	}

	for {
		started := true
		for _, s := range v.States {
			if !s.Started.Load() {
				started = false
				break
			}
		}
		if started {
			return errChan
		}
		select {
		case <-ctx.Done():
			return errChan
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (v *VirtualHarness) Stop() {
	v.Cancel(errors.New("stopping harness"))
	for idx, s := range v.States {
		if s == nil {
			continue
		}
		s.Cancel(errors.New("stopping harness"))
		<-v.done[idx]
	}
}

// RoutedVia is true if the node at address has selected nh as the next hop for prefix
func (v *VirtualHarness) RoutedVia(address, prefix string, nh state.AccountId) bool {
	r, ok := core.Get[*core.RouteBroadcaster](v.State(address)).Table.Get(prefix)
	return ok && r.NextHop == nh
}

// Wallet returns a mock account added with AddWallet
func (v *VirtualHarness) Wallet(address string, id state.AccountId) (*plugin.Mock, error) {
	acct, err := core.Get[*core.Accounts](v.State(address)).Get(id)
	if err != nil {
		return nil, err
	}
	m, ok := acct.Plugin.(*plugin.Mock)
	if !ok {
		return nil, fmt.Errorf("account %s of %s is not a wallet", id, address)
	}
	return m, nil
}

// Pay sends a prepare into the network from a wallet and returns the response
func (v *VirtualHarness) Pay(address string, wallet state.AccountId, prepare *protocol.Prepare) (protocol.Message, error) {
	m, err := v.Wallet(address, wallet)
	if err != nil {
		return nil, err
	}
	data, err := protocol.Marshal(prepare)
	if err != nil {
		return nil, err
	}
	res, err := m.HandleData(v.Context, data)
	if err != nil {
		return nil, err
	}
	return protocol.Unmarshal(res)
}

// Fulfill makes a wallet accept every prepare and reports each destination it receives on the returned channel
func (v *VirtualHarness) Fulfill(address string, wallet state.AccountId, fulfillment []byte) (<-chan string, error) {
	m, err := v.Wallet(address, wallet)
	if err != nil {
		return nil, err
	}
	received := make(chan string, 64)
	m.SetSendDataFunc(func(ctx context.Context, data []byte) ([]byte, error) {
		msg, err := protocol.Unmarshal(data)
		if err != nil {
			return nil, err
		}
		p, ok := msg.(*protocol.Prepare)
		if !ok {
			return protocol.Marshal(&protocol.RouteUpdateResponse{})
		}
		select {
		case received <- p.Destination:
		default:
		}
		return protocol.Marshal(&protocol.Fulfill{Fulfillment: fulfillment})
	})
	return received, nil
}

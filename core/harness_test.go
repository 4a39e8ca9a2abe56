package core

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/encodeous/strand/plugin"
	"github.com/encodeous/strand/protocol"
	"github.com/encodeous/strand/state"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	ConfigureConstants()
	os.Exit(m.Run())
}

func ConfigureConstants() {
	state.RouteBroadcastInterval = 50 * time.Millisecond
	state.RouteControlRetryDelay = 50 * time.Millisecond
	state.SlowDispatchThreshold = time.Second
}

const localAddress = "test.connie"

var (
	testCondition, _ = base64.RawURLEncoding.DecodeString("I3TZF5S3n0-07JWH0s8ArsxPmVP6s-0d0SqxR6C3Ifk")
	testAuth, _      = base64.StdEncoding.DecodeString("RLQ3sZWn8Y5TSNJM9qXszfxVlcuERxsxpy+7RhaUadk=")
)

const jpyTableId = "b38e6e41-71a0-4088-baed-d2f09caa18ee"

func mockAccount(rel state.Relation, asset string) state.AccountCfg {
	return state.AccountCfg{
		Relation:   rel,
		AssetCode:  asset,
		AssetScale: 4,
		Plugin:     "mock",
	}
}

func newTestConfig(accounts map[state.AccountId]state.AccountCfg) state.NodeCfg {
	return state.NodeCfg{
		Address:       localAddress,
		RoutingSecret: state.GenerateRoutingSecret(),
		Accounts:      accounts,
	}
}

// startNode runs a node in the background, stop blocks until it has shut down
func startNode(t *testing.T, cfg state.NodeCfg) (*state.State, func()) {
	t.Helper()
	s, err := NewNode(cfg, slog.LevelDebug, "")
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() {
		done <- Run(s)
	}()
	return s, func() {
		s.Cancel(errors.New("test finished"))
		require.NoError(t, <-done)
	}
}

func mockOf(t *testing.T, s *state.State, id state.AccountId) *plugin.Mock {
	t.Helper()
	acct, err := Get[*Accounts](s).Get(id)
	require.NoError(t, err)
	m, ok := acct.Plugin.(*plugin.Mock)
	require.True(t, ok, "account %s does not use the mock plugin", id)
	return m
}

// onLoop runs fun on the dispatch goroutine and returns its result
func onLoop[T any](t *testing.T, s *state.State, fun func(s *state.State) T) T {
	t.Helper()
	res, err := s.DispatchWait(func(s *state.State) (any, error) {
		return fun(s), nil
	})
	require.NoError(t, err)
	return res.(T)
}

// deliver hands msg to the node as if the counterparty of m sent it
func deliver(t *testing.T, m *plugin.Mock, msg protocol.Message) protocol.Message {
	t.Helper()
	data, err := protocol.Marshal(msg)
	require.NoError(t, err)
	res, err := m.HandleData(context.Background(), data)
	require.NoError(t, err)
	out, err := protocol.Unmarshal(res)
	require.NoError(t, err)
	return out
}

func requireAck(t *testing.T, res protocol.Message) {
	t.Helper()
	require.IsType(t, &protocol.RouteUpdateResponse{}, res, "expected an acknowledgement, got %v", res)
}

func testPrepare(dest string) *protocol.Prepare {
	return &protocol.Prepare{
		Amount:             100,
		Destination:        dest,
		ExecutionCondition: testCondition,
		ExpiresAt:          protocol.UnixMillis(time.Now().Add(10 * time.Second)),
		Data:               []byte{},
	}
}

func routeUpdate(tableId string, from, to uint32, routes ...*protocol.Route) *protocol.RouteUpdateRequest {
	return &protocol.RouteUpdateRequest{
		Speaker:           "test.jpy-ledger",
		RoutingTableId:    tableId,
		CurrentEpochIndex: to,
		FromEpochIndex:    from,
		ToEpochIndex:      to,
		HoldDownTime:      45000,
		NewRoutes:         routes,
	}
}

func advertised(prefix string, path ...string) *protocol.Route {
	return &protocol.Route{
		Prefix: prefix,
		Path:   path,
		Auth:   testAuth,
	}
}

// sentOf decodes every message of type T the node sent through m
func sentOf[T protocol.Message](t *testing.T, m *plugin.Mock) []T {
	t.Helper()
	var out []T
	for _, data := range m.Sent() {
		msg, err := protocol.Unmarshal(data)
		require.NoError(t, err)
		if v, ok := msg.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func nextHop(s *state.State, source state.AccountId, dest string) (state.AccountId, error) {
	nh, _, err := Get[*RouteBuilder](s).GetNextHopPacket(source, testPrepare(dest))
	return nh, err
}

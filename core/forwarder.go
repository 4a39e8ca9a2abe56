package core

import (
	"context"
	"errors"
	"time"

	"github.com/encodeous/strand/perf"
	"github.com/encodeous/strand/plugin"
	"github.com/encodeous/strand/protocol"
	"github.com/encodeous/strand/state"
)

// newDataHandler handles data sent by the counterparty of account from. Route protocol messages are applied on the
// dispatch goroutine, prepares are forwarded on the calling goroutine.
func newDataHandler(s *state.State, from state.AccountId) plugin.DataHandler {
	env := s.Env
	builder := Get[*RouteBuilder](s)
	accounts := Get[*Accounts](s)
	return func(ctx context.Context, data []byte) ([]byte, error) {
		msg, err := protocol.Unmarshal(data)
		if err != nil {
			env.Log.Warn("dropped malformed message", "from", from, "err", err)
			return protocol.Marshal(reject(env, protocol.CodeInvalidPacket, err.Error()))
		}
		switch m := msg.(type) {
		case *protocol.RouteControlRequest:
			return handleRouteMessage(env, func(s *state.State) error {
				return Get[*RouteBroadcaster](s).HandleRouteControl(s, from, m)
			})
		case *protocol.RouteUpdateRequest:
			return handleRouteMessage(env, func(s *state.State) error {
				return Get[*RouteBroadcaster](s).HandleRouteUpdate(s, from, m)
			})
		case *protocol.Prepare:
			return protocol.Marshal(forwardPrepare(ctx, env, builder, accounts, from, m))
		default:
			env.Log.Debug("received unexpected message", "from", from, "type", m)
			return protocol.Marshal(reject(env, protocol.CodeBadRequest, "unexpected message"))
		}
	}
}

func reject(env *state.Env, code, message string) *protocol.Reject {
	return &protocol.Reject{
		Code:        code,
		TriggeredBy: env.Address(),
		Message:     message,
	}
}

func handleRouteMessage(env *state.Env, fun func(s *state.State) error) ([]byte, error) {
	_, err := env.DispatchWait(func(s *state.State) (any, error) {
		return nil, fun(s)
	})
	if err != nil {
		return protocol.Marshal(reject(env, protocol.CodeBadRequest, err.Error()))
	}
	return protocol.Marshal(&protocol.RouteUpdateResponse{})
}

// forwardPrepare sends a prepare to its next hop and returns the fulfill or reject to relay back
func forwardPrepare(ctx context.Context, env *state.Env, builder *RouteBuilder, accounts *Accounts, from state.AccountId, prepare *protocol.Prepare) protocol.Message {
	res := doForward(ctx, env, builder, accounts, from, prepare)
	if _, ok := res.(*protocol.Reject); ok {
		perf.PacketsRejected.Add(1)
	} else {
		perf.PacketsForwarded.Add(1)
	}
	return res
}

func doForward(ctx context.Context, env *state.Env, builder *RouteBuilder, accounts *Accounts, from state.AccountId, prepare *protocol.Prepare) protocol.Message {
	if !prepare.Expiry().After(time.Now()) {
		return reject(env, protocol.CodeTransferTimedOut, "packet expired")
	}
	nextHop, out, err := builder.GetNextHopPacket(from, prepare)
	if err != nil {
		env.Log.Debug("no route for packet", "err", err)
		return reject(env, protocol.CodeUnreachable, err.Error())
	}
	acct, err := accounts.Get(nextHop)
	if err != nil {
		return reject(env, protocol.CodeUnreachable, err.Error())
	}
	data, err := protocol.Marshal(out)
	if err != nil {
		return reject(env, protocol.CodeInternalError, err.Error())
	}

	ctx, cancel := context.WithDeadline(ctx, prepare.Expiry())
	defer cancel()
	res, err := acct.Plugin.SendData(ctx, data)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return reject(env, protocol.CodeTransferTimedOut, "packet expired while waiting for next hop")
		}
		env.Log.Debug("failed to send packet to next hop", "nextHop", nextHop, "err", err)
		return reject(env, protocol.CodePeerUnreachable, "failed to send packet to next hop")
	}
	msg, err := protocol.Unmarshal(res)
	if err != nil {
		return reject(env, protocol.CodeInternalError, "invalid response from next hop")
	}
	switch msg.(type) {
	case *protocol.Fulfill, *protocol.Reject:
		return msg
	}
	return reject(env, protocol.CodeInternalError, "unexpected response from next hop")
}

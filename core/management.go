package core

import (
	"github.com/encodeous/strand/state"
)

// AddPlugin adds an account to a running node
func AddPlugin(e *state.Env, id state.AccountId, cfg state.AccountCfg) error {
	_, err := e.DispatchWait(func(s *state.State) (any, error) {
		return nil, Get[*Accounts](s).Add(s, id, cfg)
	})
	return err
}

// RemovePlugin removes an account from a running node
func RemovePlugin(e *state.Env, id state.AccountId) error {
	_, err := e.DispatchWait(func(s *state.State) (any, error) {
		return nil, Get[*Accounts](s).Remove(s, id)
	})
	return err
}

// InspectNode renders the node state, see Inspect
func InspectNode(e *state.Env) (string, error) {
	res, err := e.DispatchWait(func(s *state.State) (any, error) {
		return Inspect(s), nil
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

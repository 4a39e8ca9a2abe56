package state

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type NyModule interface {
	Init(s *State) error
	Cleanup(s *State) error
}

// State access must be done only on a single Goroutine
type State struct {
	*Env
	Modules map[string]NyModule
	// ModuleOrder is the order modules were initialized in, they are cleaned up in reverse
	ModuleOrder []string
}

// Env can be read from any Goroutine
type Env struct {
	DispatchChannel chan<- func(s *State) error
	// Inbox is the receiving end of DispatchChannel, only the main loop may read it
	Inbox <-chan func(s *State) error
	NodeCfg
	Context    context.Context
	Cancel     context.CancelCauseFunc
	Log        *slog.Logger
	ConfigPath string
	Started    atomic.Bool
	Stopping   atomic.Bool
}

// Address returns the ILP address of this node
func (e *Env) Address() string {
	return e.NodeCfg.Address
}

package core

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/encodeous/strand/plugin"
	"github.com/encodeous/strand/state"
	"golang.org/x/sync/errgroup"
)

// Account is a connection to an adjacent ledger or node
type Account struct {
	Id     state.AccountId
	Info   state.AccountCfg
	Plugin plugin.Plugin
}

// Accounts is the account registry. Mutations happen on the dispatch goroutine, lookups are safe from anywhere.
type Accounts struct {
	accounts atomic.Pointer[map[state.AccountId]*Account]
	// background plugin connects and disconnects
	wg sync.WaitGroup
}

func (a *Accounts) Init(s *state.State) error {
	s.Log.Debug("init accounts")
	empty := make(map[state.AccountId]*Account)
	a.accounts.Store(&empty)
	return nil
}

// loadConfigured adds the accounts from the node config, it runs after every module is initialized
func (a *Accounts) loadConfigured(s *state.State) error {
	for _, id := range s.SortedAccounts() {
		if err := a.Add(s, id, s.Accounts[id]); err != nil {
			return err
		}
	}
	return nil
}

func (a *Accounts) snapshot() map[state.AccountId]*Account {
	m := a.accounts.Load()
	if m == nil {
		return nil
	}
	return *m
}

func (a *Accounts) publish(fun func(m map[state.AccountId]*Account)) {
	next := maps.Clone(a.snapshot())
	fun(next)
	a.accounts.Store(&next)
}

// Add registers an account and starts connecting its plugin
func (a *Accounts) Add(s *state.State, id state.AccountId, cfg state.AccountCfg) error {
	if err := state.AccountConfigValidator(id, cfg); err != nil {
		return err
	}
	if _, ok := a.snapshot()[id]; ok {
		return &state.DuplicateAccountError{AccountId: id}
	}
	log := s.Log.With("account", id)
	p, err := plugin.New(cfg.Plugin, plugin.Options{
		AccountId: id,
		Config:    cfg.Options,
		Log:       log,
	})
	if err != nil {
		return err
	}
	acct := &Account{
		Id:     id,
		Info:   cfg,
		Plugin: p,
	}
	p.RegisterDataHandler(newDataHandler(s, id))
	a.publish(func(m map[state.AccountId]*Account) {
		m[id] = acct
	})
	Get[*RouteBroadcaster](s).AddAccount(s, acct)
	Get[*NodeTrace](s).Emit(TraceEvent{Kind: TopologyChanged, Account: id, Detail: "added"})
	log.Info("added account", "relation", cfg.Relation, "plugin", cfg.Plugin)

	env := s.Env
	a.wg.Go(func() {
		err := p.Connect(env.Context)
		if err != nil {
			if env.Context.Err() == nil {
				log.Warn("failed to connect plugin", "err", err)
			}
			return
		}
		log.Debug("plugin connected")
		env.Dispatch(func(s *state.State) error {
			if cur, ok := a.snapshot()[id]; ok && cur == acct {
				Get[*RouteBroadcaster](s).OnConnected(s, id)
			}
			return nil
		})
	})
	return nil
}

// Remove unregisters an account. Its routes are gone from the routing table before the account disappears from
// the registry, and the plugin is disconnected in the background.
func (a *Accounts) Remove(s *state.State, id state.AccountId) error {
	acct, ok := a.snapshot()[id]
	if !ok {
		return &state.UnknownAccountError{AccountId: id}
	}
	Get[*RouteBroadcaster](s).RemoveAccount(s, id)
	a.publish(func(m map[state.AccountId]*Account) {
		delete(m, id)
	})
	acct.Plugin.DeregisterDataHandler()
	Get[*NodeTrace](s).Emit(TraceEvent{Kind: TopologyChanged, Account: id, Detail: "removed"})
	s.Log.Info("removed account", "account", id)

	a.wg.Go(func() {
		if err := acct.Plugin.Disconnect(); err != nil {
			s.Log.Warn("failed to disconnect plugin", "account", id, "err", err)
		}
	})
	return nil
}

// Get returns the account with the given id
func (a *Accounts) Get(id state.AccountId) (*Account, error) {
	acct, ok := a.snapshot()[id]
	if !ok {
		return nil, &state.UnknownAccountError{AccountId: id}
	}
	return acct, nil
}

func (a *Accounts) Has(id state.AccountId) bool {
	_, ok := a.snapshot()[id]
	return ok
}

// Ids returns the registered account ids in sorted order
func (a *Accounts) Ids() []state.AccountId {
	return slices.Sorted(maps.Keys(a.snapshot()))
}

func (a *Accounts) Relation(id state.AccountId) (state.Relation, error) {
	acct, err := a.Get(id)
	if err != nil {
		return "", err
	}
	return acct.Info.Relation, nil
}

func (a *Accounts) Cleanup(s *state.State) error {
	var g errgroup.Group
	for id, acct := range a.snapshot() {
		acct.Plugin.DeregisterDataHandler()
		g.Go(func() error {
			if err := acct.Plugin.Disconnect(); err != nil {
				s.Log.Warn("failed to disconnect plugin", "account", id, "err", err)
				return err
			}
			return nil
		})
	}
	err := g.Wait()
	a.wg.Wait()
	empty := make(map[state.AccountId]*Account)
	a.accounts.Store(&empty)
	return err
}

package core

import (
	"context"
	"time"

	"github.com/encodeous/strand/state"
	"github.com/jellydator/ttlcache/v3"
)

type holdKey struct {
	Peer   state.AccountId
	Prefix string
}

// HoldDowns remembers withdrawn routes. While a hold-down is active, candidates for the prefix that rank below the
// withdrawn route are not selected. When it expires the prefix is re-evaluated on the dispatch goroutine.
type HoldDowns struct {
	cache       *ttlcache.Cache[holdKey, routeRank]
	unsubscribe func()
}

func (h *HoldDowns) Init(s *state.State) error {
	h.cache = ttlcache.New[holdKey, routeRank](
		ttlcache.WithDisableTouchOnHit[holdKey, routeRank](),
	)
	env := s.Env
	h.unsubscribe = h.cache.OnEviction(func(ctx context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[holdKey, routeRank]) {
		if reason != ttlcache.EvictionReasonExpired {
			return
		}
		key := item.Key()
		env.Dispatch(func(s *state.State) error {
			s.Log.Debug("hold-down expired", "peer", key.Peer, "prefix", key.Prefix)
			Get[*RouteBroadcaster](s).updatePrefixes(s, key.Prefix)
			return nil
		})
	})
	go h.cache.Start()
	return nil
}

// Hold suppresses routes worse than rank for prefix until ttl elapses or the hold-down is released
func (h *HoldDowns) Hold(peer state.AccountId, prefix string, rank routeRank, ttl time.Duration) {
	h.cache.Set(holdKey{Peer: peer, Prefix: prefix}, rank, ttl)
}

// Release drops a hold-down, used when the peer re-advertises the prefix
func (h *HoldDowns) Release(peer state.AccountId, prefix string) {
	h.cache.Delete(holdKey{Peer: peer, Prefix: prefix})
}

// CancelPeer drops every hold-down recorded for a peer, returning the prefixes that were held
func (h *HoldDowns) CancelPeer(peer state.AccountId) []string {
	var prefixes []string
	for _, key := range h.cache.Keys() {
		if key.Peer == peer {
			h.cache.Delete(key)
			prefixes = append(prefixes, key.Prefix)
		}
	}
	return prefixes
}

// Suppresses reports whether an active hold-down of any of peers blocks a candidate of the given rank for prefix
func (h *HoldDowns) Suppresses(peers []state.AccountId, prefix string, rank routeRank) bool {
	for _, peer := range peers {
		item := h.cache.Get(holdKey{Peer: peer, Prefix: prefix})
		if item == nil || item.IsExpired() {
			continue
		}
		if item.Value().outranks(rank) {
			return true
		}
	}
	return false
}

type activeHoldDown struct {
	holdKey
	ExpiresAt time.Time
}

// Active lists the hold-downs that have not expired
func (h *HoldDowns) Active() []activeHoldDown {
	var out []activeHoldDown
	h.cache.Range(func(item *ttlcache.Item[holdKey, routeRank]) bool {
		if !item.IsExpired() {
			out = append(out, activeHoldDown{holdKey: item.Key(), ExpiresAt: item.ExpiresAt()})
		}
		return true
	})
	return out
}

func (h *HoldDowns) Cleanup(s *state.State) error {
	if h.cache == nil {
		return nil
	}
	h.unsubscribe()
	h.cache.Stop()
	h.cache.DeleteAll()
	return nil
}

package plugin

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

func init() {
	Register("pair", func(opts Options) (Plugin, error) {
		var cfg PairCfg
		if err := DecodeOptions(opts.Config, &cfg); err != nil {
			return nil, err
		}
		if cfg.Channel == "" {
			return nil, fmt.Errorf("pair plugin for %s: options.channel must be set", opts.AccountId)
		}
		return NewPair(cfg.Channel), nil
	})
}

type PairCfg struct {
	// Channel names the link, exactly two plugins in the same process connect through a channel
	Channel string `yaml:"channel"`
}

var (
	pairMu   sync.Mutex
	channels = make(map[string][]*Pair)
)

// Pair is an in-process plugin, two instances sharing a channel name are each other's counterparty
type Pair struct {
	handlerSlot
	channel   string
	connected atomic.Bool
}

func NewPair(channel string) *Pair {
	return &Pair{channel: channel}
}

func (p *Pair) Connect(ctx context.Context) error {
	pairMu.Lock()
	defer pairMu.Unlock()
	if p.connected.Load() {
		return nil
	}
	ends := channels[p.channel]
	if len(ends) >= 2 {
		return fmt.Errorf("pair channel %s already has two ends", p.channel)
	}
	channels[p.channel] = append(ends, p)
	p.connected.Store(true)
	return nil
}

func (p *Pair) Disconnect() error {
	pairMu.Lock()
	defer pairMu.Unlock()
	if !p.connected.Swap(false) {
		return nil
	}
	ends := channels[p.channel]
	for i, e := range ends {
		if e == p {
			ends = append(ends[:i], ends[i+1:]...)
			break
		}
	}
	if len(ends) == 0 {
		delete(channels, p.channel)
	} else {
		channels[p.channel] = ends
	}
	return nil
}

// IsConnected is true once both ends have connected
func (p *Pair) IsConnected() bool {
	return p.remote() != nil
}

func (p *Pair) remote() *Pair {
	pairMu.Lock()
	defer pairMu.Unlock()
	if !p.connected.Load() {
		return nil
	}
	for _, e := range channels[p.channel] {
		if e != p {
			return e
		}
	}
	return nil
}

func (p *Pair) SendData(ctx context.Context, data []byte) ([]byte, error) {
	remote := p.remote()
	if remote == nil {
		return nil, ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return remote.handle(ctx, append([]byte(nil), data...))
}

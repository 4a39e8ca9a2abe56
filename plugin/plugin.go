package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/encodeous/strand/state"
	"github.com/goccy/go-yaml"
)

// DataHandler is invoked when the remote end sends data, the returned bytes are the response
type DataHandler func(ctx context.Context, data []byte) ([]byte, error)

// Plugin is a request/response byte transport to the counterparty of an account. It does not interpret the data.
type Plugin interface {
	Connect(ctx context.Context) error
	Disconnect() error
	IsConnected() bool
	SendData(ctx context.Context, data []byte) ([]byte, error)
	RegisterDataHandler(handler DataHandler)
	DeregisterDataHandler()
}

var (
	ErrNotConnected = errors.New("plugin is not connected")
	ErrNoHandler    = errors.New("no data handler registered")
)

// Options are passed to a Factory when an account is added
type Options struct {
	AccountId state.AccountId
	Config    map[string]any
	Log       *slog.Logger
}

type Factory func(opts Options) (Plugin, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

func init() {
	state.PluginExists = Exists
}

// Register makes a plugin type available under name
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

func Exists(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New instantiates the plugin type name
func New(name string, opts Options) (Plugin, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown plugin %q, available: %v", name, Names())
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return factory(opts)
}

// DecodeOptions converts the free-form options map into a typed struct using its yaml tags
func DecodeOptions(config map[string]any, out any) error {
	if len(config) == 0 {
		return nil
	}
	raw, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(raw, out)
}

// handlerSlot holds the registered data handler of a plugin
type handlerSlot struct {
	mu      sync.RWMutex
	handler DataHandler
}

func (h *handlerSlot) RegisterDataHandler(handler DataHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = handler
}

func (h *handlerSlot) DeregisterDataHandler() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = nil
}

func (h *handlerSlot) handle(ctx context.Context, data []byte) ([]byte, error) {
	h.mu.RLock()
	handler := h.handler
	h.mu.RUnlock()
	if handler == nil {
		return nil, ErrNoHandler
	}
	return handler(ctx, data)
}

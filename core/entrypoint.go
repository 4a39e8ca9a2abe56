package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"reflect"
	"runtime"
	"slices"
	"syscall"
	"time"

	"github.com/encodeous/strand/perf"
	"github.com/encodeous/strand/state"
	"github.com/encodeous/tint"
	"github.com/goccy/go-yaml"
	slogmulti "github.com/samber/slog-multi"
)

// ReadConfig loads and validates a node config
func ReadConfig(configPath string) (*state.NodeCfg, error) {
	var cfg state.NodeCfg
	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}
	err = state.NodeConfigValidator(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Bootstrap runs the node until it is interrupted. logPath and debugAddr override the config when set.
func Bootstrap(configPath, logPath, debugAddr string, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	cfg, err := ReadConfig(configPath)
	if err != nil {
		return err
	}
	if logPath != "" {
		cfg.LogPath = logPath
	}
	if debugAddr != "" {
		cfg.DebugAddr = debugAddr
	}
	return Start(*cfg, level, configPath, nil)
}

func newLogger(cfg state.NodeCfg, logLevel slog.Level) (*slog.Logger, error) {
	handlers := make([]slog.Handler, 0)
	handlers = append(handlers,
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:        logLevel,
			AddSource:    false,
			CustomPrefix: cfg.Address,
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == "time" {
					return slog.Attr{}
				}
				return attr
			},
		}))

	if cfg.LogPath != "" {
		err := os.MkdirAll(path.Dir(cfg.LogPath), 0700)
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: logLevel}))
	}
	return slog.New(slogmulti.Fanout(handlers...)), nil
}

// Start runs a node until its context is cancelled. If initState is not nil, it is set to the node state once
// the modules are initialized.
func Start(cfg state.NodeCfg, logLevel slog.Level, configPath string, initState **state.State) error {
	s, err := NewNode(cfg, logLevel, configPath)
	if err != nil {
		return err
	}
	if initState != nil {
		*initState = s
	}
	return Run(s)
}

// NewNode creates the node state and initializes every module. The node does not process anything until Run is
// called.
func NewNode(cfg state.NodeCfg, logLevel slog.Level, configPath string) (*state.State, error) {
	ctx, cancel := context.WithCancelCause(context.Background())

	dispatch := make(chan func(env *state.State) error, 128)

	logger, err := newLogger(cfg, logLevel)
	if err != nil {
		cancel(err)
		return nil, err
	}

	s := &state.State{
		Modules: make(map[string]state.NyModule),
		Env: &state.Env{
			Context:         ctx,
			Cancel:          cancel,
			DispatchChannel: dispatch,
			Inbox:           dispatch,
			NodeCfg:         cfg,
			Log:             logger,
			ConfigPath:      configPath,
		},
	}

	s.Log.Info("init modules")
	err = initModules(s)
	if err != nil {
		Stop(s)
		return nil, err
	}
	s.Log.Info("init modules complete")
	return s, nil
}

// Run processes dispatched functions until the node is stopped
func Run(s *state.State) error {
	s.Log.Info("strand has been initialized. To gracefully exit, send SIGINT or Ctrl+C.", "address", s.Address())

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		select {
		case <-c:
			s.Cancel(errors.New("received shutdown signal"))
		case <-s.Context.Done():
			return
		}
	}()

	return MainLoop(s, s.Inbox)
}

func initModules(s *state.State) error {
	var modules []state.NyModule
	modules = append(modules, &NodeTrace{})
	modules = append(modules, &HoldDowns{})
	modules = append(modules, &Accounts{})
	modules = append(modules, &RouteBroadcaster{})
	modules = append(modules, &RouteBuilder{})
	modules = append(modules, &DebugServer{})

	for _, module := range modules {
		name := reflect.TypeOf(module).String()
		s.Modules[name] = module
		s.ModuleOrder = append(s.ModuleOrder, name)
		if err := module.Init(s); err != nil {
			return fmt.Errorf("failed to init %s: %w", name, err)
		}
	}
	return Get[*Accounts](s).loadConfigured(s)
}

func MainLoop(s *state.State, dispatch <-chan func(*state.State) error) error {
	s.Log.Debug("started main loop")
	s.Started.Store(true)
	for {
		select {
		case fun := <-dispatch:
			if fun == nil {
				goto endLoop
			}
			start := time.Now()
			err := fun(s)
			if err != nil {
				s.Log.Error("error occurred during dispatch: ", "error", err)
				s.Cancel(err)
			}
			elapsed := time.Since(start)
			perf.DispatchLatency.Add(float64(elapsed.Microseconds()))
			if elapsed > state.SlowDispatchThreshold {
				s.Log.Warn("dispatch took a long time!", "fun", runtime.FuncForPC(reflect.ValueOf(fun).Pointer()).Name(), "elapsed", elapsed, "len", len(dispatch))
			}
		case <-s.Context.Done():
			goto endLoop
		}
	}
endLoop:
	s.Log.Info("stopped main loop", "reason", context.Cause(s.Context).Error())
	Stop(s)
	return nil
}

func Stop(s *state.State) {
	if s.Stopping.Swap(true) {
		return // don't stop twice
	}
	s.Cancel(context.Canceled)
	close(s.DispatchChannel)
	s.Log.Info("cleaning up modules")
	for _, moduleName := range slices.Backward(s.ModuleOrder) {
		err := s.Modules[moduleName].Cleanup(s)
		if err != nil {
			s.Log.Error("error occurred during Stop: ", "module", moduleName, "error", err)
		}
	}
	s.Log.Info("stopped")
}

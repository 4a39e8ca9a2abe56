package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/encodeous/strand/state"
)

// DebugServer exposes the default mux (pprof, expvar, /debug/metrics) and the inspect dump on NodeCfg.DebugAddr
type DebugServer struct {
	srv  *http.Server
	ln   net.Listener
	done chan struct{}
}

func (d *DebugServer) Init(s *state.State) error {
	if s.DebugAddr == "" {
		return nil
	}
	ln, err := net.Listen("tcp", s.DebugAddr)
	if err != nil {
		return fmt.Errorf("debug server: %w", err)
	}
	env := s.Env
	mux := http.NewServeMux()
	mux.Handle("/debug/", http.DefaultServeMux)
	mux.HandleFunc("GET /debug/inspect", func(w http.ResponseWriter, r *http.Request) {
		out, err := InspectNode(env)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, out)
	})
	d.ln = ln
	d.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	d.done = make(chan struct{})
	go func() {
		defer close(d.done)
		if err := d.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			env.Log.Warn("debug server stopped", "err", err)
		}
	}()
	s.Log.Info("serving debug endpoints", "addr", ln.Addr().String())
	return nil
}

// Addr is the address the server listens on, nil if it is disabled
func (d *DebugServer) Addr() net.Addr {
	if d.ln == nil {
		return nil
	}
	return d.ln.Addr()
}

func (d *DebugServer) Cleanup(s *state.State) error {
	if d.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := d.srv.Shutdown(ctx)
	<-d.done
	return err
}

// InspectRemote fetches the inspect dump from a node's debug server
func InspectRemote(addr string) (string, error) {
	client := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
	res, err := client.Get("http://" + addr + "/debug/inspect")
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: %s", res.Status, body)
	}
	return string(body), nil
}

package plugin

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/encodeous/strand/protocol"
)

func init() {
	Register("tcp", func(opts Options) (Plugin, error) {
		var cfg TCPCfg
		if err := DecodeOptions(opts.Config, &cfg); err != nil {
			return nil, err
		}
		if (cfg.Listen == "") == (cfg.Connect == "") {
			return nil, fmt.Errorf("tcp plugin for %s: exactly one of options.listen or options.connect must be set", opts.AccountId)
		}
		return NewTCP(cfg, opts.Log.With("account", opts.AccountId)), nil
	})
}

type TCPCfg struct {
	Listen     string        `yaml:"listen,omitempty"`      // accept the counterparty on this address
	Connect    string        `yaml:"connect,omitempty"`     // dial the counterparty at this address
	RetryDelay time.Duration `yaml:"retry_delay,omitempty"` // delay between dial attempts
}

const (
	tcpRequest uint8 = iota
	tcpResponse
	tcpError
)

// tcp frames are [length uint32][id uint64][kind uint8][payload], length covers id, kind and payload
const tcpHeaderSize = 8 + 1

type tcpFrame struct {
	id      uint64
	kind    uint8
	payload []byte
}

func writeFrame(w io.Writer, f tcpFrame) error {
	length := tcpHeaderSize + len(f.payload)
	if len(f.payload) > protocol.MaxPacketSize {
		return errors.New("packet size is invalid")
	}
	buf := make([]byte, 4+length)
	binary.BigEndian.PutUint32(buf, uint32(length))
	binary.BigEndian.PutUint64(buf[4:], f.id)
	buf[12] = f.kind
	copy(buf[13:], f.payload)
	_, err := w.Write(buf)
	return err
}

func readFrame(r io.Reader) (tcpFrame, error) {
	var length uint32
	err := binary.Read(r, binary.BigEndian, &length)
	if err != nil {
		return tcpFrame{}, err
	}
	if length < tcpHeaderSize || length > protocol.MaxPacketSize+tcpHeaderSize {
		return tcpFrame{}, errors.New("packet size is invalid")
	}
	data := make([]byte, length)
	_, err = io.ReadFull(r, data)
	if err != nil {
		return tcpFrame{}, err
	}
	return tcpFrame{
		id:      binary.BigEndian.Uint64(data),
		kind:    data[8],
		payload: data[tcpHeaderSize:],
	}, nil
}

// TCP carries requests and responses over a single stream connection, multiplexed by request id
type TCP struct {
	handlerSlot
	cfg TCPCfg
	log *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	nextId atomic.Uint64

	mu       sync.Mutex
	listener net.Listener
	conn     net.Conn
	pending  map[uint64]chan tcpFrame
	writeMu  sync.Mutex
}

func NewTCP(cfg TCPCfg, log *slog.Logger) *TCP {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	return &TCP{
		cfg:     cfg,
		log:     log,
		pending: make(map[uint64]chan tcpFrame),
	}
}

func (t *TCP) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.ctx != nil {
		t.mu.Unlock()
		return nil
	}
	t.ctx, t.cancel = context.WithCancel(context.Background())
	t.mu.Unlock()

	if t.cfg.Listen != "" {
		config := net.ListenConfig{}
		listener, err := config.Listen(ctx, "tcp", t.cfg.Listen)
		if err != nil {
			t.cancel()
			return err
		}
		t.mu.Lock()
		t.listener = listener
		t.mu.Unlock()
		t.log.Info("listening on", "addr", listener.Addr())
		t.wg.Go(func() {
			t.acceptLoop(listener)
		})
		return nil
	}

	conn, err := t.dial(ctx)
	if err != nil {
		t.cancel()
		return err
	}
	t.attach(conn)
	return nil
}

// Addr returns the listening address, if any
func (t *TCP) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

func (t *TCP) dial(ctx context.Context) (net.Conn, error) {
	dialer := net.Dialer{}
	for {
		conn, err := dialer.DialContext(ctx, "tcp", t.cfg.Connect)
		if err == nil {
			return conn, nil
		}
		t.log.Debug("dial failed, retrying", "addr", t.cfg.Connect, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.ctx.Done():
			return nil, t.ctx.Err()
		case <-time.After(t.cfg.RetryDelay):
		}
	}
}

func (t *TCP) acceptLoop(listener net.Listener) {
	for t.ctx.Err() == nil {
		conn, err := listener.Accept()
		if err != nil {
			if t.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			t.log.Warn("failed to accept connection", "err", err)
			continue
		}
		t.attach(conn)
	}
}

// attach replaces the active connection and starts serving it
func (t *TCP) attach(conn net.Conn) {
	t.mu.Lock()
	old := t.conn
	t.conn = conn
	t.mu.Unlock()
	if old != nil {
		old.Close()
	}
	t.wg.Go(func() {
		t.serve(conn)
	})
}

func (t *TCP) serve(conn net.Conn) {
	defer t.detach(conn)
	for {
		f, err := readFrame(conn)
		if err != nil {
			if t.ctx.Err() == nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				t.log.Warn("connection read failed", "err", err)
			}
			return
		}
		switch f.kind {
		case tcpRequest:
			t.wg.Go(func() {
				t.handleRequest(conn, f)
			})
		case tcpResponse, tcpError:
			t.mu.Lock()
			ch, ok := t.pending[f.id]
			delete(t.pending, f.id)
			t.mu.Unlock()
			if ok {
				ch <- f
			}
		default:
			t.log.Warn("received frame of unknown kind", "kind", f.kind)
		}
	}
}

func (t *TCP) handleRequest(conn net.Conn, f tcpFrame) {
	res, err := t.handle(t.ctx, f.payload)
	out := tcpFrame{id: f.id, kind: tcpResponse, payload: res}
	if err != nil {
		out = tcpFrame{id: f.id, kind: tcpError, payload: []byte(err.Error())}
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := writeFrame(conn, out); err != nil {
		t.log.Debug("failed to write response", "err", err)
	}
}

// detach fails in-flight requests and, when dialing, reconnects
func (t *TCP) detach(conn net.Conn) {
	conn.Close()
	t.mu.Lock()
	if t.conn == conn {
		t.conn = nil
		for id, ch := range t.pending {
			ch <- tcpFrame{id: id, kind: tcpError, payload: []byte("connection closed")}
			delete(t.pending, id)
		}
	}
	t.mu.Unlock()

	if t.cfg.Connect != "" && t.ctx.Err() == nil {
		t.wg.Go(func() {
			conn, err := t.dial(t.ctx)
			if err != nil {
				return
			}
			t.log.Info("reconnected", "addr", t.cfg.Connect)
			t.attach(conn)
		})
	}
}

func (t *TCP) Disconnect() error {
	t.mu.Lock()
	if t.ctx == nil {
		t.mu.Unlock()
		return nil
	}
	t.cancel()
	var errs []error
	if t.listener != nil {
		errs = append(errs, t.listener.Close())
	}
	if t.conn != nil {
		errs = append(errs, t.conn.Close())
	}
	t.mu.Unlock()
	t.wg.Wait()

	t.mu.Lock()
	t.ctx = nil
	t.listener = nil
	t.mu.Unlock()
	return errors.Join(errs...)
}

func (t *TCP) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

func (t *TCP) SendData(ctx context.Context, data []byte) ([]byte, error) {
	id := t.nextId.Add(1)
	ch := make(chan tcpFrame, 1)

	t.mu.Lock()
	conn := t.conn
	if conn == nil {
		t.mu.Unlock()
		return nil, ErrNotConnected
	}
	t.pending[id] = ch
	t.mu.Unlock()

	t.writeMu.Lock()
	err := writeFrame(conn, tcpFrame{id: id, kind: tcpRequest, payload: data})
	t.writeMu.Unlock()
	if err != nil {
		t.forget(id)
		return nil, err
	}

	select {
	case f := <-ch:
		if f.kind == tcpError {
			return nil, errors.New(string(f.payload))
		}
		return f.payload, nil
	case <-ctx.Done():
		t.forget(id)
		return nil, ctx.Err()
	}
}

func (t *TCP) forget(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, id)
}

package plugin

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/encodeous/strand/protocol"
)

func init() {
	Register("mock", func(opts Options) (Plugin, error) {
		return NewMock(), nil
	})
}

// Mock is an in-memory plugin with no counterparty. Outgoing data is recorded and answered by SendDataFunc,
// incoming data is injected with HandleData.
type Mock struct {
	handlerSlot
	connected atomic.Bool

	mu           sync.Mutex
	sendDataFunc DataHandler
	sent         [][]byte
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Connect(ctx context.Context) error {
	m.connected.Store(true)
	return nil
}

func (m *Mock) Disconnect() error {
	m.connected.Store(false)
	return nil
}

func (m *Mock) IsConnected() bool {
	return m.connected.Load()
}

// SetSendDataFunc overrides how outgoing data is answered
func (m *Mock) SetSendDataFunc(fun DataHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendDataFunc = fun
}

func (m *Mock) SendData(ctx context.Context, data []byte) ([]byte, error) {
	m.mu.Lock()
	m.sent = append(m.sent, data)
	fun := m.sendDataFunc
	m.mu.Unlock()
	if fun != nil {
		return fun(ctx, data)
	}
	return defaultMockResponse(data)
}

// Sent returns a copy of everything passed to SendData
func (m *Mock) Sent() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.sent...)
}

// HandleData delivers data as if it was sent by the counterparty
func (m *Mock) HandleData(ctx context.Context, data []byte) ([]byte, error) {
	return m.handle(ctx, data)
}

// defaultMockResponse acknowledges route protocol messages and rejects payments
func defaultMockResponse(data []byte) ([]byte, error) {
	msg, err := protocol.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	switch msg.(type) {
	case *protocol.Prepare:
		return protocol.Marshal(&protocol.Reject{
			Code:    protocol.CodeUnreachable,
			Message: "mock plugin has no counterparty",
		})
	default:
		return protocol.Marshal(&protocol.RouteUpdateResponse{})
	}
}

package tele

import (
	"context"
	"fmt"
	"sync"

	"github.com/temoto/vender-kiosk/log2"
)

// Tele transport contract:
// - Init fails only with invalid config, ignores network errors
// - SendOrder returns true only when receiver acknowledged payload within timeout
// - application may start without network available
type Transporter interface {
	Init(ctx context.Context, log *log2.Log, config Config) error
	SendOrder(payload []byte) bool
	Close()
}

func TopicOrder(vmid int) string   { return fmt.Sprintf("vm%d/w/order", vmid) }
func TopicConnect(vmid int) string { return fmt.Sprintf("vm%d/c", vmid) }

type Noop struct{}

var _ Transporter = Noop{} // compile-time interface test

func (Noop) Init(context.Context, *log2.Log, Config) error { return nil }
func (Noop) SendOrder([]byte) bool                         { return true }
func (Noop) Close()                                        {}

// MockTransport records delivered payloads.
// Fail decides outcome of each delivery attempt, nil means success.
type MockTransport struct {
	sync.Mutex
	Fail     func(attempt int, payload []byte) bool
	Ch       chan []byte
	attempts int
	closed   bool
}

var _ Transporter = &MockTransport{}

func NewMockTransport(buffer int) *MockTransport {
	return &MockTransport{Ch: make(chan []byte, buffer)}
}

func (m *MockTransport) Init(context.Context, *log2.Log, Config) error { return nil }

func (m *MockTransport) SendOrder(payload []byte) bool {
	m.Lock()
	m.attempts++
	attempt := m.attempts
	fail := m.closed || (m.Fail != nil && m.Fail(attempt, payload))
	m.Unlock()
	if fail {
		return false
	}
	m.Ch <- append([]byte(nil), payload...)
	return true
}

func (m *MockTransport) Close() {
	m.Lock()
	m.closed = true
	m.Unlock()
}

func (m *MockTransport) Attempts() int {
	m.Lock()
	defer m.Unlock()
	return m.attempts
}

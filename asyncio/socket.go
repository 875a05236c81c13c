package asyncio

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/utkarsh5026/taskbench/suspend"
)

// ErrChannelClosed is reported by a channel used after Close.
var ErrChannelClosed = errors.New("asyncio: channel closed")

// SocketChannel is a TCP socket whose connect completes asynchronously.
type SocketChannel struct {
	exec   Executor
	dialer *net.Dialer

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

// NewSocketChannel creates an unconnected socket. A nil dialer uses the
// zero net.Dialer.
func NewSocketChannel(exec Executor, dialer *net.Dialer) *SocketChannel {
	if dialer == nil {
		dialer = &net.Dialer{}
	}
	return &SocketChannel{exec: exec, dialer: dialer}
}

// Connect dials addr in the background and reports the outcome to h on the
// executor.
func (s *SocketChannel) Connect(addr string, h suspend.CompletionHandler[struct{}]) {
	go func() {
		conn, err := s.dialer.DialContext(context.Background(), "tcp", addr)
		if err == nil {
			err = s.attach(conn)
		}
		deliver(s.exec, func() {
			if err != nil {
				h.Failed(err)
				return
			}
			h.Completed(struct{}{})
		}, func(serr error) {
			_ = s.Close()
			h.Failed(serr)
		})
	}()
}

func (s *SocketChannel) attach(conn net.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		_ = conn.Close()
		return ErrChannelClosed
	}
	s.conn = conn
	return nil
}

// Conn returns the connection once Connect has completed, or nil.
func (s *SocketChannel) Conn() net.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// Close closes the connection, including one still being dialed.
func (s *SocketChannel) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// deliver runs fn on exec. If exec refuses the job the failure is reported
// inline through onRefused so that no operation is left without an outcome.
func deliver(exec Executor, fn func(), onRefused func(error)) {
	err := exec.Submit(func(context.Context) { fn() })
	if err != nil {
		onRefused(fmt.Errorf("asyncio: deliver completion: %w", err))
	}
}

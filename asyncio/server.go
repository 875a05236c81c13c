package asyncio

import (
	"net/http"
	"sync/atomic"
	"time"
)

// DefaultResponseBody is what the target server answers with.
const DefaultResponseBody = "Hello, World!\n"

// TargetServer is a minimal HTTP handler standing in for the benchmark
// target: it answers every request with a fixed body after an optional
// delay.
type TargetServer struct {
	body  []byte
	delay time.Duration
	hits  atomic.Int64
}

// TargetOption configures a TargetServer.
type TargetOption func(*TargetServer)

// WithBody sets the response body.
func WithBody(body string) TargetOption {
	return func(s *TargetServer) {
		s.body = []byte(body)
	}
}

// WithDelay makes every response wait d before it is written.
func WithDelay(d time.Duration) TargetOption {
	return func(s *TargetServer) {
		if d > 0 {
			s.delay = d
		}
	}
}

// NewTargetServer creates the handler.
func NewTargetServer(opts ...TargetOption) *TargetServer {
	s := &TargetServer{body: []byte(DefaultResponseBody)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TargetServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.hits.Add(1)

	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(s.body)
}

// Hits returns the number of requests served.
func (s *TargetServer) Hits() int64 {
	return s.hits.Load()
}

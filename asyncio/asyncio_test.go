package asyncio

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/utkarsh5026/taskbench/dispatch"
	"github.com/utkarsh5026/taskbench/suspend"
)

func startExecutor(t *testing.T, exec *dispatch.Executor) *dispatch.Executor {
	t.Helper()
	if err := exec.Start(context.Background()); err != nil {
		t.Fatalf("start executor: %v", err)
	}
	t.Cleanup(func() { _ = exec.Shutdown(5 * time.Second) })
	return exec
}

// refusingExecutor rejects every job.
type refusingExecutor struct{}

func (refusingExecutor) Submit(dispatch.Job) error { return dispatch.ErrShutdown }

// recordingHandler captures the single outcome of an operation.
type recordingHandler[V any] struct {
	done  chan struct{}
	once  sync.Once
	value V
	err   error
}

func newRecordingHandler[V any]() *recordingHandler[V] {
	return &recordingHandler[V]{done: make(chan struct{})}
}

func (h *recordingHandler[V]) Completed(v V) {
	h.once.Do(func() { h.value = v; close(h.done) })
}

func (h *recordingHandler[V]) Failed(err error) {
	h.once.Do(func() { h.err = err; close(h.done) })
}

func (h *recordingHandler[V]) wait(t *testing.T) (V, error) {
	t.Helper()
	select {
	case <-h.done:
		return h.value, h.err
	case <-time.After(5 * time.Second):
		t.Fatal("no completion delivered")
		var zero V
		return zero, nil
	}
}

func TestSocketChannel_Connect(t *testing.T) {
	exec := startExecutor(t, dispatch.NewSingleThread())

	t.Run("success", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		defer ln.Close()

		sock := NewSocketChannel(exec, nil)
		defer sock.Close()

		h := newRecordingHandler[struct{}]()
		sock.Connect(ln.Addr().String(), h)
		if _, err := h.wait(t); err != nil {
			t.Fatalf("connect: %v", err)
		}
		if sock.Conn() == nil {
			t.Error("expected a connection after completion")
		}
	})

	t.Run("refused", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		addr := ln.Addr().String()
		ln.Close()

		sock := NewSocketChannel(exec, nil)
		h := newRecordingHandler[struct{}]()
		sock.Connect(addr, h)
		if _, err := h.wait(t); err == nil {
			t.Error("expected connect to a closed port to fail")
		}
		if sock.Conn() != nil {
			t.Error("expected no connection after failure")
		}
	})

	t.Run("executor refuses delivery", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		defer ln.Close()

		sock := NewSocketChannel(refusingExecutor{}, nil)
		h := newRecordingHandler[struct{}]()
		sock.Connect(ln.Addr().String(), h)
		if _, err := h.wait(t); !errors.Is(err, dispatch.ErrShutdown) {
			t.Errorf("expected ErrShutdown, got %v", err)
		}
	})
}

func TestSocketChannel_ThroughSuspend(t *testing.T) {
	exec := startExecutor(t, dispatch.NewSingleThread())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	sock := NewSocketChannel(exec, nil)
	defer sock.Close()

	got, err := suspend.Connect(context.Background(), sock, ln.Addr().String(), "attachment")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if got != "attachment" {
		t.Errorf("expected attachment back, got %q", got)
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileChannel_Read(t *testing.T) {
	pool := startExecutor(t, dispatch.NewGeneralPool(dispatch.WithWorkerCount(2)))
	path := writeFile(t, "0123456789")

	tests := []struct {
		name   string
		bufLen int
		off    int64
		want   string
	}{
		{name: "buffer larger than file", bufLen: 64, off: 0, want: "0123456789"},
		{name: "buffer smaller than file", bufLen: 4, off: 0, want: "0123"},
		{name: "from offset", bufLen: 64, off: 6, want: "6789"},
		{name: "past the end", bufLen: 8, off: 100, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc, err := OpenFile(pool, path)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer fc.Close()

			buf := make([]byte, tt.bufLen)
			h := newRecordingHandler[int]()
			fc.Read(buf, tt.off, h)

			n, err := h.wait(t)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if got := string(buf[:n]); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFileChannel_Errors(t *testing.T) {
	pool := startExecutor(t, dispatch.NewGeneralPool(dispatch.WithWorkerCount(1)))

	t.Run("missing file", func(t *testing.T) {
		_, err := OpenFile(pool, filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected ErrNotExist, got %v", err)
		}
	})

	t.Run("read after close", func(t *testing.T) {
		fc, err := OpenFile(pool, writeFile(t, "abc"))
		if err != nil {
			t.Fatal(err)
		}
		if err := fc.Close(); err != nil {
			t.Fatal(err)
		}
		if err := fc.Close(); err != nil {
			t.Errorf("second close: %v", err)
		}

		h := newRecordingHandler[int]()
		fc.Read(make([]byte, 4), 0, h)
		if _, err := h.wait(t); !errors.Is(err, ErrChannelClosed) {
			t.Errorf("expected ErrChannelClosed, got %v", err)
		}
	})

	t.Run("pool refuses", func(t *testing.T) {
		fc, err := OpenFile(refusingExecutor{}, writeFile(t, "abc"))
		if err != nil {
			t.Fatal(err)
		}
		defer fc.Close()

		h := newRecordingHandler[int]()
		fc.Read(make([]byte, 4), 0, h)
		if _, err := h.wait(t); !errors.Is(err, dispatch.ErrShutdown) {
			t.Errorf("expected ErrShutdown, got %v", err)
		}
	})
}

func TestClient_Send(t *testing.T) {
	exec := startExecutor(t, dispatch.NewSingleThread())
	target := NewTargetServer()
	srv := httptest.NewServer(target)
	defer srv.Close()

	client := NewClient(exec)
	defer client.CloseIdleConnections()

	resp, err := client.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Body != DefaultResponseBody {
		t.Errorf("unexpected body %q", resp.Body)
	}
	if target.Hits() != 1 {
		t.Errorf("expected 1 hit, got %d", target.Hits())
	}
}

func TestClient_SendAsyncConcurrent(t *testing.T) {
	exec := startExecutor(t, dispatch.NewSingleThread())
	srv := httptest.NewServer(NewTargetServer(WithBody("pong")))
	defer srv.Close()

	client := NewClient(exec)
	defer client.CloseIdleConnections()

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
			resp, err := client.SendAsync(context.Background(), req).Get()
			if err == nil && resp.Body != "pong" {
				err = errors.New("unexpected body " + resp.Body)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Error(err)
		}
	}
}

func TestClient_StatusError(t *testing.T) {
	exec := startExecutor(t, dispatch.NewSingleThread())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(exec)
	defer client.CloseIdleConnections()

	_, err := client.Get(context.Background(), srv.URL)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", se.StatusCode)
	}
	if !strings.Contains(se.Body, "nope") {
		t.Errorf("expected body to be kept, got %q", se.Body)
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	exec := startExecutor(t, dispatch.NewSingleThread())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	url := "http://" + ln.Addr().String() + "/"
	ln.Close()

	client := NewClient(exec, WithTimeout(5*time.Second))
	if _, err := client.Get(context.Background(), url); err == nil {
		t.Error("expected request to a closed port to fail")
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	exec := startExecutor(t, dispatch.NewSingleThread())
	srv := httptest.NewServer(NewTargetServer(WithDelay(time.Second)))
	defer srv.Close()

	client := NewClient(exec)
	defer client.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := client.Get(ctx, srv.URL); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

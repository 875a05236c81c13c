package asyncio

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/utkarsh5026/taskbench/internal/types"
	"github.com/utkarsh5026/taskbench/suspend"
)

const (
	defaultDialTimeout  = 10 * time.Second
	defaultIdlePerHost  = 4096
	defaultIdleConnTime = 30 * time.Second
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Proto      string
	Body       string
}

// StatusError is the failure reported for a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("asyncio: unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDialer replaces the dialer used for new connections.
func WithDialer(d *net.Dialer) ClientOption {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}

// WithTimeout bounds each request, including reading the body.
// Zero means no limit.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithMaxIdleConnsPerHost sets how many keep-alive connections are kept
// per host between requests.
func WithMaxIdleConnsPerHost(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.idlePerHost = n
		}
	}
}

// Client is an HTTP/1.1 client bound to an executor: new connections are
// opened through an asynchronous SocketChannel and every response is
// delivered on the executor.
type Client struct {
	exec        Executor
	dialer      *net.Dialer
	timeout     time.Duration
	idlePerHost int
	http        *http.Client
	transport   *http.Transport
}

// NewClient builds a client whose completions run on exec.
func NewClient(exec Executor, opts ...ClientOption) *Client {
	c := &Client{
		exec:        exec,
		dialer:      &net.Dialer{Timeout: defaultDialTimeout, KeepAlive: 30 * time.Second},
		idlePerHost: defaultIdlePerHost,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.transport = &http.Transport{
		DialContext:         c.dialContext,
		MaxIdleConns:        c.idlePerHost,
		MaxIdleConnsPerHost: c.idlePerHost,
		IdleConnTimeout:     defaultIdleConnTime,
		DisableCompression:  true,
	}
	c.http = &http.Client{Transport: c.transport, Timeout: c.timeout}
	return c
}

// dialContext opens a connection by suspending on an asynchronous connect.
func (c *Client) dialContext(ctx context.Context, _, addr string) (net.Conn, error) {
	sock := NewSocketChannel(c.exec, c.dialer)
	connected, err := suspend.Connect(ctx, sock, addr, sock)
	if err != nil {
		_ = sock.Close()
		return nil, err
	}
	return connected.Conn(), nil
}

// SendAsync issues req and returns a future that is resolved on the
// executor once the whole body has been read. Non-2xx responses resolve
// with a *StatusError.
func (c *Client) SendAsync(ctx context.Context, req *http.Request) *types.Future[*Response] {
	future := types.NewFuture[*Response]()

	go func() {
		resp, err := c.do(ctx, req)
		deliver(c.exec, func() {
			future.Resolve(types.NewResult(resp, err))
		}, func(serr error) {
			future.Fail(serr)
		})
	}()

	return future
}

// Send issues req and waits for its response.
func (c *Client) Send(ctx context.Context, req *http.Request) (*Response, error) {
	return c.SendAsync(ctx, req).GetWithContext(ctx)
}

// Get is Send with a GET request for url.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, req)
}

func (c *Client) do(ctx context.Context, req *http.Request) (*Response, error) {
	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("asyncio: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return &Response{StatusCode: resp.StatusCode, Proto: resp.Proto, Body: string(body)}, nil
}

// CloseIdleConnections closes keep-alive connections held by the client.
func (c *Client) CloseIdleConnections() {
	c.transport.CloseIdleConnections()
}

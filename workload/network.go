package workload

import (
	"context"
	"net/http"

	"github.com/utkarsh5026/taskbench/asyncio"
	"github.com/utkarsh5026/taskbench/sink"
)

// DefaultURL is the loopback endpoint network trials target.
const DefaultURL = "http://127.0.0.1:8080/"

// Network performs one GET per task through the shared client.
type Network struct {
	URL    string
	Client *asyncio.Client
	Sink   *sink.Blackhole
}

// NewNetwork builds a network workload; an empty url uses DefaultURL.
func NewNetwork(url string, client *asyncio.Client, bh *sink.Blackhole) *Network {
	if url == "" {
		url = DefaultURL
	}
	return &Network{URL: url, Client: client, Sink: bh}
}

func (n *Network) Kind() Kind   { return KindNetwork }
func (n *Network) Name() string { return "network" }

// Prepare builds the task's own request up front.
func (n *Network) Prepare(int) Unit {
	req, reqErr := http.NewRequest(http.MethodGet, n.URL, nil)

	return func(ctx context.Context) error {
		if reqErr != nil {
			return wrap(n.Name(), reqErr)
		}

		resp, err := n.Client.Send(ctx, req)
		if err != nil {
			return wrap(n.Name(), err)
		}
		n.Sink.Consume(resp.StatusCode)
		n.Sink.ConsumeString(resp.Body)
		return nil
	}
}

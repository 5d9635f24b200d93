// Package transport provides the one concrete postQuery collaborator this
// repository ships: an HTTP GraphQL client. The core itself is handed a
// Transport function and never depends on this package directly; it
// exists only so the CLI has something real to wire into loop.Run.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mesh-intelligence/graphmirror/internal/jsonval"
	"github.com/mesh-intelligence/graphmirror/internal/querylang"
	"github.com/ohler55/ojg/oj"
)

// HTTP posts a query/variables pair as a standard GraphQL-over-HTTP request
// and returns the response's "data" object.
type HTTP struct {
	Endpoint string
	Headers  map[string]string
	Client   *http.Client
}

// Post implements loop.Transport.
func (h HTTP) Post(ctx context.Context, req querylang.Request) (map[string]any, error) {
	encoded, err := jsonval.Encode(map[string]any{
		"query":     req.Body,
		"variables": req.Variables,
	})
	if err != nil {
		return nil, fmt.Errorf("transport: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, strings.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("transport: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range h.Headers {
		httpReq.Header.Set(k, v)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transport: posting query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transport: server returned %s: %s", resp.Status, body)
	}

	parsed, err := oj.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("transport: parsing response: %w", err)
	}
	envelope, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("transport: response is not a JSON object")
	}
	if errs, ok := envelope["errors"]; ok && errs != nil {
		return nil, fmt.Errorf("transport: server reported GraphQL errors: %v", errs)
	}
	data, ok := envelope["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("transport: response missing \"data\"")
	}
	return data, nil
}

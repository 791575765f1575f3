// Package transport provides the concrete sink transports behind the
// dispatch.Transport capability: HTTP POST, NATS JetStream publish, Redis
// pub/sub publish and a generic gRPC sink call.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTP posts the message as a JSON body to the target URL.
type HTTP struct {
	client *http.Client
}

// NewHTTP creates an HTTP transport. The client carries no timeout of its
// own; the per-attempt context deadline bounds each request.
func NewHTTP() *HTTP {
	return &HTTP{client: &http.Client{}}
}

func (t *HTTP) Send(ctx context.Context, target string, message map[string]interface{}, headers map[string]string) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request for %s: %w", target, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", target, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("post %s: unexpected status %s", target, resp.Status)
	}
	return nil
}

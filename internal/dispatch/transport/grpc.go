package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// sinkMethod is the generic delivery method every RPC sink is expected to
// expose. The request and response bodies are JSON, so sinks in any
// language can implement it without sharing generated stubs.
const sinkMethod = "/quiver.sink.v1.Sink/Deliver"

// RPC invokes the generic sink method on the gRPC server named by the
// action target. Client connections are dialed lazily and cached per
// target; action headers travel as outgoing metadata.
type RPC struct {
	mu    sync.Mutex
	conns map[string]*grpc.ClientConn
}

// NewRPC creates an RPC transport with no open connections.
func NewRPC() *RPC {
	return &RPC{conns: make(map[string]*grpc.ClientConn)}
}

func (t *RPC) Send(ctx context.Context, target string, message map[string]interface{}, headers map[string]string) error {
	conn, err := t.conn(target)
	if err != nil {
		return fmt.Errorf("dial %s: %w", target, err)
	}

	if len(headers) > 0 {
		ctx = metadata.NewOutgoingContext(ctx, metadata.New(headers))
	}

	req, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	var reply json.RawMessage
	if err := conn.Invoke(ctx, sinkMethod, json.RawMessage(req), &reply, grpc.ForceCodec(jsonCodec{})); err != nil {
		return fmt.Errorf("invoke %s on %s: %w", sinkMethod, target, err)
	}
	return nil
}

// Close tears down all cached client connections.
func (t *RPC) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var firstErr error
	for target, conn := range t.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(t.conns, target)
	}
	return firstErr
}

func (t *RPC) conn(target string) (*grpc.ClientConn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if conn, ok := t.conns[target]; ok {
		return conn, nil
	}
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	t.conns[target] = conn
	return conn, nil
}

// jsonCodec lets the generic sink call carry raw JSON instead of protobuf
// messages.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	if raw, ok := v.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return "json" }

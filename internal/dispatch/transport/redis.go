package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// PubSub publishes messages to a Redis channel named by the action target.
// Redis channels carry no header metadata, so action headers are ignored.
type PubSub struct {
	client redis.UniversalClient
}

// NewPubSub creates a PubSub transport on top of an existing Redis client.
// The client's lifecycle stays with the caller.
func NewPubSub(client redis.UniversalClient) *PubSub {
	return &PubSub{client: client}
}

func (t *PubSub) Send(ctx context.Context, target string, message map[string]interface{}, _ map[string]string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if err := t.client.Publish(ctx, target, data).Err(); err != nil {
		return fmt.Errorf("publish to channel %s: %w", target, err)
	}
	return nil
}

package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Queue publishes messages to NATS JetStream. The action target names the
// subject.
type Queue struct {
	js jetstream.JetStream
}

// NewQueue creates a Queue transport on top of an existing NATS connection.
// The connection's lifecycle stays with the caller.
func NewQueue(nc *nats.Conn) (*Queue, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, err
	}
	return &Queue{js: js}, nil
}

func (t *Queue) Send(ctx context.Context, target string, message map[string]interface{}, headers map[string]string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	msg := &nats.Msg{
		Subject: subjectFor(target),
		Data:    data,
	}
	if len(headers) > 0 {
		msg.Header = nats.Header{}
		for k, v := range headers {
			msg.Header.Set(k, v)
		}
	}

	if _, err := t.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", target, err)
	}
	return nil
}

// subjectFor maps a queue target to a NATS subject. Spaces are invalid in
// subjects, so they are folded to underscores.
func subjectFor(target string) string {
	return strings.ReplaceAll(target, " ", "_")
}

// Package bus wraps a NATS JetStream connection for publishing domain
// events. A nil *Bus is valid and drops every publish, so event delivery
// stays optional.
package bus

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
)

// Subjects published by the service.
const (
	UploadProcessedSubject    = "analytics.uploads.processed"
	ChartCreatedSubject       = "analytics.charts.created"
	InvitationIssuedSubject   = "analytics.invitations.issued"
	InvitationAcceptedSubject = "analytics.invitations.accepted"
)

// Bus publishes JSON events to JetStream.
type Bus struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// Connect creates a Bus against the provided NATS endpoint.
func Connect(url string, opts ...nats.Option) (*Bus, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	return &Bus{conn: nc, js: js}, nil
}

// Close drains the underlying NATS connection.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// Publish encodes payload as JSON and publishes it. Nil receivers and
// marshal failures are silently dropped; events are advisory.
func (b *Bus) Publish(ctx context.Context, subject string, payload map[string]any) {
	if b == nil || subject == "" {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_, _ = b.js.Publish(subject, data, nats.Context(ctx))
}

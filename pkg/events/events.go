package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// ContactAccepted is emitted once an enquiry has been delivered to the operator inbox.
type ContactAccepted struct {
	ReferenceID string    `json:"reference_id"`
	Service     string    `json:"service"`
	Locale      string    `json:"locale,omitempty"`
	Platform    string    `json:"social_platform,omitempty"`
	AcceptedAt  time.Time `json:"accepted_at"`
}

// Conn is the subset of *nats.Conn used for publishing.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Connect dials the NATS server at url.
func Connect(url, name string) (*nats.Conn, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("nats url must not be empty")
	}
	conn, err := nats.Connect(url, nats.Name(name), nats.MaxReconnects(-1), nats.ReconnectWait(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to nats: %w", err)
	}
	return conn, nil
}

// NATSPublisher publishes site events as JSON on a fixed subject.
type NATSPublisher struct {
	conn    Conn
	subject string
}

// NewNATSPublisher constructs a publisher for subject.
func NewNATSPublisher(conn Conn, subject string) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subject}
}

// PublishContactAccepted publishes evt.
func (p *NATSPublisher) PublishContactAccepted(ctx context.Context, evt ContactAccepted) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode contact event: %w", err)
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publish contact event: %w", err)
	}
	return nil
}

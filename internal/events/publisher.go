// Package events publishes build lifecycle events to NATS JetStream.
// Publishing is opt-in: without a configured NATS URL nothing connects.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/docbuild/internal/config"
	"git.home.luguber.info/inful/docbuild/internal/sphinx"
)

// Event types emitted on the configured subject.
const (
	TypeBuildStarted   = "build.started"
	TypeBuildCompleted = "build.completed"
	TypeBuildFailed    = "build.failed"
)

// BuildEvent is the published payload.
type BuildEvent struct {
	Type      string        `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Report    sphinx.Report `json:"report"`
}

// Publisher manages the NATS connection and JetStream context.
type Publisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewPublisher connects to NATS and ensures the build event stream exists.
func NewPublisher(cfg *config.EventsConfig) (*Publisher, error) {
	if cfg == nil || cfg.NATSURL == "" {
		return nil, fmt.Errorf("event publishing is not configured")
	}

	conn, err := nats.Connect(cfg.NATSURL, nats.Name("docbuild"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	p := &Publisher{conn: conn, js: js, subject: cfg.Subject}
	if err := p.ensureStream(cfg.Stream); err != nil {
		conn.Close()
		return nil, err
	}

	slog.Info("NATS build event publisher initialized", "url", cfg.NATSURL, "subject", cfg.Subject)
	return p, nil
}

func (p *Publisher) ensureStream(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := p.js.Stream(ctx, name); err == nil {
		return nil
	}

	_, err := p.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        name,
		Description: "docbuild build lifecycle events",
		Subjects:    []string{p.subject},
		MaxAge:      30 * 24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("create event stream: %w", err)
	}
	return nil
}

// Publish emits one build event. Failures are returned but callers treat
// them as non-fatal; a broker outage must never fail a build.
func (p *Publisher) Publish(ctx context.Context, eventType string, report sphinx.Report) error {
	event := BuildEvent{Type: eventType, Timestamp: time.Now().UTC(), Report: report}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal build event: %w", err)
	}
	if _, err := p.js.Publish(ctx, p.subject, data); err != nil {
		return fmt.Errorf("publish build event: %w", err)
	}
	return nil
}

// TypeForReport maps a report's status to the terminal event type.
func TypeForReport(report sphinx.Report) string {
	if report.Status == sphinx.StatusSucceeded {
		return TypeBuildCompleted
	}
	return TypeBuildFailed
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

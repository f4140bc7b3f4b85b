package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ai-synthesis-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName    = "EVENTS"
	subjectPrefix = "events."

	defaultMaxAge = 7 * 24 * time.Hour

	// HeaderEventType carries events.Event.EventType on every message
	HeaderEventType = "Event-Type"
)

// PublisherConfig describes the JetStream stream synthesis events land in
type PublisherConfig struct {
	URL string
	// MaxAge bounds how long events are retained, 0 means seven days
	MaxAge time.Duration
	// DuplicateWindow is the JetStream dedupe window for message IDs
	DuplicateWindow time.Duration
}

// Publisher sends events to the EVENTS stream.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("ai-synthesis-publisher"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// observational events only, so a limits-based stream is enough
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       streamName,
		Subjects:   []string{subjectPrefix + ">"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     maxAge,
		Duplicates: cfg.DuplicateWindow,
	})
	if err != nil {
		// the server may still be starting; publishing retries on its own
		log.Printf("Warn: Failed to ensure stream '%s': %v", streamName, err)
	}

	return &Publisher{nc: nc, js: js}, nil
}

// Subject returns the subject an event is published on
func Subject(event events.Event) string {
	return subjectPrefix + event.EventType()
}

// Publish writes the event payload as JSON. Events carrying an entity_id are
// deduplicated by JetStream on that id.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	msg := nats.NewMsg(Subject(event))
	msg.Data = data
	msg.Header.Set(HeaderEventType, event.EventType())

	var opts []jetstream.PublishOpt
	if id, ok := event.Payload()["entity_id"].(string); ok && id != "" {
		opts = append(opts, jetstream.WithMsgID(event.EventType()+":"+id))
	}

	if _, err := p.js.PublishMsg(ctx, msg, opts...); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", msg.Subject, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// IsConnected reports whether the underlying connection is currently up
func (p *Publisher) IsConnected() bool {
	return p.nc != nil && p.nc.IsConnected()
}

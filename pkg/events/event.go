package events

import (
	"time"

	"ai-synthesis-be/pkg/ai/synthesis"
)

const TypeSynthesisCompleted = "SYNTHESIS_COMPLETED"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SYNTHESIS_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used for everything published by this service
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// SynthesisCompleted is the serializable form of a finished synthesis.
// It travels through the in-process queue, the WebSocket stream and NATS.
type SynthesisCompleted struct {
	SynthesisID          string    `json:"synthesis_id"`
	Category             string    `json:"category"`
	IsFallback           bool      `json:"is_fallback"`
	ContributingChannels []string  `json:"contributing_channels"`
	FailedChannels       []string  `json:"failed_channels"`
	SynthesisQuality     float64   `json:"synthesis_quality"`
	Coherence            float64   `json:"coherence"`
	Harmony              float64   `json:"harmony"`
	ElapsedMs            int64     `json:"elapsed_ms"`
	CompletedAt          time.Time `json:"completed_at"`
}

// FromSynthesisEvent converts an engine completion event
func FromSynthesisEvent(evt synthesis.Event) SynthesisCompleted {
	return SynthesisCompleted{
		SynthesisID:          evt.SynthesisID,
		Category:             string(evt.Category),
		IsFallback:           evt.IsFallback,
		ContributingChannels: channelNames(evt.ContributingChannels),
		FailedChannels:       channelNames(evt.FailedChannels),
		SynthesisQuality:     evt.Metrics.SynthesisQuality,
		Coherence:            evt.Metrics.Coherence,
		Harmony:              evt.Metrics.Harmony,
		ElapsedMs:            evt.Elapsed.Milliseconds(),
		CompletedAt:          evt.CompletedAt,
	}
}

// NewSynthesisCompleted wraps the data into a bus event
func NewSynthesisCompleted(data SynthesisCompleted) BaseEvent {
	return BaseEvent{
		Type: TypeSynthesisCompleted,
		Data: map[string]interface{}{
			"synthesis_id":          data.SynthesisID,
			"category":              data.Category,
			"elapsed_ms":            data.ElapsedMs,
			"is_fallback":           data.IsFallback,
			"contributing_channels": data.ContributingChannels,
			"failed_channels":       data.FailedChannels,
			"synthesis_quality":     data.SynthesisQuality,
			"coherence":             data.Coherence,
			"harmony":               data.Harmony,
			"entity_type":           "synthesis",
			"entity_id":             data.SynthesisID,
			"occurred_at":           data.CompletedAt,
		},
		OccurredAt: data.CompletedAt,
	}
}

func channelNames(chs []synthesis.Channel) []string {
	out := make([]string, len(chs))
	for i, ch := range chs {
		out[i] = string(ch)
	}
	return out
}

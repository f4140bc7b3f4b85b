package synthesis

import (
	"time"
)

// Channel is one backend "voice" contributing a partial response
type Channel string

const (
	ChannelEmotional    Channel = "emotional"
	ChannelAnalytical   Channel = "analytical"
	ChannelTranscendent Channel = "transcendent"
)

// AllChannels is the fixed iteration order used everywhere output must be deterministic
var AllChannels = []Channel{ChannelEmotional, ChannelAnalytical, ChannelTranscendent}

// Label returns the human readable section heading for the channel
func (c Channel) Label() string {
	switch c {
	case ChannelEmotional:
		return "Emotional perspective"
	case ChannelAnalytical:
		return "Analytical perspective"
	case ChannelTranscendent:
		return "Reflective perspective"
	default:
		return string(c) + " perspective"
	}
}

// IsValid reports whether c is one of the known channels
func (c Channel) IsValid() bool {
	for _, known := range AllChannels {
		if c == known {
			return true
		}
	}
	return false
}

// ContextCategory is the classification bucket used to pick base weights
type ContextCategory string

const (
	CategoryEmotional     ContextCategory = "emotional_query"
	CategoryPhilosophical ContextCategory = "philosophical_query"
	CategoryAnalytical    ContextCategory = "analytical_query"
	CategoryCreative      ContextCategory = "creative_query"
	CategoryBalanced      ContextCategory = "balanced"
)

// AllCategories lists every category that must have a base weight row
var AllCategories = []ContextCategory{
	CategoryEmotional,
	CategoryPhilosophical,
	CategoryAnalytical,
	CategoryCreative,
	CategoryBalanced,
}

// Request is the incoming synthesis request. Treat as immutable once accepted.
type Request struct {
	Text       string
	AuxSignals map[string]float64
}

// ChannelResult is the per-channel outcome produced by the dispatcher
type ChannelResult struct {
	Channel      Channel  `json:"channel"`
	Content      string   `json:"content"`
	IsFallback   bool     `json:"is_fallback"`
	Quality      *float64 `json:"quality,omitempty"`
	ErrorKind    string   `json:"error_kind,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
	LatencyMs    int64    `json:"latency_ms"`
}

// WeightVector maps channels to non-negative weights summing to 1
type WeightVector map[Channel]float64

// Sum returns the total of all weights
func (w WeightVector) Sum() float64 {
	total := 0.0
	for _, ch := range AllChannels {
		total += w[ch]
	}
	return total
}

// QualityMetrics are the bounded [0,1] scores computed by the assessor
type QualityMetrics struct {
	SynthesisQuality float64 `json:"synthesis_quality" yaml:"synthesis_quality"`
	Coherence        float64 `json:"coherence" yaml:"coherence"`
	Harmony          float64 `json:"harmony" yaml:"harmony"`
}

// SynthesizedResponse is the final envelope returned to callers
type SynthesizedResponse struct {
	Content              string          `json:"content"`
	ContributingChannels []Channel       `json:"contributing_channels"`
	Weights              WeightVector    `json:"weights"`
	QualityMetrics       QualityMetrics  `json:"quality_metrics"`
	SynthesisID          string          `json:"synthesis_id"`
	CreatedAt            time.Time       `json:"created_at"`
	IsFallback           bool            `json:"is_fallback"`
	Category             ContextCategory `json:"category"`
	Results              []ChannelResult `json:"results"`
}

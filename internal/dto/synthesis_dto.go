package dto

import (
	"time"

	"ai-synthesis-be/pkg/events"
)

type SynthesizeRequest struct {
	Text       string             `json:"text" validate:"required,min=1,max=8000"`
	AuxSignals map[string]float64 `json:"aux_signals" validate:"omitempty,dive,keys,required,endkeys,gte=0,lte=1"`
}

type QualityMetricsDTO struct {
	SynthesisQuality float64 `json:"synthesis_quality"`
	Coherence        float64 `json:"coherence"`
	Harmony          float64 `json:"harmony"`
}

type ChannelResultDTO struct {
	Channel      string   `json:"channel"`
	Label        string   `json:"label"`
	Weight       float64  `json:"weight"`
	IsFallback   bool     `json:"is_fallback"`
	Quality      *float64 `json:"quality,omitempty"`
	ErrorKind    string   `json:"error_kind,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
	LatencyMs    int64    `json:"latency_ms"`
}

type SynthesisResponse struct {
	SynthesisId          string             `json:"synthesis_id"`
	Content              string             `json:"content"`
	Category             string             `json:"category"`
	ContributingChannels []string           `json:"contributing_channels"`
	Weights              map[string]float64 `json:"weights"`
	QualityMetrics       QualityMetricsDTO  `json:"quality_metrics"`
	IsFallback           bool               `json:"is_fallback"`
	Channels             []ChannelResultDTO `json:"channels"`
	CreatedAt            time.Time          `json:"created_at"`
}

type SynthesisStatsResponse struct {
	Total             int64            `json:"total"`
	Fallbacks         int64            `json:"fallbacks"`
	FallbackRate      float64          `json:"fallback_rate"`
	MeanQuality       float64          `json:"mean_synthesis_quality"`
	MeanCoherence     float64          `json:"mean_coherence"`
	MeanHarmony       float64          `json:"mean_harmony"`
	ByCategory        map[string]int64 `json:"by_category"`
	ChannelFailures   map[string]int64 `json:"channel_failures"`
	MeanLatencyMillis float64          `json:"mean_latency_ms"`
}

// SynthesisEventMessage is what WebSocket clients receive per completed synthesis
type SynthesisEventMessage struct {
	Type string                    `json:"type"`
	Data events.SynthesisCompleted `json:"data"`
}

// HealthResponse reports which parts of the service are usable right now.
// Status is "degraded" when an optional dependency or a channel backend is missing.
type HealthResponse struct {
	Status           string          `json:"status"`
	Channels         map[string]bool `json:"channels"`
	Redis            string          `json:"redis"`
	Nats             string          `json:"nats"`
	WebSocketClients int             `json:"websocket_clients"`
	Time             time.Time       `json:"time"`
}

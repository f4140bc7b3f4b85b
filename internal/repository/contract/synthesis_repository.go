package contract

import (
	"context"

	"ai-synthesis-be/internal/model"
	"ai-synthesis-be/pkg/ai/synthesis"
)

// SynthesisRepository stores recently produced syntheses
type SynthesisRepository interface {
	Save(resp *synthesis.SynthesizedResponse)
	Get(id string) (*synthesis.SynthesizedResponse, bool)
}

// StatsRepository aggregates completed syntheses across requests and instances
type StatsRepository interface {
	Record(ctx context.Context, rec *model.SynthesisRecord) error
	Get(ctx context.Context) (*model.SynthesisStats, error)
}

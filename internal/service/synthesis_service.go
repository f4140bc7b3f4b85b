package service

import (
	"context"
	"errors"
	"fmt"

	"ai-synthesis-be/internal/dto"
	"ai-synthesis-be/internal/mapper"
	"ai-synthesis-be/internal/repository/contract"
	"ai-synthesis-be/pkg/ai/synthesis"
)

var (
	ErrSynthesisNotFound = errors.New("synthesis not found")
	ErrStatsUnavailable  = errors.New("synthesis stats unavailable")
)

// Synthesizer is the engine entry point; *synthesis.Orchestrator satisfies it
type Synthesizer interface {
	Synthesize(ctx context.Context, req synthesis.Request) *synthesis.SynthesizedResponse
}

type ISynthesisService interface {
	Synthesize(ctx context.Context, req *dto.SynthesizeRequest) (*dto.SynthesisResponse, error)
	Show(ctx context.Context, id string) (*dto.SynthesisResponse, error)
	Stats(ctx context.Context) (*dto.SynthesisStatsResponse, error)
}

type synthesisService struct {
	engine    Synthesizer
	recent    contract.SynthesisRepository
	statsRepo contract.StatsRepository
	mapper    *mapper.SynthesisMapper
}

// NewSynthesisService wires the engine with its lookup cache. statsRepo may be nil.
func NewSynthesisService(
	engine Synthesizer,
	recent contract.SynthesisRepository,
	statsRepo contract.StatsRepository,
) ISynthesisService {
	return &synthesisService{
		engine:    engine,
		recent:    recent,
		statsRepo: statsRepo,
		mapper:    mapper.NewSynthesisMapper(),
	}
}

func (s *synthesisService) Synthesize(ctx context.Context, req *dto.SynthesizeRequest) (*dto.SynthesisResponse, error) {
	resp := s.engine.Synthesize(ctx, s.mapper.ToRequest(req))
	if resp == nil {
		return nil, errors.New("engine returned no response")
	}

	s.recent.Save(resp)
	return s.mapper.ToResponse(resp), nil
}

func (s *synthesisService) Show(ctx context.Context, id string) (*dto.SynthesisResponse, error) {
	resp, ok := s.recent.Get(id)
	if !ok {
		return nil, ErrSynthesisNotFound
	}
	return s.mapper.ToResponse(resp), nil
}

func (s *synthesisService) Stats(ctx context.Context) (*dto.SynthesisStatsResponse, error) {
	if s.statsRepo == nil {
		return nil, ErrStatsUnavailable
	}

	stats, err := s.statsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatsUnavailable, err)
	}
	return s.mapper.ToStatsResponse(stats), nil
}

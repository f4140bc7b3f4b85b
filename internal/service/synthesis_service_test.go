package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-synthesis-be/internal/dto"
	"ai-synthesis-be/internal/model"
	"ai-synthesis-be/internal/repository/memory"
	"ai-synthesis-be/pkg/ai/synthesis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	got  synthesis.Request
	resp *synthesis.SynthesizedResponse
}

func (f *fakeEngine) Synthesize(ctx context.Context, req synthesis.Request) *synthesis.SynthesizedResponse {
	f.got = req
	return f.resp
}

type fakeStatsRepository struct {
	recorded chan struct{}
	records  []*model.SynthesisRecord
	stats    *model.SynthesisStats
	err      error
}

func (f *fakeStatsRepository) Record(ctx context.Context, rec *model.SynthesisRecord) error {
	f.records = append(f.records, rec)
	if f.recorded != nil {
		f.recorded <- struct{}{}
	}
	return f.err
}

func (f *fakeStatsRepository) Get(ctx context.Context) (*model.SynthesisStats, error) {
	return f.stats, f.err
}

func sampleResponse() *synthesis.SynthesizedResponse {
	return &synthesis.SynthesizedResponse{
		Content:              "Together these views agree.",
		ContributingChannels: []synthesis.Channel{synthesis.ChannelEmotional, synthesis.ChannelAnalytical},
		Weights: synthesis.WeightVector{
			synthesis.ChannelEmotional:    0.5,
			synthesis.ChannelAnalytical:   0.3,
			synthesis.ChannelTranscendent: 0.2,
		},
		QualityMetrics: synthesis.QualityMetrics{SynthesisQuality: 0.8, Coherence: 0.7, Harmony: 0.9},
		SynthesisID:    "syn-42",
		CreatedAt:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Category:       synthesis.CategoryEmotional,
		Results: []synthesis.ChannelResult{
			{Channel: synthesis.ChannelEmotional, Content: "a"},
			{Channel: synthesis.ChannelAnalytical, Content: "b"},
			{Channel: synthesis.ChannelTranscendent, IsFallback: true, ErrorKind: "timeout"},
		},
	}
}

func TestSynthesisServiceSynthesizeAndShow(t *testing.T) {
	engine := &fakeEngine{resp: sampleResponse()}
	svc := NewSynthesisService(engine, memory.NewSynthesisRepository(time.Minute), nil)

	res, err := svc.Synthesize(context.Background(), &dto.SynthesizeRequest{
		Text:       "I feel stuck",
		AuxSignals: map[string]float64{"empathy": 0.9},
	})

	require.NoError(t, err)
	assert.Equal(t, "I feel stuck", engine.got.Text)
	assert.Equal(t, "syn-42", res.SynthesisId)
	assert.Equal(t, "emotional_query", res.Category)
	assert.Equal(t, []string{"emotional", "analytical"}, res.ContributingChannels)
	require.Len(t, res.Channels, 3)
	assert.Equal(t, "Reflective perspective", res.Channels[2].Label)
	assert.Equal(t, 0.2, res.Channels[2].Weight)
	assert.Equal(t, "timeout", res.Channels[2].ErrorKind)

	shown, err := svc.Show(context.Background(), "syn-42")
	require.NoError(t, err)
	assert.Equal(t, res, shown)

	_, err = svc.Show(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSynthesisNotFound)
}

func TestSynthesisServiceStats(t *testing.T) {
	t.Run("no stats repository", func(t *testing.T) {
		svc := NewSynthesisService(&fakeEngine{}, memory.NewSynthesisRepository(0), nil)

		_, err := svc.Stats(context.Background())

		assert.ErrorIs(t, err, ErrStatsUnavailable)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := &fakeStatsRepository{err: errors.New("connection refused")}
		svc := NewSynthesisService(&fakeEngine{}, memory.NewSynthesisRepository(0), repo)

		_, err := svc.Stats(context.Background())

		assert.ErrorIs(t, err, ErrStatsUnavailable)
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("means", func(t *testing.T) {
		repo := &fakeStatsRepository{stats: &model.SynthesisStats{
			Total:        4,
			Fallbacks:    1,
			QualitySum:   2.8,
			CoherenceSum: 2.0,
			HarmonySum:   3.2,
			LatencySumMs: 4000,
			ByCategory:   map[string]int64{"balanced": 4},
		}}
		svc := NewSynthesisService(&fakeEngine{}, memory.NewSynthesisRepository(0), repo)

		res, err := svc.Stats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(4), res.Total)
		assert.InDelta(t, 0.25, res.FallbackRate, 1e-9)
		assert.InDelta(t, 0.7, res.MeanQuality, 1e-9)
		assert.InDelta(t, 0.5, res.MeanCoherence, 1e-9)
		assert.InDelta(t, 0.8, res.MeanHarmony, 1e-9)
		assert.InDelta(t, 1000, res.MeanLatencyMillis, 1e-9)
		assert.NotNil(t, res.ChannelFailures)
	})
}

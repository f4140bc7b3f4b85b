package synthesis

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTuningDefaults(t *testing.T) {
	tuning, err := LoadTuning("")

	require.NoError(t, err)
	assert.Equal(t, 8*time.Second, tuning.DispatchTimeout)
	assert.Equal(t, 0.1, tuning.MinInclusionWeight)
	for _, cat := range AllCategories {
		assert.InDelta(t, 1.0, tuning.BaseWeights[cat].Sum(), rowTolerance, cat)
	}
}

func TestLoadTuningOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	content := `
dispatch_timeout: 2s
max_length: 1500
base_weights:
  creative_query:
    emotional: 0.5
    analytical: 0.1
    transcendent: 0.4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	tuning, err := LoadTuning(path)

	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, tuning.DispatchTimeout)
	assert.Equal(t, 1500, tuning.MaxLength)
	assert.Equal(t, 0.5, tuning.BaseWeights[CategoryCreative][ChannelEmotional])
	// rows that the file does not mention keep their defaults
	assert.Equal(t, 0.6, tuning.BaseWeights[CategoryAnalytical][ChannelAnalytical])
	assert.Equal(t, 200, tuning.MinLength)
}

func TestLoadTuningMissingFile(t *testing.T) {
	_, err := LoadTuning(filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadTuningRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("boost_factor: 0\n"), 0o600))

	_, err := LoadTuning(path)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "boost_factor", cfgErr.Field)
}

func TestLoadTuningRejectsInfiniteBoost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("boost_factor: .inf\n"), 0o600))

	_, err := LoadTuning(path)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "boost_factor", cfgErr.Field)
}

func TestTuningValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Tuning)
		field  string
	}{
		{
			name: "row does not sum to one",
			mutate: func(tu *Tuning) {
				tu.BaseWeights[CategoryAnalytical] = WeightVector{ChannelEmotional: 0.5, ChannelAnalytical: 0.5, ChannelTranscendent: 0.5}
			},
			field: "base_weights.analytical_query",
		},
		{
			name: "row misses a channel",
			mutate: func(tu *Tuning) {
				tu.BaseWeights[CategoryEmotional] = WeightVector{ChannelEmotional: 0.5, ChannelAnalytical: 0.5}
			},
			field: "base_weights.emotional_query",
		},
		{
			name:   "category row missing",
			mutate: func(tu *Tuning) { delete(tu.BaseWeights, CategoryBalanced) },
			field:  "base_weights",
		},
		{
			name: "negative weight",
			mutate: func(tu *Tuning) {
				tu.BaseWeights[CategoryCreative] = WeightVector{ChannelEmotional: -0.2, ChannelAnalytical: 0.6, ChannelTranscendent: 0.6}
			},
			field: "base_weights.creative_query",
		},
		{
			name:   "no keywords for a category",
			mutate: func(tu *Tuning) { tu.Keywords[CategoryCreative] = nil },
			field:  "keywords",
		},
		{
			name:   "boost factor zero",
			mutate: func(tu *Tuning) { tu.BoostFactor = 0 },
			field:  "boost_factor",
		},
		{
			name:   "min length above max length",
			mutate: func(tu *Tuning) { tu.MinLength = 3000 },
			field:  "min_length/max_length",
		},
		{
			name:   "zero dispatch timeout",
			mutate: func(tu *Tuning) { tu.DispatchTimeout = 0 },
			field:  "dispatch_timeout",
		},
		{
			name:   "fallback metric out of range",
			mutate: func(tu *Tuning) { tu.FallbackMetrics.Harmony = 1.5 },
			field:  "fallback_metrics.harmony",
		},
		{
			name:   "infinite boost factor",
			mutate: func(tu *Tuning) { tu.BoostFactor = math.Inf(1) },
			field:  "boost_factor",
		},
		{
			name:   "NaN boost threshold",
			mutate: func(tu *Tuning) { tu.BoostThreshold = math.NaN() },
			field:  "boost_threshold",
		},
		{
			name:   "NaN inclusion weight",
			mutate: func(tu *Tuning) { tu.MinInclusionWeight = math.NaN() },
			field:  "min_inclusion_weight",
		},
		{
			name:   "NaN fallback metric",
			mutate: func(tu *Tuning) { tu.FallbackMetrics.Coherence = math.NaN() },
			field:  "fallback_metrics.coherence",
		},
		{
			name:   "infinite scoring cap",
			mutate: func(tu *Tuning) { tu.Scoring.UnifyingCap = math.Inf(-1) },
			field:  "scoring.unifying_cap",
		},
		{
			name:   "infinite variance ceiling",
			mutate: func(tu *Tuning) { tu.Scoring.WeightVarianceCeiling = math.Inf(1) },
			field:  "scoring.weight_variance_ceiling",
		},
		{
			name: "infinite base weight",
			mutate: func(tu *Tuning) {
				tu.BaseWeights[CategoryEmotional] = WeightVector{ChannelEmotional: math.Inf(1), ChannelAnalytical: 0, ChannelTranscendent: 0}
			},
			field: "base_weights.emotional_query",
		},
		{
			name:   "empty fallback content",
			mutate: func(tu *Tuning) { tu.FallbackContent = "" },
			field:  "fallback_content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tuning := DefaultTuning()
			tt.mutate(tuning)

			err := tuning.Validate()

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

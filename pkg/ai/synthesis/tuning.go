package synthesis

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// rowTolerance is how far a configured base weight row may drift from 1.0
const rowTolerance = 1e-6

// Tuning holds every constant the engine uses. All of it is data so the algorithm can be
// exercised against varied tables.
type Tuning struct {
	BaseWeights map[ContextCategory]WeightVector `yaml:"base_weights"`
	Keywords    map[ContextCategory][]string     `yaml:"keywords"`

	// BoostSignals maps a channel to the aux signal that can boost it
	BoostSignals   map[Channel]string `yaml:"boost_signals"`
	BoostThreshold float64            `yaml:"boost_threshold"`
	BoostFactor    float64            `yaml:"boost_factor"`

	DispatchTimeout    time.Duration `yaml:"dispatch_timeout"`
	MinInclusionWeight float64       `yaml:"min_inclusion_weight"`
	MinLength          int           `yaml:"min_length"`
	MaxLength          int           `yaml:"max_length"`
	IntroMaxChars      int           `yaml:"intro_max_chars"`
	MinSectionChars    int           `yaml:"min_section_chars"`

	FallbackContent string         `yaml:"fallback_content"`
	FallbackMetrics QualityMetrics `yaml:"fallback_metrics"`

	Scoring ScoringTuning `yaml:"scoring"`
}

// ScoringTuning holds the assessor increments and vocabularies
type ScoringTuning struct {
	Base float64 `yaml:"base"`

	LengthBonus        float64 `yaml:"length_bonus"`
	CrossReferenceStep float64 `yaml:"cross_reference_step"`
	CrossReferenceCap  float64 `yaml:"cross_reference_cap"`
	SentenceBonus      float64 `yaml:"sentence_bonus"`
	MinSentences       int     `yaml:"min_sentences"`
	MinSentenceChars   int     `yaml:"min_sentence_chars"`
	SuccessBonus       float64 `yaml:"success_bonus"`

	TransitionCap     float64 `yaml:"transition_cap"`
	UnifyingCap       float64 `yaml:"unifying_cap"`
	MultiChannelBonus float64 `yaml:"multi_channel_bonus"`

	WeightBalanceCap       float64 `yaml:"weight_balance_cap"`
	WeightVarianceCeiling  float64 `yaml:"weight_variance_ceiling"`
	QualityBalanceCap      float64 `yaml:"quality_balance_cap"`
	QualityVarianceCeiling float64 `yaml:"quality_variance_ceiling"`
	UsageBonus             float64 `yaml:"usage_bonus"`

	CrossReferenceTerms []string `yaml:"cross_reference_terms"`
	TransitionTerms     []string `yaml:"transition_terms"`
	UnifyingTerms       []string `yaml:"unifying_terms"`
}

// DefaultTuning returns the stock tables and thresholds
func DefaultTuning() *Tuning {
	return &Tuning{
		BaseWeights: map[ContextCategory]WeightVector{
			CategoryEmotional:     {ChannelEmotional: 0.6, ChannelAnalytical: 0.2, ChannelTranscendent: 0.2},
			CategoryPhilosophical: {ChannelEmotional: 0.2, ChannelAnalytical: 0.2, ChannelTranscendent: 0.6},
			CategoryAnalytical:    {ChannelEmotional: 0.2, ChannelAnalytical: 0.6, ChannelTranscendent: 0.2},
			CategoryCreative:      {ChannelEmotional: 0.4, ChannelAnalytical: 0.2, ChannelTranscendent: 0.4},
			CategoryBalanced:      {ChannelEmotional: 0.34, ChannelAnalytical: 0.33, ChannelTranscendent: 0.33},
		},
		Keywords: map[ContextCategory][]string{
			CategoryEmotional: {
				"feel", "emotion", "sad", "happy", "angry", "anxious", "afraid",
				"lonely", "love", "hurt", "worried", "grief", "upset",
			},
			CategoryPhilosophical: {
				"meaning", "purpose", "existence", "conscious", "soul", "universe",
				"spiritual", "truth", "reality", "philosoph", "transcend",
			},
			CategoryAnalytical: {
				"analy", "data", "logic", "calculate", "compare", "evidence",
				"statistic", "how does", "explain", "measure", "metric",
			},
			CategoryCreative: {
				"create", "imagine", "story", "poem", "design", "invent",
				"idea", "art", "compose", "brainstorm",
			},
		},
		BoostSignals: map[Channel]string{
			ChannelEmotional:    "empathy",
			ChannelAnalytical:   "reasoning",
			ChannelTranscendent: "insight",
		},
		BoostThreshold: 0.8,
		BoostFactor:    1.2,

		DispatchTimeout:    8 * time.Second,
		MinInclusionWeight: 0.1,
		MinLength:          200,
		MaxLength:          2000,
		IntroMaxChars:      80,
		MinSectionChars:    80,

		FallbackContent: "I wasn't able to put together a complete answer right now. " +
			"Please try again in a moment.",
		FallbackMetrics: QualityMetrics{SynthesisQuality: 0.3, Coherence: 0.3, Harmony: 0.3},

		Scoring: ScoringTuning{
			Base:               0.5,
			LengthBonus:        0.2,
			CrossReferenceStep: 0.05,
			CrossReferenceCap:  0.15,
			SentenceBonus:      0.1,
			MinSentences:       3,
			MinSentenceChars:   10,
			SuccessBonus:       0.05,

			TransitionCap:     0.2,
			UnifyingCap:       0.15,
			MultiChannelBonus: 0.15,

			WeightBalanceCap:       0.2,
			WeightVarianceCeiling:  0.05,
			QualityBalanceCap:      0.15,
			QualityVarianceCeiling: 0.05,
			UsageBonus:             0.15,

			CrossReferenceTerms: []string{
				"perspective", "integrat", "together", "combin", "balanc",
				"complement", "across", "alongside", "both",
			},
			TransitionTerms: []string{
				"however", "therefore", "moreover", "furthermore", "additionally",
				"meanwhile", "consequently", "similarly", "likewise", "in addition",
				"at the same time", "thus",
			},
			UnifyingTerms: []string{
				"together", "unif", "whole", "harmon", "connect", "align",
				"synthes", "integrat",
			},
		},
	}
}

// LoadTuning reads a YAML file layered over DefaultTuning and validates the result.
// An empty path returns the validated defaults.
func LoadTuning(path string) (*Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, t.Validate()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(raw, t); err != nil {
		return nil, fmt.Errorf("parse tuning file %s: %w", path, err)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the tuning for the malformed-table class of errors
func (t *Tuning) Validate() error {
	for _, cat := range AllCategories {
		row, ok := t.BaseWeights[cat]
		if !ok {
			return &ConfigurationError{Field: "base_weights", Reason: fmt.Sprintf("missing row for %s", cat)}
		}
		if err := validateRow(cat, row); err != nil {
			return err
		}
	}
	for cat := range t.BaseWeights {
		if !isKnownCategory(cat) {
			return &ConfigurationError{Field: "base_weights", Reason: fmt.Sprintf("unknown category %q", cat)}
		}
	}

	for _, cat := range classifiedCategories {
		if len(t.Keywords[cat]) == 0 {
			return &ConfigurationError{Field: "keywords", Reason: fmt.Sprintf("no keywords for %s", cat)}
		}
	}

	if err := t.validateFinite(); err != nil {
		return err
	}

	for ch := range t.BoostSignals {
		if !ch.IsValid() {
			return &ConfigurationError{Field: "boost_signals", Reason: fmt.Sprintf("unknown channel %q", ch)}
		}
	}
	if t.BoostThreshold < 0 || t.BoostThreshold > 1 {
		return &ConfigurationError{Field: "boost_threshold", Reason: "must be within [0,1]"}
	}
	if t.BoostFactor <= 0 {
		return &ConfigurationError{Field: "boost_factor", Reason: "must be positive"}
	}

	if t.DispatchTimeout <= 0 {
		return &ConfigurationError{Field: "dispatch_timeout", Reason: "must be positive"}
	}
	if t.MinInclusionWeight < 0 || t.MinInclusionWeight >= 1 {
		return &ConfigurationError{Field: "min_inclusion_weight", Reason: "must be within [0,1)"}
	}
	if t.MinLength <= 0 || t.MaxLength < t.MinLength {
		return &ConfigurationError{Field: "min_length/max_length", Reason: "need 0 < min_length <= max_length"}
	}
	if t.IntroMaxChars <= 0 {
		return &ConfigurationError{Field: "intro_max_chars", Reason: "must be positive"}
	}
	if t.MinSectionChars < 0 {
		return &ConfigurationError{Field: "min_section_chars", Reason: "must not be negative"}
	}
	if t.FallbackContent == "" {
		return &ConfigurationError{Field: "fallback_content", Reason: "must not be empty"}
	}
	for name, v := range map[string]float64{
		"synthesis_quality": t.FallbackMetrics.SynthesisQuality,
		"coherence":         t.FallbackMetrics.Coherence,
		"harmony":           t.FallbackMetrics.Harmony,
	} {
		if v < 0 || v > 1 {
			return &ConfigurationError{Field: "fallback_metrics." + name, Reason: "must be within [0,1]"}
		}
	}
	if t.Scoring.WeightVarianceCeiling <= 0 || t.Scoring.QualityVarianceCeiling <= 0 {
		return &ConfigurationError{Field: "scoring", Reason: "variance ceilings must be positive"}
	}
	return nil
}

// validateFinite rejects NaN and infinities, which slip through every range check below
func (t *Tuning) validateFinite() error {
	sc := t.Scoring
	fields := []struct {
		name  string
		value float64
	}{
		{"boost_threshold", t.BoostThreshold},
		{"boost_factor", t.BoostFactor},
		{"min_inclusion_weight", t.MinInclusionWeight},
		{"fallback_metrics.synthesis_quality", t.FallbackMetrics.SynthesisQuality},
		{"fallback_metrics.coherence", t.FallbackMetrics.Coherence},
		{"fallback_metrics.harmony", t.FallbackMetrics.Harmony},
		{"scoring.base", sc.Base},
		{"scoring.length_bonus", sc.LengthBonus},
		{"scoring.cross_reference_step", sc.CrossReferenceStep},
		{"scoring.cross_reference_cap", sc.CrossReferenceCap},
		{"scoring.sentence_bonus", sc.SentenceBonus},
		{"scoring.success_bonus", sc.SuccessBonus},
		{"scoring.transition_cap", sc.TransitionCap},
		{"scoring.unifying_cap", sc.UnifyingCap},
		{"scoring.multi_channel_bonus", sc.MultiChannelBonus},
		{"scoring.weight_balance_cap", sc.WeightBalanceCap},
		{"scoring.weight_variance_ceiling", sc.WeightVarianceCeiling},
		{"scoring.quality_balance_cap", sc.QualityBalanceCap},
		{"scoring.quality_variance_ceiling", sc.QualityVarianceCeiling},
		{"scoring.usage_bonus", sc.UsageBonus},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ConfigurationError{Field: f.name, Reason: "must be a finite number"}
		}
	}
	return nil
}

func validateRow(cat ContextCategory, row WeightVector) error {
	field := fmt.Sprintf("base_weights.%s", cat)
	for ch := range row {
		if !ch.IsValid() {
			return &ConfigurationError{Field: field, Reason: fmt.Sprintf("unknown channel %q", ch)}
		}
	}
	sum := 0.0
	for _, ch := range AllChannels {
		w, ok := row[ch]
		if !ok {
			return &ConfigurationError{Field: field, Reason: fmt.Sprintf("missing channel %s", ch)}
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return &ConfigurationError{Field: field, Reason: fmt.Sprintf("invalid weight for %s", ch)}
		}
		sum += w
	}
	if math.Abs(sum-1.0) > rowTolerance {
		return &ConfigurationError{Field: field, Reason: fmt.Sprintf("row sums to %.6f, want 1", sum)}
	}
	return nil
}

func isKnownCategory(cat ContextCategory) bool {
	for _, known := range AllCategories {
		if cat == known {
			return true
		}
	}
	return false
}

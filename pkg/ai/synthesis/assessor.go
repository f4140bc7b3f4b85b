package synthesis

import (
	"math"
	"strings"
	"unicode/utf8"
)

// assessor scores a synthesized document. Scores are observational only.
type assessor struct {
	minLength int
	maxLength int
	scoring   ScoringTuning
}

func newAssessor(t *Tuning) *assessor {
	return &assessor{
		minLength: t.MinLength,
		maxLength: t.MaxLength,
		scoring:   t.Scoring,
	}
}

// assess is a pure function of its inputs. Iteration always follows AllChannels so float
// sums come out bit-identical between calls.
func (a *assessor) assess(content string, results map[Channel]ChannelResult, weights WeightVector) QualityMetrics {
	return a.assessDocument(document{text: content, voice: content}, results, weights)
}

// assessDocument measures length and sentence count on the full text and vocabulary on the
// channel-authored voice only, so the synthesizer's own framing earns nothing.
func (a *assessor) assessDocument(doc document, results map[Channel]ChannelResult, weights WeightVector) QualityMetrics {
	voice := strings.ToLower(doc.voice)
	success := successFraction(results)

	return QualityMetrics{
		SynthesisQuality: a.synthesisQuality(doc.text, voice, success),
		Coherence:        a.coherence(voice, splitSentences(doc.voice, a.scoring.MinSentenceChars), results),
		Harmony:          a.harmony(results, weights, success),
	}
}

func (a *assessor) synthesisQuality(content, voice string, success float64) float64 {
	sc := a.scoring
	score := sc.Base

	length := utf8.RuneCountInString(content)
	if length >= a.minLength && length <= a.maxLength {
		score += sc.LengthBonus
	}

	distinct := countMatches(voice, sc.CrossReferenceTerms)
	score += math.Min(sc.CrossReferenceCap, float64(distinct)*sc.CrossReferenceStep)

	if len(splitSentences(content, sc.MinSentenceChars)) >= sc.MinSentences {
		score += sc.SentenceBonus
	}

	score += sc.SuccessBonus * success
	return clamp01(score)
}

func (a *assessor) coherence(lower string, sentences []string, results map[Channel]ChannelResult) float64 {
	sc := a.scoring
	score := sc.Base

	perSentence := float64(len(sentences))
	if perSentence < 1 {
		perSentence = 1
	}

	// one match per sentence earns the full cap
	transitions := float64(countOccurrences(lower, sc.TransitionTerms)) / perSentence
	score += math.Min(sc.TransitionCap, transitions*sc.TransitionCap)

	unifying := float64(countOccurrences(lower, sc.UnifyingTerms)) / perSentence
	score += math.Min(sc.UnifyingCap, unifying*sc.UnifyingCap)

	contributed := 0
	for _, ch := range AllChannels {
		res, ok := results[ch]
		if ok && !res.IsFallback && strings.TrimSpace(res.Content) != "" {
			contributed++
		}
	}
	if contributed > 1 {
		score += sc.MultiChannelBonus
	}

	return clamp01(score)
}

func (a *assessor) harmony(results map[Channel]ChannelResult, weights WeightVector, success float64) float64 {
	sc := a.scoring
	score := sc.Base

	ws := make([]float64, 0, len(AllChannels))
	for _, ch := range AllChannels {
		ws = append(ws, weights[ch])
	}
	score += balanceBonus(variance(ws), sc.WeightVarianceCeiling, sc.WeightBalanceCap)

	var qualities []float64
	for _, ch := range AllChannels {
		res, ok := results[ch]
		if ok && !res.IsFallback && res.Quality != nil {
			qualities = append(qualities, *res.Quality)
		}
	}
	// a single score says nothing about balance
	if len(qualities) >= 2 {
		score += balanceBonus(variance(qualities), sc.QualityVarianceCeiling, sc.QualityBalanceCap)
	}

	score += sc.UsageBonus * success
	return clamp01(score)
}

// balanceBonus is the full cap at zero variance, falling linearly to zero at the ceiling
func balanceBonus(v, ceiling, bonusCap float64) float64 {
	return bonusCap * (1 - math.Min(1, v/ceiling))
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

func successFraction(results map[Channel]ChannelResult) float64 {
	if len(results) == 0 {
		return 0
	}
	ok := 0
	for _, res := range results {
		if !res.IsFallback {
			ok++
		}
	}
	return float64(ok) / float64(len(results))
}

// splitSentences splits on terminal punctuation and line breaks, dropping fragments shorter
// than minChars runes
func splitSentences(content string, minChars int) []string {
	parts := strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n' || r == '…'
	})
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) >= minChars {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

func countOccurrences(lower string, terms []string) int {
	n := 0
	for _, term := range terms {
		term = strings.ToLower(term)
		if term != "" {
			n += strings.Count(lower, term)
		}
	}
	return n
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

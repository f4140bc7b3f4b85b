package channel

import (
	"math"
	"strings"
)

const (
	targetSentences = 3
	minGoodWords    = 40
	maxGoodWords    = 200
)

// EstimateQuality scores a channel reply in [0,1] from its shape alone:
// half for reaching the requested sentence count, half for landing in the word window.
func EstimateQuality(text string) float64 {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}

	sentences := 0
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if len(strings.Fields(part)) >= 3 {
			sentences++
		}
	}
	sentenceScore := math.Min(1, float64(sentences)/targetSentences)

	var lengthScore float64
	switch {
	case words < minGoodWords:
		lengthScore = float64(words) / minGoodWords
	case words <= maxGoodWords:
		lengthScore = 1
	default:
		lengthScore = math.Max(0.5, float64(maxGoodWords)/float64(words))
	}

	return 0.5*sentenceScore + 0.5*lengthScore
}

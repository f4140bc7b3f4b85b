package synthesis

import (
	"strings"
)

// classifiedCategories is also the tie-break order: the first category reaching the
// maximum match count wins.
var classifiedCategories = []ContextCategory{
	CategoryEmotional,
	CategoryPhilosophical,
	CategoryAnalytical,
	CategoryCreative,
}

// classifier picks a context category from request text using fixed keyword sets
type classifier struct {
	keywords map[ContextCategory][]string
}

func newClassifier(keywords map[ContextCategory][]string) *classifier {
	lowered := make(map[ContextCategory][]string, len(keywords))
	for cat, terms := range keywords {
		for _, term := range terms {
			term = strings.ToLower(strings.TrimSpace(term))
			if term != "" {
				lowered[cat] = append(lowered[cat], term)
			}
		}
	}
	return &classifier{keywords: lowered}
}

// classify counts, per category, how many of its terms occur in the text
// (case-insensitive substring match). No matches at all means balanced.
func (c *classifier) classify(text string) ContextCategory {
	lower := strings.ToLower(text)

	best := CategoryBalanced
	maxCount := 0
	for _, cat := range classifiedCategories {
		count := countMatches(lower, c.keywords[cat])
		// strict > keeps the earlier category on ties
		if count > maxCount {
			maxCount = count
			best = cat
		}
	}
	return best
}

// countMatches returns the number of distinct terms present in lower
func countMatches(lower string, terms []string) int {
	count := 0
	for _, term := range terms {
		term = strings.ToLower(term)
		if term != "" && strings.Contains(lower, term) {
			count++
		}
	}
	return count
}

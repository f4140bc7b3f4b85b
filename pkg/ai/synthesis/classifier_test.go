package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := newClassifier(DefaultTuning().Keywords)

	tests := []struct {
		name string
		text string
		want ContextCategory
	}{
		{
			name: "emotional keywords",
			text: "I feel so sad and lonely today",
			want: CategoryEmotional,
		},
		{
			name: "philosophical keywords",
			text: "What is the meaning and purpose of existence?",
			want: CategoryPhilosophical,
		},
		{
			name: "analytical keywords",
			text: "Explain the data and compare the evidence",
			want: CategoryAnalytical,
		},
		{
			name: "creative keywords",
			text: "Write a poem and imagine a story",
			want: CategoryCreative,
		},
		{
			name: "case insensitive",
			text: "I FEEL ANXIOUS",
			want: CategoryEmotional,
		},
		{
			name: "tie prefers emotional over philosophical",
			text: "I feel lost about the meaning",
			want: CategoryEmotional,
		},
		{
			name: "tie prefers analytical over creative",
			text: "design a metric",
			want: CategoryAnalytical,
		},
		{
			name: "no matches is balanced",
			text: "Hello there, what time is it?",
			want: CategoryBalanced,
		},
		{
			name: "empty text is balanced",
			text: "",
			want: CategoryBalanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.classify(tt.text))
		})
	}
}

func TestClassifyCountsDistinctTerms(t *testing.T) {
	c := newClassifier(map[ContextCategory][]string{
		CategoryEmotional:     {"sad"},
		CategoryPhilosophical: {"soul", "truth"},
		CategoryAnalytical:    {"data"},
		CategoryCreative:      {"poem"},
	})

	// "sad" three times still counts once, so two philosophical terms win
	assert.Equal(t, CategoryPhilosophical, c.classify("sad sad sad, soul and truth"))
}

func TestNewClassifierNormalizesTerms(t *testing.T) {
	c := newClassifier(map[ContextCategory][]string{
		CategoryCreative: {"  Poem ", ""},
	})

	assert.Equal(t, []string{"poem"}, c.keywords[CategoryCreative])
	assert.Equal(t, CategoryCreative, c.classify("a POEM please"))
}

package synthesis

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

const ellipsis = "…"

// synthesizer merges channel contents into one bounded document
type synthesizer struct {
	minInclusionWeight float64
	maxLength          int
	introMaxChars      int
	minSectionChars    int
}

func newSynthesizer(t *Tuning) *synthesizer {
	return &synthesizer{
		minInclusionWeight: t.MinInclusionWeight,
		maxLength:          t.MaxLength,
		introMaxChars:      t.IntroMaxChars,
		minSectionChars:    t.MinSectionChars,
	}
}

type section struct {
	channel Channel
	weight  float64
	body    string
}

// document is a rendered synthesis plus the channel-authored part of it
type document struct {
	text string
	// voice is the section bodies only, without intro, labels or closing
	voice string
}

// synthesize builds intro, one labeled section per qualifying channel in fixed channel order,
// and a closing line. Lengths are measured in runes. Underflow is left for the assessor to
// penalize; overflow shrinks the lowest-weight section first.
func (s *synthesizer) synthesize(results map[Channel]ChannelResult, weights WeightVector, originalText string) (string, error) {
	doc, err := s.compose(results, weights, originalText)
	if err != nil {
		return "", err
	}
	return doc.text, nil
}

func (s *synthesizer) compose(results map[Channel]ChannelResult, weights WeightVector, originalText string) (document, error) {
	var sections []*section
	for _, ch := range AllChannels {
		res, ok := results[ch]
		if !ok || res.IsFallback {
			continue
		}
		w := weights[ch]
		if w <= s.minInclusionWeight {
			continue
		}
		body := strings.TrimSpace(res.Content)
		if body == "" {
			continue
		}
		sections = append(sections, &section{
			channel: ch,
			weight:  w,
			body:    truncateAtWord(body, s.sectionBudget(w)),
		})
	}

	if len(sections) == 0 {
		return document{}, ErrNoContentAvailable
	}

	intro := s.intro(originalText)
	sections = s.fit(intro, sections)

	// intro, label and closing alone exceed the budget
	if len(sections) == 1 && sections[0].body == "" {
		return document{}, ErrNoContentAvailable
	}

	bodies := make([]string, len(sections))
	for i, sec := range sections {
		bodies[i] = sec.body
	}
	return document{
		text:  render(intro, sections),
		voice: strings.Join(bodies, "\n\n"),
	}, nil
}

// sectionBudget is the share of the output a channel may occupy, never below the floor
func (s *synthesizer) sectionBudget(weight float64) int {
	budget := int(math.Floor(weight * float64(s.maxLength)))
	if budget < s.minSectionChars {
		budget = s.minSectionChars
	}
	return budget
}

func (s *synthesizer) intro(originalText string) string {
	text := strings.Join(strings.Fields(originalText), " ")
	if utf8.RuneCountInString(text) > s.introMaxChars {
		text = hardTruncate(text, s.introMaxChars)
	}
	return fmt.Sprintf("Regarding \"%s\"", text)
}

// fit shrinks or drops the lowest-weight sections until the rendered output fits maxLength.
// The last remaining section is shrunk but never dropped; its body is emptied when even the
// surrounding text does not fit.
func (s *synthesizer) fit(intro string, sections []*section) []*section {
	for {
		over := utf8.RuneCountInString(render(intro, sections)) - s.maxLength
		if over <= 0 {
			return sections
		}

		victim := lowestWeight(sections)
		sec := sections[victim]
		bodyLen := utf8.RuneCountInString(sec.body)

		// one rune of the remaining budget goes to the ellipsis
		keep := bodyLen - over - 1
		if keep <= 0 {
			if len(sections) > 1 {
				sections = append(sections[:victim:victim], sections[victim+1:]...)
				continue
			}
			sec.body = ""
			return sections
		}
		sec.body = hardTruncate(sec.body, keep)
	}
}

// lowestWeight returns the index of the smallest weight; on ties the later channel loses
func lowestWeight(sections []*section) int {
	idx := 0
	for i, sec := range sections {
		if sec.weight <= sections[idx].weight {
			idx = i
		}
	}
	return idx
}

func render(intro string, sections []*section) string {
	var sb strings.Builder
	sb.WriteString(intro)
	sb.WriteString("\n\n")
	for _, sec := range sections {
		fmt.Fprintf(&sb, "%s (%d%%):\n", sec.channel.Label(), percent(sec.weight))
		sb.WriteString(sec.body)
		sb.WriteString("\n\n")
	}
	sb.WriteString(closing(sections))
	return sb.String()
}

// closing references the weight distribution of the included sections
func closing(sections []*section) string {
	if len(sections) == 1 {
		return fmt.Sprintf("This synthesis draws mainly on the %s view, weighted at %d%%.",
			shortName(sections[0].channel), percent(sections[0].weight))
	}

	parts := make([]string, len(sections))
	for i, sec := range sections {
		parts[i] = fmt.Sprintf("the %s view at %d%%", shortName(sec.channel), percent(sec.weight))
	}
	list := strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	return fmt.Sprintf("Taken together, this synthesis balances %s.", list)
}

func shortName(ch Channel) string {
	return strings.ToLower(strings.TrimSuffix(ch.Label(), " perspective"))
}

func percent(w float64) int {
	return int(math.Round(w * 100))
}

// hardTruncate keeps the first n-1 runes and appends an ellipsis, yielding at most n runes
func hardTruncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:n-1]), " ") + ellipsis
}

// truncateAtWord is hardTruncate that prefers to cut on a space in the second half of the window
func truncateAtWord(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 1 {
		return hardTruncate(s, n)
	}
	window := []rune(s)[:n-1]
	cut := len(window)
	for i := len(window) - 1; i > len(window)/2; i-- {
		if window[i] == ' ' {
			cut = i
			break
		}
	}
	return strings.TrimRight(string(window[:cut]), " ") + ellipsis
}

package problemgen

import (
	"fmt"
	"strings"
)

// buildDedup formats prior questions for the prompt, respecting the max limit.
// Returns "None" if there are no prior questions.
func buildDedup(priorQuestions []string, max int) string {
	return numberedList(priorQuestions, max)
}

// numberedList renders the last max items as a 1-based list, or "None".
func numberedList(items []string, max int) string {
	if len(items) == 0 {
		return "None"
	}
	if max > 0 && len(items) > max {
		items = items[len(items)-max:]
	}

	var b strings.Builder
	for i, q := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}

// DedupValidator rejects a question whose text repeats one already asked,
// ignoring case, punctuation and spacing.
type DedupValidator struct{}

func (v *DedupValidator) Name() string { return "dedup" }

func (v *DedupValidator) Validate(q *Question, input GenerateInput) *ValidationError {
	text := normalizeText(q.Text)
	for _, prior := range input.PriorQuestions {
		if normalizeText(prior) == text {
			return &ValidationError{
				Validator: v.Name(),
				Message:   "question repeats one already asked",
				Retryable: true,
			}
		}
	}
	return nil
}

func normalizeText(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n':
			space = true
		default:
			// punctuation is dropped
		}
	}
	return b.String()
}

package quiz

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrFallbackExhausted is returned when the question source failed and the
// local bank has no question left for the current position.
var ErrFallbackExhausted = errors.New("question unavailable and fallback bank exhausted")

//go:embed fallback.yaml
var defaultBankYAML []byte

// Bank is a fixed list of local questions served when the question source
// is unavailable. The question at position i is used for the i-th served
// question of a session.
type Bank struct {
	questions []Question
}

// LoadBank parses a YAML list of questions and validates each entry.
func LoadBank(data []byte) (*Bank, error) {
	var qs []Question
	if err := yaml.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("parse fallback bank: %w", err)
	}
	for i, q := range qs {
		if q.ID == "" || len(q.Options) == 0 {
			return nil, fmt.Errorf("fallback question %d: missing id or options", i)
		}
		if _, ok := q.Option(q.CorrectAnswer); !ok {
			return nil, fmt.Errorf("fallback question %s: correct answer %q is not an option", q.ID, q.CorrectAnswer)
		}
		if _, ok := ParseDifficulty(string(q.Difficulty)); !ok {
			qs[i].Difficulty = DifficultyMedium
		}
	}
	return &Bank{questions: qs}, nil
}

// DefaultBank returns the built-in bank.
func DefaultBank() *Bank {
	b, err := LoadBank(defaultBankYAML)
	if err != nil {
		panic(err)
	}
	return b
}

// At returns the question for serving position i.
func (b *Bank) At(i int) (Question, bool) {
	if b == nil || i < 0 || i >= len(b.questions) {
		return Question{}, false
	}
	q := b.questions[i]
	q.Options = append([]Option(nil), q.Options...)
	return q, true
}

// Len is the number of questions in the bank.
func (b *Bank) Len() int {
	if b == nil {
		return 0
	}
	return len(b.questions)
}

// Package quiz implements the adaptive module quiz: question sequencing,
// rolling-window difficulty, answer evaluation, scoring and persistence.
package quiz

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Difficulty is the difficulty tag attached to a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalizes s. Unknown values report false.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, true
	}
	return "", false
}

// Option is one lettered answer choice.
type Option struct {
	ID    string `json:"id" yaml:"id"`       // "a", "b", ...
	Label string `json:"label" yaml:"label"` // "A", "B", ...
	Text  string `json:"text" yaml:"text"`
}

// Question is a normalized multiple-choice question.
type Question struct {
	ID            string     `json:"id" yaml:"id"`
	Text          string     `json:"text" yaml:"text"`
	Topic         string     `json:"topic" yaml:"topic"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty"`
	Options       []Option   `json:"options" yaml:"options"`
	CorrectAnswer string     `json:"correctAnswer" yaml:"correct_answer"`
	Explanation   string     `json:"explanation,omitempty" yaml:"explanation"`
	Code          string     `json:"codeExample,omitempty" yaml:"code"`
	Context       string     `json:"context,omitempty" yaml:"context"`
}

// Option returns the option with the given letter id.
func (q Question) Option(id string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Hint returns the hint text shown when the learner asks for one.
func (q Question) Hint() string {
	if q.Context != "" {
		return q.Context
	}
	return fmt.Sprintf("Think about the core ideas of %s. Eliminate the options you know are wrong first.", q.Topic)
}

// RawQuestion is a question payload as received from a question source,
// before validation.
type RawQuestion struct {
	ID           string
	Text         string
	Topic        string
	Difficulty   string
	Options      []string
	CorrectIndex *int
	Explanation  string

	// ServedDifficulty is the difficulty the source reports for the
	// session, used when the question itself carries none.
	ServedDifficulty string
}

// ValidationError reports a malformed question payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid question payload: %s %s", e.Field, e.Reason)
}

const (
	defaultTopic       = "General"
	defaultExplanation = "No explanation provided"
	missingText        = "Question text missing"
)

// ParseQuestion validates raw and normalizes it into a Question. Options
// are lettered by position and the correct letter is derived from the
// zero-based correct index, which defaults to 0.
func ParseQuestion(raw RawQuestion) (Question, error) {
	if len(raw.Options) == 0 {
		return Question{}, &ValidationError{Field: "options", Reason: "missing or empty"}
	}
	if len(raw.Options) > 26 {
		return Question{}, &ValidationError{Field: "options", Reason: fmt.Sprintf("too many (%d)", len(raw.Options))}
	}

	correct := 0
	if raw.CorrectIndex != nil {
		correct = *raw.CorrectIndex
	}
	if correct < 0 || correct >= len(raw.Options) {
		return Question{}, &ValidationError{
			Field:  "correctIndex",
			Reason: fmt.Sprintf("%d out of range for %d options", correct, len(raw.Options)),
		}
	}

	q := Question{
		ID:            raw.ID,
		Text:          strings.TrimSpace(raw.Text),
		Topic:         raw.Topic,
		Explanation:   raw.Explanation,
		CorrectAnswer: OptionID(correct),
	}
	if q.ID == "" {
		q.ID = "q-" + uuid.NewString()
	}
	if q.Text == "" {
		q.Text = missingText
	}
	if q.Topic == "" {
		q.Topic = defaultTopic
	}
	if q.Explanation == "" {
		q.Explanation = defaultExplanation
	}

	if d, ok := ParseDifficulty(raw.Difficulty); ok {
		q.Difficulty = d
	} else if d, ok := ParseDifficulty(raw.ServedDifficulty); ok {
		q.Difficulty = d
	} else {
		q.Difficulty = DifficultyMedium
	}

	q.Options = make([]Option, len(raw.Options))
	for i, text := range raw.Options {
		q.Options[i] = Option{ID: OptionID(i), Label: strings.ToUpper(OptionID(i)), Text: text}
	}
	return q, nil
}

// OptionID returns the letter for a zero-based option position.
func OptionID(i int) string {
	return string(rune('a' + i))
}

// AnswerIndex converts an option letter back to its zero-based position.
// It returns -1 for anything that is not a single letter.
func AnswerIndex(id string) int {
	if len(id) != 1 {
		return -1
	}
	c := id[0] | 0x20
	if c < 'a' || c > 'z' {
		return -1
	}
	return int(c - 'a')
}

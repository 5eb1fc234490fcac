package problemgen

import (
	"fmt"

	"github.com/nayidisha/disha/internal/quiz"
)

// StructuralValidator checks that required fields are present, within
// length limits, and have valid enum values.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: msg, Retryable: true}
	}
	if q.Text == "" {
		return fail("question_text is empty")
	}
	if len(q.Text) > 600 {
		return fail("question_text exceeds 600 characters")
	}
	if q.Explanation == "" {
		return fail("explanation is empty")
	}
	if len(q.Explanation) > 1200 {
		return fail("explanation exceeds 1200 characters")
	}
	if _, ok := quiz.ParseDifficulty(string(q.Difficulty)); !ok {
		return fail(`difficulty must be "easy", "medium" or "hard"`)
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fail(fmt.Sprintf("correct_index %d out of range for %d options", q.CorrectIndex, len(q.Options)))
	}
	return nil
}

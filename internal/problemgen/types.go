package problemgen

import "github.com/nayidisha/disha/internal/quiz"

// Question is a generated multiple-choice module question.
type Question struct {
	// Text is the question prompt shown to the learner.
	Text string

	// Topic is the module topic the question exercises.
	Topic string

	// Options holds the answer choices in display order (a, b, c, ...).
	Options []string

	// CorrectIndex is the zero-based index of the correct option.
	CorrectIndex int

	// Difficulty is the difficulty the question was written for.
	Difficulty quiz.Difficulty

	// Explanation is shown after the learner answers. Always present.
	Explanation string

	// ModuleID is the module this question was generated for.
	ModuleID string
}

// GenerateInput holds all context needed to generate a question.
type GenerateInput struct {
	ModuleID    string
	ModuleTitle string
	Topics      []string

	// Difficulty is the target difficulty from the adaptive window.
	Difficulty quiz.Difficulty

	// PriorQuestions contains the text of questions already asked in this
	// quiz. Used for deduplication in the prompt and by DedupValidator.
	PriorQuestions []string

	// RecentErrors describes the learner's recent mistakes in this module
	// (e.g. "chose 'let' for a block-scoped constant, correct was 'const'").
	RecentErrors []string
}

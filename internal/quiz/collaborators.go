package quiz

import (
	"context"

	"github.com/nayidisha/disha/internal/progress"
	"github.com/nayidisha/disha/internal/store"
)

// QuestionRequest identifies the module a question is wanted for.
// Difficulty and Prior are hints; sources are free to ignore them.
type QuestionRequest struct {
	ModuleID    string
	ModuleTitle string
	Topics      []string
	Difficulty  Difficulty
	Prior       []string // texts of questions already served
}

// QuestionSource produces the next question for a module.
type QuestionSource interface {
	NextQuestion(ctx context.Context, req QuestionRequest) (RawQuestion, error)
}

// EvaluationRequest is a submitted answer.
type EvaluationRequest struct {
	ModuleID    string
	QuestionID  string
	AnswerIndex int
}

// Evaluation is the evaluator's verdict on an answer.
type Evaluation struct {
	IsCorrect     bool
	ShouldEndQuiz bool
	EndReason     string
}

// Evaluator judges a submitted answer.
type Evaluator interface {
	Evaluate(ctx context.Context, req EvaluationRequest) (Evaluation, error)
}

// ProgressRecorder persists module completion for a signed-in user.
type ProgressRecorder interface {
	UpdateModuleProgress(ctx context.Context, userID, moduleID string, update progress.ModuleUpdate) (*progress.Record, error)
}

// AnswerLog receives answer and lifecycle events for local history.
type AnswerLog interface {
	AppendAnswerEvent(ctx context.Context, data store.AnswerEventData) error
	AppendQuizEvent(ctx context.Context, data store.QuizEventData) error
}

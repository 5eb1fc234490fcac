package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int   // max results (0 = unlimited)
	After  int64 // sequence > After
	Before int64 // sequence < Before
}

// LLMRequestEventData captures a single LLM request.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLMRequestEventData.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates calls and tokens for one purpose.
type LLMUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int
}

// LLMModelUsage aggregates calls and tokens for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// AnswerEventData records one submitted quiz answer.
type AnswerEventData struct {
	SessionID      string
	ModuleID       string
	QuestionID     string
	QuestionText   string
	Topic          string
	Difficulty     string
	SelectedAnswer string
	CorrectAnswer  string
	Correct        bool
	TimeSpentSecs  int
}

// AnswerEvent is a stored AnswerEventData.
type AnswerEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	AnswerEventData
}

// Quiz lifecycle actions.
const (
	QuizActionStart  = "start"
	QuizActionExit   = "exit"
	QuizActionFinish = "finish"
)

// QuizEventData records a quiz lifecycle transition.
type QuizEventData struct {
	SessionID         string
	ModuleID          string
	Action            string
	QuestionsAnswered int
	Accuracy          float64
	ElapsedSecs       int
	Passed            bool
}

// ModuleStats summarizes answer history for a module.
type ModuleStats struct {
	ModuleID  string
	Answered  int
	Correct   int
	Attempts  int // finished quizzes
	BestScore float64
}

// Accuracy returns the percentage of correct answers, 0 when none.
func (m ModuleStats) Accuracy() float64 {
	if m.Answered == 0 {
		return 0
	}
	return float64(m.Correct) / float64(m.Answered) * 100
}

// LLMEventRecorder is the write side used by the LLM logging decorator.
type LLMEventRecorder interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// EventRepo provides append and query access to the event log.
type EventRepo interface {
	LLMEventRecorder

	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)
	// GetLLMEvent returns nil when id does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)

	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	AppendQuizEvent(ctx context.Context, data QuizEventData) error
	QueryAnswerEvents(ctx context.Context, moduleID string, opts QueryOpts) ([]AnswerEvent, error)
	ModuleStats(ctx context.Context) ([]ModuleStats, error)
}

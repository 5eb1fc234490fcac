package quiz

import "time"

// Phase is the controller's lifecycle phase.
type Phase int

const (
	PhaseIdle        Phase = iota // Created, not started
	PhaseLoading                  // Fetching a question
	PhaseAnswering                // Question shown, awaiting submission
	PhaseSubmitted                // Answer evaluated, awaiting advance or finish
	PhaseUnavailable              // Fetch failed and no fallback left; retry possible
	PhaseClosed                   // Finished or exited
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseAnswering:
		return "answering"
	case PhaseSubmitted:
		return "submitted"
	case PhaseUnavailable:
		return "unavailable"
	case PhaseClosed:
		return "closed"
	}
	return "unknown"
}

// Session is the state of one module quiz attempt. Values returned by
// Controller.State are copies and safe to read without locking.
type Session struct {
	ModuleID    string
	ModuleTitle string
	Topics      []string

	// Current is the active question, nil while loading.
	Current *Question
	// History is every question served, in order.
	History []Question
	// Completed holds one record per submitted answer.
	Completed []AnswerRecord

	Window     RollingWindow
	Difficulty Difficulty
	Streak     int

	// ElapsedSeconds is the session clock.
	ElapsedSeconds int

	SelectedAnswer string
	Submitted      bool
	HintVisible    bool

	Phase Phase
	// LastError is the most recent recoverable error, such as a failed
	// fetch that was answered from the fallback bank.
	LastError error
	// UsedFallback is set when Current came from the local bank.
	UsedFallback bool
	// EndSignal is the evaluator's most recent request to end the quiz.
	EndSignal *Evaluation
}

// Accuracy is the running accuracy percentage.
func (s Session) Accuracy() float64 { return Accuracy(s.Completed) }

// IsLastQuestion reports whether the quiz should end now.
func (s Session) IsLastQuestion() bool { return IsLastQuestion(s.Completed) }

// QuestionNumber is the 1-based number of the question being answered.
func (s Session) QuestionNumber() int { return len(s.Completed) + 1 }

func (s Session) clone() Session {
	out := s
	out.Topics = append([]string(nil), s.Topics...)
	out.History = append([]Question(nil), s.History...)
	out.Completed = append([]AnswerRecord(nil), s.Completed...)
	out.Window = append(RollingWindow(nil), s.Window...)
	if s.Current != nil {
		q := *s.Current
		out.Current = &q
	}
	if s.EndSignal != nil {
		e := *s.EndSignal
		out.EndSignal = &e
	}
	return out
}

// Feedback is the transient result shown after a submission.
type Feedback struct {
	IsCorrect        bool
	CorrectAnswer    string
	Explanation      string
	Streak           int
	Accuracy         float64
	DifficultyChange DifficultyChange
	Difficulty       Difficulty
	// Until is when the feedback auto-dismisses.
	Until time.Time
}

// Review is a read-only view of an answered question.
type Review struct {
	Number   int
	Question Question
	Record   AnswerRecord
}

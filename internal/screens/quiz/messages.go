package quiz

import (
	qz "github.com/nayidisha/disha/internal/quiz"
)

// questionLoadedMsg is sent when Start, LoadNextQuestion or
// AdvanceToNextQuestion returns.
type questionLoadedMsg struct {
	Err error
}

// clockTickMsg is sent every second to advance the session clock.
type clockTickMsg struct{}

// submittedMsg carries the result of SubmitAnswer.
type submittedMsg struct {
	Feedback *qz.Feedback
	Err      error
}

// feedbackExpiredMsg is sent when the feedback display period ends.
// Answered identifies the submission it belongs to so stale timers from
// an earlier question are ignored.
type feedbackExpiredMsg struct {
	Answered int
}

// finishedMsg carries the outcome of FinishQuiz.
type finishedMsg struct {
	Results qz.Results
	Err     error
}

// exitedMsg is sent once Exit has saved the snapshot.
type exitedMsg struct{}

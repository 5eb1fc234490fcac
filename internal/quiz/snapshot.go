package quiz

import "time"

// ProgressSnapshot is the in-progress state saved under the module's
// quiz progress key so an interrupted quiz can be resumed.
type ProgressSnapshot struct {
	CurrentQuestionIndex int            `json:"currentQuestionIndex"`
	CompletedQuestions   []AnswerRecord `json:"completedQuestions"`
	TimeElapsed          int            `json:"timeElapsed"`
	StreakCount          int            `json:"streakCount"`
	RollingWindow        []bool         `json:"rollingWindow"`
	CurrentDifficulty    Difficulty     `json:"currentDifficulty"`
	LastUpdated          time.Time      `json:"lastUpdated"`
}

// Results is the final outcome of a quiz, saved under the module's quiz
// results key.
type Results struct {
	ModuleID           string         `json:"moduleId"`
	ModuleTitle        string         `json:"moduleTitle"`
	CompletedQuestions []AnswerRecord `json:"completedQuestions"`
	FinalAccuracy      float64        `json:"finalAccuracy"`
	TotalTime          int            `json:"totalTime"`
	CompletedAt        time.Time      `json:"completedAt"`
	Passed             bool           `json:"passed"`
}

// Correct counts correct answers in the results.
func (r Results) Correct() int { return CorrectCount(r.CompletedQuestions) }

package quiz

const (
	// MaxQuestions is the hard cap on answered questions per quiz.
	MaxQuestions = 20
	// MasteryMinQuestions is the minimum answered count for early exit.
	MasteryMinQuestions = 10
	// PassThreshold is the accuracy percentage needed to pass a module.
	PassThreshold = 70.0
)

// AnswerRecord is the immutable result of one submitted answer.
type AnswerRecord struct {
	QuestionID       string     `json:"questionId"`
	SelectedAnswer   string     `json:"selectedAnswer"`
	CorrectAnswer    string     `json:"correctAnswer"`
	IsCorrect        bool       `json:"isCorrect"`
	TimeSpentSeconds int        `json:"timeSpent"`
	Difficulty       Difficulty `json:"difficulty"`
}

// CorrectCount counts correct records.
func CorrectCount(records []AnswerRecord) int {
	n := 0
	for _, r := range records {
		if r.IsCorrect {
			n++
		}
	}
	return n
}

// Accuracy is the percentage of correct records, 0 when there are none.
func Accuracy(records []AnswerRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	return float64(CorrectCount(records)) / float64(len(records)) * 100
}

// IsLastQuestion reports whether the quiz should end after the answers
// recorded so far.
func IsLastQuestion(records []AnswerRecord) bool {
	n := len(records)
	return n >= MaxQuestions || (n >= MasteryMinQuestions && Accuracy(records) >= PassThreshold)
}

// Passed reports whether accuracy meets the pass threshold.
func Passed(accuracy float64) bool { return accuracy >= PassThreshold }

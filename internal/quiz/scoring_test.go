package quiz

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func records(total, correct int) []AnswerRecord {
	out := make([]AnswerRecord, total)
	for i := range out {
		out[i] = AnswerRecord{QuestionID: OptionID(i % 26), IsCorrect: i < correct}
	}
	return out
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.0, Accuracy(nil))
	assert.False(t, math.IsNaN(Accuracy([]AnswerRecord{})))
	assert.Equal(t, 100.0, Accuracy(records(4, 4)))
	assert.Equal(t, 70.0, Accuracy(records(10, 7)))
	assert.InDelta(t, 33.33, Accuracy(records(3, 1)), 0.01)
}

func TestIsLastQuestion(t *testing.T) {
	tests := []struct {
		name           string
		total, correct int
		want           bool
	}{
		{"empty", 0, 0, false},
		{"nine perfect", 9, 9, false},
		{"ten at seventy percent", 10, 7, true},
		{"ten at sixty percent", 10, 6, false},
		{"nineteen low", 19, 5, false},
		{"cap", 20, 0, true},
		{"past cap", 21, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLastQuestion(records(tt.total, tt.correct)))
		})
	}
}

func TestPassed(t *testing.T) {
	assert.True(t, Passed(70))
	assert.True(t, Passed(100))
	assert.False(t, Passed(65))
	assert.False(t, Passed(0))
}

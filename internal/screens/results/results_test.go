package results

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	qz "github.com/nayidisha/disha/internal/quiz"
)

type fakeReviewer []qz.Review

func (f fakeReviewer) ReviewQuestion(i int) (qz.Review, bool) {
	if i < 0 || i >= len(f) {
		return qz.Review{}, false
	}
	return f[i], true
}

func testOptions() []qz.Option {
	return []qz.Option{{ID: "a", Label: "A", Text: "x"}, {ID: "b", Label: "B", Text: "y"}}
}

func testResults(passed bool) qz.Results {
	return qz.Results{
		ModuleID:    "dom",
		ModuleTitle: "DOM Manipulation",
		CompletedQuestions: []qz.AnswerRecord{
			{QuestionID: "q1", SelectedAnswer: "a", CorrectAnswer: "a", IsCorrect: true},
			{QuestionID: "q2", SelectedAnswer: "b", CorrectAnswer: "a", IsCorrect: false},
		},
		FinalAccuracy: 50,
		TotalTime:     95,
		Passed:        passed,
	}
}

func testReviewer() fakeReviewer {
	res := testResults(false)
	return fakeReviewer{
		{Number: 1, Question: qz.Question{ID: "q1", Text: "First question?", Options: testOptions()}, Record: res.CompletedQuestions[0]},
		{Number: 2, Question: qz.Question{ID: "q2", Text: "Second question?", Options: testOptions(), Explanation: "Because."}, Record: res.CompletedQuestions[1]},
	}
}

func TestResultsScreen_Display(t *testing.T) {
	s := New(testResults(false), nil)
	view := s.View(90, 30)
	for _, want := range []string{"Keep practicing", "Questions: 2", "Correct: 1", "Time: 1:35", "70%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "Review") {
		t.Error("no review section without a reviewer")
	}
}

func TestResultsScreen_Passed(t *testing.T) {
	s := New(testResults(true), nil)
	if !strings.Contains(s.View(90, 30), "Module complete!") {
		t.Error("expected pass headline")
	}
}

func TestResultsScreen_ReviewNavigation(t *testing.T) {
	s := New(testResults(false), testReviewer())
	if len(s.reviews) != 2 {
		t.Fatalf("reviews = %d, want 2", len(s.reviews))
	}
	if !strings.Contains(s.View(90, 40), "First question?") {
		t.Error("expected first review")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	view := s.View(90, 40)
	if !strings.Contains(view, "Second question?") || !strings.Contains(view, "Your answer: B") {
		t.Errorf("expected second review:\n%s", view)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Errorf("selected = %d, want clamp at 1", s.selected)
	}
	if len(s.KeyHints()) != 2 {
		t.Errorf("KeyHints = %d, want 2", len(s.KeyHints()))
	}
}

func TestResultsScreen_Navigation_Enter(t *testing.T) {
	s := New(testResults(true), nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Error("expected a command on Enter (pop)")
	}
}

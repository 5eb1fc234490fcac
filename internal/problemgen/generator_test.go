package problemgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nayidisha/disha/internal/llm"
	"github.com/nayidisha/disha/internal/quiz"
)

func questionOutputFor(text string, correct int) questionOutput {
	return questionOutput{
		QuestionText: text,
		Topic:        "Variables",
		Options:      []string{"var", "let", "const", "static"},
		CorrectIndex: correct,
		Difficulty:   "easy",
		Explanation:  "const declares a block-scoped binding that cannot be reassigned.",
	}
}

func testInput() GenerateInput {
	return GenerateInput{
		ModuleID:    "js-basics",
		ModuleTitle: "JavaScript Basics",
		Topics:      []string{"Variables"},
		Difficulty:  quiz.DifficultyEasy,
	}
}

func TestGenerate(t *testing.T) {
	mock := llm.NewMockProvider(llm.JSONResponse(questionOutputFor("Which keyword declares a constant?", 2)))
	gen := New(mock, DefaultConfig(), nil)

	q, err := gen.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text != "Which keyword declares a constant?" {
		t.Errorf("unexpected text: %q", q.Text)
	}
	if q.CorrectIndex != 2 || q.ModuleID != "js-basics" || q.Difficulty != quiz.DifficultyEasy {
		t.Errorf("unexpected question: %+v", q)
	}

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	req := mock.Calls[0]
	if req.Schema != QuestionSchema {
		t.Error("expected question schema")
	}
	if !strings.Contains(req.Messages[0].Content, "Module: JavaScript Basics") {
		t.Errorf("prompt missing module: %q", req.Messages[0].Content)
	}
}

func TestGenerate_RetriesRejectedQuestion(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.JSONResponse(questionOutputFor("Which keyword declares a constant?", 2)),
		llm.JSONResponse(questionOutputFor("What does typeof null return?", 1)),
	)
	gen := New(mock, DefaultConfig(), nil)

	input := testInput()
	input.PriorQuestions = []string{"Which keyword declares a constant?"}
	q, err := gen.Generate(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text != "What does typeof null return?" {
		t.Errorf("expected regenerated question, got %q", q.Text)
	}
	if mock.CallCount() != 2 {
		t.Errorf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestGenerate_GivesUpAfterMaxAttempts(t *testing.T) {
	dup := questionOutputFor("Which keyword declares a constant?", 2)
	mock := llm.NewMockProvider(llm.JSONResponse(dup), llm.JSONResponse(dup), llm.JSONResponse(dup))
	gen := New(mock, DefaultConfig(), nil)

	input := testInput()
	input.PriorQuestions = []string{dup.QuestionText}
	_, err := gen.Generate(context.Background(), input)

	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Validator != "dedup" {
		t.Fatalf("expected dedup validation error, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	gen := New(mock, DefaultConfig(), nil)

	_, err := gen.Generate(context.Background(), testInput())
	var rl *llm.ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("provider errors should not be retried here, got %d calls", mock.CallCount())
	}
}

func TestGenerate_SchemaViolation(t *testing.T) {
	bad := questionOutputFor("Q?", 2)
	bad.Options = []string{"a", "b"}
	mock := llm.NewMockProvider(llm.JSONResponse(bad))
	gen := New(mock, DefaultConfig(), nil)

	_, err := gen.Generate(context.Background(), testInput())
	var invalid *llm.ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected invalid response error, got %v", err)
	}
}

func TestSource_ServesAndEvaluates(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.JSONResponse(questionOutputFor("Which keyword declares a constant?", 2)),
		llm.JSONResponse(questionOutputFor("Which keyword was used before ES2015?", 0)),
	)
	src := NewSource(New(mock, DefaultConfig(), nil))
	ctx := context.Background()

	raw, err := src.NextQuestion(ctx, quiz.QuestionRequest{ModuleID: "js-basics", ModuleTitle: "JavaScript Basics", Topics: []string{"Variables"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(raw.ID, "gen-") {
		t.Errorf("unexpected id %q", raw.ID)
	}
	if raw.ServedDifficulty != "medium" {
		t.Errorf("expected medium when no difficulty requested, got %q", raw.ServedDifficulty)
	}
	q, err := quiz.ParseQuestion(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.CorrectAnswer != "c" {
		t.Errorf("expected c, got %q", q.CorrectAnswer)
	}

	ev, err := src.Evaluate(ctx, quiz.EvaluationRequest{ModuleID: "js-basics", QuestionID: raw.ID, AnswerIndex: 1})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.IsCorrect || ev.ShouldEndQuiz {
		t.Errorf("unexpected evaluation %+v", ev)
	}
	ev, _ = src.Evaluate(ctx, quiz.EvaluationRequest{ModuleID: "js-basics", QuestionID: raw.ID, AnswerIndex: 2})
	if !ev.IsCorrect {
		t.Error("expected correct")
	}

	// the second prompt carries the served question and the mistake
	if _, err := src.NextQuestion(ctx, quiz.QuestionRequest{ModuleID: "js-basics", Difficulty: quiz.DifficultyHard}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prompt := mock.Calls[1].Messages[0].Content
	if !strings.Contains(prompt, "1. Which keyword declares a constant?") {
		t.Errorf("expected prior question in prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, `chose "let", correct was "const"`) {
		t.Errorf("expected mistake in prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Difficulty: hard") {
		t.Errorf("expected hard difficulty in prompt:\n%s", prompt)
	}
}

func TestSource_UnknownQuestion(t *testing.T) {
	src := NewSource(New(llm.NewMockProvider(), DefaultConfig(), nil))
	_, err := src.Evaluate(context.Background(), quiz.EvaluationRequest{QuestionID: "nope"})
	if !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}
}

package problemgen

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nayidisha/disha/internal/quiz"
)

// ErrUnknownQuestion is returned when evaluating a question the source
// never served.
var ErrUnknownQuestion = errors.New("unknown question")

// Source serves generated questions to a quiz controller and evaluates
// answers against the answer key it keeps for them. It is the direct-LLM
// replacement for the backend API.
type Source struct {
	gen Generator

	mu     sync.Mutex
	served map[string]*Question // by question id
	prior  map[string][]string  // question texts by module id
	misses map[string][]string  // mistake descriptions by module id
}

// NewSource wraps a Generator.
func NewSource(gen Generator) *Source {
	return &Source{
		gen:    gen,
		served: map[string]*Question{},
		prior:  map[string][]string{},
		misses: map[string][]string{},
	}
}

// NextQuestion implements quiz.QuestionSource.
func (s *Source) NextQuestion(ctx context.Context, req quiz.QuestionRequest) (quiz.RawQuestion, error) {
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = quiz.DifficultyMedium
	}

	s.mu.Lock()
	prior := append(append([]string(nil), req.Prior...), s.prior[req.ModuleID]...)
	misses := append([]string(nil), s.misses[req.ModuleID]...)
	s.mu.Unlock()

	q, err := s.gen.Generate(ctx, GenerateInput{
		ModuleID:       req.ModuleID,
		ModuleTitle:    req.ModuleTitle,
		Topics:         req.Topics,
		Difficulty:     difficulty,
		PriorQuestions: dedupe(prior),
		RecentErrors:   misses,
	})
	if err != nil {
		return quiz.RawQuestion{}, err
	}

	id := "gen-" + uuid.NewString()
	s.mu.Lock()
	s.served[id] = q
	s.prior[req.ModuleID] = append(s.prior[req.ModuleID], q.Text)
	s.mu.Unlock()

	correct := q.CorrectIndex
	return quiz.RawQuestion{
		ID:               id,
		Text:             q.Text,
		Topic:            q.Topic,
		Difficulty:       string(q.Difficulty),
		Options:          append([]string(nil), q.Options...),
		CorrectIndex:     &correct,
		Explanation:      q.Explanation,
		ServedDifficulty: string(difficulty),
	}, nil
}

// Evaluate implements quiz.Evaluator. It never ends a quiz early; the
// controller's own termination rule applies.
func (s *Source) Evaluate(_ context.Context, req quiz.EvaluationRequest) (quiz.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.served[req.QuestionID]
	if !ok {
		return quiz.Evaluation{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, req.QuestionID)
	}
	correct := req.AnswerIndex == q.CorrectIndex
	if !correct && req.AnswerIndex >= 0 && req.AnswerIndex < len(q.Options) {
		s.misses[q.ModuleID] = append(s.misses[q.ModuleID], fmt.Sprintf(
			"on %q chose %q, correct was %q",
			q.Text, q.Options[req.AnswerIndex], q.Options[q.CorrectIndex],
		))
	}
	return quiz.Evaluation{IsCorrect: correct}, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

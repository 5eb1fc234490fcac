package problemgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nayidisha/disha/internal/llm"
	"github.com/nayidisha/disha/internal/logging"
	"github.com/nayidisha/disha/internal/quiz"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	log      *logging.Logger
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config, log *logging.Logger) *LLMGenerator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &LLMGenerator{
		provider: provider,
		config:   cfg,
		log:      logging.OrNop(log).With("component", "problemgen"),
	}
}

// questionOutput is the raw LLM response before validation.
type questionOutput struct {
	QuestionText string   `json:"question_text"`
	Topic        string   `json:"topic"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Difficulty   string   `json:"difficulty"`
	Explanation  string   `json:"explanation"`
}

// Generate produces a single question for the given input context. A
// retryable validation failure is regenerated up to MaxAttempts times.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (*Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuizQuestion)

	var lastErr error
	for attempt := 1; attempt <= g.config.MaxAttempts; attempt++ {
		q, err := g.generateOnce(ctx, input)
		if err == nil {
			return q, nil
		}
		lastErr = err

		var verr *ValidationError
		if !errors.As(err, &verr) || !verr.Retryable {
			return nil, err
		}
		g.log.Warn("generated question rejected",
			"validator", verr.Validator,
			"reason", verr.Message,
			"attempt", attempt,
			"module_id", input.ModuleID,
		)
	}
	return nil, lastErr
}

func (g *LLMGenerator) generateOnce(ctx context.Context, input GenerateInput) (*Question, error) {
	req := llm.Request{
		System:      systemPrompt,
		Messages:    llm.UserPrompt(buildUserMessage(input, g.config)),
		Schema:      QuestionSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw questionOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	q := &Question{
		Text:         raw.QuestionText,
		Topic:        raw.Topic,
		Options:      raw.Options,
		CorrectIndex: raw.CorrectIndex,
		Difficulty:   quiz.Difficulty(raw.Difficulty),
		Explanation:  raw.Explanation,
		ModuleID:     input.ModuleID,
	}

	for _, v := range g.config.Validators {
		if verr := v.Validate(q, input); verr != nil {
			return nil, verr
		}
	}
	return q, nil
}

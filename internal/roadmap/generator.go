package roadmap

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nayidisha/disha/internal/llm"
)

// Generator produces a roadmap for onboarding selections.
type Generator interface {
	Generate(ctx context.Context, sel Selections) (Roadmap, error)
}

// Schema is the structured output definition for roadmap generation.
var Schema = &llm.Schema{
	Name:        "learning-roadmap",
	Description: "An ordered curriculum of learning modules",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":         map[string]any{"type": "string"},
			"description":   map[string]any{"type": "string"},
			"estimatedTime": map[string]any{"type": "string", "description": "Total time, e.g. \"30-40 hours\""},
			"modules": map[string]any{
				"type":     "array",
				"minItems": 3,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":                 map[string]any{"type": "string", "description": "Short kebab-case identifier, unique in the roadmap"},
						"title":              map[string]any{"type": "string"},
						"description":        map[string]any{"type": "string"},
						"topics":             map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"difficulty":         map[string]any{"type": "string", "enum": []any{"Beginner", "Intermediate", "Advanced"}},
						"estimatedTime":      map[string]any{"type": "string"},
						"learningObjectives": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
					"required":             []any{"id", "title", "description", "topics", "difficulty", "estimatedTime", "learningObjectives"},
					"additionalProperties": false,
				},
			},
			"aiRecommendations": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required":             []any{"title", "description", "estimatedTime", "modules", "aiRecommendations"},
		"additionalProperties": false,
	},
}

const roadmapSystemPrompt = `You design programming curricula. Given a subject, a learning goal and
the learner's skill level, produce an ordered roadmap of modules. Each
module must be small enough to be assessed by a short multiple-choice quiz
and list the concrete topics that quiz should cover. Order modules so that
each builds on the previous ones.`

// LLMGenerator generates roadmaps with a language model.
type LLMGenerator struct {
	provider  llm.Provider
	maxTokens int
	catalogue *Catalogue
}

// NewLLMGenerator returns a generator backed by provider.
func NewLLMGenerator(provider llm.Provider) *LLMGenerator {
	return &LLMGenerator{provider: provider, maxTokens: 4096, catalogue: DefaultCatalogue()}
}

// Generate asks the model for a roadmap and validates the result.
func (g *LLMGenerator) Generate(ctx context.Context, sel Selections) (Roadmap, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeRoadmap)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      roadmapSystemPrompt,
		Messages:    llm.UserPrompt(g.prompt(sel)),
		Schema:      Schema,
		MaxTokens:   g.maxTokens,
		Temperature: 0.4,
	})
	if err != nil {
		return Roadmap{}, fmt.Errorf("roadmap generation failed: %w", err)
	}

	var r Roadmap
	if err := json.Unmarshal(resp.Content, &r); err != nil {
		return Roadmap{}, fmt.Errorf("failed to parse roadmap: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Roadmap{}, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	r.TotalModules = len(r.Modules)
	if r.Difficulty == "" {
		r.Difficulty = capitalize(sel.SkillLevel)
	}
	if r.ID == "" {
		r.ID = roadmapID(sel)
	}
	return r, nil
}

func (g *LLMGenerator) prompt(sel Selections) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\nGoal: %s\nSkill level: %s\n", sel.Subject, sel.Goal, sel.SkillLevel)
	if subj, ok := g.catalogue.Subject(sel.Subject); ok {
		if goal, ok := subj.Goal(sel.Goal); ok && goal.Modules > 0 {
			fmt.Fprintf(&b, "Target module count: %d\n", goal.Modules)
		}
	}
	return b.String()
}

func roadmapID(sel Selections) string {
	slug := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
	}
	return fmt.Sprintf("roadmap_%s_%s_%s", slug(sel.Subject), slug(sel.Goal), slug(sel.SkillLevel))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package problemgen

import "github.com/nayidisha/disha/internal/llm"

// QuestionSchema defines the JSON schema for LLM question generation responses.
var QuestionSchema = &llm.Schema{
	Name:        "module-quiz-question",
	Description: "A single multiple-choice question for a learning module",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_text": map[string]any{
				"type":        "string",
				"description": "The question prompt shown to the learner",
			},
			"topic": map[string]any{
				"type":        "string",
				"description": "Which of the module topics the question exercises",
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"minItems":    4,
				"maxItems":    4,
				"description": "Exactly 4 answer options, one of which is correct",
			},
			"correct_index": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     3,
				"description": "Zero-based index of the correct option",
			},
			"difficulty": map[string]any{
				"type": "string",
				"enum": []any{"easy", "medium", "hard"},
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Why the correct option is right and the common mistake behind the distractors",
			},
		},
		"required":             []any{"question_text", "topic", "options", "correct_index", "difficulty", "explanation"},
		"additionalProperties": false,
	},
}

package problemgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a programming instructor writing quiz questions for a module in a learner's roadmap.

Rules:
- Generate a single multiple-choice question on one of the module topics, at the requested difficulty.
- easy: recall of a definition or syntax. medium: applying a concept to a short scenario or snippet. hard: reasoning about edge cases, trade-offs or behaviour of non-obvious code.
- Provide exactly 4 options where exactly one is correct. Distractors should reflect common misconceptions, not random values.
- Do not use "All of the above" or "None of the above".
- Keep code inline and short. Do not reference images or external material.
- The explanation should say why the correct option is right in two or three sentences.
- Do not repeat any question from the "already asked" list.`

// buildUserMessage constructs the user message from GenerateInput and Config limits.
func buildUserMessage(input GenerateInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Module: %s\n", input.ModuleTitle)
	fmt.Fprintf(&b, "Topics: %s\n", strings.Join(input.Topics, ", "))
	fmt.Fprintf(&b, "Difficulty: %s\n", input.Difficulty)

	b.WriteString("\nAlready asked in this quiz:\n")
	b.WriteString(buildDedup(input.PriorQuestions, cfg.MaxPriorQuestions))

	b.WriteString("\nRecent mistakes by this learner:\n")
	b.WriteString(buildErrors(input.RecentErrors, cfg.MaxRecentErrors))

	return b.String()
}

// buildErrors formats recent errors for the prompt, respecting the max limit.
func buildErrors(errors []string, max int) string {
	return numberedList(errors, max)
}

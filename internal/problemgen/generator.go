package problemgen

import "context"

// Generator produces module quiz questions.
type Generator interface {
	// Generate produces a single question for the given input context.
	// All configured validators are run before returning.
	Generate(ctx context.Context, input GenerateInput) (*Question, error)
}

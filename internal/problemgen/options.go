package problemgen

import (
	"fmt"
	"strings"
)

var catchAllOptions = []string{"all of the above", "none of the above"}

// OptionsValidator checks that there are exactly 4 distinct non-empty
// options and that none is a catch-all answer.
type OptionsValidator struct{}

func (v *OptionsValidator) Name() string { return "options" }

func (v *OptionsValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	if len(q.Options) != 4 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("must have exactly 4 options, got %d", len(q.Options)),
			Retryable: true,
		}
	}
	seen := make(map[string]bool, len(q.Options))
	for i, o := range q.Options {
		o = strings.TrimSpace(o)
		if o == "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("option %d is empty", i+1),
				Retryable: true,
			}
		}
		key := strings.ToLower(o)
		if seen[key] {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("duplicate option %q", o),
				Retryable: true,
			}
		}
		seen[key] = true
		for _, c := range catchAllOptions {
			if key == c {
				return &ValidationError{
					Validator: v.Name(),
					Message:   fmt.Sprintf("option %q is not allowed", o),
					Retryable: true,
				}
			}
		}
	}
	return nil
}

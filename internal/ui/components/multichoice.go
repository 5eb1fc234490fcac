package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/nayidisha/disha/internal/quiz"
	"github.com/nayidisha/disha/internal/ui/theme"
)

// MultiChoice renders lettered answer options. Selection state lives in
// the quiz controller; this only maps keys to option ids and draws.
type MultiChoice struct {
	Options  []quiz.Option
	Selected string
	// Correct is set once the answer has been evaluated.
	Correct  string
	Revealed bool
}

// NewMultiChoice creates a selector over opts.
func NewMultiChoice(opts []quiz.Option, selected string) MultiChoice {
	return MultiChoice{Options: opts, Selected: selected}
}

// Reveal marks correct as the right answer and locks the display.
func (m MultiChoice) Reveal(correct string) MultiChoice {
	m.Correct = correct
	m.Revealed = true
	return m
}

// KeyChoice maps a key to an option id: option letters select directly
// and up/down move relative to the current selection.
func (m MultiChoice) KeyChoice(key string) (string, bool) {
	if len(m.Options) == 0 || m.Revealed {
		return "", false
	}
	switch key {
	case "up", "k":
		return m.move(-1), true
	case "down", "j":
		return m.move(1), true
	}
	k := strings.ToLower(key)
	for _, o := range m.Options {
		if o.ID == k {
			return o.ID, true
		}
	}
	return "", false
}

func (m MultiChoice) move(delta int) string {
	cur := -1
	for i, o := range m.Options {
		if o.ID == m.Selected {
			cur = i
		}
	}
	if cur < 0 {
		if delta < 0 {
			return m.Options[len(m.Options)-1].ID
		}
		return m.Options[0].ID
	}
	next := min(max(cur+delta, 0), len(m.Options)-1)
	return m.Options[next].ID
}

// View renders the options wrapped to width.
func (m MultiChoice) View(width int) string {
	var b strings.Builder
	for _, o := range m.Options {
		prefix := "  "
		if o.ID == m.Selected && !m.Revealed {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, o.Label, o.Text)

		style := theme.Unselected
		switch {
		case m.Revealed && o.ID == m.Correct:
			style = theme.Correct
		case m.Revealed && o.ID == m.Selected:
			style = theme.Incorrect
		case m.Revealed:
			style = theme.Dimmed
		case o.ID == m.Selected:
			style = theme.Selected
		}
		b.WriteString(style.Width(width).Render(line))
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().Render(strings.TrimRight(b.String(), "\n"))
}

package results

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	qz "github.com/nayidisha/disha/internal/quiz"
	"github.com/nayidisha/disha/internal/router"
	"github.com/nayidisha/disha/internal/screen"
	"github.com/nayidisha/disha/internal/ui/components"
	"github.com/nayidisha/disha/internal/ui/layout"
	"github.com/nayidisha/disha/internal/ui/theme"
)

// Reviewer looks up answered questions by position.
type Reviewer interface {
	ReviewQuestion(i int) (qz.Review, bool)
}

// ResultsScreen shows the outcome of a finished quiz.
type ResultsScreen struct {
	results  qz.Results
	reviews  []qz.Review
	selected int
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a results screen. reviewer may be nil, in which case only
// the summary is shown.
func New(res qz.Results, reviewer Reviewer) *ResultsScreen {
	s := &ResultsScreen{results: res}
	if reviewer != nil {
		for i := 0; ; i++ {
			rv, ok := reviewer.ReviewQuestion(i)
			if !ok {
				break
			}
			s.reviews = append(s.reviews, rv)
		}
	}
	return s
}

func (s *ResultsScreen) Init() tea.Cmd { return nil }

func (s *ResultsScreen) Title() string { return "Quiz Results" }

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Back to roadmap"}}
	if len(s.reviews) > 0 {
		hints = append([]layout.KeyHint{{Key: "↑↓", Description: "Review"}}, hints...)
	}
	return hints
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.reviews)-1 {
			s.selected++
		}
	case "enter", "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	res := s.results
	var b strings.Builder

	headline, style := "Module complete!", theme.Correct
	if !res.Passed {
		headline, style = "Keep practicing", theme.Incorrect
	}
	b.WriteString(layout.Centered(width, style, headline))
	b.WriteString("\n")
	if res.ModuleTitle != "" {
		b.WriteString(layout.Centered(width, theme.Dimmed, res.ModuleTitle))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	stats := fmt.Sprintf("Questions: %d      Correct: %d      Time: %d:%02d",
		len(res.CompletedQuestions), res.Correct(), res.TotalTime/60, res.TotalTime%60)
	b.WriteString(layout.Centered(width, theme.Body, stats))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("Accuracy", res.FinalAccuracy, true, min(width-8, 60)).View()
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar))
	b.WriteString("\n")

	verdict := fmt.Sprintf("You need %.0f%% to complete a module.", qz.PassThreshold)
	if res.Passed {
		verdict = "This module is now marked complete."
	}
	b.WriteString(layout.Centered(width, theme.Dimmed, verdict))
	b.WriteString("\n\n")

	if len(s.reviews) > 0 {
		b.WriteString(s.renderReview(width))
	}
	return b.String()
}

func (s *ResultsScreen) renderReview(width int) string {
	var b strings.Builder
	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))
	b.WriteString(layout.Centered(width, theme.Dimmed, "Review"))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n")

	var marks strings.Builder
	for i, rv := range s.reviews {
		mark := theme.Correct.Render("✓")
		if !rv.Record.IsCorrect {
			mark = theme.Incorrect.Render("✗")
		}
		if i == s.selected {
			mark = lipgloss.NewStyle().Underline(true).Render(mark)
		}
		marks.WriteString(mark + " ")
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, marks.String()))
	b.WriteString("\n\n")

	rv := s.reviews[s.selected]
	textWidth := layout.TextWidth(width)
	detail := []string{
		theme.Body.Bold(true).Width(textWidth).Render(fmt.Sprintf("%d. %s", rv.Number, rv.Question.Text)),
		theme.Dimmed.Render(fmt.Sprintf("Your answer: %s   Correct: %s   Time: %ds",
			optionText(rv.Question, rv.Record.SelectedAnswer),
			optionText(rv.Question, rv.Record.CorrectAnswer),
			rv.Record.TimeSpentSeconds)),
	}
	if rv.Question.Explanation != "" {
		detail = append(detail, theme.Body.Width(textWidth).Render(rv.Question.Explanation))
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(detail, "\n")))
	return b.String()
}

func optionText(q qz.Question, id string) string {
	if o, ok := q.Option(id); ok {
		return o.Label
	}
	return "-"
}

package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	qz "github.com/nayidisha/disha/internal/quiz"
	"github.com/nayidisha/disha/internal/ui/layout"
	"github.com/nayidisha/disha/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case s.confirmExit:
		return renderExitConfirm(width)
	case s.state.Phase == qz.PhaseUnavailable:
		return s.renderUnavailable(width)
	case s.loading() || s.state.Current == nil:
		return s.renderLoading(width)
	}
	return s.renderQuestion(width)
}

func (s *QuizScreen) renderQuestion(width int) string {
	st := s.state
	q := st.Current
	textWidth := layout.TextWidth(width)

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + q.Topic)
	infoRight := lipgloss.NewStyle().
		Foreground(theme.DifficultyColor(string(q.Difficulty))).
		Render(string(q.Difficulty))

	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n")

	if st.UsedFallback {
		b.WriteString(theme.Banner.Render("  Offline question: the question service is unreachable."))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	block := func(s string) {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s))
		b.WriteString("\n\n")
	}

	block(lipgloss.NewStyle().
		Width(textWidth).
		Foreground(theme.Text).
		Bold(true).
		Render(fmt.Sprintf("%d. %s", st.QuestionNumber()-boolToInt(st.Submitted), q.Text)))

	if q.Code != "" {
		block(theme.Code.Width(textWidth).Render(q.Code))
	}

	block(s.choices().View(textWidth))

	if st.HintVisible && !st.Submitted {
		block(theme.Hint.Width(textWidth).Render("Hint: " + q.Hint()))
	}

	if s.feedback != nil {
		b.WriteString(renderFeedback(*s.feedback, width, textWidth))
	}

	return b.String()
}

// renderFeedback renders the verdict block under the revealed options.
func renderFeedback(fb qz.Feedback, width, textWidth int) string {
	var b strings.Builder
	if fb.IsCorrect {
		b.WriteString(layout.Centered(width, theme.Correct, "Correct!"))
	} else {
		b.WriteString(layout.Centered(width, theme.Incorrect, "Not quite"))
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, theme.Dimmed,
			fmt.Sprintf("Correct answer: %s", strings.ToUpper(fb.CorrectAnswer))))
	}
	b.WriteString("\n")

	if fb.Explanation != "" {
		b.WriteString("\n")
		exp := lipgloss.NewStyle().Width(textWidth).Foreground(theme.Text).Render(fb.Explanation)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, exp))
		b.WriteString("\n")
	}

	if note := difficultyNote(fb); note != "" {
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Accent).Bold(true), note))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Dimmed,
		fmt.Sprintf("Streak %d · Accuracy %.0f%% · Enter to continue", fb.Streak, fb.Accuracy)))
	return b.String()
}

func difficultyNote(fb qz.Feedback) string {
	switch fb.DifficultyChange {
	case qz.ChangeIncreased:
		return fmt.Sprintf("Level up! Questions are now %s.", fb.Difficulty)
	case qz.ChangeDecreased:
		return fmt.Sprintf("Easing off. Questions are now %s.", fb.Difficulty)
	}
	return ""
}

func (s *QuizScreen) renderLoading(width int) string {
	return "\n\n" + layout.Centered(width, theme.Dimmed,
		s.spinner.View()+" Preparing your next question...")
}

func (s *QuizScreen) renderUnavailable(width int) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(width, theme.Incorrect, "No question available"))
	b.WriteString("\n\n")
	reason := "The question service could not be reached and there are no offline questions left."
	if s.state.LastError != nil {
		reason += "\n" + s.state.LastError.Error()
	}
	b.WriteString(layout.Centered(width, theme.Dimmed, reason))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Primary), "[R] Retry   [Esc] Exit"))
	return b.String()
}

func renderExitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true), "Leave this quiz?"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Dimmed, "Your progress is saved and you can pick up where you left off."))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Success), "[Y] Yes, leave"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Primary), "[N] No, keep going"))
	return b.String()
}

func renderError(width int, msg string) string {
	return "\n\n" + layout.Centered(width, theme.Incorrect, "Something went wrong") +
		"\n\n" + layout.Centered(width, theme.Dimmed, msg) +
		"\n\n" + layout.Centered(width, theme.Dimmed, "Press any key to go back.")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Package quiz is the terminal screen for a module quiz. It renders the
// controller's state and turns key presses into controller calls.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	qz "github.com/nayidisha/disha/internal/quiz"
	"github.com/nayidisha/disha/internal/router"
	"github.com/nayidisha/disha/internal/screen"
	"github.com/nayidisha/disha/internal/ui/components"
	"github.com/nayidisha/disha/internal/ui/layout"
	"github.com/nayidisha/disha/internal/ui/theme"
)

// ResultsFunc builds the screen shown after the quiz finishes.
type ResultsFunc func(qz.Results) screen.Screen

// QuizScreen implements screen.Screen for one module quiz.
type QuizScreen struct {
	ctx     context.Context
	ctrl    *qz.Controller
	results ResultsFunc

	state       qz.Session
	feedback    *qz.Feedback
	spinner     spinner.Model
	confirmExit bool
	busy        bool // a controller call is in flight
	errMsg      string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.StatusProvider = (*QuizScreen)(nil)
var _ screen.BackHandler = (*QuizScreen)(nil)

// New creates a screen driving ctrl. results may be nil, in which case the
// screen pops itself when the quiz ends.
func New(ctx context.Context, ctrl *qz.Controller, results ResultsFunc) *QuizScreen {
	return &QuizScreen{
		ctx:     ctx,
		ctrl:    ctrl,
		results: results,
		state:   ctrl.State(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary)),
		),
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	s.busy = true
	return tea.Batch(s.startCmd(), clockTick(), s.spinner.Tick)
}

func (s *QuizScreen) Title() string {
	if s.state.ModuleTitle != "" {
		return s.state.ModuleTitle
	}
	return "Quiz"
}

func (s *QuizScreen) HandlesBack() bool { return true }

func (s *QuizScreen) Status() string {
	st := s.state
	return fmt.Sprintf("Q%d/%d  %.0f%%  streak %d  %s",
		min(st.QuestionNumber(), qz.MaxQuestions), qz.MaxQuestions,
		st.Accuracy(), st.Streak, formatClock(st.ElapsedSeconds))
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.confirmExit:
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave quiz"},
			{Key: "N", Description: "Keep going"},
		}
	case s.feedback != nil:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Continue"},
			{Key: "Esc", Description: "Exit"},
		}
	case s.state.Phase == qz.PhaseSubmitted:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "Esc", Description: "Exit"},
		}
	case s.state.Phase == qz.PhaseUnavailable:
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Exit"},
		}
	case s.state.Phase == qz.PhaseAnswering:
		return []layout.KeyHint{
			{Key: "A-D", Description: "Choose"},
			{Key: "Enter", Description: "Submit"},
			{Key: "H", Description: "Hint"},
			{Key: "Esc", Description: "Exit"},
		}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Exit"}}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionLoadedMsg:
		return s.handleLoaded(msg)

	case clockTickMsg:
		if s.state.Phase == qz.PhaseClosed {
			return s, nil
		}
		s.ctrl.Tick()
		s.refresh()
		return s, clockTick()

	case submittedMsg:
		return s.handleSubmitted(msg)

	case feedbackExpiredMsg:
		if s.feedback == nil || msg.Answered != len(s.state.Completed) {
			return s, nil
		}
		// Only the feedback goes away; the revealed answer stays until the
		// learner moves on.
		s.feedback = nil
		s.ctrl.DismissFeedback()
		return s, nil

	case finishedMsg:
		return s.handleFinished(msg)

	case exitedMsg:
		return s, func() tea.Msg { return router.PopScreenMsg{} }

	case spinner.TickMsg:
		if !s.loading() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) refresh() {
	s.state = s.ctrl.State()
}

func (s *QuizScreen) loading() bool {
	return s.state.Phase == qz.PhaseIdle || s.state.Phase == qz.PhaseLoading
}

func (s *QuizScreen) handleLoaded(msg questionLoadedMsg) (screen.Screen, tea.Cmd) {
	if errors.Is(msg.Err, qz.ErrSuperseded) {
		return s, nil
	}
	s.busy = false
	s.refresh()
	if msg.Err != nil && !errors.Is(msg.Err, qz.ErrFallbackExhausted) && !errors.Is(msg.Err, qz.ErrClosed) {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	if msg.Err == nil && s.state.Phase == qz.PhaseSubmitted && s.state.Current == nil {
		// Resumed after the deciding answer.
		return s.advance()
	}
	return s, nil
}

func (s *QuizScreen) handleSubmitted(msg submittedMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	s.refresh()
	if msg.Err != nil {
		if !errors.Is(msg.Err, qz.ErrClosed) {
			s.errMsg = msg.Err.Error()
		}
		return s, nil
	}
	if msg.Feedback == nil {
		return s, nil
	}
	s.feedback = msg.Feedback
	answered := len(s.state.Completed)
	wait := max(time.Until(msg.Feedback.Until), 0)
	return s, tea.Tick(wait, func(time.Time) tea.Msg {
		return feedbackExpiredMsg{Answered: answered}
	})
}

// advance leaves the feedback for the current answer and either finishes
// the quiz or loads the next question.
func (s *QuizScreen) advance() (screen.Screen, tea.Cmd) {
	if s.busy {
		return s, nil
	}
	s.feedback = nil
	s.ctrl.DismissFeedback()
	s.busy = true
	if s.ctrl.IsLastQuestion() {
		return s, s.finishCmd()
	}
	return s, tea.Batch(s.advanceCmd(), s.spinner.Tick)
}

func (s *QuizScreen) handleFinished(msg finishedMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	s.refresh()
	if msg.Err != nil {
		if errors.Is(msg.Err, qz.ErrClosed) {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	if s.results == nil {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	next := s.results(msg.Results)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		s.errMsg = ""
		return s, s.exitCmd()
	}

	if s.confirmExit {
		switch key {
		case "y", "Y":
			s.confirmExit = false
			return s, s.exitCmd()
		case "n", "N", "esc":
			s.confirmExit = false
		}
		return s, nil
	}

	if key == "esc" {
		s.confirmExit = true
		return s, nil
	}

	if s.feedback != nil {
		if key == "enter" || key == "space" || key == " " {
			return s.advance()
		}
		return s, nil
	}

	switch s.state.Phase {
	case qz.PhaseUnavailable:
		if (key == "r" || key == "R") && !s.busy && s.ctrl.CanRetry() {
			s.busy = true
			s.state.Phase = qz.PhaseLoading
			return s, tea.Batch(s.loadCmd(), s.spinner.Tick)
		}

	case qz.PhaseAnswering:
		switch key {
		case "enter":
			if s.state.SelectedAnswer == "" || s.busy {
				return s, nil
			}
			s.busy = true
			return s, s.submitCmd()
		case "h", "H":
			s.ctrl.ToggleHint()
			s.refresh()
			return s, nil
		}
		if id, ok := s.choices().KeyChoice(key); ok {
			s.ctrl.SelectAnswer(id)
			s.refresh()
		}

	case qz.PhaseSubmitted:
		if key == "enter" || key == "space" || key == " " {
			return s.advance()
		}
	}
	return s, nil
}

func (s *QuizScreen) choices() components.MultiChoice {
	if s.state.Current == nil {
		return components.MultiChoice{}
	}
	mc := components.NewMultiChoice(s.state.Current.Options, s.state.SelectedAnswer)
	if s.state.Submitted {
		mc = mc.Reveal(s.state.Current.CorrectAnswer)
	}
	return mc
}

func (s *QuizScreen) startCmd() tea.Cmd {
	ctrl, ctx := s.ctrl, s.ctx
	return func() tea.Msg {
		return questionLoadedMsg{Err: ctrl.Start(ctx)}
	}
}

func (s *QuizScreen) loadCmd() tea.Cmd {
	ctrl, ctx := s.ctrl, s.ctx
	return func() tea.Msg {
		return questionLoadedMsg{Err: ctrl.LoadNextQuestion(ctx)}
	}
}

func (s *QuizScreen) advanceCmd() tea.Cmd {
	ctrl, ctx := s.ctrl, s.ctx
	return func() tea.Msg {
		return questionLoadedMsg{Err: ctrl.AdvanceToNextQuestion(ctx)}
	}
}

func (s *QuizScreen) submitCmd() tea.Cmd {
	ctrl, ctx := s.ctrl, s.ctx
	return func() tea.Msg {
		fb, err := ctrl.SubmitAnswer(ctx)
		return submittedMsg{Feedback: fb, Err: err}
	}
}

func (s *QuizScreen) finishCmd() tea.Cmd {
	ctrl, ctx := s.ctrl, s.ctx
	return func() tea.Msg {
		res, err := ctrl.FinishQuiz(ctx)
		return finishedMsg{Results: res, Err: err}
	}
}

func (s *QuizScreen) exitCmd() tea.Cmd {
	ctrl, ctx := s.ctrl, s.ctx
	return func() tea.Msg {
		_ = ctrl.Exit(ctx)
		return exitedMsg{}
	}
}

func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return clockTickMsg{} })
}

func formatClock(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

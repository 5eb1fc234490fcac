package onboarding

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	ob "github.com/nayidisha/disha/internal/onboarding"
	rm "github.com/nayidisha/disha/internal/roadmap"
	"github.com/nayidisha/disha/internal/router"
	"github.com/nayidisha/disha/internal/screen"
	"github.com/nayidisha/disha/internal/ui/components"
	"github.com/nayidisha/disha/internal/ui/layout"
	"github.com/nayidisha/disha/internal/ui/theme"
)

// Starter acquires a roadmap for the chosen selections.
type Starter interface {
	Start(ctx context.Context, sel rm.Selections) (ob.Result, error)
}

type step int

const (
	stepSubject step = iota
	stepGoal
	stepLevel
	stepGenerating
)

type chosenMsg struct{ value string }

type startedMsg struct {
	Result ob.Result
	Err    error
}

// OnboardingScreen collects subject, goal and level and generates the
// roadmap.
type OnboardingScreen struct {
	ctx     context.Context
	starter Starter
	cat     *rm.Catalogue
	next    func() screen.Screen

	step    step
	sel     rm.Selections
	subject rm.Subject
	menu    components.Menu
	spinner spinner.Model
	errMsg  string
}

var _ screen.Screen = (*OnboardingScreen)(nil)
var _ screen.KeyHintProvider = (*OnboardingScreen)(nil)
var _ screen.BackHandler = (*OnboardingScreen)(nil)

// New creates the onboarding flow. next builds the screen shown once the
// roadmap is ready.
func New(ctx context.Context, starter Starter, cat *rm.Catalogue, next func() screen.Screen) *OnboardingScreen {
	if cat == nil {
		cat = rm.DefaultCatalogue()
	}
	s := &OnboardingScreen{
		ctx:     ctx,
		starter: starter,
		cat:     cat,
		next:    next,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary)),
		),
	}
	s.enter(stepSubject)
	return s
}

func (s *OnboardingScreen) Init() tea.Cmd { return nil }

func (s *OnboardingScreen) Title() string { return "Get Started" }

func (s *OnboardingScreen) HandlesBack() bool { return s.step > stepSubject }

func (s *OnboardingScreen) KeyHints() []layout.KeyHint {
	if s.step == stepGenerating {
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
	}
	if s.step > stepSubject {
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}
	return hints
}

// enter switches to st and builds its menu.
func (s *OnboardingScreen) enter(st step) {
	s.step = st
	var items []components.MenuItem
	pick := func(v string) func() tea.Cmd {
		return func() tea.Cmd { return func() tea.Msg { return chosenMsg{value: v} } }
	}
	switch st {
	case stepSubject:
		for _, subj := range s.cat.Subjects {
			items = append(items, components.MenuItem{Label: subj.Name, Detail: subj.Description, Action: pick(subj.Name)})
		}
	case stepGoal:
		for _, g := range s.subject.Goals {
			items = append(items, components.MenuItem{
				Label:  g.Title,
				Detail: fmt.Sprintf("%s · %d modules", g.Duration, g.Modules),
				Action: pick(g.ID),
			})
		}
	case stepLevel:
		for _, l := range s.cat.Levels {
			items = append(items, components.MenuItem{Label: strings.ToUpper(l[:1]) + l[1:], Action: pick(l)})
		}
	}
	s.menu = components.NewMenu(items)
}

func (s *OnboardingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case chosenMsg:
		return s.choose(msg.value)

	case startedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.enter(stepLevel)
			return s, nil
		}
		if s.next == nil {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		next := s.next()
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case spinner.TickMsg:
		if s.step != stepGenerating {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.step == stepGenerating {
			return s, nil
		}
		if msg.String() == "esc" && s.step > stepSubject {
			s.errMsg = ""
			s.enter(s.step - 1)
			return s, nil
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *OnboardingScreen) choose(v string) (screen.Screen, tea.Cmd) {
	s.errMsg = ""
	switch s.step {
	case stepSubject:
		subj, ok := s.cat.Subject(v)
		if !ok {
			return s, nil
		}
		s.subject = subj
		s.sel = rm.Selections{Subject: subj.Name}
		s.enter(stepGoal)
	case stepGoal:
		s.sel.Goal = v
		s.enter(stepLevel)
	case stepLevel:
		s.sel.SkillLevel = v
		s.step = stepGenerating
		return s, tea.Batch(s.startCmd(), s.spinner.Tick)
	}
	return s, nil
}

func (s *OnboardingScreen) startCmd() tea.Cmd {
	starter, ctx, sel := s.starter, s.ctx, s.sel
	return func() tea.Msg {
		res, err := starter.Start(ctx, sel)
		return startedMsg{Result: res, Err: err}
	}
}

func (s *OnboardingScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Title, "N A Y I   D I S H A"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Subtitle, "A new direction for your learning"))
	b.WriteString("\n\n")

	if s.step == stepGenerating {
		b.WriteString(layout.Centered(width, theme.Dimmed,
			s.spinner.View()+fmt.Sprintf(" Building your %s roadmap...", s.sel.Subject)))
		return b.String()
	}

	prompts := map[step]string{
		stepSubject: "What do you want to learn?",
		stepGoal:    fmt.Sprintf("What is your goal with %s?", s.subject.Name),
		stepLevel:   "How much experience do you have?",
	}
	b.WriteString(layout.Centered(width, theme.Body.Bold(true), prompts[s.step]))
	b.WriteString("\n\n")
	b.WriteString(s.menu.View())

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, theme.Incorrect, s.errMsg))
	}
	return b.String()
}

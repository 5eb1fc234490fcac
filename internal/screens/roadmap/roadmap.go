package roadmap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/nayidisha/disha/internal/onboarding"
	rm "github.com/nayidisha/disha/internal/roadmap"
	"github.com/nayidisha/disha/internal/router"
	"github.com/nayidisha/disha/internal/screen"
	"github.com/nayidisha/disha/internal/ui/components"
	"github.com/nayidisha/disha/internal/ui/layout"
	"github.com/nayidisha/disha/internal/ui/theme"
)

// Service is the part of onboarding.Service this screen uses.
type Service interface {
	Load(ctx context.Context) (rm.View, error)
	BeginModule(ctx context.Context, moduleID string) error
}

// QuizFunc builds the quiz screen for a module.
type QuizFunc func(m rm.ModuleView) (screen.Screen, error)

type viewLoadedMsg struct {
	View rm.View
	Err  error
}

type moduleStartedMsg struct {
	Screen screen.Screen
	Err    error
}

// RoadmapScreen lists the learner's modules with their status.
type RoadmapScreen struct {
	ctx   context.Context
	svc   Service
	quiz  QuizFunc
	empty screen.Screen // shown instead when there is no roadmap yet

	view     rm.View
	loaded   bool
	menu     components.Menu
	errMsg   string
	starting bool
}

var _ screen.Screen = (*RoadmapScreen)(nil)
var _ screen.KeyHintProvider = (*RoadmapScreen)(nil)
var _ screen.StatusProvider = (*RoadmapScreen)(nil)

// New creates the roadmap screen. onboard, when set, replaces this screen
// if the learner has no roadmap yet.
func New(ctx context.Context, svc Service, quiz QuizFunc, onboard screen.Screen) *RoadmapScreen {
	return &RoadmapScreen{ctx: ctx, svc: svc, quiz: quiz, empty: onboard}
}

func (s *RoadmapScreen) Init() tea.Cmd { return s.loadCmd() }

func (s *RoadmapScreen) Title() string { return "Roadmap" }

func (s *RoadmapScreen) Status() string {
	if !s.loaded {
		return ""
	}
	return fmt.Sprintf("%d/%d modules", s.view.CompletedModules, len(s.view.Modules))
}

func (s *RoadmapScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start quiz"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *RoadmapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case viewLoadedMsg:
		return s.handleLoaded(msg)

	case router.ScreenPoppedMsg:
		return s, s.loadCmd()

	case moduleStartedMsg:
		s.starting = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		next := msg.Screen
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }

	case tea.KeyMsg:
		if !s.loaded || s.starting {
			return s, nil
		}
		s.errMsg = ""
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *RoadmapScreen) handleLoaded(msg viewLoadedMsg) (screen.Screen, tea.Cmd) {
	if errors.Is(msg.Err, onboarding.ErrNoRoadmap) && s.empty != nil {
		next := s.empty
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	}
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}

	prev := -1
	if s.loaded {
		prev = s.menu.Selected
	}
	s.view = msg.View
	s.loaded = true
	s.menu = s.buildMenu()
	if prev >= 0 {
		s.menu.Select(prev)
	} else if next, ok := s.view.NextModule(); ok {
		for i, m := range s.view.Modules {
			if m.ID == next.ID {
				s.menu.Select(i)
			}
		}
	}
	return s, nil
}

func (s *RoadmapScreen) buildMenu() components.Menu {
	items := make([]components.MenuItem, len(s.view.Modules))
	for i, m := range s.view.Modules {
		mod := m
		detail := string(m.Status)
		if m.Status == rm.StatusCompleted {
			detail = fmt.Sprintf("%s · %.0f%%", m.Status, m.Score)
		}
		items[i] = components.MenuItem{
			Label:  fmt.Sprintf("%d. %s", i+1, m.Title),
			Detail: detail,
			Action: func() tea.Cmd { return s.beginCmd(mod) },
		}
	}
	return components.NewMenu(items)
}

func (s *RoadmapScreen) loadCmd() tea.Cmd {
	svc, ctx := s.svc, s.ctx
	return func() tea.Msg {
		v, err := svc.Load(ctx)
		return viewLoadedMsg{View: v, Err: err}
	}
}

// beginCmd records the module as current and builds its quiz screen.
func (s *RoadmapScreen) beginCmd(m rm.ModuleView) tea.Cmd {
	if s.quiz == nil {
		return nil
	}
	s.starting = true
	svc, ctx, build := s.svc, s.ctx, s.quiz
	return func() tea.Msg {
		if err := svc.BeginModule(ctx, m.ID); err != nil {
			return moduleStartedMsg{Err: err}
		}
		next, err := build(m)
		return moduleStartedMsg{Screen: next, Err: err}
	}
}

func (s *RoadmapScreen) View(width, height int) string {
	if !s.loaded {
		if s.errMsg != "" {
			return "\n\n" + layout.Centered(width, theme.Incorrect, s.errMsg)
		}
		return "\n\n" + layout.Centered(width, theme.Dimmed, "Loading your roadmap...")
	}

	var b strings.Builder
	r := s.view.Roadmap
	b.WriteString(layout.Centered(width, theme.Title, r.Title))
	b.WriteString("\n")
	sub := fmt.Sprintf("%s · %s · %s", s.view.Selections.Goal, r.Difficulty, r.EstimatedTime)
	b.WriteString(layout.Centered(width, theme.Dimmed, strings.Trim(sub, " ·")))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("Progress", s.view.OverallProgress, true, min(width-8, 60)).View()
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar))
	b.WriteString("\n\n")

	b.WriteString(s.menu.View())

	if s.menu.Selected >= 0 && s.menu.Selected < len(s.view.Modules) {
		b.WriteString("\n")
		b.WriteString(renderDetail(s.view.Modules[s.menu.Selected], layout.TextWidth(width)))
	}

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Incorrect.Render("  " + s.errMsg))
	}
	return b.String()
}

func renderDetail(m rm.ModuleView, width int) string {
	var lines []string
	if m.Description != "" {
		lines = append(lines, theme.Body.Width(width).Render(m.Description))
	}
	if len(m.Topics) > 0 {
		lines = append(lines, theme.Dimmed.Width(width).Render("Topics: "+strings.Join(m.Topics, ", ")))
	}
	meta := []string{}
	if m.Difficulty != "" {
		meta = append(meta, lipgloss.NewStyle().Foreground(theme.DifficultyColor(m.Difficulty)).Render(m.Difficulty))
	}
	if m.EstimatedTime != "" {
		meta = append(meta, theme.Dimmed.Render(m.EstimatedTime))
	}
	meta = append(meta, lipgloss.NewStyle().Foreground(theme.StatusColor(string(m.Status))).Render(string(m.Status)))
	lines = append(lines, strings.Join(meta, "  "))

	return lipgloss.NewStyle().PaddingLeft(4).Render(strings.Join(lines, "\n"))
}

package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/nayidisha/disha/internal/router"
	"github.com/nayidisha/disha/internal/screen"
	"github.com/nayidisha/disha/internal/ui/layout"
)

type stubScreen struct {
	title  string
	back   bool
	status string
	keys   int
}

func (s *stubScreen) Init() tea.Cmd { return nil }
func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		s.keys++
	}
	return s, nil
}
func (s *stubScreen) View(int, int) string { return "content of " + s.title }
func (s *stubScreen) Title() string        { return s.title }
func (s *stubScreen) HandlesBack() bool    { return s.back }
func (s *stubScreen) Status() string       { return s.status }

func TestEscPopsWhenStacked(t *testing.T) {
	m := New(&stubScreen{title: "roadmap"})
	m.router.Push(&stubScreen{title: "results"})

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestEscForwardedToBackHandler(t *testing.T) {
	quiz := &stubScreen{title: "quiz", back: true}
	m := New(&stubScreen{title: "roadmap"})
	m.router.Push(quiz)

	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if quiz.keys != 1 {
		t.Errorf("quiz received %d keys, want 1", quiz.keys)
	}
	if m.router.Depth() != 2 {
		t.Error("screen handling back should not be popped")
	}
}

func TestViewShowsHeaderStatus(t *testing.T) {
	m := New(&stubScreen{title: "Quiz", status: "Q3/20"})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	content := updated.(AppModel).frame()
	for _, want := range []string{layout.Brand, "Quiz", "Q3/20", "content of Quiz"} {
		if !strings.Contains(content, want) {
			t.Errorf("frame missing %q", want)
		}
	}
}

func TestViewTooSmall(t *testing.T) {
	m := New(&stubScreen{title: "Quiz"})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(updated.(AppModel).frame(), "Terminal too small") {
		t.Error("expected min size message")
	}
}

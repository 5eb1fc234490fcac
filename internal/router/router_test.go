package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/nayidisha/disha/internal/screen"
)

// stubScreen is a minimal screen that records what it receives.
type stubScreen struct {
	title   string
	initRan bool
	got     []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}
func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

func TestPush(t *testing.T) {
	r := New(&stubScreen{title: "roadmap"})

	quiz := &stubScreen{title: "quiz"}
	r.Update(PushScreenMsg{Screen: quiz})

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "quiz" {
		t.Errorf("expected active 'quiz', got %q", r.Active().Title())
	}
	if !quiz.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPopNotifiesUncoveredScreen(t *testing.T) {
	base := &stubScreen{title: "roadmap"}
	r := New(base)
	r.Push(&stubScreen{title: "quiz"})

	r.Update(PopScreenMsg{})

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if r.Active() != base {
		t.Fatalf("expected base screen active, got %q", r.Active().Title())
	}
	if len(base.got) != 1 {
		t.Fatalf("expected one message on base, got %d", len(base.got))
	}
	if _, ok := base.got[0].(ScreenPoppedMsg); !ok {
		t.Errorf("expected ScreenPoppedMsg, got %T", base.got[0])
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	base := &stubScreen{title: "roadmap"}
	r := New(base)

	if cmd := r.Pop(); cmd != nil {
		t.Error("expected nil command when popping the last screen")
	}
	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at bottom, got %d", r.Depth())
	}
	if len(base.got) != 0 {
		t.Error("bottom screen should not be notified")
	}
}

func TestReplacePreservesStackDepth(t *testing.T) {
	r := New(&stubScreen{title: "roadmap"})
	r.Push(&stubScreen{title: "quiz"})

	results := &stubScreen{title: "results"}
	r.Update(ReplaceScreenMsg{Screen: results})

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "results" {
		t.Errorf("expected active 'results', got %q", r.Active().Title())
	}
	if !results.initRan {
		t.Error("expected Init() to run on replacement")
	}
}

func TestUpdateForwardsToActive(t *testing.T) {
	base := &stubScreen{title: "roadmap"}
	top := &stubScreen{title: "quiz"}
	r := New(base)
	r.Push(top)

	r.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})

	if len(top.got) != 1 {
		t.Errorf("expected active screen to get the key, got %d messages", len(top.got))
	}
	if len(base.got) != 0 {
		t.Error("covered screen should not receive messages")
	}
}

func TestView(t *testing.T) {
	r := New(&stubScreen{title: "roadmap"})
	if got := r.View(80, 24); got != "roadmap" {
		t.Errorf("View = %q, want %q", got, "roadmap")
	}
}

func TestNewStacksWithoutInit(t *testing.T) {
	base := &stubScreen{title: "roadmap"}
	top := &stubScreen{title: "quiz"}
	r := New(base, top)

	if r.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", r.Depth())
	}
	if r.Active() != top {
		t.Errorf("expected 'quiz' active, got %q", r.Active().Title())
	}
	if base.initRan || top.initRan {
		t.Error("expected New not to run Init")
	}
}

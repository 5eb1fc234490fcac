package onboarding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	ob "github.com/nayidisha/disha/internal/onboarding"
	rm "github.com/nayidisha/disha/internal/roadmap"
	"github.com/nayidisha/disha/internal/router"
	"github.com/nayidisha/disha/internal/screen"
)

type fakeStarter struct {
	got rm.Selections
	err error
}

func (f *fakeStarter) Start(_ context.Context, sel rm.Selections) (ob.Result, error) {
	f.got = sel
	return ob.Result{Selections: sel}, f.err
}

type stubScreen struct{}

func (stubScreen) Init() tea.Cmd                             { return nil }
func (s stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (stubScreen) View(int, int) string                      { return "" }
func (stubScreen) Title() string                             { return "Roadmap" }

// press sends a key and feeds back any non-batch message it produces.
func press(s *OnboardingScreen, msg tea.KeyPressMsg) tea.Msg {
	_, cmd := s.Update(msg)
	for cmd != nil {
		m := cmd()
		if batch, ok := m.(tea.BatchMsg); ok {
			var last tea.Msg
			for _, c := range batch {
				if r := c(); r != nil {
					if _, tick := r.(spinner.TickMsg); !tick {
						_, next := s.Update(r)
						if next != nil {
							last = next()
						}
					}
				}
			}
			return last
		}
		switch m.(type) {
		case chosenMsg, startedMsg:
			_, cmd = s.Update(m)
			continue
		}
		return m
	}
	return nil
}

func TestOnboardingScreen_Flow(t *testing.T) {
	starter := &fakeStarter{}
	s := New(context.Background(), starter, nil, func() screen.Screen { return stubScreen{} })

	if !strings.Contains(s.View(100, 30), "What do you want to learn?") {
		t.Fatal("expected subject prompt")
	}

	// Python, then its second goal, then the first level.
	press(s, tea.KeyPressMsg{Code: tea.KeyEnter})
	if s.step != stepGoal {
		t.Fatalf("step = %v, want goal", s.step)
	}
	if !strings.Contains(s.View(100, 30), "Data Science") {
		t.Error("expected Python goals")
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	press(s, tea.KeyPressMsg{Code: tea.KeyEnter})
	if s.step != stepLevel {
		t.Fatalf("step = %v, want level", s.step)
	}

	last := press(s, tea.KeyPressMsg{Code: tea.KeyEnter})
	want := rm.Selections{Subject: "Python", Goal: "data-science", SkillLevel: "basic"}
	if starter.got.Subject != want.Subject || starter.got.Goal != want.Goal || starter.got.SkillLevel != want.SkillLevel {
		t.Errorf("selections = %+v, want %+v", starter.got, want)
	}
	if _, ok := last.(router.ReplaceScreenMsg); !ok {
		t.Errorf("expected ReplaceScreenMsg, got %T", last)
	}
}

func TestOnboardingScreen_BackAndError(t *testing.T) {
	starter := &fakeStarter{err: errors.New("generator offline")}
	s := New(context.Background(), starter, nil, nil)

	if s.HandlesBack() {
		t.Error("first step should let the app handle Esc")
	}
	press(s, tea.KeyPressMsg{Code: tea.KeyEnter})
	if !s.HandlesBack() {
		t.Error("later steps handle Esc themselves")
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if s.step != stepSubject {
		t.Fatalf("step after esc = %v, want subject", s.step)
	}

	press(s, tea.KeyPressMsg{Code: tea.KeyEnter})
	press(s, tea.KeyPressMsg{Code: tea.KeyEnter})
	press(s, tea.KeyPressMsg{Code: tea.KeyEnter})

	if s.step != stepLevel {
		t.Errorf("step after failure = %v, want level", s.step)
	}
	if !strings.Contains(s.View(100, 30), "generator offline") {
		t.Error("expected error in view")
	}
}

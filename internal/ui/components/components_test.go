package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/nayidisha/disha/internal/quiz"
)

func testOptions() []quiz.Option {
	return []quiz.Option{
		{ID: "a", Label: "A", Text: "let"},
		{ID: "b", Label: "B", Text: "var"},
		{ID: "c", Label: "C", Text: "const"},
		{ID: "d", Label: "D", Text: "static"},
	}
}

func TestMultiChoice_KeyChoice(t *testing.T) {
	mc := NewMultiChoice(testOptions(), "")

	tests := []struct {
		key    string
		sel    string
		want   string
		wantOK bool
	}{
		{"c", "", "c", true},
		{"C", "", "c", true},
		{"down", "", "a", true},
		{"up", "", "d", true},
		{"down", "b", "c", true},
		{"down", "d", "d", true},
		{"up", "a", "a", true},
		{"e", "", "", false},
		{"x", "a", "", false},
	}
	for _, tt := range tests {
		mc.Selected = tt.sel
		got, ok := mc.KeyChoice(tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("KeyChoice(%q) from %q = %q,%v; want %q,%v", tt.key, tt.sel, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestMultiChoice_RevealedIgnoresKeys(t *testing.T) {
	mc := NewMultiChoice(testOptions(), "a").Reveal("b")
	if _, ok := mc.KeyChoice("c"); ok {
		t.Error("revealed selector should ignore keys")
	}
}

func TestMultiChoice_View(t *testing.T) {
	view := NewMultiChoice(testOptions(), "b").View(60)
	for _, want := range []string{"A)  let", "▸ B)  var", "D)  static"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestProgressBar_Clamps(t *testing.T) {
	for _, pct := range []float64{-10, 0, 50, 100, 250} {
		view := NewProgressBar("", pct, true, 30).View()
		if view == "" {
			t.Errorf("empty bar for %v", pct)
		}
	}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	fired := ""
	m := NewMenu([]MenuItem{
		{Label: "locked", Disabled: true},
		{Label: "one", Action: func() tea.Cmd { fired = "one"; return nil }},
		{Label: "two", Disabled: true},
		{Label: "three", Action: func() tea.Cmd { fired = "three"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want 1", m.Selected)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 3 {
		t.Fatalf("Selected after down = %d, want 3", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if fired != "three" {
		t.Errorf("fired = %q, want three", fired)
	}

	m.Select(0)
	if m.Selected != 3 {
		t.Error("Select should ignore disabled items")
	}
}

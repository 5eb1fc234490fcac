package quiz

// WindowSize is the number of recent outcomes that drive difficulty.
const WindowSize = 3

// RollingWindow holds the most recent correctness outcomes, oldest first.
type RollingWindow []bool

// Push appends an outcome and evicts the oldest entries beyond WindowSize.
func (w RollingWindow) Push(correct bool) RollingWindow {
	next := append(append(RollingWindow(nil), w...), correct)
	if len(next) > WindowSize {
		next = next[len(next)-WindowSize:]
	}
	return next
}

// Full reports whether the window holds WindowSize outcomes.
func (w RollingWindow) Full() bool { return len(w) >= WindowSize }

// Correct counts correct outcomes in the window.
func (w RollingWindow) Correct() int {
	n := 0
	for _, ok := range w {
		if ok {
			n++
		}
	}
	return n
}

// DifficultyChange describes how the last answer moved the difficulty.
type DifficultyChange string

const (
	ChangeNone       DifficultyChange = ""
	ChangeIncreased  DifficultyChange = "increased"
	ChangeDecreased  DifficultyChange = "decreased"
	ChangeMaintained DifficultyChange = "maintained"
)

// NextDifficulty applies the rolling-window rule. Until the window is full
// the current difficulty is kept and no change is signalled.
func NextDifficulty(w RollingWindow, current Difficulty) (Difficulty, DifficultyChange) {
	if !w.Full() {
		return current, ChangeNone
	}
	switch n := w.Correct(); {
	case n >= WindowSize:
		return DifficultyHard, ChangeIncreased
	case n <= 1:
		return DifficultyEasy, ChangeDecreased
	default:
		return DifficultyMedium, ChangeMaintained
	}
}

package roadmap

// Status is a module's progress state in a roadmap view.
type Status string

const (
	StatusCompleted  Status = "completed"
	StatusInProgress Status = "in-progress"
	StatusAvailable  Status = "available"
)

// ModuleView is a module annotated with the learner's progress.
type ModuleView struct {
	Module
	Status Status
	Score  float64
}

// View is a roadmap annotated with progress.
type View struct {
	Roadmap    Roadmap
	Selections Selections
	Modules    []ModuleView

	CompletedModules int
	OverallProgress  float64
}

// Annotate marks each module completed, in progress (the current module)
// or available, and attaches its recorded score.
func Annotate(r Roadmap, sel Selections, completed []string, current string, scores map[string]float64) View {
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}

	v := View{Roadmap: r, Selections: sel.WithDefaults(), Modules: make([]ModuleView, len(r.Modules))}
	for i, m := range r.Modules {
		st := StatusAvailable
		switch {
		case done[m.ID]:
			st = StatusCompleted
			v.CompletedModules++
		case current != "" && m.ID == current:
			st = StatusInProgress
		}
		v.Modules[i] = ModuleView{Module: m, Status: st, Score: scores[m.ID]}
	}
	v.OverallProgress = OverallProgress(len(done), r)
	return v
}

// OverallProgress is completed / total × 100.
func OverallProgress(completed int, r Roadmap) float64 {
	return float64(completed) / float64(r.Total()) * 100
}

// NextModule returns the first module that is in progress or available.
func (v View) NextModule() (ModuleView, bool) {
	for _, m := range v.Modules {
		if m.Status == StatusInProgress || m.Status == StatusAvailable {
			return m, true
		}
	}
	return ModuleView{}, false
}

// Find looks up an annotated module by id.
func (v View) Find(id string) (ModuleView, bool) {
	for _, m := range v.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return ModuleView{}, false
}

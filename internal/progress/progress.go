// Package progress stores a user's roadmap and module completion record
// in the remote progress database.
package progress

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/nayidisha/disha/internal/roadmap"
)

var (
	// ErrNotFound is returned when a user has no progress record yet. A
	// roadmap must be saved before module progress can be recorded.
	ErrNotFound = errors.New("user progress not found, roadmap must be generated first")
	// ErrConflict marks a unique constraint violation.
	ErrConflict = errors.New("progress conflict")
	// ErrRetryable marks a transient database failure.
	ErrRetryable = errors.New("progress store temporarily unavailable")
)

// Record is one user's learning progress.
type Record struct {
	UserID             string
	Goal               string
	SkillLevel         string
	SelectedSubjects   []string
	Roadmap            *roadmap.Roadmap
	CurrentModule      string
	CompletedModules   []string
	QuizScores         map[string]float64
	OverallProgress    float64
	RoadmapGeneratedAt *time.Time
	UpdatedAt          time.Time
}

// ModuleUpdate is applied when a module quiz is completed.
type ModuleUpdate struct {
	// QuizScore, when set, replaces the module's recorded score.
	QuizScore *float64
	// CurrentModule is the new current-module pointer; empty clears it.
	CurrentModule string
}

// UserProfile is the identity synced from the auth provider.
type UserProfile struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	Provider    string
}

// Repository reads and writes progress records.
type Repository interface {
	// Get returns nil without error when the user has no record.
	Get(ctx context.Context, userID string) (*Record, error)
	// SaveRoadmap creates or resets the record for a new roadmap.
	SaveRoadmap(ctx context.Context, userID string, r roadmap.Roadmap, sel roadmap.Selections) (*Record, error)
	// UpdateModuleProgress marks moduleID completed. It returns ErrNotFound
	// when the user has no record.
	UpdateModuleProgress(ctx context.Context, userID, moduleID string, u ModuleUpdate) (*Record, error)
	// SetCurrentModule moves the current-module pointer.
	SetCurrentModule(ctx context.Context, userID, moduleID string) (*Record, error)
	SyncUser(ctx context.Context, p UserProfile) error
	// Delete removes the user's progress and profile.
	Delete(ctx context.Context, userID string) error
}

// NewRecord builds the record stored when a roadmap is first saved: no
// completed modules and a zero score for every module.
func NewRecord(userID string, r roadmap.Roadmap, sel roadmap.Selections, now time.Time) *Record {
	scores := make(map[string]float64, len(r.Modules))
	for _, m := range r.Modules {
		scores[m.ID] = 0
	}
	rm := r
	return &Record{
		UserID:             userID,
		Goal:               sel.Goal,
		SkillLevel:         sel.SkillLevel,
		SelectedSubjects:   sel.SelectedSubjects(),
		Roadmap:            &rm,
		CompletedModules:   []string{},
		QuizScores:         scores,
		RoadmapGeneratedAt: &now,
		UpdatedAt:          now,
	}
}

// ApplyModuleUpdate records moduleID as completed (once), stores the score
// and recomputes overall progress.
func (r *Record) ApplyModuleUpdate(moduleID string, u ModuleUpdate, now time.Time) {
	if !slices.Contains(r.CompletedModules, moduleID) {
		r.CompletedModules = append(r.CompletedModules, moduleID)
	}
	if r.QuizScores == nil {
		r.QuizScores = map[string]float64{}
	}
	if u.QuizScore != nil {
		r.QuizScores[moduleID] = *u.QuizScore
	}
	r.OverallProgress = roadmap.OverallProgress(len(r.CompletedModules), r.roadmapOrEmpty())
	r.CurrentModule = u.CurrentModule
	r.UpdatedAt = now
}

func (r *Record) roadmapOrEmpty() roadmap.Roadmap {
	if r.Roadmap == nil {
		return roadmap.Roadmap{}
	}
	return *r.Roadmap
}

// Selections returns the onboarding selections stored on the record.
func (r *Record) Selections() roadmap.Selections {
	sel := roadmap.Selections{Goal: r.Goal, SkillLevel: r.SkillLevel, Subjects: r.SelectedSubjects}
	return sel.WithDefaults()
}

// View annotates the record's roadmap with its progress. It reports false
// when the record holds no roadmap.
func (r *Record) View() (roadmap.View, bool) {
	if r == nil || r.Roadmap == nil {
		return roadmap.View{}, false
	}
	return roadmap.Annotate(*r.Roadmap, r.Selections(), r.CompletedModules, r.CurrentModule, r.QuizScores), true
}

func (r *Record) clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.SelectedSubjects = slices.Clone(r.SelectedSubjects)
	out.CompletedModules = slices.Clone(r.CompletedModules)
	if r.QuizScores != nil {
		out.QuizScores = make(map[string]float64, len(r.QuizScores))
		for k, v := range r.QuizScores {
			out.QuizScores[k] = v
		}
	}
	if r.Roadmap != nil {
		rm := *r.Roadmap
		rm.Modules = slices.Clone(r.Roadmap.Modules)
		out.Roadmap = &rm
	}
	if r.RoadmapGeneratedAt != nil {
		t := *r.RoadmapGeneratedAt
		out.RoadmapGeneratedAt = &t
	}
	return &out
}

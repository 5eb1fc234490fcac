// Package onboarding turns a learner's subject, goal and level choices
// into a roadmap and tracks where they are in it.
package onboarding

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nayidisha/disha/internal/logging"
	"github.com/nayidisha/disha/internal/progress"
	"github.com/nayidisha/disha/internal/quiz"
	"github.com/nayidisha/disha/internal/roadmap"
	"github.com/nayidisha/disha/internal/sessionstore"
)

// ErrNoRoadmap is returned by Load when neither the remote record nor the
// local cache holds a roadmap.
var ErrNoRoadmap = errors.New("no roadmap yet, run onboarding first")

// Options configures a Service.
type Options struct {
	// UserID is the signed-in user; empty means anonymous.
	UserID    string
	Catalogue *roadmap.Catalogue
	Generator roadmap.Generator
	// Progress is the remote progress store; nil disables it.
	Progress progress.Repository
	Store    sessionstore.Store
	Logger   *logging.Logger
}

// Service acquires and annotates roadmaps.
type Service struct {
	opts Options
	log  *logging.Logger
}

// Result is the outcome of Start.
type Result struct {
	Roadmap    roadmap.Roadmap
	Selections roadmap.Selections
	// Reused is set when an existing remote roadmap was returned instead
	// of generating a new one.
	Reused bool
}

func New(opts Options) *Service {
	if opts.Catalogue == nil {
		opts.Catalogue = roadmap.DefaultCatalogue()
	}
	if opts.Store == nil {
		opts.Store = sessionstore.NewMemory()
	}
	return &Service{opts: opts, log: logging.OrNop(opts.Logger).With("component", "onboarding")}
}

func (s *Service) remote() bool {
	return s.opts.UserID != "" && s.opts.Progress != nil
}

// Start validates the selections and returns the learner's roadmap. A
// roadmap already stored for the user is reused; otherwise one is
// generated, cached locally and saved remotely. Remote failures are
// logged and do not fail onboarding.
func (s *Service) Start(ctx context.Context, sel roadmap.Selections) (Result, error) {
	sel, err := s.opts.Catalogue.Resolve(sel)
	if err != nil {
		return Result{}, err
	}

	if s.remote() {
		rec, err := s.opts.Progress.Get(ctx, s.opts.UserID)
		if err != nil {
			s.log.Warn("could not check for an existing roadmap", "user_id", s.opts.UserID, "error", err)
		} else if rec != nil && rec.Roadmap != nil && len(rec.Roadmap.Modules) > 0 {
			stored := rec.Selections()
			s.cache(ctx, *rec.Roadmap, stored)
			s.log.Info("reusing stored roadmap", "user_id", s.opts.UserID, "modules", len(rec.Roadmap.Modules))
			return Result{Roadmap: *rec.Roadmap, Selections: stored, Reused: true}, nil
		}
	}

	if s.opts.Generator == nil {
		return Result{}, errors.New("no roadmap generator configured")
	}
	r, err := s.opts.Generator.Generate(ctx, sel)
	if err != nil {
		return Result{}, fmt.Errorf("generate roadmap: %w", err)
	}
	s.cache(ctx, r, sel)

	if s.remote() {
		if _, err := s.opts.Progress.SaveRoadmap(ctx, s.opts.UserID, r, sel); err != nil {
			s.log.Warn("saving roadmap remotely failed", "user_id", s.opts.UserID, "error", err)
		}
	}
	s.log.Info("roadmap generated", "subject", sel.Subject, "goal", sel.Goal, "level", sel.SkillLevel, "modules", len(r.Modules))
	return Result{Roadmap: r, Selections: sel}, nil
}

func (s *Service) cache(ctx context.Context, r roadmap.Roadmap, sel roadmap.Selections) {
	if err := sessionstore.SetJSON(ctx, s.opts.Store, sessionstore.KeyRoadmap, r); err != nil {
		s.log.Warn("caching roadmap failed", "error", err)
		return
	}
	meta := roadmap.Selections{Subject: sel.Subject, Goal: sel.Goal, SkillLevel: sel.SkillLevel}
	if err := sessionstore.SetJSON(ctx, s.opts.Store, sessionstore.KeyRoadmapMeta, meta); err != nil {
		s.log.Warn("caching roadmap selections failed", "error", err)
	}
}

// localState is what the session store knows about the roadmap.
type localState struct {
	roadmap   *roadmap.Roadmap
	meta      roadmap.Selections
	current   string
	completed []string
	scores    map[string]float64
}

// Load returns the annotated roadmap, preferring the remote record and
// falling back to the local cache. For the local cache, completion comes
// from the stored results of passed quizzes.
func (s *Service) Load(ctx context.Context) (roadmap.View, error) {
	var (
		rec   *progress.Record
		local localState
	)
	g, gctx := errgroup.WithContext(ctx)
	if s.remote() {
		g.Go(func() error {
			r, err := s.opts.Progress.Get(gctx, s.opts.UserID)
			if err != nil {
				s.log.Warn("loading remote progress failed", "user_id", s.opts.UserID, "error", err)
				return nil
			}
			rec = r
			return nil
		})
	}
	g.Go(func() error {
		var err error
		local, err = s.loadLocal(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return roadmap.View{}, err
	}

	if v, ok := rec.View(); ok {
		return v, nil
	}
	if local.roadmap == nil {
		return roadmap.View{}, ErrNoRoadmap
	}
	return roadmap.Annotate(*local.roadmap, local.meta.WithDefaults(), local.completed, local.current, local.scores), nil
}

func (s *Service) loadLocal(ctx context.Context) (localState, error) {
	var st localState
	var r roadmap.Roadmap
	ok, err := sessionstore.GetJSON(ctx, s.opts.Store, sessionstore.KeyRoadmap, &r)
	if err != nil {
		return st, fmt.Errorf("read cached roadmap: %w", err)
	}
	if !ok {
		return st, nil
	}
	st.roadmap = &r
	if _, err := sessionstore.GetJSON(ctx, s.opts.Store, sessionstore.KeyRoadmapMeta, &st.meta); err != nil {
		s.log.Warn("cached roadmap selections unreadable", "error", err)
	}
	if _, err := sessionstore.GetJSON(ctx, s.opts.Store, sessionstore.KeyCurrentModule, &st.current); err != nil {
		s.log.Warn("cached current module unreadable", "error", err)
	}

	st.scores = map[string]float64{}
	for _, m := range r.Modules {
		var res quiz.Results
		ok, err := sessionstore.GetJSON(ctx, s.opts.Store, sessionstore.QuizResultsKey(m.ID), &res)
		if err != nil || !ok {
			continue
		}
		st.scores[m.ID] = res.FinalAccuracy
		if res.Passed {
			st.completed = append(st.completed, m.ID)
		}
	}
	return st, nil
}

// BeginModule records moduleID as the module being worked on: locally,
// and on the remote record when signed in (best-effort).
func (s *Service) BeginModule(ctx context.Context, moduleID string) error {
	if err := sessionstore.SetJSON(ctx, s.opts.Store, sessionstore.KeyCurrentModule, moduleID); err != nil {
		return fmt.Errorf("record current module: %w", err)
	}
	if s.remote() {
		if _, err := s.opts.Progress.SetCurrentModule(ctx, s.opts.UserID, moduleID); err != nil {
			s.log.Warn("recording current module remotely failed", "user_id", s.opts.UserID, "module_id", moduleID, "error", err)
		}
	}
	return nil
}

// Reset clears the local session. With remote set it also deletes the
// signed-in user's remote progress and profile.
func (s *Service) Reset(ctx context.Context, remote bool) error {
	if err := sessionstore.Clear(ctx, s.opts.Store); err != nil {
		return fmt.Errorf("clear local session: %w", err)
	}
	if remote && s.remote() {
		if err := s.opts.Progress.Delete(ctx, s.opts.UserID); err != nil {
			return fmt.Errorf("delete remote progress: %w", err)
		}
	}
	return nil
}

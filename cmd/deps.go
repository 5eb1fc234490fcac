package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nayidisha/disha/internal/backend"
	"github.com/nayidisha/disha/internal/config"
	"github.com/nayidisha/disha/internal/llm"
	"github.com/nayidisha/disha/internal/logging"
	"github.com/nayidisha/disha/internal/onboarding"
	"github.com/nayidisha/disha/internal/problemgen"
	"github.com/nayidisha/disha/internal/progress"
	"github.com/nayidisha/disha/internal/quiz"
	"github.com/nayidisha/disha/internal/roadmap"
	"github.com/nayidisha/disha/internal/sessionstore"
	"github.com/nayidisha/disha/internal/store"
)

// deps holds everything a command needs once config is resolved. Fields
// that depend on optional configuration are nil when it is absent.
type deps struct {
	cfg      config.Config
	log      *logging.Logger
	store    *store.Store
	sessions sessionstore.Store

	api       *backend.Client
	questions quiz.QuestionSource
	evaluator quiz.Evaluator
	generator roadmap.Generator
	progress  progress.Repository
	// progressErr is why a configured progress database could not be used.
	progressErr error

	closers []func() error
}

// openDeps loads config and opens the local store. Network collaborators
// are constructed but not contacted.
func openDeps(cmd *cobra.Command) (*deps, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		cfg.UserID = u
	}

	d := &deps{cfg: cfg}
	ok := false
	defer func() {
		if !ok {
			d.Close()
		}
	}()

	if err := d.openLogger(); err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	d.store, err = store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	d.closers = append(d.closers, d.store.Close)

	if err := d.openSessions(ctx); err != nil {
		return nil, err
	}

	d.api = backend.New(cfg.APIBaseURL, d.sessions,
		backend.WithTimeout(cfg.RequestTimeout),
		backend.WithLogger(d.log))

	if err := d.openQuestionSource(ctx); err != nil {
		return nil, err
	}

	if cfg.RemoteProgress() {
		if err := d.openProgress(ctx); err != nil {
			d.progressErr = err
			d.log.Warn("remote progress unavailable, continuing without it", "error", err)
		}
	}

	d.log.Info("dependencies ready",
		"sessions", cfg.SessionBackend,
		"questions", cfg.QuestionSource,
		"remote_progress", d.progress != nil,
		"signed_in", cfg.SignedIn())
	ok = true
	return d, nil
}

func (d *deps) openLogger() error {
	dir, err := store.DataDir()
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	log, err := logging.New(d.cfg.LogMode, filepath.Join(dir, "disha.log"))
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	d.log = log
	d.closers = append(d.closers, func() error { log.Sync(); return nil })
	return nil
}

// openProgress connects and migrates the remote progress database. On
// failure d.progress stays nil and quizzes run without remote progress.
func (d *deps) openProgress(ctx context.Context) error {
	repo, err := progress.Open(d.cfg.ProgressDSN, d.log)
	if err != nil {
		return fmt.Errorf("open progress database: %w", err)
	}
	if err := repo.Migrate(ctx); err != nil {
		_ = repo.Close()
		return fmt.Errorf("migrate progress database: %w", err)
	}
	d.closers = append(d.closers, repo.Close)
	d.progress = repo
	return nil
}

func (d *deps) openSessions(ctx context.Context) error {
	switch d.cfg.SessionBackend {
	case config.BackendRedis:
		r, err := sessionstore.NewRedis(ctx, d.cfg.RedisAddr, "disha")
		if err != nil {
			return fmt.Errorf("connect session store: %w", err)
		}
		d.closers = append(d.closers, r.Close)
		d.sessions = r
	case config.BackendMemory:
		d.sessions = sessionstore.NewMemory()
	default:
		d.sessions = sessionstore.NewSQLite(d.store.KV())
	}
	return nil
}

func (d *deps) openQuestionSource(ctx context.Context) error {
	if d.cfg.QuestionSource != config.SourceLLM {
		d.questions = d.api
		d.evaluator = d.api
		d.generator = d.api
		return nil
	}

	provider, err := llm.NewProvider(ctx, d.cfg.LLM, d.store.EventRepo(), d.log)
	if err != nil {
		return fmt.Errorf("configure LLM provider: %w", err)
	}
	src := problemgen.NewSource(problemgen.New(provider, problemgen.DefaultConfig(), d.log))
	d.questions = src
	d.evaluator = src
	d.generator = roadmap.NewLLMGenerator(provider)
	return nil
}

// Close releases resources in reverse order of acquisition.
func (d *deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

func (d *deps) onboarding() *onboarding.Service {
	return onboarding.New(onboarding.Options{
		UserID:    d.cfg.UserID,
		Generator: d.generator,
		Progress:  d.progress,
		Store:     d.sessions,
		Logger:    d.log,
	})
}

// newController builds a quiz controller for one roadmap module.
func (d *deps) newController(ctx context.Context, m roadmap.Module) (*quiz.Controller, error) {
	sid, err := sessionstore.SessionID(ctx, d.sessions)
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	opts := quiz.Options{
		ModuleID:    m.ID,
		ModuleTitle: m.Title,
		Topics:      m.QuizTopics(),
		UserID:      d.cfg.UserID,
		SessionID:   sid,
		Questions:   d.questions,
		Evaluator:   d.evaluator,
		Store:       d.sessions,
		Answers:     d.store.EventRepo(),
		Logger:      d.log,
	}
	if d.progress != nil && d.cfg.SignedIn() {
		opts.Progress = d.progress
	}
	return quiz.New(opts)
}

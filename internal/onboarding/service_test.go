package onboarding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nayidisha/disha/internal/progress"
	"github.com/nayidisha/disha/internal/quiz"
	"github.com/nayidisha/disha/internal/roadmap"
	"github.com/nayidisha/disha/internal/sessionstore"
)

type stubGenerator struct {
	calls int
	got   roadmap.Selections
	err   error
}

func (g *stubGenerator) Generate(_ context.Context, sel roadmap.Selections) (roadmap.Roadmap, error) {
	g.calls++
	g.got = sel
	if g.err != nil {
		return roadmap.Roadmap{}, g.err
	}
	return roadmap.Roadmap{
		ID:    "rm-1",
		Title: "Frontend with JavaScript",
		Modules: []roadmap.Module{
			{ID: "basics", Title: "Basics"},
			{ID: "dom", Title: "DOM"},
			{ID: "async", Title: "Async"},
		},
		TotalModules: 3,
	}, nil
}

// failingProgress fails every call.
type failingProgress struct{ progress.Repository }

func (failingProgress) Get(context.Context, string) (*progress.Record, error) {
	return nil, errors.New("db down")
}

func (failingProgress) SaveRoadmap(context.Context, string, roadmap.Roadmap, roadmap.Selections) (*progress.Record, error) {
	return nil, errors.New("db down")
}

func (failingProgress) SetCurrentModule(context.Context, string, string) (*progress.Record, error) {
	return nil, errors.New("db down")
}

func jsSelections() roadmap.Selections {
	return roadmap.Selections{Subject: "javascript", Goal: "frontend-development", SkillLevel: "Basic"}
}

func TestStart_GeneratesAndCaches(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{}
	repo := progress.NewMemoryRepository()
	store := sessionstore.NewMemory()
	svc := New(Options{UserID: "u1", Generator: gen, Progress: repo, Store: store})

	res, err := svc.Start(ctx, jsSelections())
	require.NoError(t, err)
	assert.False(t, res.Reused)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, roadmap.Selections{Subject: "JavaScript", Goal: "Frontend Development", SkillLevel: "basic", Subjects: []string{"JavaScript"}}, gen.got)

	var cached roadmap.Roadmap
	ok, err := sessionstore.GetJSON(ctx, store, sessionstore.KeyRoadmap, &cached)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "rm-1", cached.ID)

	var meta roadmap.Selections
	ok, err = sessionstore.GetJSON(ctx, store, sessionstore.KeyRoadmapMeta, &meta)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "basic", meta.SkillLevel)

	rec, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, map[string]float64{"basics": 0, "dom": 0, "async": 0}, rec.QuizScores)
}

func TestStart_ReusesStoredRoadmap(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{}
	repo := progress.NewMemoryRepository()
	existing := roadmap.Roadmap{ID: "old", Modules: []roadmap.Module{{ID: "x"}}}
	_, err := repo.SaveRoadmap(ctx, "u1", existing, roadmap.Selections{Subject: "Python", Goal: "Data Science", SkillLevel: "advanced"})
	require.NoError(t, err)

	svc := New(Options{UserID: "u1", Generator: gen, Progress: repo})
	res, err := svc.Start(ctx, jsSelections())
	require.NoError(t, err)
	assert.True(t, res.Reused)
	assert.Equal(t, "old", res.Roadmap.ID)
	assert.Equal(t, "Python", res.Selections.Subject)
	assert.Zero(t, gen.calls)
}

func TestStart_AnonymousSkipsRemote(t *testing.T) {
	gen := &stubGenerator{}
	repo := progress.NewMemoryRepository()
	svc := New(Options{Generator: gen, Progress: repo})

	_, err := svc.Start(context.Background(), jsSelections())
	require.NoError(t, err)
	rec, err := repo.Get(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestStart_RemoteFailuresAreBestEffort(t *testing.T) {
	gen := &stubGenerator{}
	svc := New(Options{UserID: "u1", Generator: gen, Progress: failingProgress{}})

	res, err := svc.Start(context.Background(), jsSelections())
	require.NoError(t, err)
	assert.Equal(t, "rm-1", res.Roadmap.ID)
	assert.Equal(t, 1, gen.calls)
}

func TestStart_InvalidSelection(t *testing.T) {
	gen := &stubGenerator{}
	svc := New(Options{Generator: gen})
	_, err := svc.Start(context.Background(), roadmap.Selections{Subject: "Cobol", Goal: "x", SkillLevel: "basic"})
	assert.ErrorIs(t, err, roadmap.ErrInvalidSelection)
	assert.Zero(t, gen.calls)
}

func TestStart_GeneratorError(t *testing.T) {
	boom := errors.New("backend down")
	svc := New(Options{Generator: &stubGenerator{err: boom}})
	_, err := svc.Start(context.Background(), jsSelections())
	assert.ErrorIs(t, err, boom)
}

func TestLoad_PrefersRemote(t *testing.T) {
	ctx := context.Background()
	repo := progress.NewMemoryRepository()
	svc := New(Options{UserID: "u1", Generator: &stubGenerator{}, Progress: repo})
	_, err := svc.Start(ctx, jsSelections())
	require.NoError(t, err)

	score := 85.0
	_, err = repo.UpdateModuleProgress(ctx, "u1", "basics", progress.ModuleUpdate{QuizScore: &score, CurrentModule: "dom"})
	require.NoError(t, err)

	v, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v.CompletedModules)
	assert.Equal(t, roadmap.StatusCompleted, v.Modules[0].Status)
	assert.Equal(t, 85.0, v.Modules[0].Score)
	assert.Equal(t, roadmap.StatusInProgress, v.Modules[1].Status)

	next, ok := v.NextModule()
	require.True(t, ok)
	assert.Equal(t, "dom", next.ID)
}

func TestLoad_LocalFallback(t *testing.T) {
	ctx := context.Background()
	store := sessionstore.NewMemory()
	svc := New(Options{Generator: &stubGenerator{}, Store: store})

	_, err := svc.Load(ctx)
	assert.ErrorIs(t, err, ErrNoRoadmap)

	_, err = svc.Start(ctx, jsSelections())
	require.NoError(t, err)
	require.NoError(t, sessionstore.SetJSON(ctx, store, sessionstore.QuizResultsKey("basics"),
		quiz.Results{ModuleID: "basics", FinalAccuracy: 90, Passed: true}))
	require.NoError(t, sessionstore.SetJSON(ctx, store, sessionstore.QuizResultsKey("dom"),
		quiz.Results{ModuleID: "dom", FinalAccuracy: 40, Passed: false}))
	require.NoError(t, svc.BeginModule(ctx, "dom"))

	v, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Frontend Development", v.Selections.Goal)
	assert.Equal(t, roadmap.StatusCompleted, v.Modules[0].Status)
	assert.Equal(t, 90.0, v.Modules[0].Score)
	assert.Equal(t, roadmap.StatusInProgress, v.Modules[1].Status)
	assert.Equal(t, 40.0, v.Modules[1].Score)
	assert.Equal(t, roadmap.StatusAvailable, v.Modules[2].Status)
	assert.InDelta(t, 33.33, v.OverallProgress, 0.01)
}

func TestLoad_RemoteFailureFallsBackToCache(t *testing.T) {
	ctx := context.Background()
	store := sessionstore.NewMemory()
	require.NoError(t, sessionstore.SetJSON(ctx, store, sessionstore.KeyRoadmap,
		roadmap.Roadmap{Modules: []roadmap.Module{{ID: "a"}}}))

	svc := New(Options{UserID: "u1", Progress: failingProgress{}, Store: store})
	v, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, v.Modules, 1)
	assert.Equal(t, roadmap.DefaultGoal, v.Selections.Goal)
}

func TestBeginModule(t *testing.T) {
	ctx := context.Background()
	store := sessionstore.NewMemory()
	repo := progress.NewMemoryRepository()
	svc := New(Options{UserID: "u1", Generator: &stubGenerator{}, Progress: repo, Store: store})

	// no remote record yet: remote failure is swallowed
	require.NoError(t, svc.BeginModule(ctx, "basics"))

	_, err := svc.Start(ctx, jsSelections())
	require.NoError(t, err)
	require.NoError(t, svc.BeginModule(ctx, "dom"))

	var current string
	ok, err := sessionstore.GetJSON(ctx, store, sessionstore.KeyCurrentModule, &current)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dom", current)

	rec, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "dom", rec.CurrentModule)

	require.NoError(t, New(Options{UserID: "u1", Progress: failingProgress{}, Store: store}).BeginModule(ctx, "async"))
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := sessionstore.NewMemory()
	repo := progress.NewMemoryRepository()
	svc := New(Options{UserID: "u1", Generator: &stubGenerator{}, Progress: repo, Store: store})
	_, err := svc.Start(ctx, jsSelections())
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx, false))
	_, err = svc.Load(ctx)
	require.NoError(t, err, "remote roadmap survives a local reset")

	require.NoError(t, svc.Reset(ctx, true))
	_, err = svc.Load(ctx)
	assert.ErrorIs(t, err, ErrNoRoadmap)
}

package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nayidisha/disha/internal/llm"
	rm "github.com/nayidisha/disha/internal/roadmap"
	"github.com/nayidisha/disha/internal/store"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcde", truncate("abcdefgh", 5))
	assert.Equal(t, "héll", truncate("héllo", 4))
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.0042", formatCost(0.0042))
	assert.Equal(t, "$1.25", formatCost(1.25))
}

func TestFilterPurpose(t *testing.T) {
	events := []store.LLMEvent{
		{ID: 3, LLMRequestEventData: store.LLMRequestEventData{Purpose: llm.PurposeQuizQuestion}},
		{ID: 2, LLMRequestEventData: store.LLMRequestEventData{Purpose: llm.PurposeRoadmap}},
		{ID: 1, LLMRequestEventData: store.LLMRequestEventData{Purpose: llm.PurposeQuizQuestion}},
	}

	assert.Len(t, filterPurpose(events, "", 1), 3)

	got := filterPurpose(events, llm.PurposeQuizQuestion, 0)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].ID)
	assert.Equal(t, 1, got[1].ID)

	assert.Len(t, filterPurpose(events, llm.PurposeQuizQuestion, 1), 1)
}

func TestPrintLLMUsage(t *testing.T) {
	var buf bytes.Buffer
	printLLMUsage(&buf,
		[]store.LLMUsage{{Purpose: llm.PurposeQuizQuestion, Calls: 2, InputTokens: 1_000_000, AvgLatencyMs: 120}},
		[]store.LLMModelUsage{
			{Model: "gpt-4o", Calls: 1, InputTokens: 1_000_000},
			{Model: "custom-model", Calls: 1},
		})
	out := buf.String()
	assert.Contains(t, out, "Usage by Purpose")
	assert.Contains(t, out, "$2.50")
	assert.Contains(t, out, "TOTAL (partial)")
	assert.Contains(t, out, "Pricing unavailable for: custom-model")

	buf.Reset()
	printLLMUsage(&buf, nil, nil)
	assert.Equal(t, "No LLM usage recorded yet.\n", buf.String())
}

func TestPrintLLMEvent(t *testing.T) {
	var buf bytes.Buffer
	printLLMEvent(&buf, &store.LLMEvent{
		ID:        7,
		Timestamp: time.Now(),
		LLMRequestEventData: store.LLMRequestEventData{
			Provider:     "openai",
			Model:        "gpt-4o",
			Purpose:      llm.PurposeRoadmap,
			ErrorMessage: "rate limited",
			RequestBody:  `{"prompt":"x"}`,
		},
	})
	out := buf.String()
	assert.Contains(t, out, "ID:        7")
	assert.Contains(t, out, "Error:     rate limited")
	assert.Contains(t, out, `{"prompt":"x"}`)
	assert.Contains(t, out, "(not captured)")
}

func TestPrintModuleStats(t *testing.T) {
	var buf bytes.Buffer
	printModuleStats(&buf, nil)
	assert.Equal(t, "No quiz answers recorded yet.\n", buf.String())

	buf.Reset()
	printModuleStats(&buf, []store.ModuleStats{
		{ModuleID: "m1", Answered: 10, Correct: 8, Attempts: 1, BestScore: 80},
		{ModuleID: "m2", Answered: 10, Correct: 4},
	})
	out := buf.String()
	assert.Contains(t, out, "m1")
	assert.Contains(t, out, "80%")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "TOTAL"))
	assert.Contains(t, lines[len(lines)-1], "60%")
}

func TestPrintRoadmap(t *testing.T) {
	r := rm.Roadmap{
		Title: "Python for Data",
		Modules: []rm.Module{
			{ID: "m1", Title: "Basics", Topics: []string{"Variables"}},
			{ID: "m2", Title: "Pandas"},
		},
		Recommendations: []string{"Practise daily"},
	}
	v := rm.Annotate(r, rm.Selections{Subject: "Python", Goal: "Data Science & Analytics", SkillLevel: "basic"},
		[]string{"m1"}, "m2", map[string]float64{"m1": 90})

	var buf bytes.Buffer
	printRoadmap(&buf, v)
	out := buf.String()
	assert.Contains(t, out, "Progress: 1/2 modules (50%)")
	assert.Contains(t, out, "✓  1. Basics")
	assert.Contains(t, out, "▸  2. Pandas")
	assert.Contains(t, out, "90%")
	assert.Contains(t, out, "topics: General")
	assert.Contains(t, out, "Practise daily")
}

func TestRunStatusChecks(t *testing.T) {
	results := runStatusChecks(context.Background(), []statusCheck{
		{name: "database", probe: func(context.Context) error { return nil }},
		{name: "backend", probe: func(context.Context) error { return errors.New("connection refused") }},
	})
	require.Len(t, results, 2)
	assert.Equal(t, "database", results[0].name)
	assert.NoError(t, results[0].err)
	assert.Equal(t, "backend", results[1].name)
	assert.EqualError(t, results[1].err, "connection refused")
}

// testEnv points every command at a temp database and the given backend.
func testEnv(t *testing.T, backendURL string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("DISHA_API_URL", backendURL)
	t.Setenv("DISHA_SESSION_BACKEND", "sqlite")
	t.Setenv("DISHA_QUESTION_SOURCE", "api")
	t.Setenv("DISHA_PROGRESS_DSN", "")
	t.Setenv("DISHA_USER_ID", "")
	t.Setenv("DISHA_DB", "")
	return filepath.Join(dir, "test.db")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(io.Discard)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRoadmapGenerateShowReset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/roadmap/generate":
			_, _ = io.WriteString(w, `{"success":true,"data":{"title":"Python Web","modules":[
				{"id":"m1","title":"HTTP Basics","topics":["HTTP"]},
				{"id":"m2","title":"Flask"}]}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"success":false,"error":"not found"}`)
		}
	}))
	defer srv.Close()
	db := testEnv(t, srv.URL+"/api")

	out, err := execute(t, "roadmap", "generate", "--db", db,
		"--subject", "python", "--goal", "web-development-python", "--level", "Basic")
	require.NoError(t, err)
	assert.Contains(t, out, "Python Web")
	assert.Contains(t, out, "Python · Web Development with Python · basic")
	assert.Contains(t, out, "Progress: 0/2 modules (0%)")

	out, err = execute(t, "roadmap", "show", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "HTTP Basics")
	assert.Contains(t, out, "id: m2  topics: General")

	out, err = execute(t, "reset", "--yes", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Reset complete.")

	out, err = execute(t, "roadmap", "show", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No roadmap yet.")
}

func TestUnreachableProgressDatabaseDoesNotBlockCommands(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/health" {
			_, _ = io.WriteString(w, `{"status":"ok"}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"error":"not found"}`)
	}))
	defer srv.Close()
	db := testEnv(t, srv.URL+"/api")
	t.Setenv("DISHA_PROGRESS_DSN", "postgres://u:p@127.0.0.1:1/db?sslmode=disable&connect_timeout=1")
	t.Setenv("DISHA_USER_ID", "u1")

	out, err := execute(t, "roadmap", "show", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No roadmap yet.")

	out, err = execute(t, "status", "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "progress is unavailable")
	assert.Contains(t, out, "User:       u1")

	_, err = execute(t, "reset", "--remote", "--yes", "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "progress database")
}

func TestRoadmapGenerateRejectsUnknownGoal(t *testing.T) {
	db := testEnv(t, "http://127.0.0.1:1/api")
	_, err := execute(t, "roadmap", "generate", "--db", db,
		"--subject", "Python", "--goal", "frontend-development", "--level", "basic")
	require.Error(t, err)
	assert.ErrorIs(t, err, rm.ErrInvalidSelection)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "disha "), out)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "disha (devel)", versionString("(devel)", nil))
	assert.Equal(t, "disha v1.2.0 go1.25.6", versionString("v1.2.0", &debug.BuildInfo{
		GoVersion: "go1.25.6",
		Main:      debug.Module{Version: "v0.9.0"},
	}))

	info := &debug.BuildInfo{
		GoVersion: "go1.25.6",
		Main:      debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "4f2a9c1e8b7d6a5f4e3d"},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	assert.Equal(t, "disha v0.3.1 (4f2a9c1e8b7d-dirty) go1.25.6", versionString("(devel)", info))
}

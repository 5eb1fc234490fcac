package roadmap

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nayidisha/disha/internal/llm"
)

func sampleRoadmap() Roadmap {
	return Roadmap{
		Title: "JavaScript Frontend",
		Modules: []Module{
			{ID: "basics", Title: "Basics"},
			{ID: "dom", Title: "DOM Manipulation", Topics: []string{"Events"}},
			{ID: "async", Title: "Async"},
			{ID: "tooling", Title: "Tooling"},
		},
	}
}

func TestModuleUnmarshal_NumericID(t *testing.T) {
	var r Roadmap
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","totalModules":2,"modules":[{"id":2,"title":"DOM"},{"id":"async","title":"Async"}]}`), &r))
	require.Len(t, r.Modules, 2)
	assert.Equal(t, "2", r.Modules[0].ID)
	assert.Equal(t, "DOM", r.Modules[0].Title)
	assert.Equal(t, "async", r.Modules[1].ID)
}

func TestModuleUnmarshal_BadID(t *testing.T) {
	var m Module
	assert.Error(t, json.Unmarshal([]byte(`{"id":{"nested":true}}`), &m))
}

func TestRoadmapTotal(t *testing.T) {
	assert.Equal(t, 10, Roadmap{TotalModules: 10, Modules: make([]Module, 3)}.Total())
	assert.Equal(t, 3, Roadmap{Modules: make([]Module, 3)}.Total())
	assert.Equal(t, 1, Roadmap{}.Total())
}

func TestRoadmapValidate(t *testing.T) {
	assert.NoError(t, sampleRoadmap().Validate())
	assert.Error(t, Roadmap{}.Validate())
	assert.Error(t, Roadmap{Modules: []Module{{ID: ""}}}.Validate())
	assert.Error(t, Roadmap{Modules: []Module{{ID: "a"}, {ID: "a"}}}.Validate())
}

func TestQuizTopics(t *testing.T) {
	assert.Equal(t, []string{"Events"}, Module{Topics: []string{"Events"}}.QuizTopics())
	assert.Equal(t, []string{"Scope"}, Module{KeyConcepts: []string{"Scope"}}.QuizTopics())
	assert.Equal(t, []string{"General"}, Module{}.QuizTopics())
}

func TestAnnotate(t *testing.T) {
	v := Annotate(sampleRoadmap(), Selections{}, []string{"basics", "async"}, "dom", map[string]float64{"basics": 90, "async": 75})

	require.Len(t, v.Modules, 4)
	assert.Equal(t, StatusCompleted, v.Modules[0].Status)
	assert.Equal(t, 90.0, v.Modules[0].Score)
	assert.Equal(t, StatusInProgress, v.Modules[1].Status)
	assert.Equal(t, StatusCompleted, v.Modules[2].Status)
	assert.Equal(t, StatusAvailable, v.Modules[3].Status)
	assert.Equal(t, 2, v.CompletedModules)
	assert.Equal(t, 50.0, v.OverallProgress)
	assert.Equal(t, DefaultSubject, v.Selections.Subject)

	next, ok := v.NextModule()
	require.True(t, ok)
	assert.Equal(t, "dom", next.ID)
}

func TestAnnotate_CompletedWinsOverCurrent(t *testing.T) {
	v := Annotate(sampleRoadmap(), Selections{}, []string{"dom"}, "dom", nil)
	m, ok := v.Find("dom")
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, m.Status)

	next, ok := v.NextModule()
	require.True(t, ok)
	assert.Equal(t, "basics", next.ID)
}

func TestNextModule_AllDone(t *testing.T) {
	v := Annotate(sampleRoadmap(), Selections{}, []string{"basics", "dom", "async", "tooling"}, "", nil)
	_, ok := v.NextModule()
	assert.False(t, ok)
	assert.Equal(t, 100.0, v.OverallProgress)
}

func TestSelectionsDefaults(t *testing.T) {
	s := Selections{Subjects: []string{"React"}}.WithDefaults()
	assert.Equal(t, "React", s.Subject)
	assert.Equal(t, DefaultGoal, s.Goal)
	assert.Equal(t, DefaultSkillLevel, s.SkillLevel)
	assert.Equal(t, []string{"React"}, Selections{Subject: "React"}.SelectedSubjects())
	assert.Nil(t, Selections{}.SelectedSubjects())
}

func TestCatalogueResolve(t *testing.T) {
	c := DefaultCatalogue()
	require.Len(t, c.Subjects, 4)
	assert.Equal(t, []string{"basic", "intermediate", "advanced"}, c.Levels)

	sel, err := c.Resolve(Selections{Subject: "node.js", Goal: "microservices", SkillLevel: "Advanced"})
	require.NoError(t, err)
	assert.Equal(t, Selections{
		Subject: "Node.js", Goal: "Microservices Architecture", SkillLevel: "advanced", Subjects: []string{"Node.js"},
	}, sel)

	sel, err = c.Resolve(Selections{Subject: "Python", Goal: "data science & analytics", SkillLevel: "basic"})
	require.NoError(t, err)
	assert.Equal(t, "Data Science & Analytics", sel.Goal)
}

func TestCatalogueResolve_Invalid(t *testing.T) {
	c := DefaultCatalogue()
	tests := []Selections{
		{Subject: "Cobol", Goal: "x", SkillLevel: "basic"},
		{Subject: "React", Goal: "data-science", SkillLevel: "basic"},
		{Subject: "React", Goal: "react-native", SkillLevel: "expert"},
	}
	for _, sel := range tests {
		_, err := c.Resolve(sel)
		assert.ErrorIs(t, err, ErrInvalidSelection, "%+v", sel)
	}
}

func generatedRoadmap() map[string]any {
	mod := func(id string) map[string]any {
		return map[string]any{
			"id": id, "title": id, "description": "d", "topics": []string{"t"},
			"difficulty": "Beginner", "estimatedTime": "2 hours", "learningObjectives": []string{"o"},
		}
	}
	return map[string]any{
		"title":             "React Fundamentals Roadmap",
		"description":       "desc",
		"estimatedTime":     "20 hours",
		"modules":           []any{mod("jsx"), mod("state"), mod("effects")},
		"aiRecommendations": []string{"build things"},
	}
}

func TestLLMGenerator(t *testing.T) {
	mock := llm.NewMockProvider(llm.JSONResponse(generatedRoadmap()))
	g := NewLLMGenerator(mock)

	r, err := g.Generate(context.Background(), Selections{Subject: "React", Goal: "React Fundamentals", SkillLevel: "basic"})
	require.NoError(t, err)
	assert.Equal(t, 3, r.TotalModules)
	assert.Equal(t, "Basic", r.Difficulty)
	assert.Equal(t, "roadmap_react_react_fundamentals_basic", r.ID)
	assert.Equal(t, "jsx", r.Modules[0].ID)

	require.Len(t, mock.Calls, 1)
	call := mock.Calls[0]
	assert.Same(t, Schema, call.Schema)
	assert.Contains(t, call.Messages[0].Content, "Target module count: 9")
}

func TestLLMGenerator_DuplicateModules(t *testing.T) {
	data := generatedRoadmap()
	mods := data["modules"].([]any)
	mods[2] = mods[0]
	g := NewLLMGenerator(llm.NewMockProvider(llm.JSONResponse(data)))

	_, err := g.Generate(context.Background(), Selections{Subject: "React", Goal: "x", SkillLevel: "basic"})
	var invalid *llm.ErrInvalidResponse
	assert.True(t, errors.As(err, &invalid))
}

func TestLLMGenerator_ProviderError(t *testing.T) {
	g := NewLLMGenerator(llm.NewMockProvider())
	_, err := g.Generate(context.Background(), Selections{Subject: "React"})
	var unavailable *llm.ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavailable))
}

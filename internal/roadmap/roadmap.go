// Package roadmap models a generated learning curriculum and the
// onboarding catalogue it is generated from.
package roadmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Module is one unit of a roadmap.
type Module struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	Topics             []string `json:"topics,omitempty"`
	Difficulty         string   `json:"difficulty,omitempty"`
	EstimatedTime      string   `json:"estimatedTime,omitempty"`
	LearningObjectives []string `json:"learningObjectives,omitempty"`
	KeyConcepts        []string `json:"keyConcepts,omitempty"`
	Prerequisites      []string `json:"prerequisites,omitempty"`
}

// UnmarshalJSON accepts numeric module ids as well as strings.
func (m *Module) UnmarshalJSON(data []byte) error {
	type alias Module
	aux := struct {
		*alias
		ID json.RawMessage `json:"id"`
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, err := flexibleID(aux.ID)
	if err != nil {
		return fmt.Errorf("module id: %w", err)
	}
	m.ID = id
	return nil
}

func flexibleID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}

// QuizTopics returns the topics to request questions for. Modules without
// explicit topics fall back to their key concepts, then to "General".
func (m Module) QuizTopics() []string {
	switch {
	case len(m.Topics) > 0:
		return m.Topics
	case len(m.KeyConcepts) > 0:
		return m.KeyConcepts
	}
	return []string{"General"}
}

// Roadmap is an ordered collection of modules.
type Roadmap struct {
	ID              string   `json:"id,omitempty"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	TotalModules    int      `json:"totalModules"`
	EstimatedTime   string   `json:"estimatedTime,omitempty"`
	Difficulty      string   `json:"difficulty,omitempty"`
	Modules         []Module `json:"modules"`
	Recommendations []string `json:"aiRecommendations,omitempty"`
}

// Total is the module count used for progress percentages: the declared
// total, else the number of modules, and never less than 1.
func (r Roadmap) Total() int {
	switch {
	case r.TotalModules > 0:
		return r.TotalModules
	case len(r.Modules) > 0:
		return len(r.Modules)
	}
	return 1
}

// Module looks up a module by id.
func (r Roadmap) Module(id string) (Module, bool) {
	for _, m := range r.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// Validate checks that the roadmap has modules with unique, non-empty ids.
func (r Roadmap) Validate() error {
	if len(r.Modules) == 0 {
		return fmt.Errorf("roadmap has no modules")
	}
	seen := make(map[string]bool, len(r.Modules))
	for i, m := range r.Modules {
		if strings.TrimSpace(m.ID) == "" {
			return fmt.Errorf("module %d has no id", i)
		}
		if seen[m.ID] {
			return fmt.Errorf("duplicate module id %q", m.ID)
		}
		seen[m.ID] = true
	}
	return nil
}

// Selections are the onboarding choices a roadmap is generated for.
type Selections struct {
	Subject    string   `json:"subject"`
	Goal       string   `json:"goal"`
	SkillLevel string   `json:"level"`
	Subjects   []string `json:"selectedSubjects,omitempty"`
}

// SelectedSubjects returns Subjects, or the single Subject.
func (s Selections) SelectedSubjects() []string {
	if len(s.Subjects) > 0 {
		return s.Subjects
	}
	if s.Subject == "" {
		return nil
	}
	return []string{s.Subject}
}

// Default onboarding values used when a stored record lacks them.
const (
	DefaultSubject    = "JavaScript"
	DefaultGoal       = "Full Stack Development"
	DefaultSkillLevel = "intermediate"
)

// WithDefaults fills empty fields with the defaults.
func (s Selections) WithDefaults() Selections {
	if s.Subject == "" {
		if subs := s.SelectedSubjects(); len(subs) > 0 {
			s.Subject = subs[0]
		} else {
			s.Subject = DefaultSubject
		}
	}
	if s.Goal == "" {
		s.Goal = DefaultGoal
	}
	if s.SkillLevel == "" {
		s.SkillLevel = DefaultSkillLevel
	}
	return s
}

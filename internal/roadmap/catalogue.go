package roadmap

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Goal is a learning goal offered for a subject.
type Goal struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Duration string `yaml:"duration"`
	Modules  int    `yaml:"modules"`
}

// Subject is a technology the learner can pick during onboarding.
type Subject struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Goals       []Goal `yaml:"goals"`
}

// Catalogue lists the onboarding choices.
type Catalogue struct {
	Levels   []string  `yaml:"levels"`
	Subjects []Subject `yaml:"subjects"`
}

//go:embed catalogue.yaml
var catalogueYAML []byte

// ErrInvalidSelection is returned for onboarding choices outside the
// catalogue.
var ErrInvalidSelection = errors.New("invalid selection")

// LoadCatalogue parses a catalogue document.
func LoadCatalogue(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	if len(c.Subjects) == 0 || len(c.Levels) == 0 {
		return nil, errors.New("catalogue needs subjects and levels")
	}
	return &c, nil
}

// DefaultCatalogue returns the built-in catalogue.
func DefaultCatalogue() *Catalogue {
	c, err := LoadCatalogue(catalogueYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Subject finds a subject by case-insensitive name.
func (c *Catalogue) Subject(name string) (Subject, bool) {
	for _, s := range c.Subjects {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	return Subject{}, false
}

// Goal finds a goal of the subject by id or case-insensitive title.
func (s Subject) Goal(key string) (Goal, bool) {
	key = strings.TrimSpace(key)
	for _, g := range s.Goals {
		if g.ID == key || strings.EqualFold(g.Title, key) {
			return g, true
		}
	}
	return Goal{}, false
}

// Resolve validates sel against the catalogue and returns it in canonical
// form: the subject's catalogue name, the goal's title and a lowercase
// level.
func (c *Catalogue) Resolve(sel Selections) (Selections, error) {
	subj, ok := c.Subject(sel.Subject)
	if !ok {
		return Selections{}, fmt.Errorf("%w: unknown subject %q", ErrInvalidSelection, sel.Subject)
	}
	goal, ok := subj.Goal(sel.Goal)
	if !ok {
		return Selections{}, fmt.Errorf("%w: goal %q is not offered for %s", ErrInvalidSelection, sel.Goal, subj.Name)
	}
	level := strings.ToLower(strings.TrimSpace(sel.SkillLevel))
	found := false
	for _, l := range c.Levels {
		if l == level {
			found = true
			break
		}
	}
	if !found {
		return Selections{}, fmt.Errorf("%w: skill level %q (want one of %s)", ErrInvalidSelection, sel.SkillLevel, strings.Join(c.Levels, ", "))
	}
	return Selections{
		Subject:    subj.Name,
		Goal:       goal.Title,
		SkillLevel: level,
		Subjects:   []string{subj.Name},
	}, nil
}

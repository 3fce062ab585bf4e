package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StepType marks a step as work or rest.
type StepType string

const (
	StepActive StepType = "active"
	StepPause  StepType = "pause"
)

// ErrInvalidSchema is returned when a schema cannot be executed.
var ErrInvalidSchema = errors.New("invalid schema")

// Step is a single timed unit within a set. Duration is in seconds.
type Step struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Duration int      `yaml:"duration" json:"duration"`
	Type     StepType `yaml:"type" json:"type"`
}

// Set is a named group of steps repeated a fixed number of times.
type Set struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Repeats int    `yaml:"repeats" json:"repeats"`
	Steps   []Step `yaml:"steps" json:"steps"`
}

// Schema is a user-authored workout definition.
type Schema struct {
	ID        string    `yaml:"id" json:"id"`
	Name      string    `yaml:"name" json:"name"`
	Sets      []Set     `yaml:"sets" json:"sets"`
	CreatedAt time.Time `yaml:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// NewSchema returns an empty schema with one default set.
func NewSchema(name string) Schema {
	return Schema{
		ID:   uuid.NewString(),
		Name: name,
		Sets: []Set{NewSet("Set 1")},
	}
}

// NewSet returns a set with a run step followed by a rest step.
func NewSet(name string) Set {
	return Set{
		ID:      uuid.NewString(),
		Name:    name,
		Repeats: 1,
		Steps: []Step{
			NewStep("Run", 60, StepActive),
			NewStep("Rest", 30, StepPause),
		},
	}
}

// NewStep returns a step with a fresh identifier.
func NewStep(name string, seconds int, stepType StepType) Step {
	return Step{
		ID:       uuid.NewString(),
		Name:     name,
		Duration: seconds,
		Type:     stepType,
	}
}

// Seconds returns the step duration as a time.Duration.
func (step Step) Seconds() time.Duration {
	return time.Duration(step.Duration) * time.Second
}

// RoundDuration is the length of one pass through the set.
func (set Set) RoundDuration() time.Duration {
	var total time.Duration
	for _, step := range set.Steps {
		total += step.Seconds()
	}
	return total
}

// TotalDuration is the length of all rounds of the set.
func (set Set) TotalDuration() time.Duration {
	return set.RoundDuration() * time.Duration(set.Repeats)
}

// TotalDuration sums every set of the schema.
func (schema Schema) TotalDuration() time.Duration {
	var total time.Duration
	for _, set := range schema.Sets {
		total += set.TotalDuration()
	}
	return total
}

// TotalSteps counts executed steps, repeats included.
func (schema Schema) TotalSteps() int {
	count := 0
	for _, set := range schema.Sets {
		count += len(set.Steps) * set.Repeats
	}
	return count
}

// EnsureIDs fills in missing identifiers, e.g. after an import.
func (schema *Schema) EnsureIDs() {
	if schema.ID == "" {
		schema.ID = uuid.NewString()
	}
	for setIndex := range schema.Sets {
		set := &schema.Sets[setIndex]
		if set.ID == "" {
			set.ID = uuid.NewString()
		}
		for stepIndex := range set.Steps {
			if set.Steps[stepIndex].ID == "" {
				set.Steps[stepIndex].ID = uuid.NewString()
			}
		}
	}
}

// Validate checks the rules enforced before a schema is stored.
func (schema Schema) Validate() error {
	if strings.TrimSpace(schema.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidSchema)
	}
	if len(schema.Sets) == 0 {
		return fmt.Errorf("%w: %q has no sets", ErrInvalidSchema, schema.Name)
	}
	for _, set := range schema.Sets {
		if set.Repeats < 1 {
			return fmt.Errorf("%w: set %q needs at least one repeat", ErrInvalidSchema, set.Name)
		}
		if len(set.Steps) == 0 {
			return fmt.Errorf("%w: set %q has no steps", ErrInvalidSchema, set.Name)
		}
		for _, step := range set.Steps {
			if strings.TrimSpace(step.Name) == "" {
				return fmt.Errorf("%w: every step in set %q needs a name", ErrInvalidSchema, set.Name)
			}
			if step.Duration <= 0 {
				return fmt.Errorf("%w: step %q must last longer than 0 seconds", ErrInvalidSchema, step.Name)
			}
			if step.Type != StepActive && step.Type != StepPause {
				return fmt.Errorf("%w: step %q has unknown type %q", ErrInvalidSchema, step.Name, step.Type)
			}
		}
	}
	return nil
}

package pipeline

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDefinition indicates a pipeline definition that cannot run.
var ErrInvalidDefinition = errors.New("invalid pipeline definition")

// Step declares a single unit of work. Inputs and Outputs map capability
// field names to dot-paths in the run's data bag; an input path of
// databag.WholeBag passes the entire bag. Steps are immutable once a run
// starts; dynamic growth appends new Step values instead.
type Step struct {
	Name       string            `yaml:"name"`
	Capability string            `yaml:"capability"`
	Inputs     map[string]string `yaml:"inputs,omitempty"`
	Outputs    map[string]string `yaml:"outputs,omitempty"`
	Params     map[string]any    `yaml:"params,omitempty"`
}

// Definition is a named, ordered list of steps.
type Definition struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// LoadDefinition parses a YAML pipeline definition and validates it.
func LoadDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks the definition for structural problems: a missing
// name, no steps, unnamed steps, duplicate step names, or steps without
// a capability.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: pipeline name is required", ErrInvalidDefinition)
	}
	if len(d.Steps) == 0 {
		return fmt.Errorf("%w: pipeline %q has no steps", ErrInvalidDefinition, d.Name)
	}

	seen := make(map[string]struct{}, len(d.Steps))
	for i, step := range d.Steps {
		if step.Name == "" {
			return fmt.Errorf("%w: step %d has no name", ErrInvalidDefinition, i)
		}
		if step.Capability == "" {
			return fmt.Errorf("%w: step %q has no capability", ErrInvalidDefinition, step.Name)
		}
		if _, dup := seen[step.Name]; dup {
			return fmt.Errorf("%w: duplicate step name %q", ErrInvalidDefinition, step.Name)
		}
		seen[step.Name] = struct{}{}
	}
	return nil
}

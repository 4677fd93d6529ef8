package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fable-labs/fable/databag"
)

// Status is the lifecycle phase of a pipeline run.
type Status string

const (
	StatusInitialized Status = "initialized"
	StatusRunning     Status = "running"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// terminal reports whether no further transition may leave the status.
func (s Status) terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// StepError records a step failure with the step's name and when it
// happened. It unwraps to the capability's original error.
type StepError struct {
	Step string
	Time time.Time
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("pipeline step %q: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// State is the mutable record of a single pipeline run. A failed run
// keeps Data exactly as the last successful step left it; nothing is
// rolled back.
type State struct {
	RunID     string
	Pipeline  string
	Data      databag.Bag
	Current   int
	Completed []string
	Status    Status
	Errors    []*StepError

	// expanded tracks which count-producing steps already fired their
	// expansion, so a resumed run never re-appends steps.
	expanded map[string]struct{}
}

// NewState creates the initial state for a run of def, seeded with the
// given initial data (may be nil).
func NewState(def *Definition, initial databag.Bag) *State {
	data := initial
	if data == nil {
		data = make(databag.Bag)
	}
	return &State{
		RunID:    uuid.NewString(),
		Pipeline: def.Name,
		Data:     data,
		Status:   StatusInitialized,
		expanded: make(map[string]struct{}),
	}
}

// Expanded reports whether the named step's expansion has already fired.
func (s *State) Expanded(step string) bool {
	_, ok := s.expanded[step]
	return ok
}

func (s *State) markExpanded(step string) {
	if s.expanded == nil {
		s.expanded = make(map[string]struct{})
	}
	s.expanded[step] = struct{}{}
}

// Failed reports whether the run ended in failure.
func (s *State) Failed() bool {
	return s.Status == StatusFailed
}

// LastError returns the most recent step error, or nil.
func (s *State) LastError() *StepError {
	if len(s.Errors) == 0 {
		return nil
	}
	return s.Errors[len(s.Errors)-1]
}

// Package pipeline runs declarative step pipelines over a shared data
// bag. Steps execute strictly in order, each reading its inputs from
// the bag by dot-path and writing its outputs back; a designated step
// may grow the pipeline by appending steps once its output reveals how
// many are needed.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fable-labs/fable/databag"
)

// ExpansionFunc inspects the run state after its designated step
// succeeds and returns the steps to append to the pipeline's tail.
type ExpansionFunc func(st *State) ([]Step, error)

// Engine executes pipeline definitions. A single Engine may run many
// pipelines; each call to Run or Resume owns its State exclusively and
// steps within a run never execute concurrently.
type Engine struct {
	registry   *Registry
	logger     zerolog.Logger
	expansions map[string]ExpansionFunc
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithExpansion registers fn to run after the named step succeeds. The
// returned steps are appended to the end of the pipeline. The expansion
// fires at most once per run, even across Resume.
func WithExpansion(afterStep string, fn ExpansionFunc) EngineOption {
	return func(e *Engine) {
		e.expansions[afterStep] = fn
	}
}

// NewEngine creates an Engine resolving capabilities from registry.
func NewEngine(registry *Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		registry:   registry,
		logger:     zerolog.Nop(),
		expansions: make(map[string]ExpansionFunc),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes def from the beginning with the given initial data and
// returns the final state. The state is returned even on failure so the
// caller can inspect partial output; the error is the failing step's
// *StepError in that case.
func (e *Engine) Run(ctx context.Context, def *Definition, initial databag.Bag) (*State, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	st := NewState(def, initial)
	return st, e.resume(ctx, st, append([]Step(nil), def.Steps...))
}

// Resume continues a previously interrupted run from st.Current. The
// steps slice must include any steps appended by expansions that
// already fired; those expansions will not fire again.
func (e *Engine) Resume(ctx context.Context, st *State, steps []Step) (*State, error) {
	if st.Status.terminal() {
		return st, fmt.Errorf("pipeline %q: run %s already %s", st.Pipeline, st.RunID, st.Status)
	}
	return st, e.resume(ctx, st, append([]Step(nil), steps...))
}

func (e *Engine) resume(ctx context.Context, st *State, steps []Step) error {
	st.Status = StatusRunning

	log := e.logger.With().
		Str("pipeline", st.Pipeline).
		Str("run_id", st.RunID).
		Logger()
	log.Info().Int("steps", len(steps)).Int("from", st.Current).Msg("pipeline run started")

	for st.Current < len(steps) {
		step := steps[st.Current]

		// Cancellation between steps is an ordinary step failure:
		// partial data stays available to the caller.
		if err := ctx.Err(); err != nil {
			return e.fail(&log, st, step.Name, err)
		}

		log.Debug().Str("step", step.Name).Str("capability", step.Capability).Msg("step started")
		start := time.Now()

		capability, ok := e.registry.Get(step.Capability)
		if !ok {
			return e.fail(&log, st, step.Name, fmt.Errorf("unknown capability %q", step.Capability))
		}

		input := buildInput(st.Data, step.Inputs)

		output, err := capability.Execute(ctx, input, step.Params)
		if err != nil {
			return e.fail(&log, st, step.Name, err)
		}

		if err := routeOutputs(st.Data, step.Outputs, output); err != nil {
			return e.fail(&log, st, step.Name, err)
		}

		st.Completed = append(st.Completed, step.Name)
		st.Current++

		log.Debug().
			Str("step", step.Name).
			Dur("duration", time.Since(start)).
			Msg("step completed")

		grown, err := e.expand(&log, st, step.Name)
		if err != nil {
			return e.fail(&log, st, step.Name, err)
		}
		steps = append(steps, grown...)
	}

	st.Status = StatusCompleted
	log.Info().Int("completed", len(st.Completed)).Msg("pipeline run completed")
	return nil
}

// expand fires the expansion registered for step, at most once per run.
func (e *Engine) expand(log *zerolog.Logger, st *State, step string) ([]Step, error) {
	fn, ok := e.expansions[step]
	if !ok || st.Expanded(step) {
		return nil, nil
	}

	st.markExpanded(step)
	grown, err := fn(st)
	if err != nil {
		return nil, fmt.Errorf("expansion after step %q: %w", step, err)
	}
	if len(grown) > 0 {
		log.Info().Str("step", step).Int("appended", len(grown)).Msg("pipeline expanded")
	}
	return grown, nil
}

// fail records the step error, moves the run to failed, and returns the
// wrapped error. Data in the bag is left as the last successful step
// wrote it.
func (e *Engine) fail(log *zerolog.Logger, st *State, step string, err error) error {
	stepErr := &StepError{Step: step, Time: time.Now(), Err: err}
	st.Errors = append(st.Errors, stepErr)
	st.Status = StatusFailed

	log.Error().Err(err).Str("step", step).Msg("pipeline run failed")
	return stepErr
}

// buildInput resolves each input mapping against the bag. Paths that
// resolve to nothing are omitted so capabilities see only the fields
// that exist.
func buildInput(bag databag.Bag, inputs map[string]string) map[string]any {
	built := make(map[string]any, len(inputs))
	for field, path := range inputs {
		if v, ok := databag.Resolve(bag, path); ok {
			built[field] = v
		}
	}
	return built
}

// routeOutputs writes each output mapping into the bag. Output fields
// the capability did not produce are skipped, mirroring input omission.
func routeOutputs(bag databag.Bag, outputs map[string]string, produced map[string]any) error {
	for field, path := range outputs {
		v, ok := produced[field]
		if !ok {
			continue
		}
		if err := databag.Write(bag, path, v); err != nil {
			return fmt.Errorf("routing output %q to %q: %w", field, path, err)
		}
	}
	return nil
}

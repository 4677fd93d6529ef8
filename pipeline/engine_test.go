package pipeline

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/fable-labs/fable/databag"
)

// echoCapability writes its params through to its output.
func echoCapability(id string) CapabilityFunc {
	return CapabilityFunc{
		Name: id,
		Fn: func(ctx context.Context, input, params map[string]any) (map[string]any, error) {
			out := make(map[string]any, len(params))
			for k, v := range params {
				out[k] = v
			}
			return out, nil
		},
	}
}

func failingCapability(id string, err error) CapabilityFunc {
	return CapabilityFunc{
		Name: id,
		Fn: func(ctx context.Context, input, params map[string]any) (map[string]any, error) {
			return nil, err
		},
	}
}

func TestRunCompletes(t *testing.T) {
	reg := NewRegistry()
	reg.Register(echoCapability("echo"))

	def := &Definition{
		Name: "two-step",
		Steps: []Step{
			{Name: "first", Capability: "echo", Params: map[string]any{"value": "a"}, Outputs: map[string]string{"value": "first.out"}},
			{Name: "second", Capability: "echo", Params: map[string]any{"value": "b"}, Outputs: map[string]string{"value": "second.out"}},
		},
	}

	engine := NewEngine(reg)
	st, err := engine.Run(context.Background(), def, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if st.Status != StatusCompleted {
		t.Errorf("Status = %q, want %q", st.Status, StatusCompleted)
	}
	if st.RunID == "" {
		t.Error("RunID is empty")
	}
	if !reflect.DeepEqual(st.Completed, []string{"first", "second"}) {
		t.Errorf("Completed = %v", st.Completed)
	}
	if v, _ := databag.Resolve(st.Data, "second.out"); v != "b" {
		t.Errorf("second.out = %v, want b", v)
	}
}

func TestRunFailureHaltsAndRetainsData(t *testing.T) {
	boom := errors.New("capability exploded")

	reg := NewRegistry()
	reg.Register(echoCapability("echo"))
	reg.Register(failingCapability("boom", boom))

	def := &Definition{
		Name: "three-step",
		Steps: []Step{
			{Name: "step1", Capability: "echo", Params: map[string]any{"text": "kept"}, Outputs: map[string]string{"text": "step1.text"}},
			{Name: "step2", Capability: "boom"},
			{Name: "step3", Capability: "echo", Params: map[string]any{"text": "never"}, Outputs: map[string]string{"text": "step3.text"}},
		},
	}

	engine := NewEngine(reg)
	st, err := engine.Run(context.Background(), def, nil)
	if err == nil {
		t.Fatal("Run() succeeded, want failure at step2")
	}

	if st.Status != StatusFailed {
		t.Errorf("Status = %q, want %q", st.Status, StatusFailed)
	}
	if !reflect.DeepEqual(st.Completed, []string{"step1"}) {
		t.Errorf("Completed = %v, want [step1]", st.Completed)
	}

	// Step 1's output survives; step 3 never ran.
	if v, ok := databag.Resolve(st.Data, "step1.text"); !ok || v != "kept" {
		t.Errorf("step1.text = %v, %v, want kept", v, ok)
	}
	if _, ok := databag.Resolve(st.Data, "step3.text"); ok {
		t.Error("step3 output present after halt")
	}

	if len(st.Errors) != 1 {
		t.Fatalf("len(Errors) = %d, want 1", len(st.Errors))
	}
	stepErr := st.Errors[0]
	if stepErr.Step != "step2" {
		t.Errorf("Errors[0].Step = %q, want step2", stepErr.Step)
	}
	if !errors.Is(err, boom) {
		t.Errorf("errors.Is(err, boom) = false, err = %v", err)
	}

	var se *StepError
	if !errors.As(err, &se) {
		t.Errorf("error is %T, want *StepError", err)
	}
}

func TestRunUnknownCapability(t *testing.T) {
	engine := NewEngine(NewRegistry())
	def := &Definition{
		Name:  "bad",
		Steps: []Step{{Name: "only", Capability: "nope"}},
	}

	st, err := engine.Run(context.Background(), def, nil)
	if err == nil {
		t.Fatal("Run() succeeded with unknown capability")
	}
	if st.Status != StatusFailed {
		t.Errorf("Status = %q, want %q", st.Status, StatusFailed)
	}
}

func TestRunInputMappingOmitsAbsent(t *testing.T) {
	var seen map[string]any

	reg := NewRegistry()
	reg.Register(CapabilityFunc{
		Name: "capture",
		Fn: func(ctx context.Context, input, params map[string]any) (map[string]any, error) {
			seen = input
			return nil, nil
		},
	})

	def := &Definition{
		Name: "inputs",
		Steps: []Step{{
			Name:       "only",
			Capability: "capture",
			Inputs: map[string]string{
				"present": "book.title",
				"absent":  "book.missing",
				"all":     databag.WholeBag,
			},
		}},
	}

	initial := databag.Bag{"book": map[string]any{"title": "The Voyage"}}
	if _, err := NewEngine(reg).Run(context.Background(), def, initial); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if seen["present"] != "The Voyage" {
		t.Errorf("input present = %v", seen["present"])
	}
	if _, ok := seen["absent"]; ok {
		t.Error("absent path was passed to the capability")
	}
	if _, ok := seen["all"].(map[string]any); !ok {
		t.Errorf("whole-bag input = %T, want map", seen["all"])
	}
}

func TestRunCancellationIsStepFailure(t *testing.T) {
	reg := NewRegistry()
	reg.Register(echoCapability("echo"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	def := &Definition{
		Name:  "cancelled",
		Steps: []Step{{Name: "only", Capability: "echo"}},
	}

	st, err := NewEngine(reg).Run(ctx, def, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if st.Status != StatusFailed {
		t.Errorf("Status = %q, want %q", st.Status, StatusFailed)
	}
	if len(st.Errors) != 1 || st.Errors[0].Step != "only" {
		t.Errorf("Errors = %v, want one entry for step only", st.Errors)
	}
}

func TestDynamicExpansion(t *testing.T) {
	var order []string

	reg := NewRegistry()
	reg.Register(CapabilityFunc{
		Name: "record",
		Fn: func(ctx context.Context, input, params map[string]any) (map[string]any, error) {
			order = append(order, params["label"].(string))
			return map[string]any{"count": 3}, nil
		},
	})

	def := &Definition{
		Name: "book",
		Steps: []Step{
			{Name: "outline", Capability: "record", Params: map[string]any{"label": "outline"}, Outputs: map[string]string{"count": "chapter_count"}},
			{Name: "frontmatter", Capability: "record", Params: map[string]any{"label": "frontmatter"}},
		},
	}

	engine := NewEngine(reg, WithExpansion("outline", func(st *State) ([]Step, error) {
		n, _ := databag.Resolve(st.Data, "chapter_count")
		count := n.(int)

		var grown []Step
		for i := 1; i <= count; i++ {
			grown = append(grown,
				Step{Name: fmt.Sprintf("generate-%d", i), Capability: "record", Params: map[string]any{"label": fmt.Sprintf("generate-%d", i)}},
				Step{Name: fmt.Sprintf("edit-%d", i), Capability: "record", Params: map[string]any{"label": fmt.Sprintf("edit-%d", i)}},
			)
		}
		return grown, nil
	}))

	st, err := engine.Run(context.Background(), def, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// 2 declared + 3 generate/edit pairs.
	want := []string{
		"outline", "frontmatter",
		"generate-1", "edit-1",
		"generate-2", "edit-2",
		"generate-3", "edit-3",
	}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("execution order = %v, want %v", order, want)
	}
	if len(st.Completed) != 8 {
		t.Errorf("len(Completed) = %d, want 8", len(st.Completed))
	}
	if !st.Expanded("outline") {
		t.Error("Expanded(outline) = false after run")
	}
}

func TestExpansionFiresOnceAcrossResume(t *testing.T) {
	boom := errors.New("fail here")
	failNext := true

	reg := NewRegistry()
	reg.Register(echoCapability("echo"))
	reg.Register(CapabilityFunc{
		Name: "flaky",
		Fn: func(ctx context.Context, input, params map[string]any) (map[string]any, error) {
			if failNext {
				return nil, boom
			}
			return nil, nil
		},
	})

	steps := []Step{
		{Name: "counter", Capability: "echo"},
		{Name: "flaky", Capability: "flaky"},
	}
	def := &Definition{Name: "resumable", Steps: steps}

	expansions := 0
	engine := NewEngine(reg, WithExpansion("counter", func(st *State) ([]Step, error) {
		expansions++
		return []Step{{Name: "appended", Capability: "echo"}}, nil
	}))

	st, err := engine.Run(context.Background(), def, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want scripted failure", err)
	}
	if expansions != 1 {
		t.Fatalf("expansion fired %d times during first run, want 1", expansions)
	}

	// Resume past the failure with the already-expanded step list. The
	// counter step's expansion must not fire again.
	failNext = false
	st.Status = StatusRunning
	st.Current = 1

	resumed := append(append([]Step(nil), steps...), Step{Name: "appended", Capability: "echo"})
	st, err = engine.Resume(context.Background(), st, resumed)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}

	if expansions != 1 {
		t.Errorf("expansion fired %d times in total, want 1", expansions)
	}
	if st.Status != StatusCompleted {
		t.Errorf("Status = %q, want %q", st.Status, StatusCompleted)
	}
}

func TestResumeRejectsTerminalState(t *testing.T) {
	reg := NewRegistry()
	engine := NewEngine(reg)

	st := &State{RunID: "r", Pipeline: "p", Status: StatusCompleted}
	if _, err := engine.Resume(context.Background(), st, nil); err == nil {
		t.Error("Resume() of a completed run succeeded")
	}

	st.Status = StatusFailed
	if _, err := engine.Resume(context.Background(), st, nil); err == nil {
		t.Error("Resume() of a failed run succeeded")
	}
}

func TestRunValidatesDefinition(t *testing.T) {
	engine := NewEngine(NewRegistry())
	if _, err := engine.Run(context.Background(), &Definition{Name: "empty"}, nil); !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("Run() error = %v, want ErrInvalidDefinition", err)
	}
}

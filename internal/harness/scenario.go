package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mirror/internal/executor"
	"github.com/roach88/mirror/internal/testutil"
)

// Scenario is a scripted sequence of invocations run against one executor
// over the testutil fixture types.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Backend selects the executor: precomputed, live or resolving.
	Backend string `yaml:"backend"`

	// Fallback enables the live fallback of the resolving backend.
	// Defaults to true.
	Fallback *bool `yaml:"fallback,omitempty"`

	// OffContext runs live calls of the resolving backend on a dedicated
	// worker goroutine.
	OffContext bool `yaml:"off_context,omitempty"`

	// Steps run in order. A failed step does not stop the scenario.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the trace after all steps ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one invocation. Exactly one of New, Invoke, Get or Set is set.
type Step struct {
	// New is the type to construct. Unqualified names refer to the
	// fixture library.
	New string `yaml:"new,omitempty"`

	// Ctor names the constructor; empty means the unnamed one.
	Ctor string `yaml:"ctor,omitempty"`

	// As binds the constructed instance, or the returned value of any
	// other step, to a name usable in On.
	As string `yaml:"as,omitempty"`

	// Invoke, Get and Set name the method or field of the instance On.
	Invoke string `yaml:"invoke,omitempty"`
	Get    string `yaml:"get,omitempty"`
	Set    string `yaml:"set,omitempty"`
	On     string `yaml:"on,omitempty"`

	// Args and Named are the positional and named call arguments.
	Args  []any          `yaml:"args,omitempty"`
	Named map[string]any `yaml:"named,omitempty"`

	// Value is the value assigned by Set.
	Value any `yaml:"value,omitempty"`

	// Expect is checked against the step outcome. A step without Expect
	// must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the outcome of a step.
type Expect struct {
	// Value is compared with the returned value by canonical summary.
	Value any `yaml:"value,omitempty"`

	// Nil expects a nil return.
	Nil bool `yaml:"nil,omitempty"`

	// Error expects a failure with this invocation error code.
	Error string `yaml:"error,omitempty"`

	// Fails expects a failure of any kind, including errors raised by the
	// invoked code itself.
	Fails bool `yaml:"fails,omitempty"`
}

func (e *Expect) failure() bool { return e != nil && (e.Error != "" || e.Fails) }

// Step operations, matching the operation names of invocation records.
const (
	OpConstruct = "construct"
	OpInvoke    = "invoke"
	OpGet       = "get"
	OpSet       = "set"
)

// Operation returns the operation of the step, or "" if none or several
// are set.
func (s Step) Operation() string {
	var ops []string
	if s.New != "" {
		ops = append(ops, OpConstruct)
	}
	if s.Invoke != "" {
		ops = append(ops, OpInvoke)
	}
	if s.Get != "" {
		ops = append(ops, OpGet)
	}
	if s.Set != "" {
		ops = append(ops, OpSet)
	}
	if len(ops) != 1 {
		return ""
	}
	return ops[0]
}

// Member returns the constructor, method or field named by the step.
func (s Step) Member() string {
	switch s.Operation() {
	case OpConstruct:
		return s.Ctor
	case OpInvoke:
		return s.Invoke
	case OpGet:
		return s.Get
	case OpSet:
		return s.Set
	}
	return ""
}

// TypeName returns the qualified name of the type constructed by the step.
func (s Step) TypeName() string {
	return QualifyType(s.New)
}

// QualifyType qualifies a bare fixture type name with the fixture library.
func QualifyType(name string) string {
	if name == "" || strings.Contains(name, "/") {
		return name
	}
	return testutil.LibraryURI + "." + name
}

var validBackends = []string{
	string(executor.BackendPrecomputed),
	string(executor.BackendLive),
	string(executor.BackendResolving),
}

var validCodes = []executor.ErrorCode{
	executor.ErrCodeConstructorNotFound,
	executor.ErrCodeMethodNotFound,
	executor.ErrCodeFieldAccess,
	executor.ErrCodeFieldMutation,
	executor.ErrCodeGenericResolution,
	executor.ErrCodeUnsupported,
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so that typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenarios in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	names := make(map[string]string, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if prev, dup := names[s.Name]; dup {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", filepath.Base(path), s.Name, prev)
		}
		names[s.Name] = filepath.Base(path)
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if !slices.Contains(validBackends, s.Backend) {
		return fmt.Errorf("backend must be one of %v, got %q", validBackends, s.Backend)
	}
	if (s.Fallback != nil || s.OffContext) && s.Backend != string(executor.BackendResolving) {
		return fmt.Errorf("fallback and off_context apply to the resolving backend only")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	bound := make(map[string]bool)
	for i, step := range s.Steps {
		if err := validateStep(step, bound); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
		if step.As != "" {
			bound[step.As] = true
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a, bound); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step, bound map[string]bool) error {
	op := step.Operation()
	if op == "" {
		return fmt.Errorf("exactly one of new, invoke, get or set is required")
	}

	if op == OpConstruct {
		if step.On != "" {
			return fmt.Errorf("on is not allowed with new")
		}
	} else {
		if step.On == "" {
			return fmt.Errorf("on is required for %s", op)
		}
		if !bound[step.On] {
			return fmt.Errorf("on refers to unbound name %q", step.On)
		}
		if step.Ctor != "" {
			return fmt.Errorf("ctor is only allowed with new")
		}
	}
	if op == OpGet && (len(step.Args) > 0 || len(step.Named) > 0) {
		return fmt.Errorf("get takes no arguments")
	}
	if op == OpSet && (len(step.Args) > 0 || len(step.Named) > 0) {
		return fmt.Errorf("set takes value, not arguments")
	}
	if op != OpSet && step.Value != nil {
		return fmt.Errorf("value is only allowed with set")
	}

	if e := step.Expect; e != nil {
		set := 0
		for _, b := range []bool{e.Value != nil, e.Nil, e.Error != "", e.Fails} {
			if b {
				set++
			}
		}
		if set != 1 {
			return fmt.Errorf("expect needs exactly one of value, nil, error or fails")
		}
		if e.Error != "" && !slices.Contains(validCodes, executor.ErrorCode(e.Error)) {
			return fmt.Errorf("expect.error: unknown error code %q", e.Error)
		}
		if step.As != "" && e.failure() {
			return fmt.Errorf("as cannot bind the result of a failing step")
		}
	}
	return nil
}

package equitysim

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
	"gopkg.in/yaml.v3"
)

// Scenario bundles a profile, a plan, and optional expectations into one
// loadable file. Scenarios are the engine's outer interface: JSON or YAML,
// decided by file extension.
type Scenario struct {
	Name    string         `json:"name,omitempty" yaml:"name,omitempty"`
	Profile UserProfile    `json:"profile" yaml:"profile"`
	Plan    ProjectionPlan `json:"plan" yaml:"plan"`

	Expectations []Expectation `json:"expectations,omitempty" yaml:"expectations,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read scenario: %w", err)
	}
	var s Scenario
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("invalid YAML scenario %q: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("invalid JSON scenario %q: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format %q, want .yaml or .json", ext)
	}
	if err := s.Profile.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", path, err)
	}
	if err := s.Plan.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", path, err)
	}
	return &s, nil
}

// Run projects the scenario.
func (s *Scenario) Run() (*ProjectionResult, error) {
	p, err := NewProjector(s.Profile, s.Plan)
	if err != nil {
		return nil, err
	}
	r, err := p.Run()
	if err != nil {
		return nil, err
	}
	if r.Name == "" {
		r.Name = s.Name
	}
	return r, nil
}

// Expectation is a jsonpath assertion against the marshalled projection
// result, e.g. path "$.years[0].tax.federal.amt.is_amt" want true.
type Expectation struct {
	Path string `json:"path" yaml:"path"`
	Want any    `json:"want" yaml:"want"`
}

// Check evaluates the expectation. It returns nil when the value at Path
// matches Want, a descriptive error otherwise.
func (e Expectation) Check(result *ProjectionResult) error {
	// Round-trip through JSON so jsonpath sees the wire representation, the
	// same one a downstream consumer reads.
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not marshal result: %w", err)
	}
	var jobj any
	if err := json.Unmarshal(raw, &jobj); err != nil {
		return fmt.Errorf("could not unmarshal result: %w", err)
	}

	jval, err := jsonpath.Get(e.Path, jobj)
	if err != nil {
		return fmt.Errorf("expectation %q: %w", e.Path, err)
	}
	// jsonpath is never clear about whether it returns a list of one answer
	// or a single answer; keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) == 1 {
		jval = jlist[0]
	}

	if !looseEqual(jval, e.Want) {
		return fmt.Errorf("expectation %q: got %v, want %v", e.Path, jval, e.Want)
	}
	return nil
}

// looseEqual compares a jsonpath result with a decoded expectation value.
// Numbers compare numerically (JSON and YAML decode them into different Go
// types); everything else compares by string form.
func looseEqual(got, want any) bool {
	gf, gok := toFloat(got)
	wf, wok := toFloat(want)
	if gok && wok {
		return math.Abs(gf-wf) < 1e-6
	}
	return fmt.Sprint(got) == fmt.Sprint(want)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// CheckAll runs every expectation and returns the failures joined.
func (s *Scenario) CheckAll(result *ProjectionResult) []error {
	var failures []error
	for _, e := range s.Expectations {
		if err := e.Check(result); err != nil {
			failures = append(failures, err)
		}
	}
	return failures
}

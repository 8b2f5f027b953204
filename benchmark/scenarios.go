package benchmark

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-blazeface/models/model"
)

// Scenario defines one benchmark configuration.
type Scenario struct {
	Name string `json:"name" yaml:"name"`
	// Model selects the detector preset.
	Model model.Name `json:"model" yaml:"model"`
	// Candidates is the number of anchors given a confident logit in each
	// synthetic output.
	Candidates int `json:"candidates" yaml:"candidates"`
	// Weighted enables weighted NMS.
	Weighted   bool  `json:"weighted" yaml:"weighted"`
	Iterations int   `json:"iterations" yaml:"iterations"`
	WarmupRuns int   `json:"warmup_runs" yaml:"warmup_runs"`
	Seed       int64 `json:"seed" yaml:"seed"`
}

// ScenarioBuilder helps build scenarios with a fluent API.
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder creates a builder with the face preset and default
// iteration counts.
func NewScenarioBuilder(name string) *ScenarioBuilder {
	return &ScenarioBuilder{
		scenario: Scenario{
			Name:       name,
			Model:      model.ModelNameFaceFront,
			Iterations: 100,
			WarmupRuns: 10,
			Seed:       1,
		},
	}
}

// WithModel sets the model preset.
func (sb *ScenarioBuilder) WithModel(name model.Name) *ScenarioBuilder {
	sb.scenario.Model = name
	return sb
}

// WithCandidates sets the number of confident anchors per output.
func (sb *ScenarioBuilder) WithCandidates(n int) *ScenarioBuilder {
	sb.scenario.Candidates = n
	return sb
}

// WithWeightedNMS enables weighted suppression.
func (sb *ScenarioBuilder) WithWeightedNMS(weighted bool) *ScenarioBuilder {
	sb.scenario.Weighted = weighted
	return sb
}

// WithIterations sets the number of measured iterations.
func (sb *ScenarioBuilder) WithIterations(iterations int) *ScenarioBuilder {
	sb.scenario.Iterations = iterations
	return sb
}

// WithWarmupRuns sets the number of unmeasured iterations.
func (sb *ScenarioBuilder) WithWarmupRuns(warmups int) *ScenarioBuilder {
	sb.scenario.WarmupRuns = warmups
	return sb
}

// WithSeed sets the seed of the synthetic output generator.
func (sb *ScenarioBuilder) WithSeed(seed int64) *ScenarioBuilder {
	sb.scenario.Seed = seed
	return sb
}

// Build returns the configured scenario.
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// ScenarioSet is a named collection of scenarios.
type ScenarioSet struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Scenarios   []Scenario `json:"scenarios" yaml:"scenarios"`
}

// QuickScenarios covers both presets at an empty, a typical and a crowded
// candidate count with greedy and weighted suppression.
func QuickScenarios() *ScenarioSet {
	scenarios := make([]Scenario, 0, 12)
	for _, name := range []model.Name{model.ModelNameFaceFront, model.ModelNamePalm} {
		for _, candidates := range []int{0, 16, 256} {
			for _, weighted := range []bool{false, true} {
				nms := "greedy"
				if weighted {
					nms = "weighted"
				}
				scenarios = append(scenarios,
					NewScenarioBuilder(fmt.Sprintf("%s_%d_%s", name, candidates, nms)).
						WithModel(name).
						WithCandidates(candidates).
						WithWeightedNMS(weighted).
						WithIterations(200).
						WithWarmupRuns(20).
						Build(),
				)
			}
		}
	}

	return &ScenarioSet{
		Name:        "Quick Post-Processing Test",
		Description: "Both presets at 0, 16 and 256 candidates with greedy and weighted NMS",
		Scenarios:   scenarios,
	}
}

// LoadScenarioSet reads a scenario set from a YAML or JSON file.
func LoadScenarioSet(path string) (*ScenarioSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading scenario file")
	}

	var set ScenarioSet
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&set); err != nil {
		return nil, errors.Wrapf(err, "decoding scenario file %s", path)
	}
	return &set, nil
}

package cmd

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/scalesim/scalesim/sim"
)

// Scenario is a named, reusable parameter set with a human description.
type Scenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Config      sim.Config `yaml:"config"`
}

// ScenarioFile is the YAML layout for user-supplied scenario files.
type ScenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// builtinScenarios are the bundled presets.
func builtinScenarios() []Scenario {
	base := sim.DefaultConfig()
	base.MaxInFlight = 100
	base.MaxWaitTime = 20.0
	base.Duration = 200.0
	base.SLAThreshold = 5.0

	normal := base
	normal.ArrivalRate = 1.0
	normal.InitialNodes, normal.MinNodes, normal.MaxNodes = 3, 3, 3

	peakFixed := normal
	peakFixed.ArrivalRate = 4.0

	peakScaled := base
	peakScaled.ArrivalRate = 4.0
	peakScaled.Autoscale = true
	peakScaled.InitialNodes, peakScaled.MinNodes, peakScaled.MaxNodes = 2, 2, 10
	peakScaled.LowThreshold, peakScaled.HighThreshold = 2.0, 8.0
	peakScaled.ControlInterval, peakScaled.ScaleCooldown = 5.0, 10.0

	lowLoad := base
	lowLoad.ArrivalRate = 1.0
	lowLoad.ServiceTimeMin, lowLoad.ServiceTimeMax = 0.2, 0.8
	lowLoad.Autoscale = true
	lowLoad.InitialNodes, lowLoad.MinNodes, lowLoad.MaxNodes = 5, 1, 8
	lowLoad.LowThreshold, lowLoad.HighThreshold = 1.0, 4.0
	lowLoad.ControlInterval, lowLoad.ScaleCooldown = 10.0, 20.0

	wave := base
	wave.ArrivalRate = 2.0
	wave.Autoscale = true
	wave.InitialNodes, wave.MinNodes, wave.MaxNodes = 2, 1, 8
	wave.LowThreshold, wave.HighThreshold = 2.0, 6.0
	wave.ControlInterval, wave.ScaleCooldown = 5.0, 10.0

	return []Scenario{
		{
			Name: "normal-load",
			Description: "Baseline: the system keeps up comfortably, the queue stays " +
				"short, rejections are near zero and SLA compliance is high. The " +
				"reference point the other presets are compared against.",
			Config: normal,
		},
		{
			Name: "peak-fixed",
			Description: "Overload without regulation: lambda far above what a fixed " +
				"three-node pool can serve. The queue trends upward, timeouts and " +
				"overflow rejections pile up, and SLA compliance collapses.",
			Config: peakFixed,
		},
		{
			Name: "peak-autoscaled",
			Description: "The same peak load with the controller enabled: the pool " +
				"grows one node per interval until the backlog drains, ending with " +
				"more nodes than it started with and a better SLA than peak-fixed.",
			Config: peakScaled,
		},
		{
			Name: "low-load-scaledown",
			Description: "Light load on an oversized pool: the controller shrinks " +
				"the pool toward the minimum over consecutive quiet intervals while " +
				"SLA compliance stays near 100%.",
			Config: lowLoad,
		},
		{
			Name: "wave",
			Description: "Moderate load with autoscaling headroom in both " +
				"directions, useful for watching the hysteresis damp oscillation.",
			Config: wave,
		},
	}
}

// LoadScenarios parses a YAML scenario file.
func LoadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	var file ScenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}
	return file.Scenarios, nil
}

// LookupScenario finds a named scenario in the given file, or among the
// built-in presets when path is empty.
func LookupScenario(path string, name string) (Scenario, error) {
	scenarios := builtinScenarios()
	if path != "" {
		loaded, err := LoadScenarios(path)
		if err != nil {
			return Scenario{}, err
		}
		scenarios = loaded
	}
	for _, s := range scenarios {
		if s.Name == name {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("scenario %q not found", name)
}

// PrintScenarios writes the built-in preset list.
func PrintScenarios(w io.Writer) {
	for _, s := range builtinScenarios() {
		fmt.Fprintf(w, "%s\n    %s\n", s.Name, s.Description)
	}
}

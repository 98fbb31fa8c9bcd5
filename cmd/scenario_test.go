package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinScenarios_AllValid(t *testing.T) {
	scenarios := builtinScenarios()
	require.NotEmpty(t, scenarios)
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			assert.NotEmpty(t, s.Description)
			cfg := s.Config
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestLookupScenario_Builtin(t *testing.T) {
	s, err := LookupScenario("", "peak-autoscaled")
	require.NoError(t, err)
	assert.True(t, s.Config.Autoscale)
	assert.Equal(t, 10, s.Config.MaxNodes)
	assert.InDelta(t, 4.0, s.Config.ArrivalRate, 1e-9)
}

func TestLookupScenario_UnknownName_Errors(t *testing.T) {
	_, err := LookupScenario("", "does-not-exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestLoadScenarios_FromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	content := []byte(`scenarios:
  - name: burst
    description: short burst test
    config:
      seed: 7
      arrival_rate: 3.5
      service_time_min: 0.5
      service_time_max: 1.5
      initial_nodes: 2
      min_nodes: 1
      max_nodes: 4
      node_capacity: 2
      autoscale: true
      low_threshold: 1
      high_threshold: 6
      control_interval: 5
      scale_cooldown: 10
      duration: 60
      sample_period: 0.1
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	scenarios, err := LoadScenarios(path)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)

	s := scenarios[0]
	assert.Equal(t, "burst", s.Name)
	assert.Equal(t, int64(7), s.Config.Seed)
	assert.InDelta(t, 3.5, s.Config.ArrivalRate, 1e-9)
	assert.Equal(t, 2, s.Config.NodeCapacity)
	assert.True(t, s.Config.Autoscale)
	assert.NoError(t, s.Config.Validate())
}

func TestLoadScenarios_MissingFile_Errors(t *testing.T) {
	_, err := LoadScenarios(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadScenarios_MalformedYAML_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scenarios: [unclosed"), 0o644))

	_, err := LoadScenarios(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing scenario file")
}

func TestLookupScenario_FromFile_IgnoresBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	content := []byte(`scenarios:
  - name: only-one
    description: the only scenario in this file
    config:
      arrival_rate: 1
      service_time_min: 0.5
      service_time_max: 1
      initial_nodes: 1
      node_capacity: 1
      duration: 10
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	_, err := LookupScenario(path, "normal-load")
	require.Error(t, err)

	s, err := LookupScenario(path, "only-one")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, s.Config.Duration, 1e-9)
}

func TestPrintScenarios_ListsEveryPreset(t *testing.T) {
	var buf bytes.Buffer
	PrintScenarios(&buf)

	out := buf.String()
	for _, s := range builtinScenarios() {
		assert.Contains(t, out, s.Name)
	}
}

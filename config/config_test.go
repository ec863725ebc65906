package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/routecore/routecore/config"
)

const vertexCSV = "vertex_id,x,y\n0,0,0\n1,1,0\n2,2,0\n"
const edgeCSV = "edge_list_id,edge_id,src_vertex_id,dst_vertex_id,distance\n0,0,0,1,5\n0,1,1,2,5\n"

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	doc := `
algorithm:
  type: dijkstra
graph:
  vertex_list_input_file: vertices.csv
  edge_list_input_file: edges.csv
traversal:
  - type: distance
label:
  type: vertex
termination:
  type: iterations
  max_iterations: 1000
cost:
  features:
    trip_distance:
      weight: 1.0
  cost_aggregation: sum
parallelism: 2
`
	return writeFixture(t, dir, "config.yaml", doc)
}

func TestLoadFrom_ParsesAndResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "vertices.csv", vertexCSV)
	writeFixture(t, dir, "edges.csv", edgeCSV)
	cfgPath := writeConfig(t, dir)

	cfg, err := config.LoadFrom(cfgPath)
	require.NoError(t, err)
	require.Equal(t, "dijkstra", cfg.Algorithm.Type)
	require.Equal(t, 2, cfg.Parallelism)

	g, err := cfg.LoadGraph()
	require.NoError(t, err)
	require.NotNil(t, g)
}

func TestBuild_AssemblesRunnableInstance(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "vertices.csv", vertexCSV)
	writeFixture(t, dir, "edges.csv", edgeCSV)
	cfgPath := writeConfig(t, dir)

	cfg, err := config.LoadFrom(cfgPath)
	require.NoError(t, err)

	inst, err := config.Build(cfg)
	require.NoError(t, err)
	require.NotNil(t, inst.Graph)
	require.NotNil(t, inst.Cost)
	require.Equal(t, 2, inst.Parallelism)
}

func TestBuildTraversal_RejectsUnknownType(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Traversal = []config.ModelSpec{{Type: "not_a_real_model"}}

	_, err := cfg.BuildTraversal()
	require.Error(t, err)
}

func TestBuildTermination_Combined(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Termination = config.TerminationConfig{
		Type: "combined",
		Combined: []config.TerminationConfig{
			{Type: "iterations", MaxIterations: 500},
			{Type: "solution_size", MaxSolutionSize: 1000},
		},
	}

	tm, err := cfg.BuildTermination()
	require.NoError(t, err)
	require.True(t, tm.ShouldTerminate(time.Now(), 0, 500))
}

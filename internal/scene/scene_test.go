package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/forcegraph/internal/config"
	"github.com/san-kum/forcegraph/internal/graph"
)

func sceneConfig(topology string, nodes, edges int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Scene.Topology = topology
	cfg.Scene.Nodes = nodes
	cfg.Scene.Edges = edges
	return cfg
}

func TestGenerate_Topologies(t *testing.T) {
	tests := []struct {
		topology  string
		nodes     int
		edges     int
		wantEdges int
	}{
		{Random, 100, 250, 250},
		{Ring, 100, 0, 100},
		{Ring, 2, 0, 1},
		{Chain, 100, 0, 99},
		{Star, 100, 0, 99},
		{Random, 1, 10, 0},
		{Chain, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.topology, func(t *testing.T) {
			nodes, edges, err := Generate(sceneConfig(tt.topology, tt.nodes, tt.edges))
			require.NoError(t, err)
			assert.Len(t, nodes, tt.nodes)
			assert.Len(t, edges, tt.wantEdges)
			assert.True(t, graph.ValidEdges(edges, len(nodes)))
			for _, e := range edges {
				assert.NotEqual(t, e.A, e.B, "self loop")
			}
		})
	}
}

func TestGenerate_InsideWorld(t *testing.T) {
	cfg := sceneConfig(Random, 2000, 0)
	cfg.Grid.WorldMin, cfg.Grid.WorldMax = -100, 100

	nodes, _, err := Generate(cfg)
	require.NoError(t, err)
	for _, n := range nodes {
		assert.True(t, n.X > -100 && n.X < 100 && n.Y > -100 && n.Y < 100, "node at (%v, %v)", n.X, n.Y)
		assert.Equal(t, 1.0, n.Mass)
		assert.Zero(t, n.VX)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg := sceneConfig(Random, 300, 500)
	n1, e1, err := Generate(cfg)
	require.NoError(t, err)
	n2, e2, err := Generate(cfg)
	require.NoError(t, err)
	assert.Equal(t, n1, n2)
	assert.Equal(t, e1, e2)

	cfg.Scene.Seed++
	n3, _, err := Generate(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, n1, n3)
}

func TestGenerate_Colours(t *testing.T) {
	cfg := sceneConfig(Chain, 3, 0)
	cfg.Scene.NodeColor = "#ff0000"
	cfg.Scene.EdgeColor = ""

	nodes, edges, err := Generate(cfg)
	require.NoError(t, err)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, nodes[0].Color)
	assert.Equal(t, defaultEdgeColor, edges[0].Color)
	assert.Equal(t, cfg.Scene.EdgeWidth, edges[0].Width)
}

func TestGenerate_UnknownTopology(t *testing.T) {
	_, _, err := Generate(sceneConfig("torus", 10, 0))
	assert.Error(t, err)
}

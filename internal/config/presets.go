package config

import (
	"sort"
)

type Preset struct {
	Description string
	apply       func(*Config)
}

var Presets = map[string]Preset{
	"small": {
		Description: "200 nodes on a ring, settles in a few seconds",
		apply: func(c *Config) {
			c.Scene.Nodes, c.Scene.Edges, c.Scene.Topology = 200, 200, "ring"
			c.Run.Steps = 300
		},
	},
	"medium": {
		Description: "5000 random nodes and 7500 random edges",
		apply: func(c *Config) {
			c.Scene.Nodes, c.Scene.Edges = 5000, 7500
		},
	},
	"large": {
		Description: "the full node capacity with a sparse edge set",
		apply: func(c *Config) {
			c.Scene.Nodes, c.Scene.Edges = c.Engine.MaxNodes, 2*c.Engine.MaxNodes
			c.Run.Steps = 200
		},
	},
	"star": {
		Description: "one hub connected to 1000 leaves",
		apply: func(c *Config) {
			c.Scene.Nodes, c.Scene.Topology = 1001, "star"
			c.Physics.RestLength = 120
		},
	},
	"chain": {
		Description: "a 2000 node path with stiff springs",
		apply: func(c *Config) {
			c.Scene.Nodes, c.Scene.Topology = 2000, "chain"
			c.Physics.SpringConstant = 0.2
			c.Physics.RestLength = 10
		},
	},
	"dense": {
		Description: "crowded cells: short radius, small world, reduced cell capacity",
		apply: func(c *Config) {
			c.Scene.Nodes, c.Scene.Edges = 8000, 4000
			c.Grid.WorldMin, c.Grid.WorldMax = -250, 250
			c.Grid.CellCapacity = 16
			c.Physics.RepulsionRadius = 15
		},
	},
	"serial": {
		Description: "medium workload on the scalar fallback",
		apply: func(c *Config) {
			c.Engine.Accelerate = false
			c.Scene.Nodes, c.Scene.Edges = 2000, 3000
		},
	},
}

// GetPreset returns the default config with the named preset applied, or
// nil when no such preset exists.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

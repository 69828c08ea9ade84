package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/forcegraph/internal/compute"
	"github.com/san-kum/forcegraph/internal/graph"
	"github.com/san-kum/forcegraph/internal/grid"
)

const (
	DefaultSteps     = 600
	DefaultNodes     = 1000
	DefaultEdges     = 1500
	DefaultTopology  = "random"
	DefaultNodeColor = "#4c9be8"
	DefaultEdgeColor = "#8a8f98aa"
)

type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Grid    GridConfig    `yaml:"grid"`
	Physics PhysicsConfig `yaml:"physics"`
	Scene   SceneConfig   `yaml:"scene"`
	Run     RunConfig     `yaml:"run"`
}

type EngineConfig struct {
	MaxNodes   int  `yaml:"max_nodes" validate:"min=1"`
	MaxEdges   int  `yaml:"max_edges" validate:"min=1"`
	Workers    int  `yaml:"workers" validate:"min=0"`
	Accelerate bool `yaml:"accelerate"`
}

type GridConfig struct {
	Size         int     `yaml:"size" validate:"min=1,max=4096"`
	CellCapacity int     `yaml:"cell_capacity" validate:"min=1"`
	WorldMin     float64 `yaml:"world_min"`
	WorldMax     float64 `yaml:"world_max" validate:"gtfield=WorldMin"`
}

type PhysicsConfig struct {
	Dt                float64 `yaml:"dt" validate:"gt=0"`
	Damping           float64 `yaml:"damping" validate:"gt=0,lte=1"`
	SpringConstant    float64 `yaml:"spring_constant" validate:"gte=0"`
	RestLength        float64 `yaml:"rest_length" validate:"gte=0"`
	RepulsionStrength float64 `yaml:"repulsion_strength" validate:"gte=0"`
	RepulsionRadius   float64 `yaml:"repulsion_radius" validate:"gte=0"`
}

type SceneConfig struct {
	Nodes     int     `yaml:"nodes" validate:"min=0"`
	Edges     int     `yaml:"edges" validate:"min=0"`
	Topology  string  `yaml:"topology" validate:"oneof=random ring chain star"`
	Seed      int64   `yaml:"seed"`
	NodeColor string  `yaml:"node_color" validate:"omitempty,rgbhex"`
	EdgeColor string  `yaml:"edge_color" validate:"omitempty,rgbhex"`
	NodeSize  float32 `yaml:"node_size" validate:"gte=0"`
	EdgeWidth float32 `yaml:"edge_width" validate:"gte=0"`
}

type RunConfig struct {
	Steps int `yaml:"steps" validate:"min=1"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("rgbhex", func(fl validator.FieldLevel) bool {
		_, ok := graph.ParseHexColor(fl.Field().String())
		return ok
	})
	return v
}

func DefaultConfig() *Config {
	p := graph.DefaultParams()
	return &Config{
		Engine: EngineConfig{
			MaxNodes:   graph.DefaultMaxNodes,
			MaxEdges:   graph.DefaultMaxEdges,
			Accelerate: true,
		},
		Grid: GridConfig{
			Size:         grid.DefaultSize,
			CellCapacity: grid.DefaultCapacity,
			WorldMin:     graph.WorldMin,
			WorldMax:     graph.WorldMax,
		},
		Physics: PhysicsConfig{
			Dt:                p.DeltaTime,
			Damping:           p.Damping,
			SpringConstant:    p.SpringConstant,
			RestLength:        p.RestLength,
			RepulsionStrength: p.RepulsionStrength,
			RepulsionRadius:   p.RepulsionRadius,
		},
		Scene: SceneConfig{
			Nodes:     DefaultNodes,
			Edges:     DefaultEdges,
			Topology:  DefaultTopology,
			Seed:      1,
			NodeColor: DefaultNodeColor,
			EdgeColor: DefaultEdgeColor,
			NodeSize:  4,
			EdgeWidth: 1,
		},
		Run: RunConfig{Steps: DefaultSteps},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the documented safe ranges. The engine itself never
// validates parameters, so this is the only gate.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "min", "gte":
		return fmt.Errorf("%s: must be at least %s", fe.Namespace(), fe.Param())
	case "max", "lte":
		return fmt.Errorf("%s: must not exceed %s", fe.Namespace(), fe.Param())
	case "gt":
		return fmt.Errorf("%s: must be greater than %s", fe.Namespace(), fe.Param())
	case "gtfield":
		return fmt.Errorf("%s: must be greater than %s", fe.Namespace(), fe.Param())
	case "oneof":
		return fmt.Errorf("%s: must be one of [%s]", fe.Namespace(), fe.Param())
	case "rgbhex":
		return fmt.Errorf("%s: %q is not a #rgb, #rrggbb or #rrggbbaa colour", fe.Namespace(), fe.Value())
	default:
		return fmt.Errorf("%s: validation failed (%s)", fe.Namespace(), fe.Tag())
	}
}

func (c *Config) Params() graph.Params {
	return graph.Params{
		DeltaTime:         c.Physics.Dt,
		Damping:           c.Physics.Damping,
		SpringConstant:    c.Physics.SpringConstant,
		RestLength:        c.Physics.RestLength,
		RepulsionStrength: c.Physics.RepulsionStrength,
		RepulsionRadius:   c.Physics.RepulsionRadius,
	}
}

// ComputeOptions returns the backend probe options. Workers = 0 keeps
// GOMAXPROCS.
func (c *Config) ComputeOptions() compute.Options {
	opts := compute.DefaultOptions()
	if c.Engine.Workers > 0 {
		opts.Workers = c.Engine.Workers
	}
	opts.Accelerate = c.Engine.Accelerate
	opts.GridSize = c.Grid.Size
	opts.CellCapacity = c.Grid.CellCapacity
	opts.WorldMin = c.Grid.WorldMin
	opts.WorldMax = c.Grid.WorldMax
	return opts
}

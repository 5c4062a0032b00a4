package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// SearchConfig tunes neighbourhoods, penalties, operators and multi-start.
type SearchConfig struct {
	Neighbourhood           NeighbourhoodConfig `yaml:"neighbourhood"`
	Penalties               PenaltyConfig       `yaml:"penalties"`
	OverlapToleranceDegrees int                 `yaml:"overlap_tolerance_degrees" validate:"gte=0,lte=360"`
	NodeOperators           []string            `yaml:"node_operators" validate:"required,min=1,dive,oneof=relocate swap exchange20 exchange21 exchange22 two-opt"`
	RouteOperators          []string            `yaml:"route_operators" validate:"dive,oneof=relocate-star swap-star"`
	PairPolicy              string              `yaml:"pair_policy" validate:"omitempty,oneof=first-improvement until-stable"`
	Construction            string              `yaml:"construction" validate:"oneof=random nearest"`
	Starts                  int                 `yaml:"starts" validate:"gte=1,lte=256"`
	Parallelism             int                 `yaml:"parallelism" validate:"gte=1,lte=64"`
}

type NeighbourhoodConfig struct {
	WeightWaitTime      float64 `yaml:"weight_wait_time" validate:"gte=0"`
	WeightTimeWarp      float64 `yaml:"weight_time_warp" validate:"gte=0"`
	NumNeighbours       int     `yaml:"num_neighbours" validate:"gte=1"`
	SymmetricProximity  bool    `yaml:"symmetric_proximity"`
	SymmetricNeighbours bool    `yaml:"symmetric_neighbours"`
}

type PenaltyConfig struct {
	Capacity int `yaml:"capacity" validate:"gte=0"`
	TimeWarp int `yaml:"time_warp" validate:"gte=0"`
}

// DefaultSearchConfig returns the settings used when no file is given.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Neighbourhood: NeighbourhoodConfig{
			WeightWaitTime:     0.2,
			WeightTimeWarp:     1.0,
			NumNeighbours:      40,
			SymmetricProximity: true,
		},
		Penalties:               PenaltyConfig{Capacity: 20, TimeWarp: 6},
		OverlapToleranceDegrees: 0,
		NodeOperators:           []string{"relocate", "swap", "exchange20", "exchange21", "exchange22", "two-opt"},
		RouteOperators:          []string{"relocate-star", "swap-star"},
		PairPolicy:              "first-improvement",
		Construction:            "random",
		Starts:                  4,
		Parallelism:             4,
	}
}

var validate = validator.New()

// Validate checks value ranges and operator names.
func (c SearchConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("search config: %w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ParseSearchConfig overlays the YAML document in r onto the defaults.
// Unknown keys are rejected.
func ParseSearchConfig(r io.Reader) (SearchConfig, error) {
	cfg := DefaultSearchConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return SearchConfig{}, fmt.Errorf("search config: %w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return SearchConfig{}, err
	}
	return cfg, nil
}

// LoadSearchConfig reads path, or returns the defaults when path is empty.
func LoadSearchConfig(path string) (SearchConfig, error) {
	if path == "" {
		return DefaultSearchConfig(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return SearchConfig{}, fmt.Errorf("load search config %q: %w", path, err)
	}
	cfg, err := ParseSearchConfig(bytes.NewReader(b))
	if err != nil {
		return SearchConfig{}, fmt.Errorf("load search config %q: %w", path, err)
	}
	return cfg, nil
}

package generator

import (
	"fmt"
	"math"

	"github.com/wricardo/rollblock/game/engine"
)

const (
	DefaultWidth            = 7
	DefaultDepth            = 7
	DefaultHoleProbability  = 0.15
	DefaultMinPassableCells = 9
	DefaultMaxAttempts      = 100
)

// Options configures level generation.
type Options struct {
	Width            int          `json:"width" yaml:"width"`
	Depth            int          `json:"depth" yaml:"depth"`
	HoleProbability  float64      `json:"hole_probability" yaml:"hole_probability"` // 0..1
	MinPassableCells int          `json:"min_passable_cells" yaml:"min_passable_cells"`
	Start            engine.Coord `json:"start" yaml:"start"`
	MaxAttempts      int          `json:"max_attempts" yaml:"max_attempts"`
	Seed             int64        `json:"seed,omitempty" yaml:"seed,omitempty"` // 0 picks a seed
}

// DefaultOptions returns the options of the original 7x7 board.
func DefaultOptions() *Options {
	return &Options{
		Width:            DefaultWidth,
		Depth:            DefaultDepth,
		HoleProbability:  DefaultHoleProbability,
		MinPassableCells: DefaultMinPassableCells,
		MaxAttempts:      DefaultMaxAttempts,
	}
}

// Validate rejects parameters the generator cannot honour.
// Probabilities outside [0,1] are rejected, not clamped.
func (o *Options) Validate() error {
	if o.Width < engine.MinGridSize || o.Depth < engine.MinGridSize {
		return fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrInvalidParameters, o.Width, o.Depth)
	}
	if o.Width > engine.MaxGridSize || o.Depth > engine.MaxGridSize {
		return fmt.Errorf("%w: dimensions must not exceed %d, got %dx%d", ErrInvalidParameters, engine.MaxGridSize, o.Width, o.Depth)
	}
	if o.HoleProbability < 0 || o.HoleProbability > 1 || math.IsNaN(o.HoleProbability) {
		return fmt.Errorf("%w: hole_probability must be within [0,1], got %v", ErrInvalidParameters, o.HoleProbability)
	}
	cells := o.Width * o.Depth
	if o.MinPassableCells < 0 || o.MinPassableCells > cells {
		return fmt.Errorf("%w: min_passable_cells must be within [0,%d], got %d", ErrInvalidParameters, cells, o.MinPassableCells)
	}
	if o.Start.X < 0 || o.Start.X >= o.Width || o.Start.Z < 0 || o.Start.Z >= o.Depth {
		return fmt.Errorf("%w: start %s is outside the %dx%d board", ErrInvalidParameters, o.Start, o.Width, o.Depth)
	}
	if o.MaxAttempts < 1 {
		return fmt.Errorf("%w: max_attempts must be at least 1, got %d", ErrInvalidParameters, o.MaxAttempts)
	}
	return nil
}

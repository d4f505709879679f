package generator

import (
	"context"
	"fmt"

	"github.com/wricardo/rollblock/game/engine"
)

// OptionsFromConfig builds generator options from a generated preset.
// Zero attempts fall back to DefaultMaxAttempts; every other field is taken
// as written.
func OptionsFromConfig(config *engine.LevelConfig) *Options {
	opts := DefaultOptions()
	opts.Start = config.Start
	opts.Seed = config.Seed
	if p := config.Generate; p != nil {
		opts.Width = p.Width
		opts.Depth = p.Depth
		opts.HoleProbability = p.HoleProbability
		opts.MinPassableCells = p.MinPassableCells
		if p.MaxAttempts > 0 {
			opts.MaxAttempts = p.MaxAttempts
		}
	}
	return opts
}

// Materialize returns a playable copy of config. Fixed presets are returned
// as a shallow copy; generated presets are run through the generator and the
// copy carries the resulting layout and seed, so it can be persisted and
// replayed without generating again.
func Materialize(ctx context.Context, config *engine.LevelConfig) (*engine.LevelConfig, *Level, error) {
	if err := engine.ValidateLevelConfig(config); err != nil {
		return nil, nil, err
	}

	out := *config
	if !config.IsGenerated() {
		return &out, nil, nil
	}

	level, err := New(OptionsFromConfig(config)).Generate(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("level %q: %w", config.Name, err)
	}
	return Apply(&out, level), level, nil
}

// Apply writes a generated level into config and returns it.
func Apply(config *engine.LevelConfig, level *Level) *engine.LevelConfig {
	config.Layout = level.Grid.Layout()
	config.Start = level.Start
	config.Seed = level.Seed
	if config.Generate == nil {
		config.Generate = &engine.GenerateParams{
			Width: level.Grid.Width(),
			Depth: level.Grid.Depth(),
		}
	}
	return config
}

// ConfigFromOptions wraps ad-hoc options as a generated preset.
func ConfigFromOptions(name string, opts *Options) *engine.LevelConfig {
	return &engine.LevelConfig{
		Name:        name,
		Description: fmt.Sprintf("Generated %dx%d level", opts.Width, opts.Depth),
		Start:       opts.Start,
		Seed:        opts.Seed,
		Generate: &engine.GenerateParams{
			Width:            opts.Width,
			Depth:            opts.Depth,
			HoleProbability:  opts.HoleProbability,
			MinPassableCells: opts.MinPassableCells,
			MaxAttempts:      opts.MaxAttempts,
		},
	}
}

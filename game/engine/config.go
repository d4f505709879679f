package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// GenerateParams describes a procedurally generated level.
type GenerateParams struct {
	Width            int     `json:"width" yaml:"width"`
	Depth            int     `json:"depth" yaml:"depth"`
	HoleProbability  float64 `json:"hole_probability" yaml:"hole_probability"`
	MinPassableCells int     `json:"min_passable_cells" yaml:"min_passable_cells"`
	MaxAttempts      int     `json:"max_attempts" yaml:"max_attempts"`
}

// Messages are the player-facing texts of a level
type Messages struct {
	Welcome string `json:"welcome" yaml:"welcome"`
	Victory string `json:"victory" yaml:"victory"` // %d receives the move count
	Fell    string `json:"fell" yaml:"fell"`
	Ended   string `json:"ended" yaml:"ended"`
}

// LevelConfig represents a level preset loaded from JSON or YAML.
//
// A preset is either fixed (Layout set) or generated (Generate set). A
// generated preset becomes fixed once materialised: the generator fills in
// Layout and Seed, and the result is what sessions play and persist.
type LevelConfig struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Layout      []string        `json:"layout,omitempty" yaml:"layout,omitempty"`
	Start       Coord           `json:"start" yaml:"start"`
	Seed        int64           `json:"seed,omitempty" yaml:"seed,omitempty"`
	Generate    *GenerateParams `json:"generate,omitempty" yaml:"generate,omitempty"`
	Messages    Messages        `json:"messages" yaml:"messages"`
}

// DefaultMessages returns the stock texts used when a preset leaves them empty.
func DefaultMessages() Messages {
	return Messages{
		Welcome: "Roll the block onto the goal and stand it upright.",
		Victory: "Victory! Goal reached in %d moves.",
		Fell:    "The block fell off the board! Game over.",
		Ended:   "The game is over. Reset to play again.",
	}
}

// WithDefaults fills empty messages from DefaultMessages.
func (c *LevelConfig) WithDefaults() *LevelConfig {
	d := DefaultMessages()
	if c.Messages.Welcome == "" {
		c.Messages.Welcome = d.Welcome
	}
	if c.Messages.Victory == "" {
		c.Messages.Victory = d.Victory
	}
	if c.Messages.Fell == "" {
		c.Messages.Fell = d.Fell
	}
	if c.Messages.Ended == "" {
		c.Messages.Ended = d.Ended
	}
	return c
}

// IsGenerated reports whether the preset still needs a generator run.
func (c *LevelConfig) IsGenerated() bool {
	return len(c.Layout) == 0 && c.Generate != nil
}

// Grid parses the preset layout.
func (c *LevelConfig) Grid() (*Grid, error) {
	return ParseLayout(c.Layout)
}

// ValidateLevelConfig validates a level preset for structural correctness.
// Solvability is checked by the callers that can run the solver.
func ValidateLevelConfig(config *LevelConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}

	if len(config.Layout) == 0 {
		if config.Generate == nil {
			return fmt.Errorf("%w: either layout or generate is required", ErrInvalidConfig)
		}
		p := config.Generate
		if p.Width < MinGridSize || p.Width > MaxGridSize || p.Depth < MinGridSize || p.Depth > MaxGridSize {
			return fmt.Errorf("%w: generate dimensions must be between %d and %d, got %dx%d",
				ErrInvalidConfig, MinGridSize, MaxGridSize, p.Width, p.Depth)
		}
		if config.Start.X < 0 || config.Start.X >= p.Width || config.Start.Z < 0 || config.Start.Z >= p.Depth {
			return fmt.Errorf("%w: start %s is outside the %dx%d board", ErrInvalidConfig, config.Start, p.Width, p.Depth)
		}
		return nil
	}

	grid, err := ParseLayout(config.Layout)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := grid.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !grid.Passable(config.Start) {
		return fmt.Errorf("%w: start %s is a hole or off the board", ErrInvalidConfig, config.Start)
	}
	if config.Messages.Victory != "" && !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("%w: messages.victory must contain %%d for the move count", ErrInvalidConfig)
	}
	return nil
}

// DecodeLevelConfig parses a preset, choosing YAML or JSON by file extension.
func DecodeLevelConfig(filename string, data []byte) (*LevelConfig, error) {
	var config LevelConfig
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}
	}
	return &config, nil
}

// LoadLevelConfig loads and validates a preset file.
func LoadLevelConfig(filename string) (*LevelConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := DecodeLevelConfig(filename, data)
	if err != nil {
		return nil, err
	}

	if err := ValidateLevelConfig(config); err != nil {
		return nil, err
	}

	return config.WithDefaults(), nil
}

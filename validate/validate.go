// Command validate checks the level presets in ../configs (or the directory
// given as the first argument). For each JSON or YAML preset it checks:
//   - the file decodes and passes structural validation
//   - fixed layouts are solvable from their start cell
//   - generated presets produce a level within their attempt budget
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/rollblock/game/engine"
	"github.com/wricardo/rollblock/game/generator"
	"github.com/wricardo/rollblock/game/solver"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file.
func validateConfig(ctx context.Context, filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.DecodeLevelConfig(filePath, data)
	if err != nil {
		result.fail("Invalid preset: %v", err)
		return result
	}

	if err := engine.ValidateLevelConfig(config); err != nil {
		result.fail("%v", err)
		return result
	}

	result.info("Name: %s", config.Name)

	if config.IsGenerated() {
		validateGenerated(ctx, config, &result)
	} else {
		validateFixed(config, &result)
	}
	return result
}

func validateFixed(config *engine.LevelConfig, result *ValidationResult) {
	grid, err := config.Grid()
	if err != nil {
		result.fail("%v", err)
		return
	}

	res, err := solver.Check(grid, config.Start)
	if err != nil {
		result.fail("Solver rejected level: %v", err)
		return
	}
	if !res.Solvable {
		result.fail("Unsolvable from start %s (%d positions explored)", config.Start, res.Explored)
		return
	}

	stats := grid.Stats()
	result.info("Grid: %dx%d", stats.Width, stats.Depth)
	result.info("Holes: %d of %d cells", stats.Holes, stats.Width*stats.Depth)
	result.info("Solvable in %d moves", res.Moves())
}

func validateGenerated(ctx context.Context, config *engine.LevelConfig, result *ValidationResult) {
	if err := generator.OptionsFromConfig(config).Validate(); err != nil {
		result.fail("%v", err)
		return
	}

	_, level, err := generator.Materialize(ctx, config)
	if err != nil {
		result.fail("Generation failed: %v", err)
		return
	}

	p := config.Generate
	result.info("Generated: %dx%d, hole probability %.2f", p.Width, p.Depth, p.HoleProbability)
	if config.Seed == 0 {
		result.info("Seed: random (sample run used %d)", level.Seed)
	} else {
		result.info("Seed: %d", level.Seed)
	}
	result.info("Sample level solvable in %d moves after %d attempts", len(level.Solution), level.Attempts)
}

// presetFiles lists the JSON and YAML files in dir in name order.
func presetFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main validates every preset and exits non-zero if any is invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := presetFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	allValid := true
	for _, file := range files {
		result := validateConfig(ctx, file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}

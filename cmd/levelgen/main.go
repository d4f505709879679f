// Command levelgen generates, checks and solves rolling block levels from the
// command line.
//
//	levelgen generate --width 9 --depth 6 --seed 42
//	levelgen generate --seed 42 --format yaml --name "Daily" > configs/daily.yaml
//	levelgen check configs/classic.json
//	levelgen check --start-x 1 NNNG NNNN NNNN
//	levelgen solve configs/classic.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/rollblock/game/engine"
	"github.com/wricardo/rollblock/game/generator"
	"github.com/wricardo/rollblock/game/solver"
)

var errUnsolvable = errors.New("level is not solvable")

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "levelgen: %v\n", err)
		os.Exit(1)
	}
}

func startFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "start-x", Usage: "start column"},
		&cli.IntFlag{Name: "start-z", Usage: "start row"},
	}
}

func startFrom(cmd *cli.Command) engine.Coord {
	return engine.Coord{X: int(cmd.Int("start-x")), Z: int(cmd.Int("start-z"))}
}

func newApp(w io.Writer) *cli.Command {
	levelFlags := append(startFlags(),
		&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Value: generator.DefaultWidth, Usage: "board width"},
		&cli.IntFlag{Name: "depth", Aliases: []string{"D"}, Value: generator.DefaultDepth, Usage: "board depth"},
		&cli.FloatFlag{Name: "hole-probability", Value: generator.DefaultHoleProbability, Usage: "chance each cell becomes a hole (0..1)"},
		&cli.IntFlag{Name: "min-passable", Value: generator.DefaultMinPassableCells, Usage: "minimum non-hole cells, goal included"},
		&cli.IntFlag{Name: "max-attempts", Value: generator.DefaultMaxAttempts, Usage: "boards to try before giving up"},
		&cli.Int64Flag{Name: "seed", Usage: "random seed (0 picks one)"},
		&cli.StringFlag{Name: "format", Value: "text", Usage: "output format: text, json or yaml"},
		&cli.StringFlag{Name: "name", Value: "Generated", Usage: "preset name for json and yaml output"},
	)

	return &cli.Command{
		Name:   "levelgen",
		Usage:  "generate and check rolling block levels",
		Writer: w,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logrus.SetOutput(os.Stderr)
			if cmd.Bool("verbose") {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.WarnLevel)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "generate a solvable level",
				Flags:  levelFlags,
				Action: generateAction,
			},
			{
				Name:      "check",
				Usage:     "report whether a level is solvable",
				ArgsUsage: "<preset file> | <row> [row...]",
				Flags:     startFlags(),
				Action:    checkAction,
			},
			{
				Name:      "solve",
				Usage:     "print the shortest solution step by step",
				ArgsUsage: "<preset file> | <row> [row...]",
				Flags:     startFlags(),
				Action:    solveAction,
			},
		},
	}
}

func optionsFrom(cmd *cli.Command) *generator.Options {
	return &generator.Options{
		Width:            int(cmd.Int("width")),
		Depth:            int(cmd.Int("depth")),
		HoleProbability:  cmd.Float("hole-probability"),
		MinPassableCells: int(cmd.Int("min-passable")),
		MaxAttempts:      int(cmd.Int("max-attempts")),
		Start:            startFrom(cmd),
		Seed:             cmd.Int64("seed"),
	}
}

func generateAction(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	level, err := generator.New(opts).Generate(ctx)
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	switch format := strings.ToLower(cmd.String("format")); format {
	case "text":
		fmt.Fprintf(w, "seed: %d  attempts: %d  start: %s  goal: %s\n", level.Seed, level.Attempts, level.Start, level.Goal)
		for _, row := range level.Grid.Render(engine.StandingAt(level.Start)) {
			fmt.Fprintln(w, row)
		}
		fmt.Fprintf(w, "solution (%d): %s\n", len(level.Solution), strings.Join(engine.DirectionNames(level.Solution), ","))
		return nil
	case "json", "yaml":
		preset := generator.Apply(&engine.LevelConfig{
			Name:        cmd.String("name"),
			Description: fmt.Sprintf("Generated %dx%d level, seed %d", opts.Width, opts.Depth, level.Seed),
		}, level)
		return writePreset(w, format, preset)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writePreset(w io.Writer, format string, preset *engine.LevelConfig) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(preset)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(preset)
}

// levelFrom reads a preset file when given one argument naming a file,
// otherwise treats the arguments as layout rows.
func levelFrom(ctx context.Context, cmd *cli.Command) (*engine.Grid, engine.Coord, error) {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return nil, engine.Coord{}, fmt.Errorf("expected a preset file or layout rows")
	}

	if len(args) == 1 {
		if _, err := os.Stat(args[0]); err == nil {
			config, err := engine.LoadLevelConfig(args[0])
			if err != nil {
				return nil, engine.Coord{}, err
			}
			if config.IsGenerated() {
				var level *generator.Level
				config, level, err = generator.Materialize(ctx, config)
				if err != nil {
					return nil, engine.Coord{}, err
				}
				logrus.WithField("seed", level.Seed).Debug("materialised generated preset")
			}
			grid, err := config.Grid()
			return grid, config.Start, err
		}
	}

	grid, err := engine.ParseLayout(args)
	if err != nil {
		return nil, engine.Coord{}, err
	}
	return grid, startFrom(cmd), nil
}

func checkAction(ctx context.Context, cmd *cli.Command) error {
	grid, start, err := levelFrom(ctx, cmd)
	if err != nil {
		return err
	}

	res, err := solver.Check(grid, start)
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	if !res.Solvable {
		fmt.Fprintf(w, "unsolvable from %s (%d positions explored)\n", start, res.Explored)
		return errUnsolvable
	}
	fmt.Fprintf(w, "solvable in %d moves (%d positions explored)\n", res.Moves(), res.Explored)
	fmt.Fprintln(w, strings.Join(engine.DirectionNames(res.Path), ","))
	return nil
}

func solveAction(ctx context.Context, cmd *cli.Command) error {
	grid, start, err := levelFrom(ctx, cmd)
	if err != nil {
		return err
	}

	res, err := solver.Check(grid, start)
	if err != nil {
		return err
	}
	if !res.Solvable {
		return errUnsolvable
	}

	w := cmd.Root().Writer
	block := engine.StandingAt(start)
	printBoard(w, fmt.Sprintf("start %s", block), grid.Render(block))
	for i, d := range res.Path {
		block = block.Roll(d)
		printBoard(w, fmt.Sprintf("%d. %s -> %s", i+1, d, block), grid.Render(block))
	}
	return nil
}

func printBoard(w io.Writer, title string, rows []string) {
	fmt.Fprintln(w, title)
	for _, row := range rows {
		fmt.Fprintln(w, "  "+row)
	}
	fmt.Fprintln(w)
}

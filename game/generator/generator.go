// Package generator builds random rolling-block levels that are guaranteed
// to be solvable.
//
// Each attempt draws a fresh board, places one goal away from the start,
// punches holes, tops the board back up to the minimum passable count and
// hands it to the solver. Unsolvable boards are discarded; after
// MaxAttempts failures generation stops with ErrExhaustedAttempts rather than
// returning a board nobody can finish.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/wricardo/rollblock/game/engine"
	"github.com/wricardo/rollblock/game/solver"
)

var (
	ErrInvalidParameters = errors.New("invalid generation parameters")
	ErrExhaustedAttempts = errors.New("no solvable level found")
)

// Level is an accepted, solvable board.
type Level struct {
	Grid     *engine.Grid       `json:"grid"`
	Start    engine.Coord       `json:"start"`
	Goal     engine.Coord       `json:"goal"`
	Seed     int64              `json:"seed"`
	Attempts int                `json:"attempts"`
	Solution []engine.Direction `json:"solution"`
}

// Generator creates levels from a single seeded random stream.
type Generator struct {
	options *Options
	seed    int64
	rng     *rand.Rand
}

// New creates a level generator with the given options.
func New(options *Options) *Generator {
	if options == nil {
		options = DefaultOptions()
	}

	seed := options.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		options: options,
		seed:    seed,
		rng:     rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
	}
}

// Seed returns the seed the random stream was built from.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Generate draws boards until one is solvable or the attempt budget runs out.
// ctx is consulted between attempts only.
func (g *Generator) Generate(ctx context.Context) (*Level, error) {
	if err := g.options.Validate(); err != nil {
		return nil, err
	}

	start := g.options.Start
	for attempt := 1; attempt <= g.options.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation cancelled after %d attempts: %w", attempt-1, err)
		}

		grid, goal := g.draw()

		res, err := solver.Check(grid, start)
		if err != nil {
			// draw pins start and goal, so this is a generator bug
			return nil, fmt.Errorf("generated board rejected by solver: %w", err)
		}
		if !res.Solvable {
			continue
		}

		return &Level{
			Grid:     grid,
			Start:    start,
			Goal:     goal,
			Seed:     g.seed,
			Attempts: attempt,
			Solution: res.Path,
		}, nil
	}

	return nil, fmt.Errorf("%w: %d attempts on a %dx%d board (seed %d)",
		ErrExhaustedAttempts, g.options.MaxAttempts, g.options.Width, g.options.Depth, g.seed)
}

// draw produces one candidate board.
func (g *Generator) draw() (*engine.Grid, engine.Coord) {
	opts := g.options
	grid, _ := engine.NewGrid(opts.Width, opts.Depth)

	goal := g.placeGoal(grid)

	for i := 0; i < grid.Size(); i++ {
		c := grid.CoordAt(i)
		if c == opts.Start || c == goal {
			continue
		}
		if g.rng.Float64() < opts.HoleProbability {
			grid.Set(c, engine.Hole)
		}
	}

	g.ensureMinPassable(grid)
	return grid, goal
}

// placeGoal marks one cell other than the start as the goal, uniformly.
// A 1x1 board has no other cell; the goal falls back to (0,0).
func (g *Generator) placeGoal(grid *engine.Grid) engine.Coord {
	candidates := make([]engine.Coord, 0, grid.Size())
	for i := 0; i < grid.Size(); i++ {
		if c := grid.CoordAt(i); c != g.options.Start {
			candidates = append(candidates, c)
		}
	}

	goal := engine.Coord{}
	if len(candidates) > 0 {
		goal = candidates[g.rng.IntN(len(candidates))]
	}
	grid.Set(goal, engine.Goal)
	return goal
}

// ensureMinPassable turns random holes back into normal cells until the
// passable count reaches MinPassableCells.
func (g *Generator) ensureMinPassable(grid *engine.Grid) {
	holes := grid.Coords(engine.Hole)
	for grid.PassableCount() < g.options.MinPassableCells && len(holes) > 0 {
		i := g.rng.IntN(len(holes))
		grid.Set(holes[i], engine.Normal)
		holes[i] = holes[len(holes)-1]
		holes = holes[:len(holes)-1]
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/zyedidia/generic/mapset"

	"github.com/wricardo/rollblock/game/engine"
	"github.com/wricardo/rollblock/game/solver"
)

var errNoMoves = errors.New("no safe roll available")

// Strategy decides the next rolls for a live game state. An empty plan with
// a nil error means the strategy has nothing left to try.
type Strategy interface {
	Name() string
	NextMoves(ctx context.Context, state *engine.GameState) ([]string, error)
	Reset()
}

// newStrategy builds a strategy by name.
func newStrategy(name string, client *Client, seed uint64) (Strategy, error) {
	switch name {
	case "solver":
		return &SolverStrategy{}, nil
	case "hint":
		return &HintStrategy{client: client}, nil
	case "explore":
		return NewExploreStrategy(seed), nil
	}
	return nil, fmt.Errorf("unknown strategy %q (use solver, hint or explore)", name)
}

// SolverStrategy plans the full shortest path locally from the state's layout.
type SolverStrategy struct{}

func (s *SolverStrategy) Name() string { return "solver" }

func (s *SolverStrategy) Reset() {}

func (s *SolverStrategy) NextMoves(ctx context.Context, state *engine.GameState) ([]string, error) {
	grid, err := engine.ParseLayout(state.Layout)
	if err != nil {
		return nil, err
	}
	res, err := solver.CheckFrom(grid, state.Block)
	if err != nil {
		return nil, err
	}
	if !res.Solvable {
		return nil, nil
	}
	return engine.DirectionNames(res.Path), nil
}

// HintStrategy asks the server for one roll at a time.
type HintStrategy struct {
	client *Client
}

func (s *HintStrategy) Name() string { return "hint" }

func (s *HintStrategy) Reset() {}

func (s *HintStrategy) NextMoves(ctx context.Context, state *engine.GameState) ([]string, error) {
	hint, err := s.client.Hint(ctx)
	if err != nil {
		return nil, err
	}
	if !hint.Solvable || hint.Next == "" {
		return nil, nil
	}
	return []string{hint.Next}, nil
}

// ExploreStrategy wanders without planning. It never rolls off the board,
// prefers positions it has not visited in the current attempt and otherwise
// picks a random safe roll.
type ExploreStrategy struct {
	rng     *rand.Rand
	visited mapset.Set[engine.Block]
}

func NewExploreStrategy(seed uint64) *ExploreStrategy {
	return &ExploreStrategy{
		rng:     rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d)),
		visited: mapset.New[engine.Block](),
	}
}

func (s *ExploreStrategy) Name() string { return "explore" }

func (s *ExploreStrategy) Reset() {
	s.visited = mapset.New[engine.Block]()
}

func (s *ExploreStrategy) NextMoves(ctx context.Context, state *engine.GameState) ([]string, error) {
	grid, err := engine.ParseLayout(state.Layout)
	if err != nil {
		return nil, err
	}
	s.visited.Put(state.Block)

	var fresh, safe []engine.Direction
	for _, d := range engine.Directions {
		next := state.Block.Roll(d)
		if !grid.Holds(next) {
			continue
		}
		if solver.IsSolved(grid, next) {
			return []string{d.String()}, nil
		}
		safe = append(safe, d)
		if !s.visited.Has(next) {
			fresh = append(fresh, d)
		}
	}

	pool := fresh
	if len(pool) == 0 {
		pool = safe
	}
	if len(pool) == 0 {
		return nil, errNoMoves
	}
	return []string{pool[s.rng.IntN(len(pool))].String()}, nil
}

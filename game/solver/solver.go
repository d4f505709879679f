package solver

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/wricardo/rollblock/game/engine"
)

var (
	ErrInvalidGrid     = errors.New("invalid grid")
	ErrMissingGoal     = engine.ErrMissingGoal
	ErrStartUnplayable = errors.New("start position is not playable")
	ErrIllegalMove     = errors.New("move drops the block off the board")
)

// Result is the verdict of a solvability search.
type Result struct {
	Solvable bool               `json:"solvable"`
	Path     []engine.Direction `json:"path"`
	Explored int                `json:"explored"` // distinct positions discovered
}

// Moves returns the length of the solving path, or -1 when unsolvable.
func (r *Result) Moves() int {
	if !r.Solvable {
		return -1
	}
	return len(r.Path)
}

// Check reports whether a block standing on start can reach a standing
// position on the goal cell of grid.
func Check(grid *engine.Grid, start engine.Coord) (*Result, error) {
	return CheckFrom(grid, engine.StandingAt(start))
}

// CheckFrom runs the same search from an arbitrary block position.
func CheckFrom(grid *engine.Grid, from engine.Block) (*Result, error) {
	if grid == nil {
		return nil, ErrInvalidGrid
	}
	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGrid, err)
	}
	from = from.Normalize()
	if !from.WellFormed() || !grid.Holds(from) {
		return nil, fmt.Errorf("%w: %s", ErrStartUnplayable, from)
	}

	goal, _ := grid.Goal()
	w := newWalker(grid, goal)
	return w.run(from), nil
}

// node is one discovered position and the roll that first reached it.
type node struct {
	block  engine.Block
	parent int // -1 for the root
	move   engine.Direction
}

// walker holds the mutable BFS state for one search.
type walker struct {
	grid    *engine.Grid
	goal    engine.Coord
	nodes   []node
	queue   []int
	visited mapset.Set[engine.Block]
}

func newWalker(grid *engine.Grid, goal engine.Coord) *walker {
	return &walker{
		grid:    grid,
		goal:    goal,
		visited: mapset.New[engine.Block](),
	}
}

// enqueue records a position as discovered. Marking at enqueue time keeps
// every position in the queue at most once.
func (w *walker) enqueue(b engine.Block, parent int, move engine.Direction) {
	w.visited.Put(b)
	w.nodes = append(w.nodes, node{block: b, parent: parent, move: move})
	w.queue = append(w.queue, len(w.nodes)-1)
}

func (w *walker) run(start engine.Block) *Result {
	w.enqueue(start, -1, 0)

	for len(w.queue) > 0 {
		idx := w.queue[0]
		w.queue = w.queue[1:]

		cur := w.nodes[idx].block
		if cur.IsStanding() && cur.A == w.goal {
			return &Result{Solvable: true, Path: w.path(idx), Explored: len(w.nodes)}
		}

		for _, d := range engine.Directions {
			next := cur.Roll(d)
			if !w.grid.Holds(next) || w.visited.Has(next) {
				continue
			}
			w.enqueue(next, idx, d)
		}
	}

	return &Result{Solvable: false, Path: []engine.Direction{}, Explored: len(w.nodes)}
}

// path follows parent links from idx back to the root.
func (w *walker) path(idx int) []engine.Direction {
	depth := 0
	for i := idx; w.nodes[i].parent >= 0; i = w.nodes[i].parent {
		depth++
	}
	path := make([]engine.Direction, depth)
	for i := idx; w.nodes[i].parent >= 0; i = w.nodes[i].parent {
		depth--
		path[depth] = w.nodes[i].move
	}
	return path
}

// Replay applies path to a block standing on start and returns the final
// position. It fails with ErrIllegalMove on the first roll the grid cannot hold.
func Replay(grid *engine.Grid, start engine.Coord, path []engine.Direction) (engine.Block, error) {
	b := engine.StandingAt(start)
	if !grid.Holds(b) {
		return b, fmt.Errorf("%w: %s", ErrStartUnplayable, b)
	}
	for i, d := range path {
		next := b.Roll(d)
		if !grid.Holds(next) {
			return b, fmt.Errorf("%w: move %d (%s) from %s", ErrIllegalMove, i+1, d, b)
		}
		b = next
	}
	return b, nil
}

// IsSolved reports whether b stands on the goal cell of grid.
func IsSolved(grid *engine.Grid, b engine.Block) bool {
	goal, ok := grid.Goal()
	return ok && b.IsStanding() && b.A == goal
}

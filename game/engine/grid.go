package engine

import (
	"encoding/json"
	"fmt"
)

// Grid is a width x depth board of cells stored row-major by z.
// Cells outside the board read as Hole.
type Grid struct {
	width int
	depth int
	cells []CellKind
}

// NewGrid returns a grid with every cell Normal.
func NewGrid(width, depth int) (*Grid, error) {
	if width < MinGridSize || depth < MinGridSize {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyGrid, width, depth)
	}
	if width > MaxGridSize || depth > MaxGridSize {
		return nil, fmt.Errorf("%w: %dx%d (max %d)", ErrGridTooLarge, width, depth, MaxGridSize)
	}
	return &Grid{
		width: width,
		depth: depth,
		cells: make([]CellKind, width*depth),
	}, nil
}

// ParseLayout builds a grid from layout rows. Row i is z = i and character j
// is x = j; see Legend for the characters.
func ParseLayout(layout []string) (*Grid, error) {
	if len(layout) == 0 || len(layout[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	width := len(layout[0])
	g, err := NewGrid(width, len(layout))
	if err != nil {
		return nil, err
	}
	for z, row := range layout {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrNonRectangular, z+1, len(row), width)
		}
		for x, ch := range row {
			kind, ok := Legend[ch]
			if !ok {
				return nil, fmt.Errorf("%w: '%c' at row %d, col %d", ErrUnknownCell, ch, z+1, x+1)
			}
			g.cells[g.index(Coord{X: x, Z: z})] = kind
		}
	}
	return g, nil
}

// Width returns the extent along x.
func (g *Grid) Width() int { return g.width }

// Depth returns the extent along z.
func (g *Grid) Depth() int { return g.depth }

// Size returns the total number of cells.
func (g *Grid) Size() int { return g.width * g.depth }

// InBounds reports whether c lies on the board.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.width && c.Z >= 0 && c.Z < g.depth
}

func (g *Grid) index(c Coord) int {
	return c.Z*g.width + c.X
}

// CoordAt converts a row-major index back to a coordinate.
func (g *Grid) CoordAt(idx int) Coord {
	return Coord{X: idx % g.width, Z: idx / g.width}
}

// Kind returns the kind of c; out-of-bounds cells are Hole.
func (g *Grid) Kind(c Coord) CellKind {
	if !g.InBounds(c) {
		return Hole
	}
	return g.cells[g.index(c)]
}

// Set changes the kind of an in-bounds cell.
func (g *Grid) Set(c Coord, kind CellKind) {
	if g.InBounds(c) {
		g.cells[g.index(c)] = kind
	}
}

// Passable reports whether the block may rest on c.
func (g *Grid) Passable(c Coord) bool {
	return g.Kind(c).Passable()
}

// Holds reports whether every cell under b is passable.
func (g *Grid) Holds(b Block) bool {
	return g.Passable(b.A) && g.Passable(b.B)
}

// Goal returns the first goal cell in row-major order.
func (g *Grid) Goal() (Coord, bool) {
	for i, k := range g.cells {
		if k == Goal {
			return g.CoordAt(i), true
		}
	}
	return Coord{}, false
}

// Count returns the number of cells of the given kind.
func (g *Grid) Count(kind CellKind) int {
	n := 0
	for _, k := range g.cells {
		if k == kind {
			n++
		}
	}
	return n
}

// PassableCount returns the number of non-hole cells.
func (g *Grid) PassableCount() int {
	return g.Size() - g.Count(Hole)
}

// Coords returns every coordinate holding one of the given kinds, in row-major order.
func (g *Grid) Coords(kinds ...CellKind) []Coord {
	var out []Coord
	for i, k := range g.cells {
		for _, want := range kinds {
			if k == want {
				out = append(out, g.CoordAt(i))
				break
			}
		}
	}
	return out
}

// Validate checks the grid invariants: a non-empty board with exactly one goal.
func (g *Grid) Validate() error {
	if g == nil || g.width < MinGridSize || g.depth < MinGridSize {
		return ErrEmptyGrid
	}
	switch n := g.Count(Goal); {
	case n == 0:
		return ErrMissingGoal
	case n > 1:
		return fmt.Errorf("%w: found %d", ErrMultipleGoals, n)
	}
	return nil
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	cells := make([]CellKind, len(g.cells))
	copy(cells, g.cells)
	return &Grid{width: g.width, depth: g.depth, cells: cells}
}

// Layout encodes the grid as layout rows.
func (g *Grid) Layout() []string {
	rows := make([]string, g.depth)
	buf := make([]byte, g.width)
	for z := 0; z < g.depth; z++ {
		for x := 0; x < g.width; x++ {
			buf[x] = g.Kind(Coord{X: x, Z: z}).Char()
		}
		rows[z] = string(buf)
	}
	return rows
}

// Render returns the layout rows with the block drawn as 'X'.
func (g *Grid) Render(b Block) []string {
	rows := g.Layout()
	for _, c := range b.Cells() {
		if !g.InBounds(c) {
			continue
		}
		row := []byte(rows[c.Z])
		row[c.X] = 'X'
		rows[c.Z] = string(row)
	}
	return rows
}

// Stats summarises the cell kinds on a grid
type Stats struct {
	Width    int `json:"width"`
	Depth    int `json:"depth"`
	Normal   int `json:"normal"`
	Holes    int `json:"holes"`
	Goals    int `json:"goals"`
	Special  int `json:"special"`
	Passable int `json:"passable"`
}

// Stats counts the cells of each kind.
func (g *Grid) Stats() Stats {
	return Stats{
		Width:    g.width,
		Depth:    g.depth,
		Normal:   g.Count(Normal),
		Holes:    g.Count(Hole),
		Goals:    g.Count(Goal),
		Special:  g.Count(Switch) + g.Count(Fragile) + g.Count(Bridge),
		Passable: g.PassableCount(),
	}
}

type gridJSON struct {
	Width  int      `json:"width"`
	Depth  int      `json:"depth"`
	Layout []string `json:"layout"`
}

// MarshalJSON encodes the grid in layout form.
func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(gridJSON{Width: g.width, Depth: g.depth, Layout: g.Layout()})
}

// UnmarshalJSON decodes a grid from layout form.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var raw gridJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseLayout(raw.Layout)
	if err != nil {
		return err
	}
	if raw.Width != 0 && raw.Width != parsed.width || raw.Depth != 0 && raw.Depth != parsed.depth {
		return fmt.Errorf("%w: declared %dx%d, layout is %dx%d", ErrNonRectangular, raw.Width, raw.Depth, parsed.width, parsed.depth)
	}
	*g = *parsed
	return nil
}

package engine

import "fmt"

// Orientation names reported in game state
const (
	Standing = "standing"
	LyingX   = "lying_x" // footprint spans two cells along x
	LyingZ   = "lying_z" // footprint spans two cells along z
)

// Block is the 1x2x1 rolling block. It occupies one cell when standing (A == B)
// or two orthogonally adjacent cells when lying. The zero value stands on (0,0).
//
// Blocks built with NewBlock are canonical: A is not greater than B in (x, z)
// order, so {a, b} and {b, a} compare and hash identically.
type Block struct {
	A Coord `json:"a"`
	B Coord `json:"b"`
}

// NewBlock returns the canonical block covering a and b.
func NewBlock(a, b Coord) Block {
	if b.Less(a) {
		a, b = b, a
	}
	return Block{A: a, B: b}
}

// StandingAt returns a block standing on c.
func StandingAt(c Coord) Block {
	return Block{A: c, B: c}
}

// Normalize returns the canonical form of the block.
func (b Block) Normalize() Block {
	return NewBlock(b.A, b.B)
}

// IsStanding reports whether the block occupies a single cell.
func (b Block) IsStanding() bool {
	return b.A == b.B
}

// Orientation returns Standing, LyingX or LyingZ.
func (b Block) Orientation() string {
	switch {
	case b.A == b.B:
		return Standing
	case b.A.Z == b.B.Z:
		return LyingX
	default:
		return LyingZ
	}
}

// WellFormed reports whether the two cells are equal or orthogonally adjacent.
func (b Block) WellFormed() bool {
	dx := abs(b.A.X - b.B.X)
	dz := abs(b.A.Z - b.B.Z)
	return dx+dz <= 1
}

// Cells returns the distinct cells covered by the block.
func (b Block) Cells() []Coord {
	if b.IsStanding() {
		return []Coord{b.A}
	}
	return []Coord{b.A, b.B}
}

// Covers reports whether c lies under the block.
func (b Block) Covers(c Coord) bool {
	return b.A == c || b.B == c
}

// Roll tips the block over its leading edge in direction d. The result is
// always canonical; whether the cells under it exist is the grid's concern.
//
//	standing at p             -> lying on p+d, p+2d
//	lying along d's axis      -> standing on the cell past the leading end
//	lying across d's axis     -> lying, shifted one cell along d
func (b Block) Roll(d Direction) Block {
	b = b.Normalize()
	if b.IsStanding() {
		return NewBlock(b.A.Add(d, 1), b.A.Add(d, 2))
	}
	if b.alignedWith(d) {
		// A is the low end, B the high end
		lead := b.B
		if dx, dz := d.Delta(); dx < 0 || dz < 0 {
			lead = b.A
		}
		return StandingAt(lead.Add(d, 1))
	}
	return NewBlock(b.A.Add(d, 1), b.B.Add(d, 1))
}

func (b Block) alignedWith(d Direction) bool {
	switch d {
	case Left, Right:
		return b.A.Z == b.B.Z && b.A.X != b.B.X
	case Up, Down:
		return b.A.X == b.B.X && b.A.Z != b.B.Z
	}
	return false
}

func (b Block) String() string {
	if b.IsStanding() {
		return fmt.Sprintf("standing%s", b.A)
	}
	return fmt.Sprintf("lying%s-%s", b.A, b.B)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

package engine

import (
	"fmt"
	"strings"
)

// CellKind represents the kind of a single grid cell
type CellKind byte

const (
	Normal CellKind = iota
	Hole
	Goal
	Switch
	Fragile
	Bridge
)

// Validation constants
const (
	MinGridSize  = 1
	MaxGridSize  = 50
	MaxBulkMoves = 100
)

var kindNames = map[CellKind]string{
	Normal:  "normal",
	Hole:    "hole",
	Goal:    "goal",
	Switch:  "switch",
	Fragile: "fragile",
	Bridge:  "bridge",
}

// Legend maps layout characters to cell kinds.
var Legend = map[rune]CellKind{
	'N': Normal,
	'H': Hole,
	'G': Goal,
	'S': Switch,
	'F': Fragile,
	'B': Bridge,
}

func (k CellKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", byte(k))
}

// Char returns the layout character for the kind.
func (k CellKind) Char() byte {
	switch k {
	case Normal:
		return 'N'
	case Hole:
		return 'H'
	case Goal:
		return 'G'
	case Switch:
		return 'S'
	case Fragile:
		return 'F'
	case Bridge:
		return 'B'
	}
	return '?'
}

// Passable reports whether a block may rest on a cell of this kind.
// Switch, Fragile and Bridge behave as Normal for movement.
func (k CellKind) Passable() bool {
	return k != Hole
}

// Coord is a cell coordinate on the board
type Coord struct {
	X int `json:"x" yaml:"x"`
	Z int `json:"z" yaml:"z"`
}

// Add returns c shifted by n steps in direction d.
func (c Coord) Add(d Direction, n int) Coord {
	dx, dz := d.Delta()
	return Coord{X: c.X + dx*n, Z: c.Z + dz*n}
}

// Less orders coordinates by x, then z.
func (c Coord) Less(o Coord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	return c.Z < o.Z
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// Direction is one of the four grid-aligned roll directions
type Direction int

const (
	Left  Direction = iota // -x
	Right                  // +x
	Up                     // -z
	Down                   // +z
)

// Directions lists every direction in expansion order.
var Directions = []Direction{Left, Right, Up, Down}

// Delta returns the unit vector of the direction.
func (d Direction) Delta() (dx, dz int) {
	switch d {
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	}
	return 0, 0
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler
func (d Direction) MarshalText() ([]byte, error) {
	if d < Left || d > Down {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection converts a direction name into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l", "-x":
		return Left, nil
	case "right", "r", "+x":
		return Right, nil
	case "up", "u", "-z":
		return Up, nil
	case "down", "d", "+z":
		return Down, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// DirectionNames converts a path into its string form.
func DirectionNames(path []Direction) []string {
	names := make([]string, len(path))
	for i, d := range path {
		names[i] = d.String()
	}
	return names
}

// GameState represents the complete game state
type GameState struct {
	Width       int      `json:"width"`
	Depth       int      `json:"depth"`
	Layout      []string `json:"layout"`
	Start       Coord    `json:"start"`
	Goal        Coord    `json:"goal"`
	Block       Block    `json:"block"`
	Orientation string   `json:"orientation"`
	Message     string   `json:"message"`
	GameOver    bool     `json:"game_over"`
	Victory     bool     `json:"victory"`
	Fell        bool     `json:"fell"`
	ConfigName  string   `json:"config_name"`
	Seed        int64    `json:"seed,omitempty"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	// Computed helper view (not required for core game logic)
	Board []string `json:"board,omitempty"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Action     string `json:"action"`
	From       Block  `json:"from"`
	To         Block  `json:"to"`
	Timestamp  int64  `json:"timestamp"`
	Success    bool   `json:"success"`
	MoveNumber int    `json:"move_number"`
}

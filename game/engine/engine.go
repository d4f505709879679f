package engine

import "fmt"

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	IsVictory() bool
	GetBlock() Block

	// Movement operations
	Move(direction string) bool
	CanMove(direction string) bool
	GetPossibleMoves() []string

	// Level
	GetConfig() *LevelConfig
	GetGrid() *Grid

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface for one fixed level
type GameEngine struct {
	state  *GameState
	config *LevelConfig
	grid   *Grid
}

// NewEngine creates a game engine for a materialised level configuration
func NewEngine(config *LevelConfig) (*GameEngine, error) {
	if err := ValidateLevelConfig(config); err != nil {
		return nil, err
	}
	if config.IsGenerated() {
		return nil, fmt.Errorf("%w: level %q has not been generated yet", ErrInvalidConfig, config.Name)
	}

	grid, err := config.Grid()
	if err != nil {
		return nil, err
	}
	cfg := *config
	config = cfg.WithDefaults()

	return &GameEngine{
		config: config,
		grid:   grid,
		state:  InitGameState(config, grid),
	}, nil
}

// InitGameState creates the opening state: the block standing on the start cell.
func InitGameState(config *LevelConfig, grid *Grid) *GameState {
	goal, _ := grid.Goal()
	block := StandingAt(config.Start)

	state := &GameState{
		Width:             grid.Width(),
		Depth:             grid.Depth(),
		Layout:            grid.Layout(),
		Start:             config.Start,
		Goal:              goal,
		Block:             block,
		Orientation:       block.Orientation(),
		Message:           config.Messages.Welcome,
		ConfigName:        config.Name,
		Seed:              config.Seed,
		MoveHistory:       []MoveHistoryEntry{},
		CurrentMoves:      []MoveHistoryEntry{},
		CurrentMovesCount: 0,
	}
	state.Board = grid.Render(block)
	return state
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("%w: state cannot be nil", ErrInvalidState)
	}
	block := state.Block.Normalize()
	if !block.WellFormed() {
		return fmt.Errorf("%w: block %s is not a 1x2 footprint", ErrInvalidState, block)
	}
	if !state.GameOver && !e.grid.Holds(block) {
		return fmt.Errorf("%w: block %s rests on a hole", ErrInvalidState, block)
	}
	state.Block = block
	state.Orientation = block.Orientation()
	state.Board = e.grid.Render(block)
	e.state = state
	return nil
}

// Reset resets the game to initial state
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	e.state = InitGameState(e.config, e.grid)

	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0

	return e.state
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// IsVictory returns whether the block stands on the goal
func (e *GameEngine) IsVictory() bool {
	return e.state.Victory
}

// GetBlock returns the current block position
func (e *GameEngine) GetBlock() Block {
	return e.state.Block
}

// Move rolls the block in the given direction. It returns false when the
// move was refused or the block fell off the board.
func (e *GameEngine) Move(direction string) bool {
	prev := e.state.Block
	success := e.state.RollBlock(direction, e.grid, e.config)
	e.state.AddMoveToHistory(direction, prev, e.state.Block, success)
	e.state.Board = e.grid.Render(e.state.Block)
	return success
}

// CanMove reports whether rolling in direction keeps the block on the board
func (e *GameEngine) CanMove(direction string) bool {
	if e.state.GameOver {
		return false
	}
	d, err := ParseDirection(direction)
	if err != nil {
		return false
	}
	return e.grid.Holds(e.state.Block.Roll(d))
}

// GetPossibleMoves returns every direction that keeps the block on the board
func (e *GameEngine) GetPossibleMoves() []string {
	var possible []string
	for _, d := range Directions {
		if e.CanMove(d.String()) {
			possible = append(possible, d.String())
		}
	}
	return possible
}

// GetConfig returns the level configuration
func (e *GameEngine) GetConfig() *LevelConfig {
	return e.config
}

// GetGrid returns the level grid
func (e *GameEngine) GetGrid() *Grid {
	return e.grid
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// BulkMove executes multiple moves in sequence, returning success status for each
func (e *GameEngine) BulkMove(moves []string) []bool {
	results := make([]bool, 0, len(moves))

	for _, direction := range moves {
		if e.IsGameOver() {
			break
		}
		results = append(results, e.Move(direction))
	}

	return results
}

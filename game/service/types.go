package service

import (
	"time"

	"github.com/wricardo/rollblock/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *engine.GameState   `json:"game_state"`
	Level          *engine.LevelConfig `json:"level"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success       bool              `json:"success"`
	GameState     *engine.GameState `json:"game_state"`
	Message       string            `json:"message"`
	Events        []GameEvent       `json:"events,omitempty"`
	Step          *StepInfo         `json:"step,omitempty"`
	PossibleMoves []string          `json:"possible_moves"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // Machine-friendly code: invalid_direction|fell|game_over|victory
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartBlock engine.Block `json:"start_block"`
	EndBlock   engine.Block `json:"end_block"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	GameOver      bool     `json:"game_over"`
	GameOverCode  string   `json:"game_over_code,omitempty"` // victory|fell
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for each executed roll
type StepInfo struct {
	Idx         int          `json:"idx"`
	Dir         string       `json:"dir"`
	From        engine.Block `json:"from"`
	To          engine.Block `json:"to"`
	Orientation string       `json:"orientation"`
	Success     bool         `json:"success"`
	Fell        bool         `json:"fell,omitempty"`
	Victory     bool         `json:"victory,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string        `json:"type"` // "move", "fell", "victory", "game_over", "reset"
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Block     *engine.Block `json:"block,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a level preset
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Generated   bool   `json:"generated"`
	Width       int    `json:"width"`
	Depth       int    `json:"depth"`
}

// LevelInfo describes a generated level
type LevelInfo struct {
	Width    int          `json:"width"`
	Depth    int          `json:"depth"`
	Layout   []string     `json:"layout"`
	Start    engine.Coord `json:"start"`
	Goal     engine.Coord `json:"goal"`
	Seed     int64        `json:"seed"`
	Attempts int          `json:"attempts"`
	Solution []string     `json:"solution"`
	Moves    int          `json:"moves"`
	Stats    engine.Stats `json:"stats"`
}

// CheckRequest asks whether a layout can be solved from start
type CheckRequest struct {
	Layout []string     `json:"layout"`
	Start  engine.Coord `json:"start"`
}

// CheckResult is the solver verdict in transport form
type CheckResult struct {
	Solvable bool     `json:"solvable"`
	Path     []string `json:"path"`
	Moves    int      `json:"moves"` // -1 when unsolvable
	Explored int      `json:"explored"`
}

// HintResult is the shortest continuation from the current block
type HintResult struct {
	Solvable bool         `json:"solvable"`
	Next     string       `json:"next,omitempty"`
	Path     []string     `json:"path"`
	Moves    int          `json:"moves"`
	From     engine.Block `json:"from"`
}

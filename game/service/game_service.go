package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/rollblock/game/engine"
	"github.com/wricardo/rollblock/game/generator"
)

var (
	ErrGameEnded    = errors.New("game is over; reset to continue")
	ErrInvalidLevel = errors.New("invalid level")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	CreateGeneratedSession(ctx context.Context, opts *generator.Options) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	Hint(ctx context.Context, sessionID string) (*HintResult, error)
	Solve(ctx context.Context, sessionID string) (*CheckResult, error)

	// Levels
	GenerateLevel(ctx context.Context, opts *generator.Options) (*LevelInfo, error)
	CheckLevel(ctx context.Context, req CheckRequest) (*CheckResult, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.LevelConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.LevelConfig) error
}

// SessionManager defines session storage operations.
// Levels passed in must already be materialised (layout set).
type SessionManager interface {
	Create(id string, level *engine.LevelConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, level *engine.LevelConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles level preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.LevelConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.LevelConfig
	SaveConfig(name string, config *engine.LevelConfig) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.LevelConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

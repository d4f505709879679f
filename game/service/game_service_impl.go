package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/rollblock/game/engine"
	"github.com/wricardo/rollblock/game/generator"
	"github.com/wricardo/rollblock/game/solver"
)

var log = logrus.WithField("component", "service")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	return configName
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new game session from a preset. Generated presets
// are materialised first; the session keeps the resulting layout and seed.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	var config *engine.LevelConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			availableConfigs, listErr := s.configs.ListConfigs()
			if listErr == nil && len(availableConfigs) > 0 {
				var configIDs []string
				for _, cfg := range availableConfigs {
					configIDs = append(configIDs, cfg.ConfigID)
				}
				return nil, fmt.Errorf("failed to load config '%s' (available: %v): %w", configName, configIDs, err)
			}
			return nil, fmt.Errorf("failed to load config '%s': %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	level, generated, err := generator.Materialize(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLevel, err)
	}
	if generated != nil {
		log.WithFields(logrus.Fields{
			"config":   config.Name,
			"seed":     generated.Seed,
			"attempts": generated.Attempts,
		}).Info("generated level for session")
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}
	return s.startSession(configID, level)
}

// CreateGeneratedSession generates a level from ad-hoc options and starts a session on it.
func (s *gameServiceImpl) CreateGeneratedSession(ctx context.Context, opts *generator.Options) (*SessionInfo, error) {
	if opts == nil {
		opts = generator.DefaultOptions()
	}

	gen := generator.New(opts)
	level, err := gen.Generate(ctx)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("generated-%d", level.Seed)
	config := generator.Apply(generator.ConfigFromOptions(name, opts), level)

	log.WithFields(logrus.Fields{
		"seed":     level.Seed,
		"attempts": level.Attempts,
		"size":     fmt.Sprintf("%dx%d", opts.Width, opts.Depth),
	}).Info("generated level for session")

	return s.startSession(name, config)
}

func (s *gameServiceImpl) startSession(configID string, level *engine.LevelConfig) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", level)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
		Level:          session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     s.getConfigID(session.Config.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
		Level:          session.Config,
	}, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			ConfigName:     s.getConfigID(sess.Config.Name),
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
			GameState:      sess.Engine.GetState(),
			Level:          sess.Config,
		})
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move executes a single roll for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	success := sess.Engine.Move(direction)
	entry := sess.Engine.GetLastMove()
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success:       success,
		GameState:     state,
		Message:       state.Message,
		Events:        append(events, extractMoveEvents(state, entry)...),
		PossibleMoves: sess.Engine.GetPossibleMoves(),
	}
	if entry != nil && entry.From != entry.To {
		step := stepFromEntry(1, entry, state)
		result.Step = &step
	}

	s.persist(sessionID, "move")
	return result, nil
}

// BulkMove executes multiple rolls in sequence, stopping at the first
// refused move or at the end of the game.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}
	result.StartBlock = sess.Engine.GetBlock()

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if sess.Engine.IsGameOver() {
			result.StoppedReason = "game already over"
			result.StopReasonCode = "game_over"
			result.StoppedOnMove = i + 1
			break
		}

		if _, err := engine.ParseDirection(move); err != nil {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d: %v", i+1, err)
			result.StopReasonCode = "invalid_direction"
			result.StoppedOnMove = i + 1
			break
		}

		success := sess.Engine.Move(move)
		entry := sess.Engine.GetLastMove()
		state := sess.Engine.GetState()

		result.MovesExecuted++
		result.Events = append(result.Events, extractMoveEvents(state, entry)...)
		result.Steps = append(result.Steps, stepFromEntry(i+1, entry, state))

		if !success {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d (%s) dropped the block off the board", i+1, move)
			result.StopReasonCode = "fell"
			result.StoppedOnMove = i + 1
			break
		}
		if state.Victory {
			if i+1 < len(moves) {
				result.StoppedReason = "goal reached"
				result.StoppedOnMove = i + 1
			}
			result.StopReasonCode = "victory"
			break
		}
	}

	endState := sess.Engine.GetState()
	result.GameState = endState
	result.EndBlock = endState.Block
	result.GameOver = endState.GameOver
	result.Message = endState.Message
	switch {
	case endState.Victory:
		result.GameOverCode = "victory"
	case endState.Fell:
		result.GameOverCode = "fell"
	}
	result.PossibleMoves = sess.Engine.GetPossibleMoves()

	s.persist(sessionID, "bulk move")
	return result, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.Reset()

	s.persist(sessionID, "reset")
	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// Hint returns the shortest continuation from the block's current position.
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	if sess.Engine.IsGameOver() {
		return nil, ErrGameEnded
	}

	from := sess.Engine.GetBlock()
	res, err := solver.CheckFrom(sess.Engine.GetGrid(), from)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLevel, err)
	}

	hint := &HintResult{
		Solvable: res.Solvable,
		Path:     engine.DirectionNames(res.Path),
		Moves:    res.Moves(),
		From:     from,
	}
	if len(res.Path) > 0 {
		hint.Next = res.Path[0].String()
	}
	return hint, nil
}

// Solve returns the shortest solution of the session's level from its start.
func (s *gameServiceImpl) Solve(ctx context.Context, sessionID string) (*CheckResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	res, err := solver.Check(sess.Engine.GetGrid(), sess.Config.Start)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLevel, err)
	}
	return checkResult(res), nil
}

// GenerateLevel generates a level without starting a session.
func (s *gameServiceImpl) GenerateLevel(ctx context.Context, opts *generator.Options) (*LevelInfo, error) {
	if opts == nil {
		opts = generator.DefaultOptions()
	}

	level, err := generator.New(opts).Generate(ctx)
	if err != nil {
		log.WithFields(logrus.Fields{
			"size":        fmt.Sprintf("%dx%d", opts.Width, opts.Depth),
			"probability": opts.HoleProbability,
		}).WithError(err).Warn("level generation failed")
		return nil, err
	}

	return &LevelInfo{
		Width:    level.Grid.Width(),
		Depth:    level.Grid.Depth(),
		Layout:   level.Grid.Layout(),
		Start:    level.Start,
		Goal:     level.Goal,
		Seed:     level.Seed,
		Attempts: level.Attempts,
		Solution: engine.DirectionNames(level.Solution),
		Moves:    len(level.Solution),
		Stats:    level.Grid.Stats(),
	}, nil
}

// CheckLevel runs the solver on a caller-supplied layout.
func (s *gameServiceImpl) CheckLevel(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	grid, err := engine.ParseLayout(req.Layout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLevel, err)
	}

	res, err := solver.Check(grid, req.Start)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLevel, err)
	}
	return checkResult(res), nil
}

// ListConfigs returns available level presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific level preset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.LevelConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a level preset to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.LevelConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.WithFields(logrus.Fields{
			"session": sessionID,
			"after":   after,
		}).WithError(err).Warn("failed to persist session")
	}
}

func checkResult(res *solver.Result) *CheckResult {
	return &CheckResult{
		Solvable: res.Solvable,
		Path:     engine.DirectionNames(res.Path),
		Moves:    res.Moves(),
		Explored: res.Explored,
	}
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   "Game reset to initial state",
		Timestamp: time.Now(),
	}
}

func stepFromEntry(idx int, entry *engine.MoveHistoryEntry, state *engine.GameState) StepInfo {
	return StepInfo{
		Idx:         idx,
		Dir:         entry.Action,
		From:        entry.From,
		To:          entry.To,
		Orientation: entry.To.Orientation(),
		Success:     entry.Success,
		Fell:        state.Fell && !entry.Success,
		Victory:     state.Victory && entry.Success,
	}
}

// extractMoveEvents generates events from the last history entry
func extractMoveEvents(state *engine.GameState, entry *engine.MoveHistoryEntry) []GameEvent {
	if entry == nil {
		return nil
	}
	now := time.Now()

	if entry.From == entry.To {
		// refused: unknown direction or the game had already ended
		eventType := "move"
		if state.GameOver {
			eventType = "game_over"
		}
		return []GameEvent{{Type: eventType, Message: state.Message, Timestamp: now}}
	}

	to := entry.To
	events := []GameEvent{{
		Type:      "move",
		Message:   fmt.Sprintf("Rolled %s to %s", entry.Action, to),
		Timestamp: now,
		Block:     &to,
	}}

	switch {
	case state.Victory && entry.Success:
		events = append(events, GameEvent{Type: "victory", Message: state.Message, Timestamp: now, Block: &to})
	case state.Fell && !entry.Success:
		events = append(events, GameEvent{Type: "fell", Message: state.Message, Timestamp: now, Block: &to})
	}
	return events
}

package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wricardo/rollblock/game/engine"
	"github.com/wricardo/rollblock/game/generator"
	"github.com/wricardo/rollblock/game/service"
)

var errMockNotFound = errors.New("session not found")

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	saves    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, level *engine.LevelConfig) (*service.Session, error) {
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(level)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         level,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, errMockNotFound
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, level *engine.LevelConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, level)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errMockNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errMockNotFound
}

func (m *MockSessionManager) Save(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errMockNotFound
	}
	m.saves++
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.LevelConfig
	saved   map[string]*engine.LevelConfig
}

// The test level is won by right, right from (0,0). Rolling left or up
// from the start drops the block off the board.
func NewMockConfigManager() *MockConfigManager {
	fixed := &engine.LevelConfig{
		Name:        "test",
		Description: "Test level",
		Layout: []string{
			"NNNG",
			"NNNN",
			"NNNN",
		},
		Start: engine.Coord{X: 0, Z: 0},
	}

	generated := &engine.LevelConfig{
		Name:        "Generated Test",
		Description: "Generated test level",
		Seed:        5,
		Generate: &engine.GenerateParams{
			Width:            generator.DefaultWidth,
			Depth:            generator.DefaultDepth,
			HoleProbability:  generator.DefaultHoleProbability,
			MinPassableCells: generator.DefaultMinPassableCells,
		},
	}

	return &MockConfigManager{
		configs: map[string]*engine.LevelConfig{
			"test": fixed,
			"gen":  generated,
		},
		saved: make(map[string]*engine.LevelConfig),
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.LevelConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, errors.New("config not found")
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for id, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:  id + ".json",
			ConfigID:  id,
			Name:      config.Name,
			Generated: config.IsGenerated(),
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.LevelConfig {
	return m.configs["test"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.LevelConfig) error {
	m.saved[name] = config
	return nil
}

func newTestService(t *testing.T) (service.GameService, *MockSessionManager) {
	t.Helper()
	sessions := NewMockSessionManager()
	return service.NewGameService(sessions, NewMockConfigManager()), sessions
}

func createSession(t *testing.T, svc service.GameService, config string) *service.SessionInfo {
	t.Helper()
	info, err := svc.CreateSession(context.Background(), config)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return info
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name       string
		configName string
		wantErr    bool
	}{
		{name: "create with default config", configName: ""},
		{name: "create with specific config", configName: "test"},
		{name: "create with generated config", configName: "gen"},
		{name: "create with invalid config", configName: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.CreateSession(ctx, tt.configName)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && session == nil {
				t.Error("CreateSession() returned nil session")
			}
		})
	}
}

func TestGameService_CreateSession_Materialises(t *testing.T) {
	svc, _ := newTestService(t)

	info := createSession(t, svc, "gen")

	if info.ConfigName != "gen" {
		t.Errorf("Expected config name gen, got %s", info.ConfigName)
	}
	if info.Level == nil || len(info.Level.Layout) != generator.DefaultDepth {
		t.Fatalf("Expected a materialised %d-row layout, got %+v", generator.DefaultDepth, info.Level)
	}
	if info.Level.Seed != 5 || info.GameState.Seed != 5 {
		t.Errorf("Expected seed 5 to be reported, got level=%d state=%d", info.Level.Seed, info.GameState.Seed)
	}

	// The preset itself stays generated
	preset, _ := svc.LoadConfig(context.Background(), "gen")
	if !preset.IsGenerated() {
		t.Error("Materialising must not modify the stored preset")
	}

	solution, err := svc.Solve(context.Background(), info.ID)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if !solution.Solvable || solution.Moves < 1 {
		t.Errorf("Generated session should be solvable, got %+v", solution)
	}
}

func TestGameService_CreateGeneratedSession(t *testing.T) {
	svc, _ := newTestService(t)

	opts := generator.DefaultOptions()
	opts.Seed = 42

	info, err := svc.CreateGeneratedSession(context.Background(), opts)
	if err != nil {
		t.Fatalf("CreateGeneratedSession() error = %v", err)
	}
	if info.ConfigName != "generated-42" {
		t.Errorf("Expected config name generated-42, got %s", info.ConfigName)
	}
	if info.GameState.Width != opts.Width || info.GameState.Depth != opts.Depth {
		t.Errorf("Expected %dx%d board, got %dx%d", opts.Width, opts.Depth, info.GameState.Width, info.GameState.Depth)
	}

	opts.Width = 0
	if _, err := svc.CreateGeneratedSession(context.Background(), opts); !errors.Is(err, generator.ErrInvalidParameters) {
		t.Errorf("Expected ErrInvalidParameters, got %v", err)
	}
}

func TestGameService_Move(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	info := createSession(t, svc, "test")

	tests := []struct {
		name      string
		sessionID string
		direction string
		reset     bool
		wantErr   bool
		success   bool
	}{
		{name: "valid move down", sessionID: info.ID, direction: "down", success: true},
		{name: "valid move with reset", sessionID: info.ID, direction: "right", reset: true, success: true},
		{name: "invalid session", sessionID: "nonexistent", direction: "up", wantErr: true},
		{name: "invalid direction", sessionID: info.ID, direction: "diagonal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Move(ctx, tt.sessionID, tt.direction, tt.reset)
			if (err != nil) != tt.wantErr {
				t.Errorf("Move() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if result.Success != tt.success {
				t.Errorf("Move() success = %v, want %v", result.Success, tt.success)
			}
		})
	}

	t.Run("step info", func(t *testing.T) {
		if _, err := svc.Reset(ctx, info.ID); err != nil {
			t.Fatalf("Reset() error = %v", err)
		}

		res, err := svc.Move(ctx, info.ID, "right", false)
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		if res.Step == nil {
			t.Fatal("Expected StepInfo on a successful roll")
		}
		want := engine.NewBlock(engine.Coord{X: 1, Z: 0}, engine.Coord{X: 2, Z: 0})
		if res.Step.To != want || res.Step.Orientation != engine.LyingX {
			t.Errorf("Unexpected step: %+v", res.Step)
		}
		if len(res.Events) != 1 || res.Events[0].Type != "move" {
			t.Errorf("Expected a single move event, got %+v", res.Events)
		}
	})

	t.Run("refused move leaves block in place", func(t *testing.T) {
		before, _ := svc.GetGameState(ctx, info.ID)
		block := before.Block

		res, err := svc.Move(ctx, info.ID, "sideways", false)
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		if res.Success || res.Step != nil {
			t.Errorf("Expected refused move without step, got %+v", res)
		}
		if res.GameState.Block != block {
			t.Errorf("Block moved on refused roll: %s -> %s", block, res.GameState.Block)
		}
	})

	t.Run("victory", func(t *testing.T) {
		res, err := svc.Move(ctx, info.ID, "right", false)
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		if !res.Success || !res.GameState.Victory || !res.Step.Victory {
			t.Fatalf("Expected victory, got %+v", res)
		}
		if res.Events[len(res.Events)-1].Type != "victory" {
			t.Errorf("Expected victory event, got %+v", res.Events)
		}
		if len(res.PossibleMoves) != 0 {
			t.Errorf("Expected no possible moves after victory, got %v", res.PossibleMoves)
		}
	})

	t.Run("moves after the game ended are refused", func(t *testing.T) {
		res, err := svc.Move(ctx, info.ID, "down", false)
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		if res.Success || res.Events[0].Type != "game_over" {
			t.Errorf("Expected refused move with game_over event, got %+v", res)
		}
	})

	t.Run("fall", func(t *testing.T) {
		res, err := svc.Move(ctx, info.ID, "left", true)
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		if res.Success || !res.GameState.Fell || res.Step == nil || !res.Step.Fell {
			t.Fatalf("Expected the block to fall, got %+v", res)
		}
		if res.Events[0].Type != "reset" || res.Events[len(res.Events)-1].Type != "fell" {
			t.Errorf("Expected reset ... fell events, got %+v", res.Events)
		}
	})
}

func TestGameService_BulkMove(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	info := createSession(t, svc, "test")

	t.Run("stops on victory", func(t *testing.T) {
		res, err := svc.BulkMove(ctx, info.ID, []string{"right", "right", "down"}, false)
		if err != nil {
			t.Fatalf("BulkMove() error = %v", err)
		}
		if res.MovesExecuted != 2 || res.StopReasonCode != "victory" || res.StoppedOnMove != 2 {
			t.Errorf("Unexpected result: executed=%d code=%s on=%d", res.MovesExecuted, res.StopReasonCode, res.StoppedOnMove)
		}
		if !res.GameOver || res.GameOverCode != "victory" || !res.Success {
			t.Errorf("Expected victorious game over, got %+v", res)
		}
		if res.EndBlock != engine.StandingAt(engine.Coord{X: 3, Z: 0}) {
			t.Errorf("Expected to end standing on the goal, got %s", res.EndBlock)
		}
	})

	t.Run("game already over", func(t *testing.T) {
		res, err := svc.BulkMove(ctx, info.ID, []string{"down"}, false)
		if err != nil {
			t.Fatalf("BulkMove() error = %v", err)
		}
		if res.MovesExecuted != 0 || res.StopReasonCode != "game_over" || res.StoppedOnMove != 1 {
			t.Errorf("Expected game_over stop, got %+v", res)
		}
	})

	t.Run("stops on fall", func(t *testing.T) {
		res, err := svc.BulkMove(ctx, info.ID, []string{"down", "left", "right"}, true)
		if err != nil {
			t.Fatalf("BulkMove() error = %v", err)
		}
		if res.Success || res.StopReasonCode != "fell" || res.MovesExecuted != 2 || res.StoppedOnMove != 2 {
			t.Errorf("Expected fall on move 2, got %+v", res)
		}
		if len(res.Steps) != 2 || !res.Steps[1].Fell {
			t.Errorf("Expected 2 steps ending in a fall, got %+v", res.Steps)
		}
		if res.Events[0].Type != "reset" {
			t.Errorf("Expected leading reset event, got %+v", res.Events)
		}
		if res.StartBlock != engine.StandingAt(engine.Coord{X: 0, Z: 0}) {
			t.Errorf("Expected start block after reset, got %s", res.StartBlock)
		}
	})

	t.Run("stops on invalid direction", func(t *testing.T) {
		res, err := svc.BulkMove(ctx, info.ID, []string{"right", "sideways", "right"}, true)
		if err != nil {
			t.Fatalf("BulkMove() error = %v", err)
		}
		if res.Success || res.StopReasonCode != "invalid_direction" || res.MovesExecuted != 1 || res.StoppedOnMove != 2 {
			t.Errorf("Expected invalid_direction on move 2, got %+v", res)
		}
		if res.GameOver {
			t.Error("An invalid direction must not end the game")
		}
	})

	t.Run("truncates long sequences", func(t *testing.T) {
		moves := make([]string, 0, engine.MaxBulkMoves+10)
		for len(moves) < engine.MaxBulkMoves+10 {
			moves = append(moves, "down", "up")
		}
		res, err := svc.BulkMove(ctx, info.ID, moves, true)
		if err != nil {
			t.Fatalf("BulkMove() error = %v", err)
		}
		if !res.Truncated || res.Limit != engine.MaxBulkMoves || res.MovesExecuted != engine.MaxBulkMoves {
			t.Errorf("Expected truncation at %d, got truncated=%v limit=%d executed=%d",
				engine.MaxBulkMoves, res.Truncated, res.Limit, res.MovesExecuted)
		}
		if res.RequestedMoves != len(moves) {
			t.Errorf("Expected %d requested moves, got %d", len(moves), res.RequestedMoves)
		}
	})

	t.Run("invalid session", func(t *testing.T) {
		if _, err := svc.BulkMove(ctx, "nonexistent", []string{"up"}, false); err == nil {
			t.Error("Expected error for unknown session")
		}
	})
}

func TestGameService_GetMoveHistory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	info := createSession(t, svc, "test")

	if _, err := svc.BulkMove(ctx, info.ID, []string{"down", "up", "down", "up"}, false); err != nil {
		t.Fatalf("Failed to make moves: %v", err)
	}

	t.Run("default options", func(t *testing.T) {
		res, err := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{})
		if err != nil {
			t.Fatalf("GetMoveHistory() error = %v", err)
		}
		if res.TotalMoves != 4 || len(res.Moves) != 4 {
			t.Fatalf("Expected 4 moves, got total=%d len=%d", res.TotalMoves, len(res.Moves))
		}
		if res.Moves[0].MoveNumber != 4 {
			t.Errorf("Expected most recent move first, got move %d", res.Moves[0].MoveNumber)
		}
	})

	t.Run("with pagination", func(t *testing.T) {
		res, err := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{Page: 1, Limit: 2, Order: "asc"})
		if err != nil {
			t.Fatalf("GetMoveHistory() error = %v", err)
		}
		if len(res.Moves) != 2 || res.Moves[0].MoveNumber != 1 || res.Moves[1].MoveNumber != 2 {
			t.Errorf("Unexpected first page: %+v", res.Moves)
		}
		if res.TotalPages != 2 || !res.HasNext || res.HasPrevious {
			t.Errorf("Unexpected paging: pages=%d next=%v prev=%v", res.TotalPages, res.HasNext, res.HasPrevious)
		}
	})

	t.Run("page past the end", func(t *testing.T) {
		res, err := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{Page: 5, Limit: 10, Order: "asc"})
		if err != nil {
			t.Fatalf("GetMoveHistory() error = %v", err)
		}
		if res.Moves == nil || len(res.Moves) != 0 {
			t.Errorf("Expected empty non-nil moves, got %v", res.Moves)
		}
	})

	t.Run("invalid session", func(t *testing.T) {
		if _, err := svc.GetMoveHistory(ctx, "nonexistent", service.HistoryOptions{}); err == nil {
			t.Error("Expected error for unknown session")
		}
	})
}

func TestGameService_HintAndSolve(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	info := createSession(t, svc, "test")

	hint, err := svc.Hint(ctx, info.ID)
	if err != nil {
		t.Fatalf("Hint() error = %v", err)
	}
	if !hint.Solvable || hint.Next != "right" || hint.Moves != 2 {
		t.Errorf("Unexpected hint: %+v", hint)
	}

	// After rolling down, the hint starts from the lying block
	if _, err := svc.Move(ctx, info.ID, "down", false); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	hint, err = svc.Hint(ctx, info.ID)
	if err != nil {
		t.Fatalf("Hint() error = %v", err)
	}
	if hint.From.IsStanding() || !hint.Solvable || hint.Moves < 1 {
		t.Errorf("Expected a hint from the lying block, got %+v", hint)
	}

	solution, err := svc.Solve(ctx, info.ID)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if !solution.Solvable || solution.Moves != 2 || solution.Path[0] != "right" || solution.Path[1] != "right" {
		t.Errorf("Unexpected solution: %+v", solution)
	}

	if _, err := svc.BulkMove(ctx, info.ID, []string{"right", "right"}, true); err != nil {
		t.Fatalf("BulkMove() error = %v", err)
	}
	if _, err := svc.Hint(ctx, info.ID); !errors.Is(err, service.ErrGameEnded) {
		t.Errorf("Expected ErrGameEnded after victory, got %v", err)
	}

	if _, err := svc.Hint(ctx, "nonexistent"); err == nil {
		t.Error("Expected error for unknown session")
	}
}

func TestGameService_GenerateLevel(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	opts := generator.DefaultOptions()
	opts.Seed = 7

	level, err := svc.GenerateLevel(ctx, opts)
	if err != nil {
		t.Fatalf("GenerateLevel() error = %v", err)
	}
	if level.Seed != 7 || level.Width != opts.Width || level.Depth != opts.Depth {
		t.Errorf("Unexpected level header: %+v", level)
	}
	if level.Moves != len(level.Solution) || level.Moves < 1 {
		t.Errorf("Expected a non-empty solution, got %v", level.Solution)
	}

	check, err := svc.CheckLevel(ctx, service.CheckRequest{Layout: level.Layout, Start: level.Start})
	if err != nil {
		t.Fatalf("CheckLevel() error = %v", err)
	}
	if !check.Solvable || check.Moves != level.Moves {
		t.Errorf("Generated level should check solvable in %d moves, got %+v", level.Moves, check)
	}

	again, err := svc.GenerateLevel(ctx, opts)
	if err != nil {
		t.Fatalf("GenerateLevel() error = %v", err)
	}
	if fmt.Sprint(again.Layout) != fmt.Sprint(level.Layout) {
		t.Error("Same seed should produce the same layout")
	}

	bad := generator.DefaultOptions()
	bad.HoleProbability = 2
	if _, err := svc.GenerateLevel(ctx, bad); !errors.Is(err, generator.ErrInvalidParameters) {
		t.Errorf("Expected ErrInvalidParameters, got %v", err)
	}
}

func TestGameService_CheckLevel(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name     string
		req      service.CheckRequest
		solvable bool
		moves    int
		wantErr  bool
	}{
		{name: "two rolls", req: service.CheckRequest{Layout: []string{"NNNG"}}, solvable: true, moves: 2},
		{name: "goal one cell too close", req: service.CheckRequest{Layout: []string{"NNG"}}, moves: -1},
		{name: "bad cell", req: service.CheckRequest{Layout: []string{"NXG"}}, wantErr: true},
		{name: "start on hole", req: service.CheckRequest{Layout: []string{"HNNG"}}, wantErr: true},
		{name: "empty layout", req: service.CheckRequest{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.CheckLevel(ctx, tt.req)
			if tt.wantErr {
				if !errors.Is(err, service.ErrInvalidLevel) {
					t.Errorf("Expected ErrInvalidLevel, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CheckLevel() error = %v", err)
			}
			if res.Solvable != tt.solvable || res.Moves != tt.moves {
				t.Errorf("CheckLevel() = %+v, want solvable=%v moves=%d", res, tt.solvable, tt.moves)
			}
		})
	}
}

func TestGameService_ListSessions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for i := 0; i < 3; i++ {
		createSession(t, svc, "test")
	}

	sessionList, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessionList) != 3 {
		t.Fatalf("ListSessions() returned %d sessions, want 3", len(sessionList))
	}
	for _, s := range sessionList {
		if s.ConfigName != "test" {
			t.Errorf("Expected config id test, got %s", s.ConfigName)
		}
	}

	if err := svc.DeleteSession(ctx, sessionList[0].ID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := svc.GetSession(ctx, sessionList[0].ID); err == nil {
		t.Error("Expected deleted session to be gone")
	}
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newTestService(t)
	info := createSession(t, svc, "test")

	if _, err := svc.Move(ctx, info.ID, "down", false); err != nil {
		t.Fatalf("Failed to move: %v", err)
	}

	state, err := svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if state.Block != engine.StandingAt(engine.Coord{X: 0, Z: 0}) {
		t.Errorf("Expected block back at start, got %s", state.Block)
	}
	if state.CurrentMovesCount != 0 || state.TotalMoves != 1 {
		t.Errorf("Expected segment cleared and total kept, got current=%d total=%d", state.CurrentMovesCount, state.TotalMoves)
	}
	if sessions.saves < 2 {
		t.Errorf("Expected the move and the reset to be persisted, got %d saves", sessions.saves)
	}
}

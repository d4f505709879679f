package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/rollblock/api"
	"github.com/wricardo/rollblock/game/config"
	"github.com/wricardo/rollblock/game/engine"
	"github.com/wricardo/rollblock/game/generator"
	"github.com/wricardo/rollblock/game/service"
	"github.com/wricardo/rollblock/game/session"
)

const tinyPreset = `{
  "name": "Tiny",
  "layout": ["NNNG", "NNNN", "NNNN"],
  "start": {"x": 0, "z": 0}
}`

// newGameServer runs the real REST API over an in-memory session store.
func newGameServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiny.json"), []byte(tinyPreset), 0644))

	configs, err := config.NewManager(dir)
	require.NoError(t, err)

	svc := service.NewGameService(session.NewManager(), configs)
	server := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(server.Close)
	return server
}

func newSession(t *testing.T) (*Client, *engine.GameState) {
	t.Helper()
	client := NewClient(newGameServer(t).URL)
	state, err := client.CreateSession(context.Background(), "tiny", nil)
	require.NoError(t, err)
	require.NotEmpty(t, client.SessionID())
	return client, state
}

var defaultPlay = PlayOptions{MaxMoves: 200, MaxAttempts: 50, BatchSize: engine.MaxBulkMoves}

func TestPlay_Solver(t *testing.T) {
	client, state := newSession(t)

	out, err := play(context.Background(), client, &SolverStrategy{}, state, defaultPlay)
	require.NoError(t, err)
	assert.True(t, out.Victory)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, 2, out.Moves)

	final, err := client.GetState(context.Background())
	require.NoError(t, err)
	assert.True(t, final.Victory)
}

func TestPlay_Hint(t *testing.T) {
	client, state := newSession(t)
	strategy, err := newStrategy("hint", client, 1)
	require.NoError(t, err)

	out, err := play(context.Background(), client, strategy, state, defaultPlay)
	require.NoError(t, err)
	assert.True(t, out.Victory)
	assert.Equal(t, 2, out.Moves)
}

func TestPlay_Explore(t *testing.T) {
	client, state := newSession(t)

	out, err := play(context.Background(), client, NewExploreStrategy(42), state, defaultPlay)
	require.NoError(t, err)
	assert.True(t, out.Victory)
}

func TestPlay_GivesUp(t *testing.T) {
	client, state := newSession(t)

	opts := PlayOptions{MaxMoves: 1, MaxAttempts: 2, BatchSize: 1}
	out, err := play(context.Background(), client, &SolverStrategy{}, state, opts)
	assert.ErrorIs(t, err, errGaveUp)
	assert.False(t, out.Victory)
	assert.Equal(t, 2, out.Attempts)
}

func TestPlay_SmallBatches(t *testing.T) {
	client, state := newSession(t)

	opts := defaultPlay
	opts.BatchSize = 1
	out, err := play(context.Background(), client, &SolverStrategy{}, state, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Moves)
}

func TestPlay_ResetsAfterGameOver(t *testing.T) {
	client, _ := newSession(t)
	ctx := context.Background()

	// rolling left off the start drops the block
	res, err := client.Move(ctx, "left")
	require.NoError(t, err)
	require.True(t, res.GameState.Fell)

	out, err := play(ctx, client, &SolverStrategy{}, res.GameState, defaultPlay)
	require.NoError(t, err)
	assert.True(t, out.Victory)
	assert.Equal(t, 1, out.Attempts)
}

func TestClient_GeneratedSession(t *testing.T) {
	client := NewClient(newGameServer(t).URL)
	opts := generator.DefaultOptions()
	opts.Seed = 5

	state, err := client.CreateSession(context.Background(), "", opts)
	require.NoError(t, err)
	assert.Equal(t, int64(5), state.Seed)
	assert.Len(t, state.Layout, generator.DefaultDepth)

	out, err := play(context.Background(), client, &SolverStrategy{}, state, defaultPlay)
	require.NoError(t, err)
	assert.True(t, out.Victory)
}

func TestClient_ResumeUnknownSession(t *testing.T) {
	client := NewClient(newGameServer(t).URL)

	_, err := client.Resume(context.Background(), "zzzz")
	assert.Error(t, err)
}

func TestNewStrategy(t *testing.T) {
	for _, name := range []string{"solver", "hint", "explore"} {
		s, err := newStrategy(name, nil, 1)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}

	_, err := newStrategy("greedy", nil, 1)
	assert.Error(t, err)
}

func TestExploreStrategy(t *testing.T) {
	ctx := context.Background()

	t.Run("takes a winning roll", func(t *testing.T) {
		state := &engine.GameState{
			Layout: []string{"NNNG", "NNNN"},
			Block:  engine.NewBlock(engine.Coord{X: 1, Z: 0}, engine.Coord{X: 2, Z: 0}),
		}
		plan, err := NewExploreStrategy(7).NextMoves(ctx, state)
		require.NoError(t, err)
		assert.Equal(t, []string{"right"}, plan)
	})

	t.Run("never rolls off the board", func(t *testing.T) {
		state := &engine.GameState{
			Layout: []string{"NNNNG"},
			Block:  engine.StandingAt(engine.Coord{X: 0, Z: 0}),
		}
		s := NewExploreStrategy(3)
		for i := 0; i < 20; i++ {
			plan, err := s.NextMoves(ctx, state)
			require.NoError(t, err)
			assert.Equal(t, []string{"right"}, plan)
		}
	})

	t.Run("stuck", func(t *testing.T) {
		state := &engine.GameState{
			Layout: []string{"NHG"},
			Block:  engine.StandingAt(engine.Coord{X: 0, Z: 0}),
		}
		_, err := NewExploreStrategy(1).NextMoves(ctx, state)
		assert.True(t, errors.Is(err, errNoMoves))
	})
}

func TestSolverStrategy_Unsolvable(t *testing.T) {
	state := &engine.GameState{
		Layout: []string{"NNG"},
		Block:  engine.StandingAt(engine.Coord{X: 0, Z: 0}),
	}
	plan, err := (&SolverStrategy{}).NextMoves(context.Background(), state)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

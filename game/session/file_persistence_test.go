package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/rollblock/game/engine"
	"github.com/wricardo/rollblock/game/generator"
	"github.com/wricardo/rollblock/game/service"
)

func newTestSession(t *testing.T, id string, level *engine.LevelConfig) *service.Session {
	t.Helper()
	eng, err := engine.NewEngine(level)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         level,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
}

func TestFilePersistence(t *testing.T) {
	persistence, err := NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	session := newTestSession(t, "test1", createTestConfig())

	t.Run("Save and Load Session", func(t *testing.T) {
		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}
		if !persistence.Exists("test1") {
			t.Error("Session file should exist after save")
		}

		loaded, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if loaded.ID != session.ID {
			t.Errorf("Expected ID %s, got %s", session.ID, loaded.ID)
		}
		if loaded.Config.Name != session.Config.Name {
			t.Errorf("Expected config name %s, got %s", session.Config.Name, loaded.Config.Name)
		}
		if loaded.Engine.GetBlock() != session.Engine.GetBlock() {
			t.Errorf("Expected block %s, got %s", session.Engine.GetBlock(), loaded.Engine.GetBlock())
		}
	})

	t.Run("Save State Changes", func(t *testing.T) {
		if !session.Engine.Move("right") {
			t.Fatal("Expected first roll to succeed")
		}
		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save updated session: %v", err)
		}

		loaded, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load updated session: %v", err)
		}

		got, want := loaded.Engine.GetState(), session.Engine.GetState()
		if got.Block != want.Block {
			t.Errorf("Block not persisted: got %s, want %s", got.Block, want.Block)
		}
		if got.Orientation != engine.LyingX {
			t.Errorf("Expected horizontal orientation after loading, got %s", got.Orientation)
		}
		if len(loaded.Engine.GetMoveHistory()) != len(session.Engine.GetMoveHistory()) {
			t.Errorf("Move history not persisted correctly")
		}
	})

	t.Run("List All Sessions", func(t *testing.T) {
		if err := persistence.Save(newTestSession(t, "test2", createTestConfig())); err != nil {
			t.Fatalf("Failed to save second session: %v", err)
		}

		sessionIDs, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("Failed to list sessions: %v", err)
		}

		found := make(map[string]bool)
		for _, id := range sessionIDs {
			found[id] = true
		}
		if len(sessionIDs) != 2 || !found["test1"] || !found["test2"] {
			t.Errorf("Expected test1 and test2, got %v", sessionIDs)
		}
	})

	t.Run("Delete Session", func(t *testing.T) {
		if err := persistence.Delete("test2"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if persistence.Exists("test2") {
			t.Error("Session should not exist after delete")
		}
		if _, err := persistence.Load("test2"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Error Cases", func(t *testing.T) {
		if _, err := persistence.Load("nonexistent"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
		if err := persistence.Delete("nonexistent"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
		if err := persistence.Save(nil); err == nil {
			t.Error("Should get error when saving nil session")
		}
		if _, err := persistence.Load("../escape"); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})
}

func TestFilePersistence_GeneratedLevelRoundTrip(t *testing.T) {
	persistence, err := NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	opts := generator.DefaultOptions()
	opts.Seed = 99
	level, err := generator.New(opts).Generate(context.Background())
	if err != nil {
		t.Fatalf("Failed to generate level: %v", err)
	}
	config := generator.ConfigFromOptions("generated-99", opts)
	generator.Apply(config, level)

	session := newTestSession(t, "gen1", config)
	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	loaded, err := persistence.Load("gen1")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}

	want := level.Grid.Layout()
	if strings.Join(loaded.Config.Layout, "\n") != strings.Join(want, "\n") {
		t.Errorf("Generated layout changed across reload:\n%v\n%v", loaded.Config.Layout, want)
	}
	if loaded.Config.Seed != 99 {
		t.Errorf("Expected seed 99, got %d", loaded.Config.Seed)
	}
	if loaded.Engine.GetState().Goal != session.Engine.GetState().Goal {
		t.Error("Goal changed across reload")
	}
}

func TestFilePersistenceFileStructure(t *testing.T) {
	tempDir := t.TempDir()

	persistence, err := NewFilePersistence(tempDir)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	if err := persistence.Save(newTestSession(t, "file_test", createTestConfig())); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	expectedFile := filepath.Join(tempDir, "file_test.json")
	data, err := os.ReadFile(expectedFile)
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}

	content := string(data)
	for _, field := range []string{`"id"`, `"config_name"`, `"created_at"`, `"level"`, `"layout"`, `"game_state"`} {
		if !strings.Contains(content, field) {
			t.Errorf("Session file should contain field %s", field)
		}
	}

	if _, err := os.Stat(expectedFile + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file should not be left behind")
	}
}

// Package engine provides the core model and play logic for the rolling-block game.
//
// The engine package implements:
//   - The board model (Grid, CellKind, Coord) and its text layout form
//   - The 1x2x1 block and its roll transition table
//   - Level presets (LevelConfig) loaded from JSON or YAML
//   - Game state management with cumulative and per-attempt move history
//
// Core Types:
//
// Grid is a width x depth board of cells; rows of the layout run along z and
// characters along x. Block is the rolling block, identified by the unordered
// pair of cells it covers. The Engine interface defines the contract for
// playing a level, implemented by GameEngine.
//
// Usage:
//
//	config, err := engine.LoadLevelConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	success := gameEngine.Move("right")
//	state := gameEngine.GetState()
//
// Game Rules:
//
// The block starts standing on the start cell. Each move tips it over one of
// its edges. If any cell under the block is a hole or off the board, the
// block falls and the game is lost. Standing upright on the goal wins.
package engine

package engine

import (
	"fmt"
	"time"
)

// RollBlock applies one roll to the state. A roll that leaves a cell of the
// block over a hole or off the board ends the game as a loss; standing on the
// goal ends it as a win. Once the game has ended every roll is refused.
func (gs *GameState) RollBlock(direction string, grid *Grid, config *LevelConfig) bool {
	if gs.GameOver {
		gs.Message = config.Messages.Ended
		return false
	}

	d, err := ParseDirection(direction)
	if err != nil {
		gs.Message = fmt.Sprintf("Unknown direction %q (use left, right, up or down)", direction)
		return false
	}

	next := gs.Block.Roll(d)
	gs.Block = next
	gs.Orientation = next.Orientation()

	if !grid.Holds(next) {
		gs.GameOver = true
		gs.Fell = true
		gs.Message = config.Messages.Fell + fmt.Sprintf(" [rolled %s onto %s]", d, next)
		return false
	}

	if next.IsStanding() && next.A == gs.Goal {
		gs.GameOver = true
		gs.Victory = true
		gs.Message = fmt.Sprintf(config.Messages.Victory, gs.CurrentMovesCount+1)
		return true
	}

	gs.Message = fmt.Sprintf("Rolled %s: %s", d, next)
	return true
}

// AddMoveToHistory adds a move to the game's move history
func (gs *GameState) AddMoveToHistory(action string, from, to Block, success bool) {
	entry := MoveHistoryEntry{
		Action:     action,
		From:       from,
		To:         to,
		Timestamp:  time.Now().Unix(),
		Success:    success,
		MoveNumber: gs.TotalMoves + 1,
	}
	// Append to cumulative history (never cleared by reset) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	// Append to current segment history and increment its counter
	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}

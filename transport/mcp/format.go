package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/rollblock/game/engine"
	"github.com/wricardo/rollblock/game/service"
)

func statusLabel(state *engine.GameState) string {
	switch {
	case state.Victory:
		return "VICTORY"
	case state.Fell:
		return "FELL"
	case state.GameOver:
		return "GAME OVER"
	}
	return "playing"
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Level: %s (%dx%d)", state.ConfigName, state.Width, state.Depth)
	if state.Seed != 0 {
		fmt.Fprintf(&b, " seed %d", state.Seed)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Block: %s (%s)\n", state.Block, state.Orientation)
	fmt.Fprintf(&b, "Goal: %s\n", state.Goal)
	fmt.Fprintf(&b, "Moves: %d this attempt, %d total\n", state.CurrentMovesCount, state.TotalMoves)
	fmt.Fprintf(&b, "Status: %s\n", statusLabel(state))
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}

	board := state.Board
	if len(board) == 0 {
		board = state.Layout
	}
	if len(board) > 0 {
		b.WriteString("\nBoard (X = block):\n")
		for _, row := range board {
			b.WriteString(row)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("Move successful\n")
	} else {
		b.WriteString("Move failed\n")
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}
	if result.Step != nil {
		fmt.Fprintf(&b, "%s: %s -> %s\n", result.Step.Dir, result.Step.From, result.Step.To)
	}
	for _, ev := range result.Events {
		if ev.Type == "move" {
			continue
		}
		fmt.Fprintf(&b, "Event [%s]: %s\n", ev.Type, ev.Message)
	}
	if len(result.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "Safe rolls: %s\n", strings.Join(result.PossibleMoves, ", "))
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(result *service.BulkMoveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Executed %d of %d moves\n", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, "Request truncated to %d moves\n", result.Limit)
	}
	fmt.Fprintf(&b, "From %s to %s\n", result.StartBlock, result.EndBlock)
	if result.StopReasonCode != "" {
		fmt.Fprintf(&b, "Stopped on move %d (%s): %s\n", result.StoppedOnMove, result.StopReasonCode, result.StoppedReason)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, st := range result.Steps {
			mark := "ok"
			switch {
			case st.Victory:
				mark = "goal"
			case st.Fell:
				mark = "fell"
			case !st.Success:
				mark = "refused"
			}
			fmt.Fprintf(&b, "  %d. %s -> %s [%s]\n", st.Idx, st.Dir, st.To, mark)
		}
	}

	if result.GameOver {
		fmt.Fprintf(&b, "\nGame over: %s\n", result.GameOverCode)
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (page %d of %d, %d total moves)\n\n", history.Page, history.TotalPages, history.TotalMoves)
	if len(history.Moves) == 0 {
		b.WriteString("No moves yet\n")
		return b.String()
	}
	for _, m := range history.Moves {
		mark := "ok"
		if !m.Success {
			mark = "failed"
		}
		fmt.Fprintf(&b, "#%d %s: %s -> %s [%s]\n", m.MoveNumber, m.Action, m.From, m.To, mark)
	}
	if history.HasNext {
		b.WriteString("\nMore moves on the next page\n")
	}
	return b.String()
}

func formatCurrentSegment(state *engine.GameState) string {
	if state == nil {
		return ""
	}
	if state.CurrentMovesCount == 0 {
		return "Current attempt: no moves since last reset\n"
	}
	dirs := make([]string, 0, len(state.CurrentMoves))
	for _, m := range state.CurrentMoves {
		dirs = append(dirs, m.Action)
	}
	return fmt.Sprintf("Current attempt (%d moves): %s\n", state.CurrentMovesCount, strings.Join(dirs, ","))
}

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", session.ID)
	fmt.Fprintf(&b, "Config: %s\n", session.ConfigName)
	fmt.Fprintf(&b, "Created: %s\n", session.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Last accessed: %s\n\n", session.LastAccessedAt.Format("2006-01-02 15:04:05"))
	b.WriteString(formatGameState(session.GameState))
	return b.String()
}

func formatCheckResult(res *service.CheckResult) string {
	if !res.Solvable {
		return fmt.Sprintf("Not solvable (%d states explored)\n", res.Explored)
	}
	if res.Moves == 0 {
		return fmt.Sprintf("Solvable: the start cell is the goal (%d states explored)\n", res.Explored)
	}
	return fmt.Sprintf("Solvable in %d moves (%d states explored)\nPath: %s\n",
		res.Moves, res.Explored, strings.Join(res.Path, ","))
}

func describeCell(state *engine.GameState, at engine.Coord) string {
	if at.Z < 0 || at.Z >= len(state.Layout) || at.X < 0 || at.X >= len(state.Layout[at.Z]) {
		return fmt.Sprintf("Cell %s is off the board (%dx%d)", at, state.Width, state.Depth)
	}

	ch := rune(state.Layout[at.Z][at.X])
	kind, ok := engine.Legend[ch]
	if !ok {
		return fmt.Sprintf("Cell %s has unknown kind %q", at, ch)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cell %s: %s (%c)", at, kind, ch)
	if !kind.Passable() {
		b.WriteString(", the block falls if any part of it rests here")
	}
	if state.Block.Covers(at) {
		fmt.Fprintf(&b, "\nThe block (%s) rests on this cell", state.Orientation)
	}
	return b.String()
}

const instructions = `ROLLING BLOCK - GAME INSTRUCTIONS

OBJECTIVE:
Stand the 1x2x1 block upright on the goal cell (G).

BOARD:
- Rows are z (0 at the top), columns are x (0 at the left)
- N = normal floor, H = hole, G = goal, X = the block
- S, F and B cells behave like normal floor

THE BLOCK:
- Standing: occupies one cell
- Lying: occupies two adjacent cells, along x (lying_x) or z (lying_z)

ROLLING:
- left/right move along x, up/down move along z
- Standing at p, rolling d: lies on p+d and p+2d
- Lying along the roll axis: stands on the cell just past the leading end
- Lying across the roll axis: both cells shift one step

LOSING:
- If either cell the block rests on is a hole or off the board, it falls and the game ends
- Use reset_game to try again; total move history is kept across resets

WINNING:
- The block must stand upright on G; lying across G does not count

TIPS:
- Use hint for the shortest continuation from where you are
- Use check_level to test a layout of your own before playing it
- Use bulk_move with a comma-separated plan once you have one`

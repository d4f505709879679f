package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/wricardo/rollblock/game/engine"
	"github.com/wricardo/rollblock/game/generator"
	"github.com/wricardo/rollblock/game/service"
)

var log = logrus.WithField("component", "mcp")

var directionEnum = []string{"left", "right", "up", "down"}

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// generation with many attempts can take a while on big boards
			Timeout: 30 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Rolling Block",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Rolling Block - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Roll the 1x2x1 block (X on the board) until it stands upright on the goal cell (G).
The block falls, ending the game, if any part of it rests on a hole (H) or off the board.

AVAILABLE TOOLS:
- create_session: Start a session on a preset or a freshly generated level
- game_state: Board, block position and orientation
- move / bulk_move: Roll the block - requires intent explanation
- reset_game: Put the block back on the start cell
- hint: Shortest continuation from the current position
- solution: Shortest solution from the level start
- move_history: Past moves
- generate_level / check_level: Level tooling without a session
- get_session, list_sessions, list_configs, describe_cell, game_instructions

NOTE: The 'intent' parameter on move/bulk_move serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

func sessionIDProp() map[string]interface{} {
	return prop("string", "Session ID")
}

func generateProps() map[string]interface{} {
	return map[string]interface{}{
		"width":              prop("integer", fmt.Sprintf("Board width (default %d)", generator.DefaultWidth)),
		"depth":              prop("integer", fmt.Sprintf("Board depth (default %d)", generator.DefaultDepth)),
		"hole_probability":   prop("number", fmt.Sprintf("Chance each cell becomes a hole, 0..1 (default %.2f)", generator.DefaultHoleProbability)),
		"min_passable_cells": prop("integer", fmt.Sprintf("Minimum non-hole cells (default %d)", generator.DefaultMinPassableCells)),
		"max_attempts":       prop("integer", fmt.Sprintf("Boards to try before giving up (default %d)", generator.DefaultMaxAttempts)),
		"seed":               prop("integer", "Random seed; 0 or omitted picks one and reports it"),
		"start_x":            prop("integer", "Start column (default 0)"),
		"start_z":            prop("integer", "Start row (default 0)"),
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	createProps := generateProps()
	createProps["config_id"] = prop("string", "Preset to play (optional, see list_configs)")
	createProps["generated"] = prop("boolean", "Play a freshly generated level instead of a preset")
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session on a preset or a generated level",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: createProps,
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Roll the block one step",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        directionEnum,
					"description": "Direction to roll",
				},
				"intent": prop("string", "Brief explanation of the intent behind this roll"),
				"reset":  prop("boolean", "Reset before rolling"),
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Roll the block several times; stops on a fall, a win or an invalid direction (max %d)", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": directionEnum,
					},
					"description": "Directions in order",
				},
				"intent": prop("string", "Brief explanation of the intent behind this sequence"),
				"reset":  prop("boolean", "Reset before rolling"),
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to initial state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hint",
		Description: "Shortest sequence of rolls from the block's current position to the goal",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleHint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solution",
		Description: "Shortest solution of the session's level from its start cell",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleSolution)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp(),
				"page":       prop("integer", "Page number"),
				"limit":      prop("integer", "Items per page"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	// Levels
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "generate_level",
		Description: "Generate a random solvable level without starting a session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: generateProps(),
		},
	}, c.handleGenerateLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "check_level",
		Description: "Check whether a layout is solvable from a start cell and return the shortest path",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"layout": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Rows of N (normal), H (hole), G (goal); row index is z, column is x",
				},
				"start_x": prop("integer", "Start column (default 0)"),
				"start_z": prop("integer", "Start row (default 0)"),
			},
			Required: []string{"layout"},
		},
	}, c.handleCheckLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available level presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get game instructions and rolling rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one board cell: its kind and whether the block rests on it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp(),
				"x":          prop("integer", "Column (0-based)"),
				"z":          prop("integer", "Row (0-based)"),
			},
			Required: []string{"session_id", "x", "z"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	id := strings.TrimSpace(cast.ToString(args["session_id"]))
	if id == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(id) + suffix, nil
}

// optionsFromArgs reads generator options, leaving unset values at their defaults.
func optionsFromArgs(args map[string]interface{}) *generator.Options {
	opts := generator.DefaultOptions()
	if v, ok := args["width"]; ok {
		opts.Width = cast.ToInt(v)
	}
	if v, ok := args["depth"]; ok {
		opts.Depth = cast.ToInt(v)
	}
	if v, ok := args["hole_probability"]; ok {
		opts.HoleProbability = cast.ToFloat64(v)
	}
	if v, ok := args["min_passable_cells"]; ok {
		opts.MinPassableCells = cast.ToInt(v)
	}
	if v, ok := args["max_attempts"]; ok {
		opts.MaxAttempts = cast.ToInt(v)
	}
	if v, ok := args["seed"]; ok {
		opts.Seed = cast.ToInt64(v)
	}
	opts.Start = engine.Coord{X: cast.ToInt(args["start_x"]), Z: cast.ToInt(args["start_z"])}
	return opts
}

// movesFromArg accepts a JSON array or a comma/space separated string.
func movesFromArg(v interface{}) []string {
	if s, ok := v.(string); ok {
		return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	}
	return cast.ToStringSlice(v)
}

func hasGenerateArgs(args map[string]interface{}) bool {
	for key := range generateProps() {
		if _, ok := args[key]; ok {
			return true
		}
	}
	return false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]interface{}{}
	if configID := cast.ToString(args["config_id"]); configID != "" {
		body["config_id"] = configID
	} else if cast.ToBool(args["generated"]) || hasGenerateArgs(args) {
		body["generate"] = optionsFromArgs(args)
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.Level != nil && session.Level.Seed != 0 {
		fmt.Fprintf(&b, "Seed: %d\n", session.Level.Seed)
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(session.GameState))
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "playing"
		if s.GameState != nil {
			status = statusLabel(s.GameState)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s, %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request.GetArguments(), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request.GetArguments(), "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	path, err := sessionPath(args, "/move")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	direction := cast.ToString(args["direction"])
	if intent := cast.ToString(args["intent"]); intent != "" {
		log.WithFields(logrus.Fields{"dir": direction, "intent": intent}).Debug("move")
	}

	body := map[string]interface{}{
		"direction": direction,
		"reset":     cast.ToBool(args["reset"]),
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	path, err := sessionPath(args, "/bulk-move")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	moves := movesFromArg(args["moves"])
	if len(moves) == 0 {
		return mcp.NewToolResultError("moves must list at least one direction"), nil
	}
	if intent := cast.ToString(args["intent"]); intent != "" {
		log.WithFields(logrus.Fields{"moves": len(moves), "intent": intent}).Debug("bulk move")
	}

	body := map[string]interface{}{
		"moves": moves,
		"reset": cast.ToBool(args["reset"]),
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request.GetArguments(), "/reset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request.GetArguments(), "/hint")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var hint service.HintResult
	if err := c.apiCall(ctx, "GET", path, nil, &hint); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !hint.Solvable {
		return mcp.NewToolResultText(fmt.Sprintf("No way to the goal from %s. Reset the game to try again.", hint.From)), nil
	}
	if hint.Moves == 0 {
		return mcp.NewToolResultText("The block already stands on the goal."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Next roll: %s\nShortest path from %s (%d moves): %s\n",
		hint.Next, hint.From, hint.Moves, strings.Join(hint.Path, ","))), nil
}

func (c *Client) handleSolution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request.GetArguments(), "/solution")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var res service.CheckResult
	if err := c.apiCall(ctx, "GET", path, nil, &res); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCheckResult(&res)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	path, err := sessionPath(args, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	if page := cast.ToInt(args["page"]); page > 0 {
		query.Set("page", fmt.Sprint(page))
	}
	if limit := cast.ToInt(args["limit"]); limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	historyPath := path + "/history"
	if len(query) > 0 {
		historyPath += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", historyPath, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatHistory(&history)

	// Also show the current segment from live state
	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &session); err == nil {
		result += "\n" + formatCurrentSegment(session.GameState)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGenerateLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := optionsFromArgs(request.GetArguments())

	var level service.LevelInfo
	if err := c.apiCall(ctx, "POST", "/api/levels/generate", opts, &level); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generated %dx%d level (seed %d, %d attempts)\n", level.Width, level.Depth, level.Seed, level.Attempts)
	fmt.Fprintf(&b, "Start: %s  Goal: %s  Holes: %d\n\n", level.Start, level.Goal, level.Stats.Holes)
	for _, row := range level.Layout {
		b.WriteString(row)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nShortest solution (%d moves): %s\n", level.Moves, strings.Join(level.Solution, ","))
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleCheckLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req := service.CheckRequest{
		Layout: cast.ToStringSlice(args["layout"]),
		Start: engine.Coord{
			X: cast.ToInt(args["start_x"]),
			Z: cast.ToInt(args["start_z"]),
		},
	}
	if len(req.Layout) == 0 {
		return mcp.NewToolResultError("layout must have at least one row"), nil
	}

	var res service.CheckResult
	if err := c.apiCall(ctx, "POST", "/api/levels/check", req, &res); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCheckResult(&res)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		kind := "fixed"
		if cfg.Generated {
			kind = "generated on session start"
		}
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Board: %dx%d, %s\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.Width, cfg.Depth, kind)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	path, err := sessionPath(args, "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	at := engine.Coord{X: cast.ToInt(args["x"]), Z: cast.ToInt(args["z"])}
	return mcp.NewToolResultText(describeCell(&state, at)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

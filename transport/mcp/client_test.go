package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/mcp-training/sokoban/api"
	"github.com/wricardo/mcp-training/sokoban/game/config"
	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/game/service"
	"github.com/wricardo/mcp-training/sokoban/game/session"
)

// newLiveClient serves the real REST API over the embedded tutorial pack
func newLiveClient(t *testing.T) *Client {
	t.Helper()
	packs, err := config.NewManager("")
	if err != nil {
		t.Fatalf("Failed to create pack manager: %v", err)
	}
	svc := service.NewGameService(session.NewManager(), packs)
	server := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(server.Close)
	return NewClient(server.URL)
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}

	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("Tool handler returned error: %v", err)
	}
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result content")
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text, result.IsError
}

func createSession(t *testing.T, c *Client) string {
	t.Helper()
	var session service.SessionInfo
	if err := c.apiCall(context.Background(), "POST", "/api/sessions", map[string]string{}, &session); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return session.ID
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080/"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "test-session", "moves": 4})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]any
	if err := client.apiCall(context.Background(), "GET", "/api", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response["id"] != "test-session" {
		t.Errorf("Expected id test-session, got %v", response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"plain body", "Internal Server Error", "API error: 500"},
		{"json error", `{"error":"session not found","code":404}`, "session not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
			if err == nil || !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("Expected error containing %q, got %v", tt.expected, err)
			}
		})
	}
}

func TestClient_createSession(t *testing.T) {
	client := newLiveClient(t)

	text, isErr := callTool(t, client.handleCreateSession, map[string]any{})
	if isErr {
		t.Fatalf("create_session failed: %s", text)
	}
	for _, want := range []string{"Created session:", "Pack: Tutorial (default)", "Level 1/4", "#@$.#"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}

	text, isErr = callTool(t, client.handleCreateSession, map[string]any{"pack_id": "nope"})
	if !isErr || !strings.Contains(text, "level pack not found") {
		t.Errorf("Expected pack error, got %v: %s", isErr, text)
	}
}

func TestClient_PlayThroughLevels(t *testing.T) {
	client := newLiveClient(t)
	id := createSession(t, client)

	// Level 1: a single push right
	text, isErr := callTool(t, client.handleMove, map[string]any{"session_id": id, "direction": "right", "intent": "push the box onto the goal"})
	if isErr {
		t.Fatalf("move failed: %s", text)
	}
	if !strings.Contains(text, "✓ Move successful") || !strings.Contains(text, "LEVEL SOLVED") {
		t.Errorf("Expected solved level, got: %s", text)
	}

	text, isErr = callTool(t, client.handleNextLevel, map[string]any{"session_id": id})
	if isErr || !strings.Contains(text, "Level 2/4") {
		t.Fatalf("Expected level 2, got %v: %s", isErr, text)
	}

	// Level 2: blocked first, then solved via LURD
	text, _ = callTool(t, client.handleMove, map[string]any{"session_id": id, "direction": "up"})
	if !strings.Contains(text, "✗ Move failed") {
		t.Errorf("Expected blocked move, got: %s", text)
	}

	text, isErr = callTool(t, client.handleBulkMove, map[string]any{"session_id": id, "lurd": "rrl"})
	if isErr {
		t.Fatalf("bulk_move failed: %s", text)
	}
	if !strings.Contains(text, "Executed 2/3 moves") || !strings.Contains(text, "Stopped [solved]") {
		t.Errorf("Expected stop after solve, got: %s", text)
	}

	// Jump to level 3 and ask for a hint
	text, isErr = callTool(t, client.handleSelectLevel, map[string]any{"session_id": id, "level": float64(3)})
	if isErr || !strings.Contains(text, "Level 3/4") {
		t.Fatalf("Expected level 3, got %v: %s", isErr, text)
	}

	text, isErr = callTool(t, client.handleHint, map[string]any{"session_id": id})
	if isErr || !strings.Contains(text, "Next move:") {
		t.Fatalf("Expected hint, got %v: %s", isErr, text)
	}

	text, _ = callTool(t, client.handleSelectLevel, map[string]any{"session_id": id, "level": float64(9)})
	if !strings.Contains(text, "level index out of range") {
		t.Errorf("Expected out of range error, got: %s", text)
	}

	// Reset leaves counters at zero
	text, isErr = callTool(t, client.handleReset, map[string]any{"session_id": id})
	if isErr || !strings.Contains(text, "Moves: 0") {
		t.Errorf("Expected reset state, got %v: %s", isErr, text)
	}
}

func TestClient_SessionTools(t *testing.T) {
	client := newLiveClient(t)
	id := createSession(t, client)

	text, _ := callTool(t, client.handleListSessions, map[string]any{})
	if !strings.Contains(text, "Active Sessions (1)") || !strings.Contains(text, id) {
		t.Errorf("Expected session in list, got: %s", text)
	}

	text, isErr := callTool(t, client.handleGetSession, map[string]any{"session_id": id})
	if isErr || !strings.Contains(text, "Session: "+id) {
		t.Errorf("Expected session details, got %v: %s", isErr, text)
	}

	text, isErr = callTool(t, client.handleGameState, map[string]any{"session_id": "zzzz"})
	if !isErr || !strings.Contains(text, "session not found") {
		t.Errorf("Expected not found error, got %v: %s", isErr, text)
	}

	text, isErr = callTool(t, client.handleGameState, map[string]any{})
	if !isErr || !strings.Contains(text, "session_id is required") {
		t.Errorf("Expected missing session error, got %v: %s", isErr, text)
	}

	text, _ = callTool(t, client.handleListPacks, map[string]any{})
	if !strings.Contains(text, "pack_id: default") || !strings.Contains(text, "Levels: 4") {
		t.Errorf("Expected default pack listed, got: %s", text)
	}
}

func TestClient_handleDescribeTile(t *testing.T) {
	client := newLiveClient(t)
	id := createSession(t, client)

	tests := []struct {
		x, y     int
		expected string
	}{
		{0, 0, "wall"},
		{1, 1, "pusher"},
		{2, 1, "box"},
		{3, 1, "goal"},
	}

	for _, tt := range tests {
		text, isErr := callTool(t, client.handleDescribeTile, map[string]any{"session_id": id, "x": float64(tt.x), "y": float64(tt.y)})
		if isErr || !strings.Contains(text, ": "+tt.expected+"\n") {
			t.Errorf("describe_tile(%d,%d): expected %s, got %v: %s", tt.x, tt.y, tt.expected, isErr, text)
		}
	}

	text, isErr := callTool(t, client.handleDescribeTile, map[string]any{"session_id": id, "x": float64(10), "y": float64(0)})
	if !isErr || !strings.Contains(text, "out of bounds") {
		t.Errorf("Expected out of bounds error, got %v: %s", isErr, text)
	}
}

func TestFormatGameState(t *testing.T) {
	gameState := &engine.GameState{
		Rows:       []string{"#####", "#@$.#", "#####"},
		Goals:      []engine.Position{{X: 3, Y: 1}},
		Boxes:      []engine.Position{{X: 2, Y: 1}},
		Pusher:     engine.Position{X: 1, Y: 1},
		Width:      5,
		Height:     3,
		LevelCount: 2,
		Message:    "Level 1 of 2. Push every box onto a goal.",
	}

	result := formatGameState(gameState)

	expectedFields := []string{
		"Level 1/2",
		"Pusher: (1,1)",
		"Boxes on goals: 0/1",
		"   01234\n",
		" 1 #@$.#\n",
		"Push every box onto a goal.",
	}

	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}

	if strings.Contains(result, "SOLVED") {
		t.Error("Unsolved level should not be reported as solved")
	}
}

func TestFormatGameState_Solved(t *testing.T) {
	gameState := &engine.GameState{
		Rows:       []string{"####", "#@*#", "####"},
		Goals:      []engine.Position{{X: 2, Y: 1}},
		Boxes:      []engine.Position{{X: 2, Y: 1}},
		Width:      4,
		LevelCount: 1,
		Solved:     true,
	}

	result := formatGameState(gameState)

	if !strings.Contains(result, "🎉 LEVEL SOLVED!") || !strings.Contains(result, "Boxes on goals: 1/1") {
		t.Errorf("Expected solved banner, got: %s", result)
	}
	if strings.Contains(result, "next_level") {
		t.Errorf("Last level should not suggest next_level, got: %s", result)
	}
}

func TestFormatGameState_Nil(t *testing.T) {
	if got := formatGameState(nil); got != "No game state available" {
		t.Errorf("Unexpected output for nil state: %s", got)
	}
}

func TestFormatMoveResult_Failed(t *testing.T) {
	moveResult := &service.MoveResult{
		Success: false,
		Message: "Can't move left: wall at (0,1)",
		Step: engine.MoveOutcome{
			Direction: "left",
			From:      engine.Position{X: 1, Y: 1},
			To:        engine.Position{X: 1, Y: 1},
		},
		GameState: &engine.GameState{Pusher: engine.Position{X: 1, Y: 1}},
	}

	result := formatMoveResult(moveResult)

	for _, want := range []string{"✗ Move failed", "left (1,1)→(1,1) walk ✗", "wall at (0,1)"} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in result, got: %s", want, result)
		}
	}
}

func TestFormatHint(t *testing.T) {
	tests := []struct {
		hint     service.HintResult
		expected string
	}{
		{service.HintResult{Solvable: false, Message: "No solution from here."}, "✗ No solution from here."},
		{service.HintResult{Solvable: true, Message: "Level already solved"}, "✓ Level already solved"},
		{service.HintResult{Solvable: true, Next: "up", Solution: "ul", Length: 2, Message: "Solvable in 2 moves"}, "Solution (2 moves, LURD): ul"},
	}

	for _, tt := range tests {
		if got := formatHint(&tt.hint); !strings.Contains(got, tt.expected) {
			t.Errorf("formatHint(%+v) = %q, expected to contain %q", tt.hint, got, tt.expected)
		}
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	text, _ := callTool(t, client.handleGameInstructions, map[string]any{})

	expectedContent := []string{
		"Sokoban - Complete Instructions",
		"GAME OBJECTIVE:",
		"RULES:",
		"BOARD LEGEND:",
		"SOLVING TIPS:",
		"SESSION MANAGEMENT:",
	}

	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions, got: %s", content, text)
		}
	}
}

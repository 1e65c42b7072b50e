// Package mcptools exposes the game controller to agents as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/go-engine/internal/char"
	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
	"github.com/robalobadob/wordle/apps/go-engine/internal/render"
	"github.com/robalobadob/wordle/apps/go-engine/internal/store"
)

// Tokens issues and checks per-game access tokens.
type Tokens interface {
	Sign(gameID string) (string, time.Time, error)
	Verify(raw, gameID string) error
}

// Tools wires the MCP server to the session store. Watchers are notified by
// the store itself.
type Tools struct {
	store   store.Store
	newGame game.Factory
	tokens  Tokens
	srv     *server.MCPServer
}

// New builds the MCP server and registers all tools.
func New(st store.Store, newGame game.Factory, tokens Tokens, version string) *Tools {
	t := &Tools{store: st, newGame: newGame, tokens: tokens}
	t.srv = server.NewMCPServer(
		"Wordle",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Wordle - MCP Interface

Guess the hidden word. After a row is confirmed every letter is marked:
  [A] right letter, right place
  (A) letter occurs elsewhere in the word
  .A. letter does not occur

TOOLS:
- new_game: start a game, returns its game_id and token
- type_word: type a whole word and confirm it
- input: a single key (CHAR with value, DEL or ENTER)
- game_state: current grid, keyboard and status

Every other tool needs the game_id and the token returned by new_game.
Words must be in the dictionary (German nouns by default).`),
	)
	t.register()
	return t
}

// Server returns the underlying MCP server, e.g. for server.ServeStdio.
func (t *Tools) Server() *server.MCPServer { return t.srv }

func (t *Tools) register() {
	t.srv.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"answer": map[string]interface{}{
					"type":        "string",
					"description": "Fixed solution (optional)",
				},
				"attempts": map[string]interface{}{
					"type":        "number",
					"description": fmt.Sprintf("Number of rows, 1-%d (optional)", game.MaxAttempts),
				},
				"daily": map[string]interface{}{
					"type":        "boolean",
					"description": "Play the word of the day",
				},
			},
		},
	}, t.handleNewGame)

	t.srv.AddTool(mcp.Tool{
		Name:        "type_word",
		Description: "Type every letter of a word into the current row and confirm it. Nothing changes if any step fails.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Token returned by new_game",
				},
				"word": map[string]interface{}{
					"type":        "string",
					"description": "The guess",
				},
			},
			Required: []string{"game_id", "token", "word"},
		},
	}, t.handleTypeWord)

	t.srv.AddTool(mcp.Tool{
		Name:        "input",
		Description: "Send a single key",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Token returned by new_game",
				},
				"type": map[string]interface{}{
					"type":        "string",
					"enum":        []string{string(game.InputChar), string(game.InputDelete), string(game.InputConfirm)},
					"description": "Key kind",
				},
				"value": map[string]interface{}{
					"type":        "string",
					"description": "The letter, for CHAR",
				},
			},
			Required: []string{"game_id", "token", "type"},
		},
	}, t.handleInput)

	t.srv.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current grid, keyboard and status",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Token returned by new_game",
				},
			},
			Required: []string{"game_id", "token"},
		},
	}, t.handleGameState)
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func (t *Tools) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	setup := game.Setup{}
	setup.Answer, _ = args["answer"].(string)
	setup.Daily, _ = args["daily"].(bool)
	if n, ok := args["attempts"].(float64); ok {
		setup.Attempts = int(n)
	}

	g, err := t.newGame(setup)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s, err := t.store.Create(ctx, g)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tok, _, err := t.tokens.Sign(s.ID)
	if err != nil {
		log.Error().Err(err).Str("gameId", s.ID).Msg("mcp: sign token")
		return mcp.NewToolResultError("could not issue a token"), nil
	}
	log.Info().Str("gameId", s.ID).Bool("daily", setup.Daily).Msg("mcp: game created")

	return mcp.NewToolResultText(fmt.Sprintf("Created game: %s\nToken: %s\n\n%s", s.ID, tok, describe(s))), nil
}

// authorize returns the game_id of a request whose token grants access to it.
func (t *Tools) authorize(args map[string]interface{}) (string, error) {
	id, _ := args["game_id"].(string)
	raw, _ := args["token"].(string)
	if err := t.tokens.Verify(raw, id); err != nil {
		return "", fmt.Errorf("unauthorized: %w", err)
	}
	return id, nil
}

func (t *Tools) handleTypeWord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id, err := t.authorize(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	word, _ := args["word"].(string)
	keys := char.Keys(word)

	return t.apply(ctx, id, func(g *game.Game) (*game.Game, error) {
		var err error
		for _, k := range keys {
			if g, err = g.HandleInput(game.CharInput(k)); err != nil {
				return nil, err
			}
		}
		return g.HandleInput(game.ConfirmInput())
	})
}

func (t *Tools) handleInput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id, err := t.authorize(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind, _ := args["type"].(string)
	value, _ := args["value"].(string)

	in := game.Input{Type: game.InputType(strings.ToUpper(kind)), Value: value}
	return t.apply(ctx, id, func(g *game.Game) (*game.Game, error) {
		return g.HandleInput(in)
	})
}

func (t *Tools) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.authorize(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s, err := t.store.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(describe(s)), nil
}

func (t *Tools) apply(ctx context.Context, id string, fn store.Transition) (*mcp.CallToolResult, error) {
	s, err := t.store.Apply(ctx, id, fn)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error() + "\n\n" + describe(s)), nil
	}
	return mcp.NewToolResultText(describe(s)), nil
}

// describe renders a session as plain text for agents.
func describe(s store.Session) string {
	r := render.New(io.Discard, false)
	return fmt.Sprintf("%s\n%s\n%s", r.Grid(s.Game.Grid()), r.Keyboard(s.Game), r.Status(s.Game))
}

// ServeHTTP accepts one JSON-RPC message per POST and writes the reply.
func (t *Tools) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
		return
	}

	reply := t.srv.HandleMessage(r.Context(), body)
	if reply == nil {
		// Notifications have no response.
		w.WriteHeader(http.StatusAccepted)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		log.Error().Err(err).Msg("mcp: encode reply")
	}
}

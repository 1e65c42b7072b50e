package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
	"github.com/robalobadob/wordle/apps/go-engine/internal/gametoken"
	"github.com/robalobadob/wordle/apps/go-engine/internal/httpserver"
	"github.com/robalobadob/wordle/apps/go-engine/internal/hub"
	"github.com/robalobadob/wordle/apps/go-engine/internal/mcptools"
	"github.com/robalobadob/wordle/apps/go-engine/internal/store"
	"github.com/robalobadob/wordle/apps/go-engine/internal/words"
)

type created struct {
	GameID string     `json:"gameId"`
	Token  string     `json:"token"`
	Date   string     `json:"date"`
	Game   store.View `json:"game"`
}

type failure struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Game    *store.View `json:"game"`
}

var testNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

// newServer wires a server the way main does. h may be nil.
func newServer(t *testing.T, h *hub.Hub) *httpserver.Server {
	t.Helper()

	var (
		opts    []store.Option
		watcher httpserver.Watcher
	)
	if h != nil {
		opts = append(opts, store.WithCommitHook(h.CommitHook()))
		watcher = h
	}
	st := store.NewMemoryStore(opts...)

	list := words.NewList([]string{"tisch", "stuhl", "stück", "apfel"})
	factory := game.NewFactory(game.FactoryConfig{
		Lookup: list.Lookup(),
		Random: words.Fixed("tisch"),
		Daily:  words.Fixed("apfel"),
	})
	now := func() time.Time { return testNow }
	tokens := gametoken.New("test-secret", now)

	return httpserver.New(httpserver.Deps{
		Store:   st,
		NewGame: factory,
		Watcher: watcher,
		MCP:     mcptools.New(st, factory, tokens, "test"),
		Words:   list,
		Tokens:  tokens,
		Now:     now,
	})
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func newGame(t *testing.T, h http.Handler, setup any) created {
	t.Helper()

	rec := do(t, h, http.MethodPost, "/game/new", "", setup)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[created](t, rec)
}

func press(t *testing.T, h http.Handler, g created, keys ...string) *httptest.ResponseRecorder {
	t.Helper()

	var rec *httptest.ResponseRecorder
	for _, k := range keys {
		rec = do(t, h, http.MethodPost, "/game/"+g.GameID+"/input", g.Token, map[string]string{"key": k})
	}
	return rec
}

func Test_Health_Reports_OK(t *testing.T) {
	t.Parallel()

	rec := do(t, newServer(t, nil).Router(), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func Test_NewGame_Returns_Token_And_Hidden_Solution(t *testing.T) {
	t.Parallel()

	h := newServer(t, nil).Router()
	rec := do(t, h, http.MethodPost, "/game/new", "", map[string]int{"attempts": 4})
	require.Equal(t, http.StatusCreated, rec.Code)

	g := decode[created](t, rec)
	assert.NotEmpty(t, g.GameID)
	assert.NotEmpty(t, g.Token)
	assert.Equal(t, g.GameID, g.Game.GameID)
	assert.Equal(t, 4, g.Game.Game.Rows)
	assert.Equal(t, 5, g.Game.Game.Columns)
	assert.Equal(t, game.StateInProgress, g.Game.Game.State)
	assert.Empty(t, g.Game.Game.Solution)
	assert.True(t, g.Game.CanAcceptInput)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, g.Token, cookies[0].Value)
}

func Test_NewGame_Rejects_Invalid_Setup(t *testing.T) {
	t.Parallel()

	h := newServer(t, nil).Router()

	rec := do(t, h, http.MethodPost, "/game/new", "", map[string]int{"attempts": 99})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_setup", decode[failure](t, rec).Error)

	rec = do(t, h, http.MethodPost, "/game/new", "", map[string]string{"answer": "ab1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_setup", decode[failure](t, rec).Error)
}

func Test_Game_Routes_Require_Matching_Token(t *testing.T) {
	t.Parallel()

	h := newServer(t, nil).Router()
	a := newGame(t, h, nil)
	b := newGame(t, h, nil)

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/game/"+a.GameID, "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/game/"+a.GameID, b.Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/game/"+a.GameID, "garbage", nil).Code)

	rec := do(t, h, http.MethodGet, "/game/"+a.GameID+"?token="+a.Token, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, a.GameID, decode[store.View](t, rec).GameID)
}

func Test_Delete_Ends_Session(t *testing.T) {
	t.Parallel()

	h := newServer(t, nil).Router()
	a := newGame(t, h, nil)
	b := newGame(t, h, nil)

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodDelete, "/game/"+a.GameID, b.Token, nil).Code)

	rec := do(t, h, http.MethodDelete, "/game/"+a.GameID, a.Token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/game/"+a.GameID, a.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[failure](t, rec).Error)

	rec = do(t, h, http.MethodDelete, "/game/"+a.GameID, a.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/game/"+b.GameID, b.Token, nil).Code)
}

type toolReply struct {
	Result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
}

func callTool(t *testing.T, h http.Handler, name string, args map[string]string) toolReply {
	t.Helper()

	rec := do(t, h, http.MethodPost, "/mcp", "", map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reply := decode[toolReply](t, rec)
	require.NotEmpty(t, reply.Result.Content, rec.Body.String())
	return reply
}

func Test_MCP_Tools_Require_Game_Token(t *testing.T) {
	t.Parallel()

	h := newServer(t, nil).Router()
	g := newGame(t, h, nil)
	other := newGame(t, h, nil)

	for name, token := range map[string]string{"none": "", "other game": other.Token, "garbage": "x.y.z"} {
		reply := callTool(t, h, "type_word", map[string]string{"game_id": g.GameID, "token": token, "word": "tisch"})
		assert.True(t, reply.Result.IsError, name)
		assert.Contains(t, reply.Result.Content[0].Text, "unauthorized", name)

		reply = callTool(t, h, "game_state", map[string]string{"game_id": g.GameID, "token": token})
		assert.True(t, reply.Result.IsError, name)
	}

	rec := do(t, h, http.MethodGet, "/game/"+g.GameID, g.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, game.StateInProgress, decode[store.View](t, rec).Game.State)

	reply := callTool(t, h, "type_word", map[string]string{"game_id": g.GameID, "token": g.Token, "word": "tisch"})
	require.False(t, reply.Result.IsError, reply.Result.Content[0].Text)
	assert.Contains(t, reply.Result.Content[0].Text, "Gewonnen!")

	rec = do(t, h, http.MethodGet, "/game/"+g.GameID, g.Token, nil)
	assert.Equal(t, game.StateWon, decode[store.View](t, rec).Game.State)
}

func Test_Input_Plays_A_Game_To_Victory(t *testing.T) {
	t.Parallel()

	h := newServer(t, nil).Router()
	g := newGame(t, h, nil)

	rec := press(t, h, g, "S", "T", "Ü", "C", "K", "ENTER")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	v := decode[store.View](t, rec)
	assert.Equal(t, 1, v.Game.CurrentRow)
	assert.Equal(t, game.TileAvailable, v.Game.Tiles[0][0].State)
	assert.Equal(t, game.TileMissing, v.Game.Tiles[0][2].State)
	assert.Equal(t, game.AvailabilityMissing, v.Keyboard["Ü"])

	rec = press(t, h, g, "t", "i", "s", "c", "h", "enter")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	v = decode[store.View](t, rec)
	assert.Equal(t, game.StateWon, v.Game.State)
	assert.Equal(t, "TISCH", v.Game.Solution)
	assert.False(t, v.CanAcceptInput)

	rec = press(t, h, g, "A")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "grid_done", decode[failure](t, rec).Error)
}

func Test_Input_Failures_Keep_State_And_Set_Message(t *testing.T) {
	t.Parallel()

	h := newServer(t, nil).Router()
	g := newGame(t, h, nil)

	cases := []struct {
		name string
		body map[string]string
		code int
		want string
	}{
		{"confirm empty row", map[string]string{"type": "ENTER"}, http.StatusUnprocessableEntity, "row_in_progress"},
		{"delete empty row", map[string]string{"type": "DEL"}, http.StatusUnprocessableEntity, "no_active_character"},
		{"invalid character", map[string]string{"type": "CHAR", "value": "?"}, http.StatusUnprocessableEntity, "invalid_character"},
		{"unknown type", map[string]string{"type": "JUMP"}, http.StatusBadRequest, "unknown_input"},
	}
	for _, tc := range cases {
		rec := do(t, h, http.MethodPost, "/game/"+g.GameID+"/input", g.Token, tc.body)
		require.Equal(t, tc.code, rec.Code, tc.name)

		f := decode[failure](t, rec)
		assert.Equal(t, tc.want, f.Error, tc.name)
		require.NotNil(t, f.Game, tc.name)
		assert.Equal(t, f.Message, f.Game.Message, tc.name)
		assert.Equal(t, 0, f.Game.Game.CurrentColumn, tc.name)
	}

	rec := press(t, h, g, "A")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[store.View](t, rec).Message)
}

func Test_Input_Rejects_Words_Outside_The_Dictionary(t *testing.T) {
	t.Parallel()

	h := newServer(t, nil).Router()
	g := newGame(t, h, nil)

	rec := press(t, h, g, "Q", "Q", "Q", "Q", "Q", "ENTER")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	f := decode[failure](t, rec)
	assert.Equal(t, "not_in_dictionary", f.Error)
	assert.Equal(t, "QQQQQ is not in dictionary", f.Message)
	assert.Equal(t, 0, f.Game.Game.CurrentRow)
	assert.True(t, f.Game.CanConfirm)
}

func Test_Keyboard_Reports_Availability(t *testing.T) {
	t.Parallel()

	h := newServer(t, nil).Router()
	g := newGame(t, h, nil)
	press(t, h, g, "s", "t", "u", "h", "l", "ENTER")

	rec := do(t, h, http.MethodGet, "/game/"+g.GameID+"/keyboard", g.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var kb struct {
		Keyboard       map[string]game.Availability `json:"keyboard"`
		CanAcceptInput bool                         `json:"canAcceptInput"`
		CanConfirm     bool                         `json:"canConfirm"`
		CanDelete      bool                         `json:"canDelete"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kb))
	assert.Equal(t, game.AvailabilityAvailable, kb.Keyboard["S"])
	assert.Equal(t, game.AvailabilityAvailable, kb.Keyboard["H"])
	assert.Equal(t, game.AvailabilityMissing, kb.Keyboard["U"])
	assert.Equal(t, game.AvailabilityUnknown, kb.Keyboard["Ä"])
	assert.True(t, kb.CanAcceptInput)
	assert.False(t, kb.CanConfirm)
	assert.False(t, kb.CanDelete)
}

func Test_Daily_Uses_Word_Of_The_Day(t *testing.T) {
	t.Parallel()

	h := newServer(t, nil).Router()

	rec := do(t, h, http.MethodGet, "/daily", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"date":"2026-10-17"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/daily/new", "", map[string]int{"attempts": 1})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	g := decode[created](t, rec)
	assert.Equal(t, "2026-10-17", g.Date)

	rec = press(t, h, g, "a", "p", "f", "e", "l", "ENTER")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, game.StateWon, decode[store.View](t, rec).Game.State)
}

func Test_Unknown_Route_Returns_JSON_404(t *testing.T) {
	t.Parallel()

	rec := do(t, newServer(t, nil).Router(), http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[failure](t, rec).Error)
}

func Test_Debug_Words_Counts_List(t *testing.T) {
	t.Parallel()

	rec := do(t, newServer(t, nil).Router(), http.MethodGet, "/debug/words", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"words":4,"sessions":0}`, rec.Body.String())
}

func Test_Watch_Streams_State_Updates(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := hub.New("")
	go h.Run(ctx)

	srv := httptest.NewServer(newServer(t, h).Router())
	t.Cleanup(srv.Close)

	g := newGame(t, srv.Config.Handler, nil)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/" + g.GameID + "/ws?token=" + g.Token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	read := func() store.View {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg struct {
			Event string     `json:"event"`
			Data  store.View `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, hub.EventStateUpdate, msg.Event)
		return msg.Data
	}

	assert.Equal(t, 0, read().Game.CurrentColumn)

	press(t, srv.Config.Handler, g, "T")
	v := read()
	assert.Equal(t, 1, v.Game.CurrentColumn)
	assert.Equal(t, "T", v.Game.Tiles[0][0].Value)
}

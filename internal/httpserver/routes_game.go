// internal/httpserver/routes_game.go
//
// Game endpoints:
//   - POST /game/new          → create a game, returns id, token and view
//   - GET  /game/{id}         → current view
//   - DELETE /game/{id}       → end the session, its token stops working
//   - POST /game/{id}/input   → one key (CHAR/DEL/ENTER), returns the new view
//   - GET  /game/{id}/keyboard → per-letter availability + affordances
//   - GET  /game/{id}/ws      → websocket stream of state_update events
//
// A rejected input leaves the game unchanged; the failure is reported with
// 4xx and stays visible as the session message until the next valid input.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/go-engine/internal/char"
	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
	"github.com/robalobadob/wordle/apps/go-engine/internal/store"
)

type newGameRes struct {
	GameID string     `json:"gameId"`
	Token  string     `json:"token"`
	Game   store.View `json:"game"`
}

// createGame builds a game from setup, stores it and issues its token.
func (s *Server) createGame(w http.ResponseWriter, r *http.Request, setup game.Setup) (newGameRes, bool) {
	g, err := s.newGame(setup)
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, err.Error())
		return newGameRes{}, false
	}
	sess, err := s.store.Create(r.Context(), g)
	if err != nil {
		log.Error().Err(err).Msg("create session")
		writeError(w, http.StatusInternalServerError, "save_failed", "")
		return newGameRes{}, false
	}
	tok, exp, err := s.tokens.Sign(sess.ID)
	if err != nil {
		log.Error().Err(err).Str("gameId", sess.ID).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed", "")
		return newGameRes{}, false
	}
	setGameCookie(w, tok, exp)

	log.Info().Str("gameId", sess.ID).Bool("daily", setup.Daily).Int("columns", g.Grid().Columns()).Msg("game created")
	return newGameRes{GameID: sess.ID, Token: tok, Game: sess.View()}, true
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var setup game.Setup
	if err := json.NewDecoder(r.Body).Decode(&setup); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	res, ok := s.createGame(w, r, setup)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// inputReq is either {type, value} or {key} with a keyboard label
// ("A", "DEL", "ENTER").
type inputReq struct {
	Type  game.InputType `json:"type"`
	Value string         `json:"value"`
	Key   string         `json:"key"`
}

func (req inputReq) input() game.Input {
	if req.Type == "" && req.Key != "" {
		return game.ParseInput(req.Key)
	}
	return game.Input{Type: game.InputType(strings.ToUpper(string(req.Type))), Value: req.Value}
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	in := req.input()
	id := chi.URLParam(r, "id")

	sess, err := s.store.Apply(r.Context(), id, func(g *game.Game) (*game.Game, error) {
		return g.HandleInput(in)
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}

	view := sess.View()
	if err != nil {
		status, code := classify(err)
		log.Debug().Err(err).Str("gameId", id).Str("input", string(in.Type)).Msg("input rejected")
		writeJSON(w, status, errorBody{Error: code, Message: err.Error(), Game: &view})
		return
	}
	if view.Game.State.Done() {
		log.Info().Str("gameId", id).Str("state", string(view.Game.State)).Int("rows", view.Game.CurrentRow).Msg("game finished")
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		status, code := classify(err)
		writeError(w, status, code, err.Error())
		return
	}
	log.Info().Str("gameId", id).Msg("game deleted")
	w.WriteHeader(http.StatusNoContent)
}

type keyboardRes struct {
	Keyboard       map[string]game.Availability `json:"keyboard"`
	CanAcceptInput bool                         `json:"canAcceptInput"`
	CanConfirm     bool                         `json:"canConfirm"`
	CanDelete      bool                         `json:"canDelete"`
}

func (s *Server) handleKeyboard(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, keyboardRes{
		Keyboard:       sess.Game.Keyboard(),
		CanAcceptInput: sess.Game.CanAcceptInput(),
		CanConfirm:     sess.Game.CanConfirm(),
		CanDelete:      sess.Game.CanDelete(),
	})
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Get(r.Context(), id); err != nil {
		status, code := classify(err)
		writeError(w, status, code, err.Error())
		return
	}
	// Upgrade writes its own headers.
	w.Header().Del("Content-Type")
	s.watcher.ServeWS(w, r, id)
	// Initial snapshot, ordered with concurrent inputs by the store lock.
	if err := s.store.Publish(r.Context(), id); err != nil {
		log.Debug().Err(err).Str("gameId", id).Msg("publish initial snapshot")
	}
}

// classify maps an error to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	var invalid *char.InvalidCharacterError
	var unknown *game.WordNotInDictionaryError
	switch {
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity, "invalid_character"
	case errors.As(err, &unknown):
		return http.StatusUnprocessableEntity, "not_in_dictionary"
	case errors.Is(err, game.ErrGridDone):
		return http.StatusUnprocessableEntity, "grid_done"
	case errors.Is(err, game.ErrRowDone):
		return http.StatusUnprocessableEntity, "row_done"
	case errors.Is(err, game.ErrRowInProgress):
		return http.StatusUnprocessableEntity, "row_in_progress"
	case errors.Is(err, game.ErrNoActiveCharacter):
		return http.StatusUnprocessableEntity, "no_active_character"
	case errors.Is(err, game.ErrUnknownInput):
		return http.StatusBadRequest, "unknown_input"
	case errors.Is(err, game.ErrEmptySolution),
		errors.Is(err, game.ErrInvalidSolution),
		errors.Is(err, game.ErrInvalidAttempts):
		return http.StatusBadRequest, "invalid_setup"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	}
	return http.StatusInternalServerError, "internal"
}

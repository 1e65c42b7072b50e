// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes two endpoints under /daily:
//   - GET  /daily     → today's date key
//   - POST /daily/new → start a game on today's word
//
// Everyone gets the same word on the same UTC day; the word is chosen from the
// word list by a keyed hash of the date (see internal/daily). Results are not
// recorded.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordle/apps/go-engine/internal/daily"
	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Get("/", s.handleDailyInfo)
		r.Post("/new", s.handleDailyNew)
	})
}

type dailyInfoRes struct {
	Date string `json:"date"`
}

func (s *Server) handleDailyInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dailyInfoRes{Date: daily.DateKey(s.now())})
}

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	newGameRes
	Date string `json:"date"`
}

// dailyNewReq only lets the client pick the number of attempts; the answer is
// always today's word.
type dailyNewReq struct {
	Attempts int `json:"attempts,omitempty"`
}

func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	var req dailyNewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	res, ok := s.createGame(w, r, game.Setup{Daily: true, Attempts: req.Attempts})
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, dailyNewRes{newGameRes: res, Date: daily.DateKey(s.now())})
}

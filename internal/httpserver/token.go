// internal/httpserver/token.go
//
// Per-game access tokens on the HTTP surface.
//
// POST /game/new hands out a token for the new game (see internal/gametoken).
// Every /game/{id}/* route requires a token for that game, read from (in order):
//   - Authorization: Bearer <token>
//   - the game cookie
//   - the ?token= query parameter (websocket clients cannot set headers)

package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

const cookieName = "wordle_game"

// setGameCookie stores the token of the most recently created game.
func setGameCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

// tokenFromRequest extracts a token from the Authorization header, the game
// cookie or the token query parameter.
func tokenFromRequest(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("token")
}

// requireGame rejects requests whose token does not grant access to the
// {id} URL parameter.
func (s *Server) requireGame(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.tokens.Verify(tokenFromRequest(r), chi.URLParam(r, "id")); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// internal/httpserver/server.go
//
// HTTP server wiring for the Wordle engine.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/debug/words", "/mcp".
//   - Game endpoints: POST /game/new, and token-gated /game/{id}/*.
//   - State changes reach websocket watchers through the store's commit hook,
//     never from the handlers.
//   - Daily endpoints: mounted under /daily.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so the game cookie works).
//   - The websocket route is registered outside the timeout group; watchers
//     stay connected for the whole game.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
	"github.com/robalobadob/wordle/apps/go-engine/internal/gametoken"
	"github.com/robalobadob/wordle/apps/go-engine/internal/store"
	"github.com/robalobadob/wordle/apps/go-engine/internal/words"
)

// Watcher upgrades websocket clients that follow a game.
type Watcher interface {
	ServeWS(w http.ResponseWriter, r *http.Request, gameID string)
}

// Deps are the collaborators of a Server. Watcher, MCP and Dict are optional.
type Deps struct {
	Store   store.Store
	NewGame game.Factory
	Watcher Watcher
	MCP     http.Handler
	Words   *words.List
	Dict    *words.SQLDictionary
	Tokens  *gametoken.Issuer
	Origin  string
	Now     func() time.Time
}

// Server bundles router, session store and game factory.
type Server struct {
	r       *chi.Mux
	store   store.Store
	newGame game.Factory
	watcher Watcher
	words   *words.List
	dict    *words.SQLDictionary
	tokens  *gametoken.Issuer
	origin  string
	now     func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	if d.Now == nil {
		d.Now = time.Now
	}
	s := &Server{
		r:       chi.NewRouter(),
		store:   d.Store,
		newGame: d.NewGame,
		watcher: d.Watcher,
		words:   d.Words,
		dict:    d.Dict,
		tokens:  d.Tokens,
		origin:  d.Origin,
		now:     d.Now,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(jsonContentType) // default JSON responses
	s.r.Use(s.cors)          // credentials-friendly CORS

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordle-go","endpoints":["/health","POST /game/new","/game/{id}","POST /game/{id}/input","DELETE /game/{id}","/game/{id}/keyboard","/game/{id}/ws","/daily","POST /mcp"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time

		r.Post("/game/new", s.handleNewGame)
		s.mountDaily(r)

		r.Get("/debug/words", s.handleDebugWords)
		if d.MCP != nil {
			r.Method(http.MethodPost, "/mcp", d.MCP)
		}
	})

	s.r.Route("/game/{id}", func(r chi.Router) {
		r.Use(s.requireGame)
		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(10 * time.Second))
			r.Get("/", s.handleGetGame)
			r.Delete("/", s.handleDeleteGame)
			r.Post("/input", s.handleInput)
			r.Get("/keyboard", s.handleKeyboard)
		})
		if s.watcher != nil {
			r.Get("/ws", s.handleWatch)
		}
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.origin
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one zerolog line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("http")
	})
}

// ------------------------------ helpers ------------------------------------

type errorBody struct {
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Game    *store.View `json:"game,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

func (s *Server) handleDebugWords(w http.ResponseWriter, r *http.Request) {
	out := map[string]int{"sessions": s.store.Len()}
	if s.words != nil {
		out["words"] = s.words.Len()
	}
	if s.dict != nil {
		n, err := s.dict.Count(r.Context())
		if err != nil {
			log.Warn().Err(err).Msg("count dictionary")
		} else {
			out["dictionary"] = n
		}
	}
	writeJSON(w, http.StatusOK, out)
}

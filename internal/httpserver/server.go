// internal/httpserver/server.go
//
// HTTP server wiring for the hangman backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/leaderboard", "/debug/words".
//   - Round endpoints (optional auth): mounted under /game (routes_game.go).
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine (routes_auth.go).
//   - Error -> status mapping for the round engine and stores.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token is present;
//     routes can still run for guests.

package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/auth"
	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/scores"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Sessions store.Store
	Scores   *scores.Store
	Auth     *auth.Service
	Cookies  auth.Cookies
	Selector *words.Selector
	Rand     game.Rand // hint panels

	ClientOrigin      string
	AuthRatePerMinute int
	LeaderboardLimit  int
}

// Server bundles router and dependencies.
type Server struct {
	r     *chi.Mux
	d     Deps
	locks *roundLocks
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	if d.ClientOrigin == "" {
		d.ClientOrigin = "http://localhost:5173"
	}
	s := &Server{r: chi.NewRouter(), d: d, locks: newRoundLocks()}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(cors(d.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "hangman-go",
			"endpoints": []string{
				"/health", "POST /game/new", "GET /game/{id}", "POST /game/{id}/guess",
				"POST /game/{id}/hint", "POST /game/{id}/hint/resolve", "/auth/*", "/leaderboard",
			},
		})
	})
	s.r.Get("/health", s.handleHealth)
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{
			"words":    d.Selector.Corpus().Len(),
			"bandSize": d.Selector.BandSize(),
		})
	})

	s.mountGame(s.r.With(auth.OptionalAuth(d.Auth, d.Cookies)))
	s.mountAuthRoutes()
	s.r.Get("/leaderboard", s.handleLeaderboard)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.r.ServeHTTP(w, r) }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.d.Scores.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("health: db ping")
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.d.Scores.Leaderboard(r.Context(), s.d.LeaderboardLimit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs one line per request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("reqId", chimw.GetReqID(r.Context())).
			Msg("request")
	})
}

// ------------------------------ helpers ------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// decodeBody decodes an optional JSON body. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// statusFor maps domain errors to HTTP status codes and stable error codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrInvalidLetter):
		return http.StatusBadRequest, "invalid_letter"
	case errors.Is(err, game.ErrAlreadyGuessed):
		return http.StatusBadRequest, "already_guessed"
	case errors.Is(err, game.ErrInvalidChoice):
		return http.StatusBadRequest, "invalid_choice"
	case errors.Is(err, game.ErrHintPending):
		return http.StatusBadRequest, "hint_pending"
	case errors.Is(err, game.ErrNoPendingHint):
		return http.StatusBadRequest, "no_pending_hint"
	case errors.Is(err, game.ErrRoundOver):
		return http.StatusConflict, "round_over"
	case errors.Is(err, game.ErrHintsExhausted):
		return http.StatusConflict, "hints_exhausted"
	case errors.Is(err, game.ErrNoHintAvailable):
		return http.StatusConflict, "no_hint_available"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, words.ErrInsufficientCorpus):
		return http.StatusUnprocessableEntity, "insufficient_corpus"
	case errors.Is(err, scores.ErrUsernameTaken):
		return http.StatusConflict, "Username taken"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username or password"
	case auth.IsValidationError(err):
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, "internal_error"
}

func writeDomainError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeError(w, status, code)
}

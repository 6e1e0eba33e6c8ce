// internal/httpserver/routes_auth.go
//
// Account and profile routes:
//   - POST /auth/signup, /auth/login (rate limited per client IP), /auth/logout
//   - GET  /auth/me, /stats/me, /games/mine (require auth)

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/auth"
	"github.com/robalobadob/hangman/internal/scores"
)

// credentialsReq is the payload for signup/login.
type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// mountAuthRoutes registers authentication + gated routes.
func (s *Server) mountAuthRoutes() {
	limiter := newIPLimiter(s.d.AuthRatePerMinute)

	s.r.Route("/auth", func(r chi.Router) {
		r.With(limiter.middleware).Post("/signup", s.handleSignup)
		r.With(limiter.middleware).Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.With(auth.RequireAuth(s.d.Auth, s.d.Cookies)).Get("/me", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, auth.FromContext(r.Context()))
		})
	})

	gated := s.r.With(auth.RequireAuth(s.d.Auth, s.d.Cookies))
	gated.Get("/stats/me", s.handleMyStats)
	gated.Get("/games/mine", s.handleMyGames)
}

// handleSignup creates a new user, signs a JWT and sets the auth cookie.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.d.Auth.Signup(r.Context(), body.Username, body.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !s.issueToken(w, u.ID, u.Username) {
		return
	}
	log.Info().Str("user", u.ID).Msg("signup")
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username, "createdAt": u.CreatedAt})
}

// handleLogin authenticates the user and sets the auth cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.d.Auth.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !s.issueToken(w, u.ID, u.Username) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username})
}

func (s *Server) issueToken(w http.ResponseWriter, id, username string) bool {
	tok, exp, err := s.d.Auth.Tokens().Sign(id, username)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return false
	}
	s.d.Cookies.Set(w, tok, exp)
	return true
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.d.Cookies.Clear(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleMyStats(w http.ResponseWriter, r *http.Request) {
	me := auth.FromContext(r.Context())
	st, err := s.d.Scores.Stats(r.Context(), me.ID)
	if err != nil {
		log.Error().Err(err).Str("user", me.ID).Msg("stats")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          me.ID,
		"bestScore":   st.BestScore,
		"wins":        st.Wins,
		"gamesPlayed": st.GamesPlayed,
		"streak":      st.Streak,
	})
}

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	me := auth.FromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	limit = min(limit, scores.MaxRecentResults)
	rows, err := s.d.Scores.RecentResults(r.Context(), me.ID, limit)
	if err != nil {
		log.Error().Err(err).Str("user", me.ID).Msg("recent results")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

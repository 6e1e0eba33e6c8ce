// internal/httpserver/routes_game.go
//
// HTTP routes for playing a round.
// Exposes five endpoints under /game:
//   - POST /game/new                → start a round at a difficulty (optionally replacing an old one)
//   - GET  /game/{id}               → current view of a round
//   - POST /game/{id}/guess         → guess one letter
//   - POST /game/{id}/hint          → open a hint panel (costs one try)
//   - POST /game/{id}/hint/resolve  → pick one of the offered letters
//
// Rounds live in the session store. A round started by a signed-in user is
// only visible to that user and its result is recorded once, by the request
// that finishes it. Guest rounds are never recorded.

package httpserver

import (
	"errors"
	"hash/fnv"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/auth"
	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/scores"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewRound)
		r.Get("/{id}", s.handleGetRound)
		r.Post("/{id}/guess", s.handleGuess)
		r.Post("/{id}/hint", s.handleHint)
		r.Post("/{id}/hint/resolve", s.handleResolveHint)
	})
}

// roundView is what clients see of a round. The target is only revealed
// once the round is over.
type roundView struct {
	ID          string       `json:"id"`
	Difficulty  words.Tier   `json:"difficulty"`
	Masked      string       `json:"masked"`
	Guessed     string       `json:"guessed"`
	WrongCount  int          `json:"wrongCount"`
	TriesLeft   int          `json:"triesLeft"`
	HintUsed    int          `json:"hintUsed"`
	HintsLeft   int          `json:"hintsLeft"`
	PendingHint string       `json:"pendingHint,omitempty"`
	Outcome     game.Outcome `json:"outcome"`
	Target      string       `json:"target,omitempty"`
	Score       *int         `json:"score,omitempty"`
}

func viewOf(rd *game.Round) roundView {
	v := roundView{
		ID:          rd.ID,
		Difficulty:  rd.Tier,
		Masked:      rd.Masked(),
		Guessed:     string(rd.Guessed()),
		WrongCount:  rd.WrongCount(),
		TriesLeft:   rd.TriesLeft(),
		HintUsed:    rd.HintUsed(),
		HintsLeft:   rd.HintsLeft(),
		PendingHint: string(rd.PendingHint()),
		Outcome:     rd.Outcome(),
	}
	if score, err := rd.FinalScore(); err == nil {
		v.Target = rd.Target()
		v.Score = &score
	}
	return v
}

// -----------------------------------------------------------------------------
// /game/new

type newRoundReq struct {
	Difficulty string `json:"difficulty"` // easy | medium | hard (anything else plays medium)
	PreviousID string `json:"previousId"` // round being restarted, dropped from the store
}

func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	var req newRoundReq
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	rd, err := game.Start(s.d.Selector, words.ParseTier(req.Difficulty))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	sess := &store.Session{Round: rd}
	if me := auth.FromContext(r.Context()); me != nil {
		sess.UserID = me.ID
	}
	if err := s.d.Sessions.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save round")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	if req.PreviousID != "" {
		if old, err := s.d.Sessions.Get(r.Context(), req.PreviousID); err == nil && ownedBy(old, r) {
			if err := s.d.Sessions.Delete(r.Context(), req.PreviousID); err != nil {
				log.Warn().Err(err).Str("roundId", req.PreviousID).Msg("drop previous round")
			}
		}
	}

	log.Info().Str("roundId", rd.ID).Str("tier", string(rd.Tier)).Bool("guest", sess.UserID == "").Msg("round started")
	writeJSON(w, http.StatusOK, viewOf(rd))
}

// -----------------------------------------------------------------------------
// /game/{id}

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadOwned(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess.Round))
}

// letterReq is the payload of guess and hint/resolve.
type letterReq struct {
	Letter string `json:"letter"`
}

// parseLetter accepts exactly one letter, in either case.
func parseLetter(s string) (rune, error) {
	rs := []rune(strings.ToLower(strings.TrimSpace(s)))
	if len(rs) != 1 {
		return 0, game.ErrInvalidLetter
	}
	return rs[0], nil
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req letterReq
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	letter, err := parseLetter(req.Letter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.mutate(w, r, func(rd *game.Round) (any, error) {
		if err := rd.GuessLetter(letter); err != nil {
			return nil, err
		}
		return viewOf(rd), nil
	})
}

// hintRes adds the offered letters to the round view.
type hintRes struct {
	roundView
	Choices []string `json:"choices"`
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(rd *game.Round) (any, error) {
		choices, err := rd.RequestHint(s.d.Rand)
		if err != nil {
			return nil, err
		}
		res := hintRes{roundView: viewOf(rd), Choices: []string{}}
		for _, c := range choices {
			res.Choices = append(res.Choices, string(c))
		}
		return res, nil
	})
}

func (s *Server) handleResolveHint(w http.ResponseWriter, r *http.Request) {
	var req letterReq
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	letter, err := parseLetter(req.Letter)
	if err != nil {
		writeDomainError(w, game.ErrInvalidChoice)
		return
	}
	s.mutate(w, r, func(rd *game.Round) (any, error) {
		if err := rd.ResolveHint(letter); err != nil {
			return nil, err
		}
		return viewOf(rd), nil
	})
}

// -----------------------------------------------------------------------------
// session plumbing

// ownedBy reports whether the requester may drive sess: guest rounds are
// open to anyone holding the ID, user rounds only to their user.
func ownedBy(sess *store.Session, r *http.Request) bool {
	if sess.UserID == "" {
		return true
	}
	me := auth.FromContext(r.Context())
	return me != nil && me.ID == sess.UserID
}

// loadOwned fetches the round named in the URL. Rounds of other users look
// like missing rounds.
func (s *Server) loadOwned(r *http.Request) (*store.Session, error) {
	sess, err := s.d.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	if !ownedBy(sess, r) {
		return nil, store.ErrNotFound
	}
	return sess, nil
}

// mutate runs op against the stored round under a per-round lock, saves the
// result, and records the outcome if op finished a signed-in user's round.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op func(*game.Round) (any, error)) {
	unlock := s.locks.lock(chi.URLParam(r, "id"))
	defer unlock()

	sess, err := s.loadOwned(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	wasFinished := sess.Round.Finished()
	res, err := op(sess.Round)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.d.Sessions.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Str("roundId", sess.Round.ID).Msg("save round")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	if !wasFinished && sess.Round.Finished() {
		s.recordResult(r, sess)
	}
	writeJSON(w, http.StatusOK, res)
}

// recordResult persists a finished round for its user (best effort).
func (s *Server) recordResult(r *http.Request, sess *store.Session) {
	rd := sess.Round
	log.Info().Str("roundId", rd.ID).Str("outcome", string(rd.Outcome())).
		Int("wrong", rd.WrongCount()).Int("hints", rd.HintUsed()).Msg("round finished")
	if sess.UserID == "" {
		return
	}
	err := s.d.Scores.RecordResult(r.Context(), sess.UserID, scores.Result{
		RoundID:    rd.ID,
		Won:        rd.Outcome() == game.Won,
		WrongCount: rd.WrongCount(),
		HintUsed:   rd.HintUsed(),
		Tier:       rd.Tier,
	})
	if err != nil && !errors.Is(err, scores.ErrUserNotFound) {
		log.Warn().Err(err).Str("user", sess.UserID).Str("roundId", rd.ID).Msg("record result")
	}
}

// roundLocks serializes requests on the same round within this process.
type roundLocks struct {
	stripes [64]sync.Mutex
}

func newRoundLocks() *roundLocks { return &roundLocks{} }

func (l *roundLocks) lock(id string) (unlock func()) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	m := &l.stripes[h.Sum32()%uint32(len(l.stripes))]
	m.Lock()
	return m.Unlock
}

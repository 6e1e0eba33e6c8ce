// internal/game/types.go
//
// Core type definitions for the hangman round engine.
// Defines:
//   - Outcome: lifecycle state of a round (in_progress/won/lost).
//   - Round: state of a single in-progress or finished round.
//   - Snapshot: plain serializable copy of a Round, used by session stores.
//   - Rand: the randomness a round needs for hints.

package game

import (
	"errors"

	"github.com/robalobadob/hangman/internal/words"
)

// MaxTries is the wrong-guess budget of a round.
const MaxTries = 6

// hintChoices is how many letters a hint panel offers (1 correct + 2 distractors).
const hintChoices = 3

// Outcome is the lifecycle state of a round.
// Possible values:
//   - "in_progress": the round accepts guesses and hint requests.
//   - "won":         every letter of the target has been guessed.
//   - "lost":        the wrong-guess budget is spent.
type Outcome string

const (
	InProgress Outcome = "in_progress"
	Won        Outcome = "won"
	Lost       Outcome = "lost"
)

var (
	ErrInvalidTarget   = errors.New("invalid target word")
	ErrInvalidLetter   = errors.New("invalid letter")
	ErrAlreadyGuessed  = errors.New("letter already guessed")
	ErrRoundOver       = errors.New("round finished")
	ErrHintsExhausted  = errors.New("no hints left")
	ErrNoHintAvailable = errors.New("no hint available")
	ErrHintPending     = errors.New("hint choice pending")
	ErrNoPendingHint   = errors.New("no hint pending")
	ErrInvalidChoice   = errors.New("letter was not offered by the hint")
	ErrRoundInProgress = errors.New("round still in progress")
	ErrBadSnapshot     = errors.New("invalid round snapshot")
)

// Rand is the randomness used to build hint panels.
// *math/rand.Rand and randx.Source both satisfy it.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Round holds the state of a single hangman round. It is owned by one
// session and must not be mutated concurrently.
type Round struct {
	ID   string     // Unique round identifier (random hex string).
	Tier words.Tier // Difficulty the target was drawn at.

	target   string   // Word to guess (lowercase a–z).
	guessed  [26]bool // Letters chosen so far, correct or not.
	wrong    int      // Wrong guesses, including flat hint charges.
	hintUsed int      // Hints requested.
	maxHints int      // Hint allowance for this round.
	pending  []rune   // Offered hint letters awaiting a choice (0 or 3).
	outcome  Outcome
}

// Snapshot is a serializable copy of a Round.
type Snapshot struct {
	ID          string     `json:"id"`
	Tier        words.Tier `json:"tier"`
	Target      string     `json:"target"`
	Guessed     string     `json:"guessed"`
	WrongCount  int        `json:"wrongCount"`
	HintUsed    int        `json:"hintUsed"`
	MaxHints    int        `json:"maxHints"`
	PendingHint string     `json:"pendingHint,omitempty"`
	Outcome     Outcome    `json:"outcome"`
}

// internal/game/engine.go
//
// Core engine for a single hangman round.
// Responsibilities:
//   - Create rounds from a fixed word or from the word selector.
//   - Validate and apply letter guesses.
//   - Build 3-letter hint panels (1 correct + 2 distractors) and resolve them.
//   - Track state transitions: in_progress → won/lost.
//   - Compute the final score once the round is over.
//
// Scoring:
//   final = max(0, MaxTries - wrong - hintUsed), 0 on a loss.
//   A hint is therefore charged twice: once as a wrong guess when requested
//   and once more in the formula. Picking a distractor from the panel adds a
//   further wrong guess.
//
// Notes:
//   - Rounds never mutate after reaching won/lost; start a new one to replay.
//   - Every operation either applies fully or returns an error untouched.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/robalobadob/hangman/internal/words"
)

// New constructs a round for target with the given hint allowance.
func New(target string, maxHints int) (*Round, error) {
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" || !isAlpha(target) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}
	return &Round{
		ID:       randomID(),
		Tier:     words.Medium,
		target:   target,
		maxHints: max(0, maxHints),
		outcome:  InProgress,
	}, nil
}

// Start draws a target at tier from sel and constructs a round with that
// tier's hint allowance. Unknown tiers are played as medium.
func Start(sel *words.Selector, tier words.Tier) (*Round, error) {
	tier = words.ParseTier(string(tier))
	w, err := sel.Select(tier)
	if err != nil {
		return nil, err
	}
	r, err := New(w, MaxHintsFor(tier))
	if err != nil {
		return nil, err
	}
	r.Tier = tier
	return r, nil
}

// MaxHintsFor returns the hint allowance of a tier: 2 on hard, 1 otherwise.
func MaxHintsFor(t words.Tier) int {
	if t == words.Hard {
		return 2
	}
	return 1
}

// GuessLetter records a guess. A letter not in the target costs one try.
//
// Validation rules:
//   - Round must be in progress and have no hint panel open.
//   - letter must be a–z and not guessed before.
func (r *Round) GuessLetter(letter rune) error {
	if r.Finished() {
		return ErrRoundOver
	}
	if len(r.pending) > 0 {
		return ErrHintPending
	}
	if letter < 'a' || letter > 'z' {
		return fmt.Errorf("%w: %q", ErrInvalidLetter, letter)
	}
	if r.guessed[idx(letter)] {
		return fmt.Errorf("%w: %q", ErrAlreadyGuessed, letter)
	}
	r.apply(letter)
	return nil
}

// RequestHint opens a hint panel: one unguessed target letter and two
// letters absent from the target, shuffled. The request itself costs one
// try, which can end the round; in that case the panel is discarded and nil
// is returned alongside a nil error.
func (r *Round) RequestHint(rng Rand) ([]rune, error) {
	if r.Finished() {
		return nil, ErrRoundOver
	}
	if len(r.pending) > 0 {
		return nil, ErrHintPending
	}
	if r.hintUsed >= r.maxHints {
		return nil, ErrHintsExhausted
	}

	correct := lo.Filter(lo.Uniq([]rune(r.target)), func(c rune, _ int) bool {
		return !r.guessed[idx(c)]
	})
	absent := lo.Filter(alphabet(), func(c rune, _ int) bool {
		return !strings.ContainsRune(r.target, c)
	})
	if len(correct) == 0 || len(absent) < hintChoices-1 {
		return nil, ErrNoHintAvailable
	}

	// two distinct distractors
	i := rng.Intn(len(absent))
	j := rng.Intn(len(absent) - 1)
	if j >= i {
		j++
	}
	choices := []rune{correct[rng.Intn(len(correct))], absent[i], absent[j]}
	rng.Shuffle(len(choices), func(a, b int) { choices[a], choices[b] = choices[b], choices[a] })

	r.hintUsed++
	r.wrong++
	r.pending = choices
	r.settle()
	return r.PendingHint(), nil
}

// ResolveHint picks one of the offered letters. It counts as a guess: a
// distractor costs another try even if it was guessed before.
func (r *Round) ResolveHint(letter rune) error {
	if r.Finished() {
		return ErrRoundOver
	}
	if len(r.pending) == 0 {
		return ErrNoPendingHint
	}
	if !slices.Contains(r.pending, letter) {
		return fmt.Errorf("%w: %q", ErrInvalidChoice, letter)
	}
	r.pending = nil
	r.apply(letter)
	return nil
}

// FinalScore returns the score of a finished round.
func (r *Round) FinalScore() (int, error) {
	if !r.Finished() {
		return 0, ErrRoundInProgress
	}
	return ComputeScore(r.outcome == Won, r.wrong, r.hintUsed), nil
}

// ComputeScore applies the scoring formula to raw round counters.
func ComputeScore(won bool, wrong, hintUsed int) int {
	if !won || wrong >= MaxTries {
		return 0
	}
	return max(0, MaxTries-wrong-hintUsed)
}

// apply adds letter to the guessed set, charges a miss, and settles.
func (r *Round) apply(letter rune) {
	r.guessed[idx(letter)] = true
	if !strings.ContainsRune(r.target, letter) {
		r.wrong++
	}
	r.settle()
}

// settle runs the win/loss check. Win takes precedence; a finished round
// drops any open hint panel.
func (r *Round) settle() {
	switch {
	case r.revealed():
		r.outcome = Won
	case r.wrong >= MaxTries:
		r.outcome = Lost
	default:
		return
	}
	r.pending = nil
}

// revealed reports whether every target letter has been guessed.
func (r *Round) revealed() bool {
	for _, c := range r.target {
		if !r.guessed[idx(c)] {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// accessors

// Outcome reports the round state.
func (r *Round) Outcome() Outcome { return r.outcome }

// Finished is true once the round is won or lost.
func (r *Round) Finished() bool { return r.outcome != InProgress }

// Target returns the word to guess.
func (r *Round) Target() string { return r.target }

// WrongCount returns the number of tries spent.
func (r *Round) WrongCount() int { return r.wrong }

// HintUsed returns how many hints were requested.
func (r *Round) HintUsed() int { return r.hintUsed }

// MaxHints returns the hint allowance.
func (r *Round) MaxHints() int { return r.maxHints }

// HintsLeft returns the remaining hint allowance.
func (r *Round) HintsLeft() int { return max(0, r.maxHints-r.hintUsed) }

// TriesLeft returns how many more misses the round can absorb.
func (r *Round) TriesLeft() int { return max(0, MaxTries-r.wrong) }

// PendingHint returns a copy of the open hint panel, or nil.
func (r *Round) PendingHint() []rune {
	if len(r.pending) == 0 {
		return nil
	}
	return slices.Clone(r.pending)
}

// Guessed returns the guessed letters in alphabetical order.
func (r *Round) Guessed() []rune {
	out := make([]rune, 0, 26)
	for i, ok := range r.guessed {
		if ok {
			out = append(out, rune('a'+i))
		}
	}
	return out
}

// Masked returns the target with unguessed letters replaced by '_'.
func (r *Round) Masked() string {
	var b strings.Builder
	for _, c := range r.target {
		if r.guessed[idx(c)] {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// snapshots

// Snapshot copies the round into its serializable form.
func (r *Round) Snapshot() Snapshot {
	return Snapshot{
		ID:          r.ID,
		Tier:        r.Tier,
		Target:      r.target,
		Guessed:     string(r.Guessed()),
		WrongCount:  r.wrong,
		HintUsed:    r.hintUsed,
		MaxHints:    r.maxHints,
		PendingHint: string(r.pending),
		Outcome:     r.outcome,
	}
}

// Restore rebuilds a round from a snapshot, rejecting inconsistent state.
func Restore(s Snapshot) (*Round, error) {
	if s.ID == "" || s.Target == "" || !isAlpha(s.Target) || !isAlpha(s.Guessed) {
		return nil, ErrBadSnapshot
	}
	if s.WrongCount < 0 || s.HintUsed < 0 || s.MaxHints < 0 {
		return nil, ErrBadSnapshot
	}
	if s.PendingHint != "" && (len(s.PendingHint) != hintChoices || !isAlpha(s.PendingHint)) {
		return nil, ErrBadSnapshot
	}
	switch s.Outcome {
	case InProgress, Won, Lost:
	default:
		return nil, ErrBadSnapshot
	}
	if s.HintUsed > s.MaxHints || s.WrongCount > MaxTries || s.HintUsed > s.WrongCount {
		return nil, ErrBadSnapshot
	}
	r := &Round{
		ID:       s.ID,
		Tier:     words.ParseTier(string(s.Tier)),
		target:   s.Target,
		wrong:    s.WrongCount,
		hintUsed: s.HintUsed,
		maxHints: s.MaxHints,
		outcome:  s.Outcome,
	}
	for _, c := range s.Guessed {
		r.guessed[idx(c)] = true
	}
	if s.PendingHint != "" {
		r.pending = []rune(s.PendingHint)
	}
	if !r.consistent() {
		return nil, ErrBadSnapshot
	}
	return r, nil
}

// consistent reports whether a restored round is one play could reach:
//   - every absent guessed letter and every hint cost one try;
//   - the outcome agrees with the revealed letters and the tries spent;
//   - an open panel belongs to a live round and holds one unguessed target
//     letter plus two distinct absent letters.
func (r *Round) consistent() bool {
	absent := 0
	for i, g := range r.guessed {
		if g && !strings.ContainsRune(r.target, rune('a'+i)) {
			absent++
		}
	}
	if absent+r.hintUsed > r.wrong {
		return false
	}

	switch r.outcome {
	case InProgress:
		if r.revealed() || r.wrong >= MaxTries {
			return false
		}
	case Won:
		if !r.revealed() || r.wrong >= MaxTries {
			return false
		}
	case Lost:
		if r.revealed() || r.wrong < MaxTries {
			return false
		}
	}

	if r.pending == nil {
		return true
	}
	if r.outcome != InProgress || r.hintUsed == 0 || len(lo.Uniq(r.pending)) != hintChoices {
		return false
	}
	correct := lo.Filter(r.pending, func(c rune, _ int) bool { return strings.ContainsRune(r.target, c) })
	return len(correct) == 1 && !r.guessed[idx(correct[0])]
}

// ---------------------------------------------------------------------------
// small util

// idx maps a lowercase ASCII letter rune to 0..25.
// Assumes inputs are validated to a–z elsewhere.
func idx(r rune) int { return int(r - 'a') }

// isAlpha checks that a string consists only of lowercase a–z.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// alphabet returns 'a'..'z'.
func alphabet() []rune {
	return lo.RangeFrom('a', 26)
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

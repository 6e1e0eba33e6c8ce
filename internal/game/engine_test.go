package game

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/robalobadob/hangman/internal/words"
)

func newRound(t *testing.T, target string, maxHints int) *Round {
	t.Helper()
	r, err := New(target, maxHints)
	if err != nil {
		t.Fatalf("new round: %v", err)
	}
	return r
}

func guessAll(t *testing.T, r *Round, letters string) {
	t.Helper()
	for _, c := range letters {
		if err := r.GuessLetter(c); err != nil {
			t.Fatalf("guess %q: %v", c, err)
		}
	}
}

func TestWinWithoutMistakes(t *testing.T) {
	is := is.New(t)
	r := newRound(t, "planet", 1)
	guessAll(t, r, "planet")

	is.Equal(r.Outcome(), Won)
	is.Equal(r.WrongCount(), 0)
	is.Equal(r.HintUsed(), 0)
	score, err := r.FinalScore()
	is.NoErr(err)
	is.Equal(score, 6)
}

func TestLoseAfterSixMisses(t *testing.T) {
	is := is.New(t)
	r := newRound(t, "planet", 1)
	guessAll(t, r, "xyzqwv")

	is.Equal(r.Outcome(), Lost)
	is.Equal(r.WrongCount(), 6)
	is.Equal(r.TriesLeft(), 0)
	score, err := r.FinalScore()
	is.NoErr(err)
	is.Equal(score, 0)

	before := r.Snapshot()
	is.True(errors.Is(r.GuessLetter('p'), ErrRoundOver))
	_, err = r.RequestHint(rand.New(rand.NewSource(1)))
	is.True(errors.Is(err, ErrRoundOver))
	is.Equal(r.Snapshot(), before) // terminal round must not change
}

func TestHintCompletesWord(t *testing.T) {
	is := is.New(t)
	r := newRound(t, "planet", 1)
	guessAll(t, r, "plane")

	choices, err := r.RequestHint(rand.New(rand.NewSource(42)))
	is.NoErr(err)
	is.Equal(len(choices), 3)
	var correct, distractors int
	for _, c := range choices {
		if c == 't' {
			correct++
		} else {
			is.True(!strings.ContainsRune("planet", c)) // distractor must be absent from target
			distractors++
		}
	}
	is.Equal(correct, 1)
	is.Equal(distractors, 2)
	is.Equal(r.WrongCount(), 1)
	is.Equal(r.HintUsed(), 1)
	is.Equal(r.Outcome(), InProgress)

	is.NoErr(r.ResolveHint('t'))
	is.Equal(r.Outcome(), Won)
	is.Equal(r.PendingHint(), nil)
	score, err := r.FinalScore()
	is.NoErr(err)
	is.Equal(score, 4)
}

func TestHintExhausted(t *testing.T) {
	is := is.New(t)
	r := newRound(t, "planet", 1)
	rng := rand.New(rand.NewSource(3))

	choices, err := r.RequestHint(rng)
	is.NoErr(err)
	is.NoErr(r.ResolveHint(correctChoice(choices, "planet")))

	before := r.Snapshot()
	_, err = r.RequestHint(rng)
	is.True(errors.Is(err, ErrHintsExhausted))
	is.Equal(r.Snapshot(), before)
}

func TestHardTierAllowsTwoHints(t *testing.T) {
	is := is.New(t)
	r := newRound(t, "planet", MaxHintsFor(words.Hard))
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 2; i++ {
		choices, err := r.RequestHint(rng)
		is.NoErr(err)
		is.NoErr(r.ResolveHint(correctChoice(choices, "planet")))
	}
	is.Equal(r.HintUsed(), 2)
	is.Equal(r.WrongCount(), 2)
	is.Equal(r.HintsLeft(), 0)
	_, err := r.RequestHint(rng)
	is.True(errors.Is(err, ErrHintsExhausted))
}

func TestDistractorChargesAgain(t *testing.T) {
	is := is.New(t)
	r := newRound(t, "planet", 1)
	choices, err := r.RequestHint(rand.New(rand.NewSource(5)))
	is.NoErr(err)

	var wrong rune
	for _, c := range choices {
		if !strings.ContainsRune("planet", c) {
			wrong = c
			break
		}
	}
	is.NoErr(r.ResolveHint(wrong))
	is.Equal(r.WrongCount(), 2) // flat hint cost + wrong pick
	is.Equal(r.PendingHint(), nil)
	is.True(strings.ContainsRune(string(r.Guessed()), wrong))
}

func TestHintCanCauseLoss(t *testing.T) {
	is := is.New(t)
	r := newRound(t, "planet", 1)
	guessAll(t, r, "xyzqw")
	is.Equal(r.WrongCount(), 5)

	choices, err := r.RequestHint(rand.New(rand.NewSource(1)))
	is.NoErr(err)
	is.Equal(choices, nil)
	is.Equal(r.Outcome(), Lost)
	is.Equal(r.PendingHint(), nil)
	is.True(errors.Is(r.ResolveHint('t'), ErrRoundOver))
}

func TestInvalidChoice(t *testing.T) {
	is := is.New(t)
	r := newRound(t, "planet", 1)
	choices, err := r.RequestHint(rand.New(rand.NewSource(11)))
	is.NoErr(err)

	var other rune
	for c := 'a'; c <= 'z'; c++ {
		if !strings.ContainsRune(string(choices), c) {
			other = c
			break
		}
	}
	before := r.Snapshot()
	is.True(errors.Is(r.ResolveHint(other), ErrInvalidChoice))
	is.Equal(r.Snapshot(), before)
}

func TestResolveWithoutHint(t *testing.T) {
	is := is.New(t)
	r := newRound(t, "planet", 1)
	is.True(errors.Is(r.ResolveHint('t'), ErrNoPendingHint))
}

func TestPendingHintBlocksGuessAndHint(t *testing.T) {
	is := is.New(t)
	r := newRound(t, "planet", 2)
	rng := rand.New(rand.NewSource(2))
	_, err := r.RequestHint(rng)
	is.NoErr(err)

	is.True(errors.Is(r.GuessLetter('p'), ErrHintPending))
	_, err = r.RequestHint(rng)
	is.True(errors.Is(err, ErrHintPending))
	is.Equal(r.HintUsed(), 1)
}

func TestGuessValidation(t *testing.T) {
	is := is.New(t)
	r := newRound(t, "planet", 1)

	is.True(errors.Is(r.GuessLetter('A'), ErrInvalidLetter))
	is.True(errors.Is(r.GuessLetter('1'), ErrInvalidLetter))
	is.True(errors.Is(r.GuessLetter('é'), ErrInvalidLetter))

	is.NoErr(r.GuessLetter('x'))
	is.True(errors.Is(r.GuessLetter('x'), ErrAlreadyGuessed))
	is.Equal(r.WrongCount(), 1) // repeat is not charged
}

func TestFinalScoreInProgress(t *testing.T) {
	is := is.New(t)
	r := newRound(t, "planet", 1)
	_, err := r.FinalScore()
	is.True(errors.Is(err, ErrRoundInProgress))
}

func TestComputeScore(t *testing.T) {
	is := is.New(t)
	is.Equal(ComputeScore(true, 0, 0), 6)
	is.Equal(ComputeScore(true, 2, 1), 3)
	is.Equal(ComputeScore(true, 4, 2), 0)
	is.Equal(ComputeScore(true, 5, 2), 0)
	is.Equal(ComputeScore(false, 1, 0), 0)
	is.Equal(ComputeScore(true, 6, 0), 0)
}

func TestMasked(t *testing.T) {
	is := is.New(t)
	r := newRound(t, "banana", 1)
	is.Equal(r.Masked(), "______")
	guessAll(t, r, "a")
	is.Equal(r.Masked(), "_a_a_a")
	guessAll(t, r, "n")
	is.Equal(r.Masked(), "_anana")
}

func TestNewRejectsBadTarget(t *testing.T) {
	is := is.New(t)
	_, err := New("", 1)
	is.True(errors.Is(err, ErrInvalidTarget))
	_, err = New("pla net", 1)
	is.True(errors.Is(err, ErrInvalidTarget))

	r, err := New(" PLANET ", 1)
	is.NoErr(err)
	is.Equal(r.Target(), "planet")
}

func TestStartUsesTierAllowance(t *testing.T) {
	is := is.New(t)
	c, err := words.NewCorpus([]string{"planet", "rocket", "garden", "puzzle"}, 6, 10)
	is.NoErr(err)
	sel := words.NewSelector(c, 2, rand.New(rand.NewSource(1)))

	r, err := Start(sel, words.Hard)
	is.NoErr(err)
	is.Equal(r.Tier, words.Hard)
	is.Equal(r.MaxHints(), 2)

	r, err = Start(sel, words.Tier("weird"))
	is.NoErr(err)
	is.Equal(r.Tier, words.Medium)
	is.Equal(r.MaxHints(), 1)
	band, _ := sel.Band(words.Medium)
	is.True(strings.Contains(strings.Join(band, ","), r.Target()))
}

func TestStartInsufficientCorpus(t *testing.T) {
	is := is.New(t)
	c, err := words.NewCorpus([]string{"planet"}, 6, 10)
	is.NoErr(err)
	sel := words.NewSelector(c, 0, rand.New(rand.NewSource(1)))
	_, err = Start(sel, words.Medium)
	is.True(errors.Is(err, words.ErrInsufficientCorpus))
}

func TestSnapshotRestore(t *testing.T) {
	is := is.New(t)
	r := newRound(t, "planet", 2)
	r.Tier = words.Hard
	guessAll(t, r, "pxa")
	_, err := r.RequestHint(rand.New(rand.NewSource(4)))
	is.NoErr(err)

	back, err := Restore(r.Snapshot())
	is.NoErr(err)
	is.Equal(back.Snapshot(), r.Snapshot())
	is.Equal(back.PendingHint(), r.PendingHint())
	is.Equal(back.Masked(), "p_a___")
}

func TestRestoreRejectsBadSnapshot(t *testing.T) {
	is := is.New(t)
	good := newRound(t, "planet", 1).Snapshot()

	bad := good
	bad.Target = "Planet"
	_, err := Restore(bad)
	is.True(errors.Is(err, ErrBadSnapshot))

	bad = good
	bad.Outcome = "paused"
	_, err = Restore(bad)
	is.True(errors.Is(err, ErrBadSnapshot))

	bad = good
	bad.PendingHint = "ab"
	_, err = Restore(bad)
	is.True(errors.Is(err, ErrBadSnapshot))

	bad = good
	bad.WrongCount = -1
	_, err = Restore(bad)
	is.True(errors.Is(err, ErrBadSnapshot))

	// states play can never reach
	cases := map[string]func(*Snapshot){
		"more hints than allowed": func(s *Snapshot) { s.HintUsed, s.WrongCount = 2, 2 },
		"hint without its charge": func(s *Snapshot) { s.HintUsed = 1 },
		"in progress out of tries": func(s *Snapshot) { s.Guessed, s.WrongCount = "bcdfgh", MaxTries },
		"more tries than budget":   func(s *Snapshot) { s.Guessed, s.WrongCount, s.Outcome = "bcdfghi", 7, Lost },
		"miss not charged":         func(s *Snapshot) { s.Guessed = "x" },
		"won with letters hidden":  func(s *Snapshot) { s.Guessed, s.Outcome = "pla", Won },
		"lost with tries left":     func(s *Snapshot) { s.Guessed, s.WrongCount, s.Outcome = "xy", 2, Lost },
		"in progress but revealed": func(s *Snapshot) { s.Guessed = "planet" },
		"panel repeats a letter": func(s *Snapshot) {
			s.HintUsed, s.WrongCount, s.PendingHint = 1, 1, "pxx"
		},
		"panel without target letter": func(s *Snapshot) {
			s.HintUsed, s.WrongCount, s.PendingHint = 1, 1, "xyz"
		},
		"panel with two target letters": func(s *Snapshot) {
			s.HintUsed, s.WrongCount, s.PendingHint = 1, 1, "plx"
		},
		"panel offers guessed letter": func(s *Snapshot) {
			s.Guessed, s.HintUsed, s.WrongCount, s.PendingHint = "p", 1, 1, "pxy"
		},
		"panel without a hint": func(s *Snapshot) { s.PendingHint = "pxy" },
		"panel on finished round": func(s *Snapshot) {
			s.Guessed, s.HintUsed, s.WrongCount, s.Outcome, s.PendingHint = "bcdfg", 1, MaxTries, Lost, "pxy"
		},
	}
	for name, mutate := range cases {
		bad = good
		mutate(&bad)
		if _, err := Restore(bad); !errors.Is(err, ErrBadSnapshot) {
			t.Errorf("%s: want ErrBadSnapshot, got %v", name, err)
		}
	}

	ok := good
	ok.HintUsed, ok.WrongCount, ok.PendingHint = 1, 1, "xpy"
	_, err = Restore(ok)
	is.NoErr(err)
}

// TestRoundInvariants plays random rounds and checks that state only grows
// and the round never ends up both won and lost.
func TestRoundInvariants(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewSource(99))
	for game := 0; game < 200; game++ {
		r := newRound(t, "quizzical", 2)
		prevGuessed, prevWrong, prevHints := 0, 0, 0
		for step := 0; step < 60 && !r.Finished(); step++ {
			if p := r.PendingHint(); p != nil {
				_ = r.ResolveHint(p[rng.Intn(len(p))])
			} else if rng.Intn(5) == 0 {
				_, _ = r.RequestHint(rng)
			} else {
				_ = r.GuessLetter(rune('a' + rng.Intn(26)))
			}
			is.True(len(r.Guessed()) >= prevGuessed)
			is.True(r.WrongCount() >= prevWrong)
			is.True(r.HintUsed() >= prevHints)
			is.True(r.HintUsed() <= r.MaxHints())
			back, err := Restore(r.Snapshot())
			is.NoErr(err) // every reachable state restores
			is.Equal(back.Snapshot(), r.Snapshot())
			prevGuessed, prevWrong, prevHints = len(r.Guessed()), r.WrongCount(), r.HintUsed()
		}
		is.True(r.Finished())
		switch r.Outcome() {
		case Won:
			is.True(r.WrongCount() < MaxTries)
			is.Equal(r.Masked(), r.Target())
		case Lost:
			is.True(r.WrongCount() >= MaxTries)
			is.True(r.Masked() != r.Target())
		}
	}
}

// correctChoice returns the offered letter that occurs in target.
func correctChoice(choices []rune, target string) rune {
	for _, c := range choices {
		if strings.ContainsRune(target, c) {
			return c
		}
	}
	return 0
}

package words

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// DefaultBandSize is how many words each difficulty band holds.
const DefaultBandSize = 2000

// Tier is a requested difficulty level.
type Tier string

const (
	Easy   Tier = "easy"
	Medium Tier = "medium"
	Hard   Tier = "hard"
)

// ParseTier maps s onto a Tier. Unknown values are Medium.
func ParseTier(s string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case Easy:
		return Easy
	case Hard:
		return Hard
	default:
		return Medium
	}
}

// Rand is the randomness a Selector needs. *math/rand.Rand satisfies it, as
// does randx.Source.
type Rand interface {
	Intn(n int) int
}

// Selector picks target words from score bands of a Corpus.
//
// The ranking is derived from the corpus once; since the corpus never
// changes it is identical to re-sorting on every call. A Selector is safe
// for concurrent use as long as its Rand is.
type Selector struct {
	corpus *Corpus
	ranked []string
	band   int
	rng    Rand
}

// NewSelector ranks every corpus word by ascending DifficultyScore.
// A bandSize <= 0 means DefaultBandSize.
func NewSelector(c *Corpus, bandSize int, rng Rand) *Selector {
	if bandSize <= 0 {
		bandSize = DefaultBandSize
	}
	type scored struct {
		word  string
		score float64
	}
	list := make([]scored, len(c.words))
	for i, w := range c.words {
		list[i] = scored{word: w, score: c.DifficultyScore(w)}
	}
	slices.SortStableFunc(list, func(a, b scored) int {
		return cmp.Compare(a.score, b.score)
	})
	ranked := make([]string, len(list))
	for i, s := range list {
		ranked[i] = s.word
	}
	return &Selector{corpus: c, ranked: ranked, band: bandSize, rng: rng}
}

// Corpus returns the corpus the selector draws from.
func (s *Selector) Corpus() *Corpus { return s.corpus }

// BandSize returns the configured band width.
func (s *Selector) BandSize() int { return s.band }

// Band returns the score-sorted slice a tier draws from:
//
//	easy   → the lowest-scoring band words (all of them if fewer)
//	hard   → the highest-scoring band words
//	medium → ranks [band, 2*band), clipped to the corpus
//
// Any tier other than Easy or Hard is treated as Medium.
// The returned slice must not be modified.
func (s *Selector) Band(t Tier) ([]string, error) {
	n := len(s.ranked)
	var out []string
	switch t {
	case Easy:
		out = s.ranked[:min(s.band, n)]
	case Hard:
		out = s.ranked[max(0, n-s.band):]
	default:
		if n > s.band {
			out = s.ranked[s.band:min(2*s.band, n)]
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: tier %q needs more than %d words, have %d",
			ErrInsufficientCorpus, t, s.band, n)
	}
	return out, nil
}

// Select returns one word drawn uniformly from the tier's band.
func (s *Selector) Select(t Tier) (string, error) {
	band, err := s.Band(t)
	if err != nil {
		return "", err
	}
	return band[s.rng.Intn(len(band))], nil
}

package words

import (
	"errors"
	"math"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
)

// syntheticWords builds n six-letter words with a spread of letters.
func syntheticWords(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		b := make([]byte, 6)
		x := i*7919 + 12345
		for j := range b {
			b[j] = byte('a' + x%26)
			x /= 26
		}
		out = append(out, string(b))
	}
	return out
}

func TestNewCorpusFilters(t *testing.T) {
	is := is.New(t)
	c, err := NewCorpus([]string{
		"Planet", "abc", "extraordinarily", "hello1", "  garden ", "café", "wood-work", "JUNGLES",
	}, DefaultMinLen, DefaultMaxLen)
	is.NoErr(err)
	is.Equal(c.Words(), []string{"planet", "garden", "jungles"})
	for _, w := range c.Words() {
		is.True(len(w) >= 6 && len(w) <= 10)
		is.True(isAlpha(w))
	}
}

func TestNewCorpusEmpty(t *testing.T) {
	is := is.New(t)
	_, err := NewCorpus([]string{"cat", "dog"}, DefaultMinLen, DefaultMaxLen)
	is.True(errors.Is(err, ErrDataUnavailable))
}

func TestNewCorpusBadRange(t *testing.T) {
	is := is.New(t)
	_, err := NewCorpus([]string{"planet"}, 8, 6)
	is.True(err != nil)
}

func TestLoadFileMissing(t *testing.T) {
	is := is.New(t)
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt"), DefaultMinLen, DefaultMaxLen)
	is.True(errors.Is(err, ErrDataUnavailable))
}

func TestLoadSkipsComments(t *testing.T) {
	is := is.New(t)
	c, err := Load(strings.NewReader("# header\n\nplanet\n#garden\nrocket\n"), DefaultMinLen, DefaultMaxLen)
	is.NoErr(err)
	is.Equal(c.Len(), 2)
}

func TestLoadDefault(t *testing.T) {
	is := is.New(t)
	c, err := LoadDefault(DefaultMinLen, DefaultMaxLen)
	is.NoErr(err)
	is.True(c.Len() > 100)
	for _, w := range c.Words() {
		is.True(len(w) >= DefaultMinLen && len(w) <= DefaultMaxLen) // length in range
		is.True(isAlpha(w))                                          // lowercase a-z
	}
}

func TestDefaultDictionaryServesAllTiers(t *testing.T) {
	is := is.New(t)
	c, err := LoadDefault(DefaultMinLen, DefaultMaxLen)
	is.NoErr(err)
	is.True(c.Len() >= 3*DefaultBandSize) // three disjoint full bands

	sel := NewSelector(c, DefaultBandSize, rand.New(rand.NewSource(3)))
	seen := make(map[string]Tier)
	for _, tier := range []Tier{Easy, Medium, Hard} {
		band, err := sel.Band(tier)
		is.NoErr(err)
		is.Equal(len(band), DefaultBandSize)
		for _, w := range band {
			_, dup := seen[w]
			is.True(!dup) // each word belongs to one tier
			seen[w] = tier
		}
		w, err := sel.Select(tier)
		is.NoErr(err)
		is.Equal(seen[w], tier)
	}
}

func TestFrequencyCountsEveryOccurrence(t *testing.T) {
	is := is.New(t)
	c, err := NewCorpus([]string{"banana", "bandit"}, DefaultMinLen, DefaultMaxLen)
	is.NoErr(err)
	is.Equal(c.Frequency('a'), 4)
	is.Equal(c.Frequency('n'), 3)
	is.Equal(c.Frequency('b'), 2)
	is.Equal(c.Frequency('z'), 0)
	is.Equal(c.Frequency('#'), 0)
	for _, w := range c.Words() {
		for i := 0; i < len(w); i++ {
			is.True(c.Frequency(w[i]) > 0)
		}
	}
}

func TestDifficultyScoreCommonLettersScoreLower(t *testing.T) {
	is := is.New(t)
	c, err := NewCorpus([]string{"eeeeee", "eeeeee", "zzzzzz"}, DefaultMinLen, DefaultMaxLen)
	is.NoErr(err)
	easy := c.DifficultyScore("eeeeee")
	hard := c.DifficultyScore("zzzzzz")
	is.True(math.Abs(easy-0.5) < 1e-9)
	is.True(math.Abs(hard-1.0) < 1e-9)
	is.True(easy < hard)
	is.True(math.IsInf(c.DifficultyScore("qqqqqq"), 1))
}

func TestParseTier(t *testing.T) {
	is := is.New(t)
	is.Equal(ParseTier("easy"), Easy)
	is.Equal(ParseTier(" HARD "), Hard)
	is.Equal(ParseTier("medium"), Medium)
	is.Equal(ParseTier("nightmare"), Medium)
	is.Equal(ParseTier(""), Medium)
}

func TestSelectStaysInBand(t *testing.T) {
	is := is.New(t)
	c, err := NewCorpus(syntheticWords(4500), DefaultMinLen, DefaultMaxLen)
	is.NoErr(err)
	sel := NewSelector(c, DefaultBandSize, rand.New(rand.NewSource(7)))

	bands := map[Tier]map[string]bool{}
	for _, tier := range []Tier{Easy, Medium, Hard} {
		band, err := sel.Band(tier)
		is.NoErr(err)
		is.Equal(len(band), DefaultBandSize)
		set := make(map[string]bool, len(band))
		for _, w := range band {
			set[w] = true
		}
		bands[tier] = set
	}

	for _, tier := range []Tier{Easy, Medium, Hard} {
		for i := 0; i < 1000; i++ {
			w, err := sel.Select(tier)
			is.NoErr(err)
			is.True(bands[tier][w]) // word outside its band
		}
	}
}

func TestBandsAreScoreOrdered(t *testing.T) {
	is := is.New(t)
	c, err := NewCorpus(syntheticWords(4500), DefaultMinLen, DefaultMaxLen)
	is.NoErr(err)
	sel := NewSelector(c, DefaultBandSize, rand.New(rand.NewSource(1)))

	easy, _ := sel.Band(Easy)
	medium, _ := sel.Band(Medium)
	hard, _ := sel.Band(Hard)
	is.True(c.DifficultyScore(easy[len(easy)-1]) <= c.DifficultyScore(medium[0]))
	is.True(c.DifficultyScore(medium[len(medium)-1]) <= c.DifficultyScore(hard[0]))
	for i := 1; i < len(easy); i++ {
		is.True(c.DifficultyScore(easy[i-1]) <= c.DifficultyScore(easy[i]))
	}
}

func TestUnknownTierUsesMediumBand(t *testing.T) {
	is := is.New(t)
	c, err := NewCorpus(syntheticWords(4500), DefaultMinLen, DefaultMaxLen)
	is.NoErr(err)
	sel := NewSelector(c, DefaultBandSize, rand.New(rand.NewSource(1)))
	medium, err := sel.Band(Medium)
	is.NoErr(err)
	other, err := sel.Band(Tier("nightmare"))
	is.NoErr(err)
	is.Equal(other, medium)
}

func TestSmallCorpusBands(t *testing.T) {
	is := is.New(t)
	c, err := NewCorpus(syntheticWords(10), DefaultMinLen, DefaultMaxLen)
	is.NoErr(err)
	sel := NewSelector(c, 0, rand.New(rand.NewSource(1)))
	is.Equal(sel.BandSize(), DefaultBandSize)

	easy, err := sel.Band(Easy)
	is.NoErr(err)
	is.Equal(len(easy), 10)
	hard, err := sel.Band(Hard)
	is.NoErr(err)
	is.Equal(len(hard), 10)

	_, err = sel.Select(Medium)
	is.True(errors.Is(err, ErrInsufficientCorpus))
}

func TestMediumBandClipsToCorpus(t *testing.T) {
	is := is.New(t)
	c, err := NewCorpus(syntheticWords(25), DefaultMinLen, DefaultMaxLen)
	is.NoErr(err)
	sel := NewSelector(c, 10, rand.New(rand.NewSource(1)))
	medium, err := sel.Band(Medium)
	is.NoErr(err)
	is.Equal(len(medium), 10)
	hard, err := sel.Band(Hard)
	is.NoErr(err)
	is.Equal(len(hard), 10)
}

// internal/words/words.go
//
// Corpus and letter frequency table for the word selector.
//
// Responsibilities:
//   - Read a dictionary (one word per line) from a file, a reader, or the
//     embedded default list.
//   - Keep only purely alphabetic words whose length lies in [minLen, maxLen],
//     normalized to lowercase.
//   - Count every letter occurrence across the kept words.
//   - Score words by summed inverse letter frequency.
//
// Lifecycle:
//   A Corpus is built once at process start and never mutated afterwards, so a
//   single *Corpus can be shared by any number of goroutines without locking.
//
// Constraints:
//   • Words are a–z only after lowercasing; anything else is dropped.
//   • An empty result is ErrDataUnavailable: callers have no fallback.

package words

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/robalobadob/hangman/assets"
)

// Default length bounds (inclusive) for candidate words.
const (
	DefaultMinLen = 6
	DefaultMaxLen = 10
)

var (
	// ErrDataUnavailable is returned when the dictionary cannot be read or
	// yields no usable words.
	ErrDataUnavailable = errors.New("words: dictionary unavailable")

	// ErrInsufficientCorpus is returned when a tier's band is empty.
	ErrInsufficientCorpus = errors.New("words: corpus too small for difficulty")
)

// Corpus is the filtered, immutable list of candidate words together with
// its letter frequency table.
type Corpus struct {
	words  []string
	freq   [26]int
	minLen int
	maxLen int
}

// NewCorpus filters candidates down to alphabetic words of length
// [minLen, maxLen] and builds the frequency table from what is kept.
// Input order is preserved; duplicates are kept as they appear.
func NewCorpus(candidates []string, minLen, maxLen int) (*Corpus, error) {
	if minLen <= 0 || maxLen < minLen {
		return nil, fmt.Errorf("words: invalid length range [%d, %d]", minLen, maxLen)
	}
	c := &Corpus{minLen: minLen, maxLen: maxLen}
	for _, raw := range candidates {
		w := strings.ToLower(strings.TrimSpace(raw))
		if len(w) < minLen || len(w) > maxLen || !isAlpha(w) {
			continue
		}
		c.words = append(c.words, w)
		for i := 0; i < len(w); i++ {
			c.freq[w[i]-'a']++
		}
	}
	if len(c.words) == 0 {
		return nil, fmt.Errorf("%w: no words of length %d-%d", ErrDataUnavailable, minLen, maxLen)
	}
	return c, nil
}

// Load reads one candidate per line from r. Blank lines and lines starting
// with '#' are ignored.
func Load(r io.Reader, minLen, maxLen int) (*Corpus, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		lines = append(lines, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	return NewCorpus(lines, minLen, maxLen)
}

// LoadFile reads the dictionary at path.
func LoadFile(path string, minLen, maxLen int) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	defer f.Close()
	return Load(f, minLen, maxLen)
}

// LoadDefault builds a corpus from the dictionary embedded in the binary.
func LoadDefault(minLen, maxLen int) (*Corpus, error) {
	lines, err := assets.DictionaryList()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	return NewCorpus(lines, minLen, maxLen)
}

// Len reports the number of words in the corpus.
func (c *Corpus) Len() int { return len(c.words) }

// Words returns a copy of the corpus words in load order.
func (c *Corpus) Words() []string {
	out := make([]string, len(c.words))
	copy(out, c.words)
	return out
}

// Bounds returns the inclusive length range the corpus was built with.
func (c *Corpus) Bounds() (minLen, maxLen int) { return c.minLen, c.maxLen }

// Frequency returns how many times letter occurs across the corpus.
// Non a–z input returns 0.
func (c *Corpus) Frequency(letter byte) int {
	if letter < 'a' || letter > 'z' {
		return 0
	}
	return c.freq[letter-'a']
}

// DifficultyScore is the sum of 1/frequency over every letter of word,
// repeats included. Common letters give a low score (easy), rare letters a
// high one (hard). A letter that never occurs in the corpus scores +Inf.
func (c *Corpus) DifficultyScore(word string) float64 {
	var score float64
	for i := 0; i < len(word); i++ {
		n := c.Frequency(word[i])
		if n == 0 {
			return math.Inf(1)
		}
		score += 1 / float64(n)
	}
	return score
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed words.txt
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// DictionaryList returns the embedded default dictionary, unfiltered.
// Length and alphabet filtering is the corpus builder's job.
func DictionaryList() ([]string, error) {
	return readLines("words.txt")
}

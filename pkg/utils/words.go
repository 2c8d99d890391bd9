package utils

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
)

//go:embed words.txt
var defaultWordBank string

var (
	ErrEmptyWordBank = errors.New("word bank empty after parsing")
	ErrBadWord       = errors.New("word cannot be sent in a frame")
)

// DefaultWords returns a copy of the built-in word bank.
func DefaultWords() []string {
	words, _ := parseWords(defaultWordBank)
	return words
}

// LoadWords reads one word per line. Blank lines and lines starting with '#'
// are skipped, duplicates are dropped keeping the first occurrence.
func LoadWords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word bank: %w", err)
	}
	return parseWords(string(data))
}

func parseWords(data string) ([]string, error) {
	lines := strings.Split(data, "\n")
	seen := make(map[string]struct{}, len(lines))
	tmp := make([]string, 0, len(lines))
	for i, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		if !frameSafe(l) {
			return nil, fmt.Errorf("line %d %q: %w", i+1, l, ErrBadWord)
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		tmp = append(tmp, l)
	}
	if len(tmp) == 0 {
		return nil, ErrEmptyWordBank
	}
	return tmp, nil
}

// frameSafe rejects words that would split a START frame: the "//" field
// delimiter, the "," list separator and control characters.
func frameSafe(word string) bool {
	if strings.Contains(word, "//") || strings.ContainsRune(word, ',') {
		return false
	}
	return !strings.ContainsFunc(word, unicode.IsControl)
}

package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWords(t *testing.T) {
	words := DefaultWords()
	assert.Len(t, words, 30)
	assert.Contains(t, words, "police car")

	words[0] = "mutated"
	assert.NotEqual(t, "mutated", DefaultWords()[0])
}

func TestLoadWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("# header\nkite\n\n  drum \nkite\r\n"), 0o600))

	words, err := LoadWords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"kite", "drum"}, words)
}

func TestLoadWordsErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadWords(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)

	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n# nothing\n"), 0o600))
	_, err = LoadWords(path)
	assert.ErrorIs(t, err, ErrEmptyWordBank)
}

func TestLoadWordsRejectsFrameBreakingWords(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"delimiter", "kite\nice//cream\n"},
		{"comma", "kite\nsalt,pepper\n"},
		{"control character", "kite\nbe\x07ll\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "words.txt")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))

			_, err := LoadWords(path)
			assert.ErrorIs(t, err, ErrBadWord)
			assert.ErrorContains(t, err, "line 2")
		})
	}

	// a single slash is fine
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("AC/DC\n"), 0o600))
	words, err := LoadWords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AC/DC"}, words)
}

func TestIDs(t *testing.T) {
	assert.Len(t, GenShortID(), 8)
	assert.NotEqual(t, NewSessionID(), NewSessionID())
}

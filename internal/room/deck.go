package room

import (
	"errors"
	"math/rand"
)

var ErrDeckExhausted = errors.New("word deck exhausted")

// Shuffler reorders words in place.
type Shuffler func(words []string)

func randomShuffle(words []string) {
	rand.Shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })
}

// Deck deals each word of the pool at most once per shuffle.
type Deck struct {
	words   []string
	next    int
	shuffle Shuffler
}

func NewDeck(words []string, shuffle Shuffler) *Deck {
	if shuffle == nil {
		shuffle = randomShuffle
	}
	d := &Deck{
		words:   append([]string(nil), words...),
		shuffle: shuffle,
	}
	d.Shuffle()
	return d
}

// Shuffle reorders the whole pool and starts dealing from the front again.
func (d *Deck) Shuffle() {
	d.shuffle(d.words)
	d.next = 0
}

func (d *Deck) Next() (string, error) {
	if d.next >= len(d.words) {
		return "", ErrDeckExhausted
	}
	w := d.words[d.next]
	d.next++
	return w, nil
}

func (d *Deck) Remaining() int {
	return len(d.words) - d.next
}

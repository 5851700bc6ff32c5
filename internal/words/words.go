// Package words supplies the secret words drawn each round.
package words

import (
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
)

var ErrEmptyVocabulary = errors.New("word list is empty")

// List hands out words in a random order without repeating any word until the
// whole vocabulary has been used, then starts over with a fresh order.
type List struct {
	mu     sync.Mutex
	words  []string
	buffer []string
	rng    *rand.Rand
}

func NewList(vocabulary []string) (*List, error) {
	return newList(vocabulary, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// NewSeededList is NewList with a deterministic order, for tests and replays.
func NewSeededList(vocabulary []string, seed uint64) (*List, error) {
	return newList(vocabulary, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func newList(vocabulary []string, rng *rand.Rand) (*List, error) {
	cleaned := Normalize(vocabulary)
	if len(cleaned) == 0 {
		return nil, ErrEmptyVocabulary
	}
	return &List{words: cleaned, rng: rng}, nil
}

func (l *List) Next() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.buffer) == 0 {
		l.buffer = append(l.buffer[:0], l.words...)
	}
	i := l.rng.IntN(len(l.buffer))
	word := l.buffer[i]
	last := len(l.buffer) - 1
	l.buffer[i] = l.buffer[last]
	l.buffer = l.buffer[:last]
	return word
}

// Words returns a copy of the vocabulary.
func (l *List) Words() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.words))
	copy(out, l.words)
	return out
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.words)
}

// Normalize trims entries and drops blanks and exact duplicates, keeping the
// first occurrence order.
func Normalize(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, word := range raw {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}
	return out
}

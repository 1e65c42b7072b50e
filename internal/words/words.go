// internal/words/words.go
//
// Word list management for the game engine.
//
// Responsibilities:
//   - Define the two capabilities the engine consumes: Lookup (is this a word?)
//     and Supplier (give me a solution).
//   - Load word lists from a file or fall back to the embedded German nouns.
//   - Keep lists normalized: NFC-composed, upper-case, only allowed letters.
//
// Word files:
//   One word per line. Blank lines and lines starting with '#' are skipped,
//   as are words containing characters outside the allowed alphabet.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"math/big"
	"os"
	"strings"
	"sync"

	"github.com/robalobadob/wordle/apps/go-engine/assets"
	"github.com/robalobadob/wordle/apps/go-engine/internal/char"
)

// Lookup reports whether word is known. Implementations must be
// case-insensitive.
type Lookup func(word string) bool

// Supplier returns a solution word. The length of the returned word becomes
// the number of columns of a new grid.
type Supplier func() string

// fallbackWord is returned by Random when a list is empty.
const fallbackWord = "STUHL"

// ErrEmptyList is returned when a loaded list contains no usable words.
var ErrEmptyList = errors.New("words: list is empty")

// List is an immutable, ordered, de-duplicated word list.
type List struct {
	words []string
	set   map[string]struct{}
}

// NewList normalizes ws and drops duplicates and invalid entries, keeping the
// first occurrence order.
func NewList(ws []string) *List {
	l := &List{set: make(map[string]struct{}, len(ws))}
	for _, w := range ws {
		w = normalize(w)
		if !valid(w) {
			continue
		}
		if _, dup := l.set[w]; dup {
			continue
		}
		l.set[w] = struct{}{}
		l.words = append(l.words, w)
	}
	return l
}

// Load reads a word file. It fails with ErrEmptyList when nothing usable
// remains after normalization.
func Load(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var raw []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raw = append(raw, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	l := NewList(raw)
	if l.Len() == 0 {
		return nil, ErrEmptyList
	}
	return l, nil
}

var (
	embeddedOnce sync.Once
	embedded     *List
)

// Embedded returns the list compiled into the binary (German nouns).
// It is loaded once and shared; Lists are never mutated.
func Embedded() *List {
	embeddedOnce.Do(func() {
		nouns, err := assets.Nouns()
		if err != nil {
			// The file is embedded at build time; reading it cannot fail at runtime.
			panic(err)
		}
		embedded = NewList(nouns)
	})
	return embedded
}

// LoadOrEmbedded loads path, or returns the embedded list when path is "".
func LoadOrEmbedded(path string) (*List, error) {
	if path == "" {
		return Embedded(), nil
	}
	return Load(path)
}

// Contains reports whether w is in the list (case-insensitive).
func (l *List) Contains(w string) bool {
	_, ok := l.set[normalize(w)]
	return ok
}

// Random returns a cryptographically random word from the list.
// If the list is empty, falls back to "STUHL".
func (l *List) Random() string {
	if len(l.words) == 0 {
		return fallbackWord
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(l.words))))
	if err != nil {
		return l.words[0]
	}
	return l.words[n.Int64()]
}

// At returns the i-th word in list order.
func (l *List) At(i int) string { return l.words[i] }

// Len returns the number of words.
func (l *List) Len() int { return len(l.words) }

// Lookup exposes Contains as a Lookup capability.
func (l *List) Lookup() Lookup { return l.Contains }

// Supplier exposes Random as a Supplier capability.
func (l *List) Supplier() Supplier { return l.Random }

// AcceptAll is a Lookup that accepts every word.
func AcceptAll(string) bool { return true }

// Fixed returns a Supplier that always yields w.
func Fixed(w string) Supplier {
	return func() string { return w }
}

func normalize(w string) string {
	return char.Normalize(strings.TrimSpace(w))
}

// valid reports whether w is non-empty and made only of allowed letters.
func valid(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if !char.IsAllowed(r) {
			return false
		}
	}
	return true
}

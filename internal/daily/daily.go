// Package daily picks a deterministic word of the day.
package daily

import (
	"encoding/binary"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/robalobadob/wordle/apps/go-engine/internal/words"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a date: a BLAKE2b-256 MAC of the
// date key, keyed by the salt, reduced modulo n.
func WordIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	key := blake2b.Sum256([]byte(salt))
	h, err := blake2b.New256(key[:])
	if err != nil {
		return 0
	}
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Supplier returns the word of the day from list, re-evaluated on every call
// so a long-running server rolls over at midnight UTC.
func Supplier(list *words.List, salt string, now func() time.Time) words.Supplier {
	return func() string {
		if list.Len() == 0 {
			return list.Random()
		}
		return list.At(WordIndex(now(), salt, list.Len()))
	}
}

// internal/char/char.go
//
// Validation and normalization of single typed characters.
//
// Allowed alphabet: Latin letters a–z (any case) plus the German umlauts
// ä, ö and ü (any case). Input is NFC-composed first, so a decomposed
// "a" + U+0308 counts as one character.

package char

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const umlauts = "äÄöÖüÜ"

// alphabet lists the upper-case letters in A–Z, Ä, Ö, Ü order.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZÄÖÜ"

// Char is a validated, upper-cased letter. The zero value is not a valid
// character; obtain one through Validate.
type Char struct {
	r rune
}

// Rune returns the upper-case letter.
func (c Char) Rune() rune { return c.r }

// String returns the letter as a one-rune string.
func (c Char) String() string { return string(c.r) }

// InvalidCharacterError reports input that is not exactly one allowed letter.
type InvalidCharacterError struct {
	Input string
}

func (e *InvalidCharacterError) Error() string {
	return "not allowed character: '" + e.Input + "'"
}

// IsAllowed reports whether r belongs to the allowed alphabet.
func IsAllowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	}
	return strings.ContainsRune(umlauts, r)
}

// Validate accepts input iff it is exactly one allowed letter and returns it
// upper-cased. Any other input yields *InvalidCharacterError.
func Validate(input string) (Char, error) {
	s := norm.NFC.String(input)
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || !IsAllowed(r) {
		return Char{}, &InvalidCharacterError{Input: input}
	}
	return Char{r: unicode.ToUpper(r)}, nil
}

// MustValidate is like Validate but panics on invalid input. Intended for
// constant tables and tests.
func MustValidate(input string) Char {
	c, err := Validate(input)
	if err != nil {
		panic(err)
	}
	return c
}

// Normalize upper-cases and NFC-composes s. It does not validate.
func Normalize(s string) string {
	return strings.ToUpper(norm.NFC.String(s))
}

// Keys splits a typed word into single-character inputs. The word is
// NFC-composed first, so a decomposed umlaut stays one key.
func Keys(word string) []string {
	s := norm.NFC.String(word)
	out := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Alphabet returns every allowed letter, upper-cased.
func Alphabet() []Char {
	out := make([]Char, 0, utf8.RuneCountInString(alphabet))
	for _, r := range alphabet {
		out = append(out, Char{r: r})
	}
	return out
}

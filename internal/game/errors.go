package game

import "errors"

// Grid failures. They are returned unwrapped by Grid and Game so callers can
// compare with errors.Is.
var (
	// ErrGridDone: the grid is WON or LOST, nothing can change anymore.
	ErrGridDone = errors.New("game field is done, no further processing possible")
	// ErrRowDone: the current row is full; only remove or accept are possible.
	ErrRowDone = errors.New("current word is done, only removing or accepting possible")
	// ErrRowInProgress: the current row is not full yet.
	ErrRowInProgress = errors.New("current word isn't done yet")
	// ErrNoActiveCharacter: nothing to remove in the current row.
	ErrNoActiveCharacter = errors.New("there is no current word")
	// ErrUnknownInput: the controller received an input type it does not know.
	ErrUnknownInput = errors.New("unknown input")
)

// Construction failures.
var (
	ErrEmptySolution   = errors.New("solution must not be empty")
	ErrInvalidSolution = errors.New("solution contains characters outside the alphabet")
	ErrInvalidAttempts = errors.New("invalid number of attempts")
)

// WordNotInDictionaryError signals that the submitted row is not a known word.
type WordNotInDictionaryError struct {
	Word string
}

func (e *WordNotInDictionaryError) Error() string {
	return e.Word + " is not in dictionary"
}

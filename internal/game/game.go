// internal/game/game.go
//
// Game controller: translates discrete user actions into Grid operations and
// answers the input-affordance questions the presentation layer asks
// (which keys are enabled, how each letter is coloured).

package game

import (
	"fmt"
	"strings"

	"github.com/robalobadob/wordle/apps/go-engine/internal/char"
)

// InputType discriminates user actions.
type InputType string

const (
	InputChar    InputType = "CHAR"
	InputDelete  InputType = "DEL"
	InputConfirm InputType = "ENTER"
)

// Input is one user action. Value is only used for InputChar.
type Input struct {
	Type  InputType `json:"type"`
	Value string    `json:"value,omitempty"`
}

// CharInput submits a raw character; it is validated by HandleInput.
func CharInput(v string) Input { return Input{Type: InputChar, Value: v} }

// DeleteInput removes the last character of the current row.
func DeleteInput() Input { return Input{Type: InputDelete} }

// ConfirmInput submits the current row.
func ConfirmInput() Input { return Input{Type: InputConfirm} }

// ParseInput maps a key label to an action: "DEL"/"BACKSPACE" delete,
// "ENTER" confirms (case-insensitive), anything else is a character.
func ParseInput(key string) Input {
	switch strings.ToUpper(strings.TrimSpace(key)) {
	case string(InputDelete), "BACKSPACE":
		return DeleteInput()
	case string(InputConfirm):
		return ConfirmInput()
	}
	return CharInput(key)
}

// Game wraps one immutable Grid. Every successful HandleInput yields a new Game.
type Game struct {
	grid *Grid
}

// New wraps grid.
func New(grid *Grid) *Game { return &Game{grid: grid} }

// NewDefault builds a grid from opts and wraps it.
func NewDefault(opts ...GridOption) (*Game, error) {
	grid, err := NewGrid(opts...)
	if err != nil {
		return nil, err
	}
	return New(grid), nil
}

// Grid returns the current snapshot.
func (g *Game) Grid() *Grid { return g.grid }

// HandleInput applies in and returns the next Game. Failures from character
// validation or the grid are returned as they are.
func (g *Game) HandleInput(in Input) (*Game, error) {
	var (
		next *Grid
		err  error
	)
	switch in.Type {
	case InputChar:
		c, cerr := char.Validate(in.Value)
		if cerr != nil {
			return nil, cerr
		}
		next, err = g.grid.Insert(c)
	case InputDelete:
		next, err = g.grid.Remove()
	case InputConfirm:
		next, err = g.grid.AcceptCurrentRow()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownInput, in.Type)
	}
	if err != nil {
		return nil, err
	}
	return &Game{grid: next}, nil
}

// CanAcceptInput reports whether a character key should be enabled.
func (g *Game) CanAcceptInput() bool {
	return g.grid.State() == StateInProgress && !g.grid.IsRowDone()
}

// CanConfirm reports whether the confirm key should be enabled.
func (g *Game) CanConfirm() bool { return g.grid.IsRowDone() }

// CanDelete reports whether the delete key should be enabled.
func (g *Game) CanDelete() bool {
	return g.grid.State() == StateInProgress && g.grid.CurrentColumn() > 0
}

// LetterAvailability scans every tile showing letter (case-insensitive) and
// returns the best-known status: SOLVED > AVAILABLE > MISSING > UNKNOWN.
func (g *Game) LetterAvailability(letter string) Availability {
	want := char.Normalize(letter)
	best := AvailabilityUnknown
	for _, row := range g.grid.tiles {
		for _, t := range row {
			if t.Value != want {
				continue
			}
			if a := availabilityOf(t.State); a.rank() > best.rank() {
				best = a
			}
		}
	}
	return best
}

// Keyboard returns LetterAvailability for every letter of the alphabet.
func (g *Game) Keyboard() map[string]Availability {
	letters := char.Alphabet()
	out := make(map[string]Availability, len(letters))
	for _, c := range letters {
		out[c.String()] = g.LetterAvailability(c.String())
	}
	return out
}

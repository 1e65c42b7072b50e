// Package render draws the grid and the on-screen keyboard as text.
//
// Tiles and keys carry a marker in every profile so they stay readable
// without colour:
//
//	[A] solved   (A) available   .A. missing   A  typed   _  empty
//
// With a colour profile the markers are additionally painted with the usual
// green / yellow / grey backgrounds.
package render

import (
	"io"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
)

// KeyboardRows is the on-screen key layout (QWERTZ with umlauts).
var KeyboardRows = [][]string{
	{"Q", "W", "E", "R", "T", "Z", "U", "I", "O", "P", "Ü"},
	{"A", "S", "D", "F", "G", "H", "J", "K", "L", "Ö", "Ä"},
	{"DEL", "Y", "X", "C", "V", "B", "N", "M", "ENTER"},
}

const (
	colorSolved    = "#6aaa64"
	colorAvailable = "#c9b458"
	colorMissing   = "#787c7e"
	colorText      = "#ffffff"
)

// Renderer renders game state for one output.
type Renderer struct {
	out *termenv.Output
}

// New returns a Renderer writing escape sequences suited to w. With color
// false the ASCII profile is forced.
func New(w io.Writer, color bool) *Renderer {
	if !color {
		return &Renderer{out: termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))}
	}
	return &Renderer{out: termenv.NewOutput(w)}
}

// Grid renders every row of g, one line per row.
func (r *Renderer) Grid(g *game.Grid) string {
	var b strings.Builder
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Columns(); col++ {
			if col > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(r.tile(g.Tile(row, col)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Keyboard renders KeyboardRows coloured by what the player knows. Keys that
// cannot be used right now are shown in lower case.
func (r *Renderer) Keyboard(gm *game.Game) string {
	var b strings.Builder
	for i, keys := range KeyboardRows {
		if i == 1 {
			b.WriteByte(' ')
		}
		for j, k := range keys {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(r.key(gm, k))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Status renders a one-line summary of the game state.
func (r *Renderer) Status(gm *game.Game) string {
	g := gm.Grid()
	switch g.State() {
	case game.StateWon:
		return r.out.String("Gewonnen!").Bold().String()
	case game.StateLost:
		solution, _ := g.RevealSolution()
		return "Verloren. Das Wort war " + r.out.String(solution).Bold().String() + "."
	}
	left := g.Rows() - g.CurrentRow()
	if left == 1 {
		return "Noch 1 Versuch."
	}
	return "Noch " + strconv.Itoa(left) + " Versuche."
}

func (r *Renderer) tile(t game.Tile) string {
	switch t.State {
	case game.TileSolved:
		return r.paint("["+t.Value+"]", colorSolved)
	case game.TileAvailable:
		return r.paint("("+t.Value+")", colorAvailable)
	case game.TileMissing:
		return r.paint("."+t.Value+".", colorMissing)
	case game.TileUnknown:
		return " " + t.Value + " "
	}
	return " _ "
}

func (r *Renderer) key(gm *game.Game, k string) string {
	switch k {
	case "DEL":
		return " " + enabled(k, gm.CanDelete()) + " "
	case "ENTER":
		return " " + enabled(k, gm.CanConfirm()) + " "
	}

	label := enabled(k, gm.CanAcceptInput())
	switch gm.LetterAvailability(k) {
	case game.AvailabilitySolved:
		return r.paint("["+label+"]", colorSolved)
	case game.AvailabilityAvailable:
		return r.paint("("+label+")", colorAvailable)
	case game.AvailabilityMissing:
		return r.paint("."+label+".", colorMissing)
	}
	return " " + label + " "
}

func (r *Renderer) paint(s, bg string) string {
	return r.out.String(s).
		Foreground(r.out.Color(colorText)).
		Background(r.out.Color(bg)).
		String()
}

func enabled(label string, ok bool) string {
	if ok {
		return label
	}
	return strings.ToLower(label)
}

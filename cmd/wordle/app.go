package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/robalobadob/wordle/apps/go-engine/internal/char"
	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
	"github.com/robalobadob/wordle/apps/go-engine/internal/render"
)

// app owns the current game and the transient message shown under it.
type app struct {
	out     io.Writer
	r       *render.Renderer
	newGame game.Factory
	setup   game.Setup

	game    *game.Game
	message string
}

func (a *app) reset() error {
	g, err := a.newGame(a.setup)
	if err != nil {
		return err
	}
	a.game = g
	a.message = ""
	return nil
}

// handle executes one prompt line and reports whether to quit.
func (a *app) handle(line string) bool {
	line = strings.TrimSpace(line)

	switch strings.ToLower(line) {
	case "quit", "exit":
		return true
	case "help", "?":
		a.help()
		return false
	case "new":
		if err := a.reset(); err != nil {
			a.message = err.Error()
		}
		a.show()
		return false
	case "del", "-":
		a.apply(game.DeleteInput())
		a.show()
		return false
	case "":
		a.apply(game.ConfirmInput())
		a.show()
		return false
	}

	if keys := char.Keys(line); len(keys) == 1 {
		a.apply(game.CharInput(keys[0]))
	} else {
		a.guess(keys)
	}
	a.show()
	return false
}

// apply runs one input. A failure keeps the game and becomes the message.
func (a *app) apply(in game.Input) {
	next, err := a.game.HandleInput(in)
	if err != nil {
		a.message = err.Error()
		return
	}
	a.game = next
	a.message = ""
}

// guess types keys into the current row and confirms it. Nothing changes
// unless every step succeeds.
func (a *app) guess(keys []string) {
	g := a.game
	var err error
	for _, k := range keys {
		if g, err = g.HandleInput(game.CharInput(k)); err != nil {
			a.message = err.Error()
			return
		}
	}
	if g, err = g.HandleInput(game.ConfirmInput()); err != nil {
		a.message = err.Error()
		return
	}
	a.game = g
	a.message = ""
}

func (a *app) show() {
	fmt.Fprintln(a.out)
	fmt.Fprint(a.out, a.r.Grid(a.game.Grid()))
	fmt.Fprintln(a.out)
	fmt.Fprint(a.out, a.r.Keyboard(a.game))
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, a.r.Status(a.game))
	if a.message != "" {
		fmt.Fprintln(a.out, "! "+a.message)
	}
}

func (a *app) help() {
	fmt.Fprint(a.out, `Commands:
  <word>     type the word and confirm it
  <letter>   type one letter
  (empty)    confirm the current row
  del, -     remove the last letter
  new        start a new game
  help, ?    show this help
  quit       exit

Tiles: [A] right place  (A) elsewhere in the word  .A. not in the word
`)
}

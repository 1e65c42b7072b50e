// wordle is a terminal client for the word-guessing engine.
//
// Usage:
//
//	wordle [flags]
//
// Flags:
//
//	-a, --attempts   Number of rows (default from config, 6)
//	    --answer     Fixed solution, for practice
//	-d, --daily      Play the word of the day
//	-w, --words      Word file (one word per line), default: embedded German nouns
//	-c, --config     JSONC config file (default $WORDLE_CONFIG)
//	    --no-color   Plain output
//	    --history    Prompt history file (default ~/.wordle_history)
//
// At the prompt:
//
//	<word>       Type the word and confirm it
//	<letter>     Type one letter
//	(empty)      Confirm the current row
//	del, -       Remove the last letter
//	new          Start a new game
//	help, ?      Show this help
//	quit, exit   Exit
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/robalobadob/wordle/apps/go-engine/internal/config"
	"github.com/robalobadob/wordle/apps/go-engine/internal/daily"
	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
	"github.com/robalobadob/wordle/apps/go-engine/internal/render"
	"github.com/robalobadob/wordle/apps/go-engine/internal/words"
)

// options are the parsed command line flags.
type options struct {
	Attempts int
	Answer   string
	Daily    bool
	Words    string
	Config   string
	NoColor  bool
	History  string

	attemptsSet bool
	wordsSet    bool
}

func parseFlags(args []string, getenv func(string) string) (options, error) {
	var o options

	fs := flag.NewFlagSet("wordle", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVarP(&o.Attempts, "attempts", "a", game.DefaultAttempts, "number of rows")
	fs.StringVar(&o.Answer, "answer", "", "fixed solution")
	fs.BoolVarP(&o.Daily, "daily", "d", false, "play the word of the day")
	fs.StringVarP(&o.Words, "words", "w", "", "word file")
	fs.StringVarP(&o.Config, "config", "c", getenv("WORDLE_CONFIG"), "JSONC config file")
	fs.BoolVar(&o.NoColor, "no-color", getenv("NO_COLOR") != "", "plain output")
	fs.StringVar(&o.History, "history", defaultHistory(), "prompt history file")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	o.attemptsSet = fs.Changed("attempts")
	o.wordsSet = fs.Changed("words")
	return o, nil
}

func defaultHistory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".wordle_history")
}

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	opts, err := parseFlags(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wordle: %v\n", err)
		os.Exit(2)
	}

	a, err := newApp(opts, os.Getenv, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wordle: %v\n", err)
		os.Exit(1)
	}
	if err := a.run(opts.History); err != nil {
		fmt.Fprintf(os.Stderr, "wordle: %v\n", err)
		os.Exit(1)
	}
}

// newApp merges config file, environment and flags into a ready game.
func newApp(opts options, getenv func(string) string, out io.Writer) (*app, error) {
	cfg, err := config.LoadWith(opts.Config, getenv)
	if err != nil {
		return nil, err
	}
	if opts.attemptsSet {
		cfg.Attempts = opts.Attempts
	}
	if opts.wordsSet {
		cfg.WordsFile = opts.Words
	}

	list, err := words.LoadOrEmbedded(cfg.WordsFile)
	if err != nil {
		return nil, fmt.Errorf("load word list: %w", err)
	}
	rule, err := cfg.FeedbackRule()
	if err != nil {
		return nil, err
	}
	newGame := game.NewFactory(game.FactoryConfig{
		Attempts: cfg.Attempts,
		Lookup:   list.Lookup(),
		Random:   list.Supplier(),
		Daily:    daily.Supplier(list, cfg.DailySalt, time.Now),
		Feedback: rule,
	})

	a := &app{
		out:     out,
		r:       render.New(out, !opts.NoColor),
		newGame: newGame,
		setup:   game.Setup{Answer: opts.Answer, Daily: opts.Daily},
	}
	if err := a.reset(); err != nil {
		return nil, err
	}
	return a, nil
}

// run is the interactive prompt loop.
func (a *app) run(historyPath string) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}
	defer saveHistory(line, historyPath)

	fmt.Fprintln(a.out, "wordle - type 'help' for commands.")
	a.show()

	for {
		input, err := line.Prompt("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(a.out, "\nTschüss!")
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if a.handle(input) {
			fmt.Fprintln(a.out, "Tschüss!")
			return nil
		}
	}
}

// saveHistory replaces the history file atomically so a crash never leaves
// it truncated.
func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	var buf bytes.Buffer
	if _, err := line.WriteHistory(&buf); err != nil {
		log.Warn().Err(err).Msg("serialize history")
		return
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("write history")
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func newTestApp(t *testing.T, args ...string) (*app, *bytes.Buffer) {
	t.Helper()

	opts, err := parseFlags(append([]string{"--no-color", "--answer", "stuhl"}, args...), env(nil))
	require.NoError(t, err)

	var out bytes.Buffer
	a, err := newApp(opts, env(nil), &out)
	require.NoError(t, err)
	return a, &out
}

func Test_ParseFlags_Reads_Short_And_Long_Forms(t *testing.T) {
	t.Parallel()

	o, err := parseFlags([]string{"-a", "4", "--daily", "-w", "words.txt", "--history", ""}, env(nil))
	require.NoError(t, err)
	assert.Equal(t, 4, o.Attempts)
	assert.True(t, o.attemptsSet)
	assert.True(t, o.Daily)
	assert.Equal(t, "words.txt", o.Words)
	assert.Empty(t, o.History)

	o, err = parseFlags(nil, env(map[string]string{"WORDLE_CONFIG": "/etc/wordle.jsonc", "NO_COLOR": "1"}))
	require.NoError(t, err)
	assert.Equal(t, "/etc/wordle.jsonc", o.Config)
	assert.True(t, o.NoColor)
	assert.False(t, o.attemptsSet)

	_, err = parseFlags([]string{"extra"}, env(nil))
	require.Error(t, err)
}

func Test_Handle_Word_Types_And_Confirms(t *testing.T) {
	t.Parallel()

	a, out := newTestApp(t)

	assert.False(t, a.handle("Stück"))
	assert.Equal(t, 1, a.game.Grid().CurrentRow())
	assert.Empty(t, a.message)
	assert.Contains(t, out.String(), "[S] [T] .Ü. .C. .K.")

	a.handle("stuhl")
	assert.Equal(t, game.StateWon, a.game.Grid().State())
	assert.Contains(t, out.String(), "Gewonnen!")
}

func Test_Handle_Rejected_Word_Leaves_Row_Untouched(t *testing.T) {
	t.Parallel()

	a, out := newTestApp(t)

	a.handle("abcde")
	assert.Equal(t, 0, a.game.Grid().CurrentColumn())
	assert.Equal(t, "ABCDE is not in dictionary", a.message)
	assert.Contains(t, out.String(), "! ABCDE is not in dictionary")

	a.handle("toolong")
	assert.Equal(t, game.ErrRowDone.Error(), a.message)
	assert.Equal(t, 0, a.game.Grid().CurrentColumn())
}

func Test_Handle_Accepts_Decomposed_Umlauts(t *testing.T) {
	t.Parallel()

	a, out := newTestApp(t)

	a.handle("Stu\u0308ck")
	assert.Empty(t, a.message)
	assert.Equal(t, 1, a.game.Grid().CurrentRow())
	assert.Contains(t, out.String(), "[S] [T] .\u00dc. .C. .K.")

	a.handle("u\u0308")
	assert.Empty(t, a.message)
	assert.Equal(t, "\u00dc", a.game.Grid().Tile(1, 0).Value)
}

func Test_Handle_Single_Keys(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t)

	a.handle("-")
	assert.Equal(t, game.ErrNoActiveCharacter.Error(), a.message)

	a.handle("s")
	assert.Equal(t, 1, a.game.Grid().CurrentColumn())
	assert.Empty(t, a.message, "success clears the message")

	a.handle("")
	assert.Equal(t, game.ErrRowInProgress.Error(), a.message)

	a.handle("del")
	assert.Equal(t, 0, a.game.Grid().CurrentColumn())

	a.handle("%")
	assert.Equal(t, "not allowed character: '%'", a.message)
}

func Test_Handle_New_And_Quit(t *testing.T) {
	t.Parallel()

	a, out := newTestApp(t, "--attempts", "2")
	require.Equal(t, 2, a.game.Grid().Rows())

	a.handle("tisch")
	before := a.game
	assert.False(t, a.handle("new"))
	assert.NotSame(t, before, a.game)
	assert.Equal(t, 0, a.game.Grid().CurrentRow())

	a.handle("help")
	assert.Contains(t, out.String(), "Commands:")

	assert.True(t, a.handle("quit"))
	assert.True(t, a.handle(" EXIT "))
}

func Test_NewApp_Uses_Word_File_And_Config(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	wordsPath := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(wordsPath, []byte("haus\nmaus\n"), 0o600))
	cfgPath := filepath.Join(dir, "wordle.jsonc")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"attempts": 3, // short game
	}`), 0o600))

	opts, err := parseFlags([]string{"--no-color", "-c", cfgPath, "-w", wordsPath, "--answer", "haus"}, env(nil))
	require.NoError(t, err)

	a, err := newApp(opts, env(nil), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 3, a.game.Grid().Rows())

	a.handle("baum")
	assert.Equal(t, "BAUM is not in dictionary", a.message)
	a.handle("maus")
	assert.Empty(t, a.message)
}

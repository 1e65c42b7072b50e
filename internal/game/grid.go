// internal/game/grid.go
//
// Immutable guessing grid (rows × columns of tiles).
// Responsibilities:
//   - Create grids from an explicit or supplied solution.
//   - Insert/remove characters on the active row.
//   - Accept a full row: dictionary check, feedback colouring, state transition.
//
// Every operation returns a new *Grid; the receiver is never modified. Rows that
// an operation does not touch are shared between snapshots, rows it touches are
// copied, so older snapshots stay valid and can be read concurrently.

package game

import (
	"fmt"
	"strings"

	"github.com/robalobadob/wordle/apps/go-engine/internal/char"
	"github.com/robalobadob/wordle/apps/go-engine/internal/words"
)

// DefaultAttempts is the number of rows when WithAttempts is not given.
const DefaultAttempts = 6

// Grid is one immutable snapshot of the game field.
type Grid struct {
	state         State
	solution      string
	letters       []rune
	rows          int
	columns       int
	currentRow    int
	currentColumn int
	tiles         [][]Tile
	lookup        words.Lookup
	rule          FeedbackRule
}

type gridConfig struct {
	solution string
	attempts int
	lookup   words.Lookup
	supplier words.Supplier
	rule     FeedbackRule
}

// GridOption configures NewGrid.
type GridOption func(*gridConfig)

// WithSolution fixes the solution. An empty string means "use the supplier".
func WithSolution(s string) GridOption {
	return func(c *gridConfig) { c.solution = s }
}

// WithAttempts sets the number of rows.
func WithAttempts(n int) GridOption {
	return func(c *gridConfig) { c.attempts = n }
}

// WithDictionary sets the lookup gating AcceptCurrentRow.
func WithDictionary(l words.Lookup) GridOption {
	return func(c *gridConfig) { c.lookup = l }
}

// WithSupplier sets where a solution comes from when none is given.
func WithSupplier(s words.Supplier) GridOption {
	return func(c *gridConfig) { c.supplier = s }
}

// WithFeedback selects the colouring rule (FeedbackSimple by default).
func WithFeedback(r FeedbackRule) GridOption {
	return func(c *gridConfig) { c.rule = r }
}

// NewGrid creates an empty grid. Without WithDictionary or WithSupplier the
// embedded noun list is used for the missing capability.
func NewGrid(opts ...GridOption) (*Grid, error) {
	cfg := gridConfig{attempts: DefaultAttempts, rule: FeedbackSimple}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.lookup == nil {
		cfg.lookup = words.Embedded().Lookup()
	}

	solution := cfg.solution
	if solution == "" {
		if cfg.supplier == nil {
			cfg.supplier = words.Embedded().Supplier()
		}
		solution = cfg.supplier()
	}
	solution = char.Normalize(solution)
	if solution == "" {
		return nil, ErrEmptySolution
	}
	letters := []rune(solution)
	for _, r := range letters {
		if !char.IsAllowed(r) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSolution, solution)
		}
	}
	if cfg.attempts < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAttempts, cfg.attempts)
	}

	rows, columns := cfg.attempts, len(letters)
	tiles := make([][]Tile, rows)
	for r := range tiles {
		row := make([]Tile, columns)
		for c := range row {
			row[c] = EmptyTile()
		}
		tiles[r] = row
	}

	return &Grid{
		state:    StateInProgress,
		solution: solution,
		letters:  letters,
		rows:     rows,
		columns:  columns,
		tiles:    tiles,
		lookup:   cfg.lookup,
		rule:     cfg.rule,
	}, nil
}

// Insert writes c into the next free tile of the current row.
//
// Fails with ErrGridDone once the grid is WON/LOST, and with ErrRowDone when
// the row is full.
func (g *Grid) Insert(c char.Char) (*Grid, error) {
	if g.state.Done() {
		return nil, ErrGridDone
	}
	if g.IsRowDone() {
		return nil, ErrRowDone
	}

	row := g.copyRow(g.currentRow)
	row[g.currentColumn] = Tile{State: TileUnknown, Value: c.String()}

	next := g.withRow(g.currentRow, row)
	next.currentColumn++
	return next, nil
}

// Remove clears the last written tile of the current row.
//
// Fails with ErrGridDone once the grid is WON/LOST, and with
// ErrNoActiveCharacter when the row is empty.
func (g *Grid) Remove() (*Grid, error) {
	if g.state.Done() {
		return nil, ErrGridDone
	}
	if g.currentColumn == 0 {
		return nil, ErrNoActiveCharacter
	}

	row := g.copyRow(g.currentRow)
	row[g.currentColumn-1] = EmptyTile()

	next := g.withRow(g.currentRow, row)
	next.currentColumn--
	return next, nil
}

// IsRowDone reports whether the current row is full.
func (g *Grid) IsRowDone() bool { return g.currentColumn == g.columns }

// AcceptCurrentRow submits the current row.
//
// Validation:
//   - Grid must not be done (ErrGridDone).
//   - Row must be full (ErrRowInProgress).
//   - Word must pass the dictionary (*WordNotInDictionaryError).
//
// On success every tile of the row gets its feedback state, the cursor moves
// to the next row and the state is recomputed:
//   - WON if any row spells the solution.
//   - LOST if all rows are used.
//   - IN_PROGRESS otherwise.
//
// When the last row was submitted the column cursor is left where it was.
func (g *Grid) AcceptCurrentRow() (*Grid, error) {
	if g.state.Done() {
		return nil, ErrGridDone
	}
	if !g.IsRowDone() {
		return nil, ErrRowInProgress
	}
	word := g.CurrentWord()
	if !g.lookup(word) {
		return nil, &WordNotInDictionaryError{Word: word}
	}

	row := g.copyRow(g.currentRow)
	marks := g.rule.score(g.letters, rowLetters(row))
	for i := range row {
		row[i].State = marks[i]
	}

	next := g.withRow(g.currentRow, row)
	next.currentRow++
	if next.currentRow < next.rows {
		next.currentColumn = 0
	}
	next.state = next.determineState()
	return next, nil
}

// State returns the grid state.
func (g *Grid) State() State { return g.state }

// Rows returns the number of attempts.
func (g *Grid) Rows() int { return g.rows }

// Columns returns the word length.
func (g *Grid) Columns() int { return g.columns }

// CurrentRow returns the active row index; equals Rows once all rows are used.
func (g *Grid) CurrentRow() int { return g.currentRow }

// CurrentColumn returns the next write position in the active row.
func (g *Grid) CurrentColumn() int { return g.currentColumn }

// Tile returns the tile at (row, col).
func (g *Grid) Tile(row, col int) Tile { return g.tiles[row][col] }

// Tiles returns a deep copy of the tile matrix.
func (g *Grid) Tiles() [][]Tile {
	out := make([][]Tile, len(g.tiles))
	for i := range g.tiles {
		out[i] = g.copyRow(i)
	}
	return out
}

// CurrentWord returns the letters of the active row (blank tiles as " ").
// Once every row is used it returns "".
func (g *Grid) CurrentWord() string {
	if g.currentRow >= g.rows {
		return ""
	}
	return rowWord(g.tiles[g.currentRow])
}

// RevealSolution returns the solution, but only once the grid is done.
func (g *Grid) RevealSolution() (string, bool) {
	if !g.state.Done() {
		return "", false
	}
	return g.solution, true
}

// Snapshot returns a serializable copy of the grid.
func (g *Grid) Snapshot() Snapshot {
	solution, _ := g.RevealSolution()
	return Snapshot{
		State:         g.state,
		Rows:          g.rows,
		Columns:       g.columns,
		CurrentRow:    g.currentRow,
		CurrentColumn: g.currentColumn,
		Tiles:         g.Tiles(),
		Solution:      solution,
	}
}

func (g *Grid) determineState() State {
	if g.solved() {
		return StateWon
	}
	if g.currentRow >= g.rows {
		return StateLost
	}
	return StateInProgress
}

// solved compares every row with the solution by raw letters, not by tile state.
func (g *Grid) solved() bool {
	for _, row := range g.tiles {
		if strings.EqualFold(rowWord(row), g.solution) {
			return true
		}
	}
	return false
}

func (g *Grid) copyRow(i int) []Tile {
	row := make([]Tile, len(g.tiles[i]))
	copy(row, g.tiles[i])
	return row
}

// withRow returns a shallow copy of g whose row i is replaced by row.
func (g *Grid) withRow(i int, row []Tile) *Grid {
	next := *g
	next.tiles = make([][]Tile, len(g.tiles))
	copy(next.tiles, g.tiles)
	next.tiles[i] = row
	return &next
}

func rowWord(row []Tile) string {
	var b strings.Builder
	for _, t := range row {
		b.WriteString(t.Value)
	}
	return b.String()
}

func rowLetters(row []Tile) []rune {
	out := make([]rune, len(row))
	for i, t := range row {
		out[i] = []rune(t.Value)[0]
	}
	return out
}

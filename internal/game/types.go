// internal/game/types.go
//
// Core type definitions for the guessing engine.
// Defines:
//   - TileState: per-cell lifecycle (empty → unknown → missing/available/solved).
//   - Tile: one letter slot of the grid.
//   - State: grid-level state machine (in progress → won | lost).
//   - Availability: best-known status of a letter across the grid (keyboard colouring).

package game

// TileState represents the state of a single tile.
//   - "EMPTY":     no character entered yet.
//   - "UNKNOWN":   character entered, row not yet submitted.
//   - "MISSING":   submitted, letter does not occur in the solution.
//   - "AVAILABLE": submitted, letter occurs in the solution elsewhere.
//   - "SOLVED":    submitted, letter occurs in the solution at this position.
type TileState string

const (
	TileEmpty     TileState = "EMPTY"
	TileUnknown   TileState = "UNKNOWN"
	TileMissing   TileState = "MISSING"
	TileAvailable TileState = "AVAILABLE"
	TileSolved    TileState = "SOLVED"
)

// Tile is one letter slot. Value is a single upper-case letter, or " " when
// the tile is empty.
type Tile struct {
	State TileState `json:"state"`
	Value string    `json:"value"`
}

// emptyValue is the display value of an empty tile.
const emptyValue = " "

// EmptyTile returns a tile with no character.
func EmptyTile() Tile { return Tile{State: TileEmpty, Value: emptyValue} }

// State is the state of a whole grid. WON and LOST are terminal.
type State string

const (
	StateInProgress State = "IN_PROGRESS"
	StateWon        State = "WON"
	StateLost       State = "LOST"
)

// Done reports whether s is terminal.
func (s State) Done() bool { return s != StateInProgress }

// Availability is what the player knows about a letter.
type Availability string

const (
	AvailabilityUnknown   Availability = "UNKNOWN"
	AvailabilityMissing   Availability = "MISSING"
	AvailabilityAvailable Availability = "AVAILABLE"
	AvailabilitySolved    Availability = "SOLVED"
)

// rank orders availabilities: SOLVED > AVAILABLE > MISSING > UNKNOWN.
func (a Availability) rank() int {
	switch a {
	case AvailabilitySolved:
		return 3
	case AvailabilityAvailable:
		return 2
	case AvailabilityMissing:
		return 1
	}
	return 0
}

// availabilityOf maps a submitted tile state to the matching availability.
func availabilityOf(s TileState) Availability {
	switch s {
	case TileSolved:
		return AvailabilitySolved
	case TileAvailable:
		return AvailabilityAvailable
	case TileMissing:
		return AvailabilityMissing
	}
	return AvailabilityUnknown
}

// Snapshot is a serializable, self-contained copy of a grid, used by the
// presentation layers (HTTP, websocket, MCP).
type Snapshot struct {
	State         State    `json:"state"`
	Rows          int      `json:"rows"`
	Columns       int      `json:"columns"`
	CurrentRow    int      `json:"currentRow"`
	CurrentColumn int      `json:"currentColumn"`
	Tiles         [][]Tile `json:"tiles"`
	Solution      string   `json:"solution,omitempty"` // only once the grid is done
}

package store

import "github.com/robalobadob/wordle/apps/go-engine/internal/game"

// View is the JSON shape of a session sent to clients and watchers.
type View struct {
	GameID         string                       `json:"gameId"`
	Game           game.Snapshot                `json:"game"`
	CanAcceptInput bool                         `json:"canAcceptInput"`
	CanConfirm     bool                         `json:"canConfirm"`
	CanDelete      bool                         `json:"canDelete"`
	Keyboard       map[string]game.Availability `json:"keyboard"`
	Message        string                       `json:"message,omitempty"`
}

// View builds the client view of s.
func (s Session) View() View {
	return View{
		GameID:         s.ID,
		Game:           s.Game.Grid().Snapshot(),
		CanAcceptInput: s.Game.CanAcceptInput(),
		CanConfirm:     s.Game.CanConfirm(),
		CanDelete:      s.Game.CanDelete(),
		Keyboard:       s.Game.Keyboard(),
		Message:        s.Message,
	}
}

// Package types holds the JSON wire messages exchanged over the socket.
package types

import "github.com/blackout-game/blackout-backend/internal/view"

// ClientMessage is the tagged union of every client-to-server event. Only
// the fields relevant to the given type are set.
type ClientMessage struct {
	Type            string   `json:"type"`
	Name            string   `json:"name,omitempty"`
	Code            string   `json:"code,omitempty"`
	SessionID       string   `json:"sessionId,omitempty"`
	PlayerID        string   `json:"playerId,omitempty"`
	ResumeToken     string   `json:"resumeToken,omitempty"`
	MaxRounds       int      `json:"maxRounds,omitempty"`
	Language        string   `json:"language,omitempty"`
	ExcludedLetters []string `json:"excludedLetters,omitempty"`
	WinnerID        string   `json:"winnerId,omitempty"`
}

// ServerMessage is either a broadcast room update, the result of a
// request-style event (Op names the request), or a protocol error.
type ServerMessage struct {
	Type        string         `json:"type"` // "roomUpdate" | "result" | "error"
	Op          string         `json:"op,omitempty"`
	OK          bool           `json:"ok,omitempty"`
	RoomCode    string         `json:"roomCode,omitempty"`
	PlayerID    string         `json:"playerId,omitempty"`
	ResumeToken string         `json:"resumeToken,omitempty"`
	Error       string         `json:"error,omitempty"`
	Room        *view.RoomView `json:"room,omitempty"`
}

package session

import "github.com/blackout-game/blackout-backend/internal/view"

// Msg is an inbound event for the session loop. One variant exists per
// operation; the ws layer validates payloads at the boundary and builds
// these.
type Msg interface{ isSessionMsg() }

// JoinResult answers the three operations that can land a caller in a
// room. The resume secret is issued once and never rotated.
type JoinResult struct {
	Err          error
	RoomCode     string
	PlayerID     string
	ResumeSecret string
}

type Ack struct{ Err error }

type CreateRoom struct {
	Name   string
	Outbox chan<- any
	Reply  chan JoinResult
}

type JoinRoom struct {
	Name   string
	Code   string
	Outbox chan<- any
	Reply  chan JoinResult
}

// ResumeSession is the "resume by session, not by explicit code" path: a
// trusted opaque session id stands in for the resume secret. Unknown
// sessions create a fresh room instead.
type ResumeSession struct {
	SessionID string
	PlayerID  string
	Name      string
	Outbox    chan<- any
	Reply     chan JoinResult
}

// ResumeToken replies with a JoinResult so the transport learns the
// canonical room code even when the client sent a lowercased one.
type ResumeToken struct {
	Code     string
	PlayerID string
	Secret   string
	Outbox   chan<- any
	Reply    chan JoinResult
}

type Leave struct {
	Code     string
	PlayerID string
}

// Disconnect carries the connection's outbox so a stale disconnect
// arriving after the player resumed elsewhere is ignored.
type Disconnect struct {
	Code     string
	PlayerID string
	Outbox   chan<- any
}

type SetMaxRounds struct {
	Code      string
	PlayerID  string
	MaxRounds int
}

type SetSettings struct {
	Code            string
	PlayerID        string
	Language        string
	ExcludedLetters []string
}

type StartGame struct {
	Code     string
	PlayerID string
	Reply    chan Ack
}

type RevealPrompt struct {
	Code     string
	PlayerID string
}

type RerollPrompt struct {
	Code     string
	PlayerID string
}

type PickWinner struct {
	Code     string
	PlayerID string
	WinnerID string
}

type SkipRound struct {
	Code     string
	PlayerID string
}

type RestartGame struct {
	Code     string
	PlayerID string
}

type RequestState struct {
	Code     string
	PlayerID string
}

type Shutdown struct{}

// Inspect reflects a room for tests without data races: the loop projects
// the room for the given viewer and hands the snapshot over the reply
// channel. Nil when the room doesn't exist.
type Inspect struct {
	Code   string
	Viewer string
	Reply  chan *view.RoomView
}

// advanceTimer is posted by the round-end display timer; the loop
// re-validates the room's phase before acting on it.
type advanceTimer struct {
	Code string
}

func (CreateRoom) isSessionMsg()    {}
func (JoinRoom) isSessionMsg()      {}
func (ResumeSession) isSessionMsg() {}
func (ResumeToken) isSessionMsg()   {}
func (Leave) isSessionMsg()         {}
func (Disconnect) isSessionMsg()    {}
func (SetMaxRounds) isSessionMsg()  {}
func (SetSettings) isSessionMsg()   {}
func (StartGame) isSessionMsg()     {}
func (RevealPrompt) isSessionMsg()  {}
func (RerollPrompt) isSessionMsg()  {}
func (PickWinner) isSessionMsg()    {}
func (SkipRound) isSessionMsg()     {}
func (RestartGame) isSessionMsg()   {}
func (RequestState) isSessionMsg()  {}
func (Shutdown) isSessionMsg()      {}
func (Inspect) isSessionMsg()       {}
func (advanceTimer) isSessionMsg()  {}

package game

import "errors"

// Validation
var ErrInvalidName = errors.New("invalid name")
var ErrNameTaken = errors.New("name already taken")
var ErrInvalidLanguage = errors.New("invalid language")
var ErrMissingSession = errors.New("missing session info")

// Authorization
var ErrNotHost = errors.New("only the host can do that")
var ErrBadResumeSecret = errors.New("invalid resume token")

// Not found
var ErrRoomNotFound = errors.New("room not found")
var ErrPlayerNotFound = errors.New("player not found")

// State guards
var ErrWrongPhase = errors.New("wrong phase")
var ErrNotEnoughPlayers = errors.New("not enough players")
var ErrNoRound = errors.New("no active round")
var ErrNotRevealed = errors.New("prompt not revealed")
var ErrAlreadyRevealed = errors.New("prompt already revealed")
var ErrReaderCannotWin = errors.New("reader cannot win the round")

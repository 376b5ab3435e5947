// Package registry owns the set of live rooms: code allocation, the
// session-to-room mapping, and reclamation scheduling. A Registry is not
// safe for concurrent use; all calls must come from the session loop.
// Reclaim timers only post the room code to the Expired channel, so the
// loop stays the single writer.
package registry

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/blackout-game/blackout-backend/internal/game"
	"github.com/blackout-game/blackout-backend/internal/prompt"
)

const codeLength = 4
const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type Config struct {
	DefaultLanguage game.Language
	DefaultRounds   int
	IdleReclaim     time.Duration // every player disconnected
	EndedReclaim    time.Duration // room reached ended phase
}

type Registry struct {
	cfg      Config
	source   prompt.Source
	rooms    map[string]*game.Room
	sessions map[string]string // opaque session id -> room code
	timers   map[string]*time.Timer
	expired  chan string
}

func New(source prompt.Source, cfg Config) *Registry {
	return &Registry{
		cfg:      cfg,
		source:   source,
		rooms:    make(map[string]*game.Room),
		sessions: make(map[string]string),
		timers:   make(map[string]*time.Timer),
		expired:  make(chan string, 16),
	}
}

// Expired delivers room codes whose reclaim timer fired. The consumer
// must re-check the room's condition before deleting.
func (r *Registry) Expired() <-chan string {
	return r.expired
}

// CreateRoom allocates a fresh code, creates the owning host player and
// inserts the room in lobby phase with the catalog's default exclusions.
func (r *Registry) CreateRoom(hostName string) (*game.Room, *game.Player) {
	code := r.newCode()
	host := game.NewPlayer(hostName, true)

	room := game.NewRoom(code, r.cfg.DefaultLanguage, r.source.DefaultExcludedLetters(), r.cfg.DefaultRounds)
	room.AddPlayer(host)
	room.OwnerID = host.ID
	room.HostID = host.ID

	r.rooms[code] = room
	return room, host
}

// newCode retries until the generated code is unique among live rooms.
// The space is large enough that collisions are negligible, but
// correctness doesn't assume it.
func (r *Registry) newCode() string {
	for {
		code := make([]byte, codeLength)
		for i := range code {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
			if err != nil {
				panic("crypto/rand failure: " + err.Error())
			}
			code[i] = codeCharset[n.Int64()]
		}
		if _, exists := r.rooms[string(code)]; !exists {
			return string(code)
		}
	}
}

func (r *Registry) Get(code string) *game.Room {
	return r.rooms[strings.ToUpper(code)]
}

// Delete removes the room, its pending reclaim timer and any session
// mappings pointing at it.
func (r *Registry) Delete(code string) {
	code = strings.ToUpper(code)
	r.CancelReclaim(code)
	delete(r.rooms, code)
	for sid, c := range r.sessions {
		if c == code {
			delete(r.sessions, sid)
		}
	}
}

func (r *Registry) Len() int {
	return len(r.rooms)
}

func (r *Registry) MapSession(sessionID, code string) {
	r.sessions[sessionID] = strings.ToUpper(code)
}

// SessionRoom returns the room code a session was mapped to, or "".
func (r *Registry) SessionRoom(sessionID string) string {
	return r.sessions[sessionID]
}

// ScheduleReclaim arms the reclaim timer for a room code, replacing any
// existing timer. At most one timer is pending per code.
func (r *Registry) ScheduleReclaim(code string, delay time.Duration) {
	code = strings.ToUpper(code)
	if t := r.timers[code]; t != nil {
		t.Stop()
	}
	r.timers[code] = time.AfterFunc(delay, func() {
		r.expired <- code
	})
}

// CancelReclaim disarms the pending timer. Idempotent.
func (r *Registry) CancelReclaim(code string) {
	code = strings.ToUpper(code)
	if t := r.timers[code]; t != nil {
		t.Stop()
		delete(r.timers, code)
	}
}

func (r *Registry) ReclaimPending(code string) bool {
	return r.timers[strings.ToUpper(code)] != nil
}

// Sweep schedules reclamation for every room that qualifies: ended rooms
// after the long grace delay, fully disconnected rooms (including empty
// ones) after the short one. Rooms with a pending timer are skipped so
// grace periods aren't extended forever.
func (r *Registry) Sweep() {
	for code, room := range r.rooms {
		if r.timers[code] != nil {
			continue
		}
		switch {
		case room.Phase == game.PhaseEnded:
			r.ScheduleReclaim(code, r.cfg.EndedReclaim)
		case room.AllDisconnected():
			r.ScheduleReclaim(code, r.cfg.IdleReclaim)
		}
	}
}

package game

import (
	"math/rand"
	"sort"
	"strings"
	"unicode/utf8"
)

const MaxNameLength = 20

// NormalizeName trims the display name and enforces the length rule.
// The limit counts characters, not bytes, so non-ASCII names get the
// full twenty.
func NormalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

// NormalizeExcludedLetters keeps single A-Z letters (trimmed, uppercased,
// deduplicated, sorted) and falls back to the given default set when
// nothing valid remains.
func NormalizeExcludedLetters(letters []string, fallback []string) []string {
	seen := make(map[string]struct{})
	for _, l := range letters {
		upper := strings.ToUpper(strings.TrimSpace(l))
		if len(upper) == 1 && upper[0] >= 'A' && upper[0] <= 'Z' {
			seen[upper] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return append([]string(nil), fallback...)
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// AssignHost moves the host flag to the given player. No-op if the player
// is not a member.
func AssignHost(r *Room, id string) {
	next := r.Players[id]
	if next == nil {
		return
	}
	if cur := r.Players[r.HostID]; cur != nil {
		cur.IsHost = false
	}
	r.HostID = id
	next.IsHost = true
}

// Leave permanently removes a player. The owner slot is never reassigned.
// A leaving host promotes the first remaining player in join order, and an
// active round's reader follows the host so adjudication stays possible.
func Leave(r *Room, id string) *Player {
	p := r.Players[id]
	if p == nil {
		return nil
	}
	delete(r.Players, id)
	for i, oid := range r.Order {
		if oid == id {
			r.Order = append(r.Order[:i], r.Order[i+1:]...)
			break
		}
	}

	if r.OwnerID == id {
		r.OwnerID = ""
	}

	if r.HostID == id {
		if next := r.FirstPlayerID(); next != "" {
			AssignHost(r, next)
			if r.CurrentRound != nil {
				r.CurrentRound.ReaderID = next
			}
		} else {
			r.HostID = ""
		}
	}
	return p
}

// NextReader picks the reader for the upcoming round: the current host if
// still a member, else the first remaining player in join order. Empty
// string when the room has no players.
func NextReader(r *Room) string {
	if r.HostID != "" && r.Players[r.HostID] != nil {
		return r.HostID
	}
	return r.FirstPlayerID()
}

func RandomReader(r *Room) string {
	if len(r.Order) == 0 {
		return ""
	}
	return r.Order[rand.Intn(len(r.Order))]
}

package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blackout-game/blackout-backend/internal/game"
	"github.com/blackout-game/blackout-backend/internal/prompt"
)

func newTestRegistry() *Registry {
	return New(&prompt.StaticSource{}, Config{
		DefaultLanguage: game.LangGerman,
		DefaultRounds:   5,
		IdleReclaim:     10 * time.Millisecond,
		EndedReclaim:    50 * time.Millisecond,
	})
}

func recvExpired(t *testing.T, r *Registry, within time.Duration) string {
	t.Helper()
	select {
	case code := <-r.Expired():
		return code
	case <-time.After(within):
		t.Fatalf("timed out waiting for reclaim expiry")
		return "" // unreachable
	}
}

func recvNoExpired(t *testing.T, r *Registry, within time.Duration) {
	t.Helper()
	select {
	case code := <-r.Expired():
		t.Fatalf("unexpected reclaim expiry for %s", code)
	case <-time.After(within):
	}
}

func TestCreateRoom_Defaults(t *testing.T) {
	reg := newTestRegistry()
	room, host := reg.CreateRoom("Alice")

	require.Len(t, room.Code, 4)
	require.Equal(t, game.PhaseLobby, room.Phase)
	require.Equal(t, host.ID, room.OwnerID)
	require.Equal(t, host.ID, room.HostID)
	require.True(t, host.IsHost)
	require.NotEmpty(t, host.ResumeSecret)
	require.Equal(t, prompt.FallbackExcludedLetters, room.ExcludedLetters)
	require.Equal(t, 5, room.MaxRounds)
	require.Empty(t, room.UsedPrompts)

	require.Same(t, room, reg.Get(room.Code))
}

func TestCreateRoom_UniqueCodes(t *testing.T) {
	reg := newTestRegistry()
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		room, _ := reg.CreateRoom("Alice")
		_, dup := seen[room.Code]
		require.False(t, dup, "duplicate code %s", room.Code)
		seen[room.Code] = struct{}{}
	}
}

func TestGet_CaseInsensitive(t *testing.T) {
	reg := newTestRegistry()
	room, _ := reg.CreateRoom("Alice")
	require.Same(t, room, reg.Get(room.Code))
	require.Same(t, room, reg.Get(toLower(room.Code)))
	require.Nil(t, reg.Get("NOPE"))
}

func toLower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

func TestSessionMapping(t *testing.T) {
	reg := newTestRegistry()
	room, _ := reg.CreateRoom("Alice")

	require.Empty(t, reg.SessionRoom("sess-1"))
	reg.MapSession("sess-1", room.Code)
	require.Equal(t, room.Code, reg.SessionRoom("sess-1"))

	reg.Delete(room.Code)
	require.Nil(t, reg.Get(room.Code))
	require.Empty(t, reg.SessionRoom("sess-1"), "delete should prune session mappings")
}

func TestScheduleReclaim_FiresAndReplaces(t *testing.T) {
	reg := newTestRegistry()
	room, _ := reg.CreateRoom("Alice")

	reg.ScheduleReclaim(room.Code, 5*time.Millisecond)
	require.True(t, reg.ReclaimPending(room.Code))
	require.Equal(t, room.Code, recvExpired(t, reg, time.Second))

	// Replace discipline: rescheduling resets the clock, only one fire.
	reg.ScheduleReclaim(room.Code, 30*time.Millisecond)
	reg.ScheduleReclaim(room.Code, 30*time.Millisecond)
	require.Equal(t, room.Code, recvExpired(t, reg, time.Second))
	recvNoExpired(t, reg, 60*time.Millisecond)
}

func TestCancelReclaim_Idempotent(t *testing.T) {
	reg := newTestRegistry()
	room, _ := reg.CreateRoom("Alice")

	reg.ScheduleReclaim(room.Code, 20*time.Millisecond)
	reg.CancelReclaim(room.Code)
	reg.CancelReclaim(room.Code)
	require.False(t, reg.ReclaimPending(room.Code))
	recvNoExpired(t, reg, 50*time.Millisecond)
}

func TestSweep_Conditions(t *testing.T) {
	reg := newTestRegistry()

	active, host := reg.CreateRoom("Alice")
	_ = active // connected player in lobby: no reclaim
	require.True(t, host.Connected)

	idle, idleHost := reg.CreateRoom("Bob")
	idleHost.Connected = false

	ended, _ := reg.CreateRoom("Carol")
	game.ToEnded(ended)

	reg.Sweep()

	require.False(t, reg.ReclaimPending(active.Code))
	require.True(t, reg.ReclaimPending(idle.Code))
	require.True(t, reg.ReclaimPending(ended.Code))
}

func TestSweep_DoesNotStackTimers(t *testing.T) {
	reg := newTestRegistry()
	room, host := reg.CreateRoom("Alice")
	host.Connected = false

	reg.Sweep()
	reg.Sweep()
	reg.Sweep()

	require.Equal(t, room.Code, recvExpired(t, reg, time.Second))
	recvNoExpired(t, reg, 30*time.Millisecond)
}

package game

import (
	"errors"
	"testing"
)

func makeRoom() (*Room, *Player, *Player, *Player) {
	r := NewRoom("TEST", LangGerman, []string{"Q", "X", "Y"}, 10)
	alice := NewPlayer("Alice", true)
	bob := NewPlayer("Bob", false)
	carol := NewPlayer("Carol", false)
	r.AddPlayer(alice)
	r.AddPlayer(bob)
	r.AddPlayer(carol)
	r.OwnerID = alice.ID
	r.HostID = alice.ID
	return r, alice, bob, carol
}

func startRound(r *Room, readerID string) {
	r.CurrentRound = &RoundState{
		Number:   len(r.History) + 1,
		Category: Category{ID: 1, Name: "An animal"},
		Task:     TaskRule{ID: 1, Text: "Starts with letter {letter}", RequiresLetter: true},
		Letter:   "A",
		ReaderID: readerID,
	}
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "trims whitespace", raw: "  Alice  ", want: "Alice"},
		{name: "empty rejected", raw: "   ", wantErr: true},
		{name: "too long rejected", raw: "abcdefghijklmnopqrstu", wantErr: true},
		{name: "exactly 20 ok", raw: "abcdefghijklmnopqrst", want: "abcdefghijklmnopqrst"},
		{name: "multibyte counted as characters", raw: "Müller-Lüdenscheidt", want: "Müller-Lüdenscheidt"},
		{name: "21 multibyte chars rejected", raw: "äääääääääääääääääääää", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeName(tc.raw)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidName) {
					t.Fatalf("want ErrInvalidName, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeExcludedLetters(t *testing.T) {
	fallback := []string{"Q", "X", "Y"}
	cases := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "dedupes and sorts", input: []string{"x", "Q", " q ", "X"}, want: []string{"Q", "X"}},
		{name: "drops junk", input: []string{"ab", "1", "", "Z"}, want: []string{"Z"}},
		{name: "falls back when empty", input: []string{"??", ""}, want: fallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeExcludedLetters(tc.input, fallback)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestLeave_HostPromotionFollowsJoinOrder(t *testing.T) {
	r, alice, bob, _ := makeRoom()
	startRound(r, alice.ID)

	Leave(r, alice.ID)

	if r.HostID != bob.ID {
		t.Fatalf("want host %s, got %s", bob.ID, r.HostID)
	}
	if !bob.IsHost {
		t.Fatalf("new host flag not set")
	}
	if r.CurrentRound.ReaderID != bob.ID {
		t.Fatalf("round reader not repointed to new host")
	}
	if r.OwnerID != "" {
		t.Fatalf("owner should be unset after creator leaves")
	}
}

func TestLeave_NonHostKeepsHost(t *testing.T) {
	r, alice, bob, _ := makeRoom()
	startRound(r, alice.ID)

	Leave(r, bob.ID)

	if r.HostID != alice.ID {
		t.Fatalf("host changed unexpectedly")
	}
	if r.CurrentRound.ReaderID != alice.ID {
		t.Fatalf("reader changed unexpectedly")
	}
	if r.Player(bob.ID) != nil {
		t.Fatalf("bob still present")
	}
}

func TestLeave_LastPlayerUnsetsHostKeepsRound(t *testing.T) {
	r, alice, bob, carol := makeRoom()
	startRound(r, alice.ID)

	Leave(r, bob.ID)
	Leave(r, carol.ID)
	Leave(r, alice.ID)

	if r.HostID != "" {
		t.Fatalf("host should be unset, got %q", r.HostID)
	}
	if r.CurrentRound == nil {
		t.Fatalf("round should be left in place for the reclaim sweep")
	}
}

func TestSelectWinner_Guards(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(r *Room, alice, bob *Player)
		winner  func(alice, bob *Player) string
		wantErr error
	}{
		{
			name:    "no round",
			setup:   func(r *Room, alice, bob *Player) {},
			winner:  func(alice, bob *Player) string { return bob.ID },
			wantErr: ErrNoRound,
		},
		{
			name: "not revealed",
			setup: func(r *Room, alice, bob *Player) {
				startRound(r, alice.ID)
			},
			winner:  func(alice, bob *Player) string { return bob.ID },
			wantErr: ErrNotRevealed,
		},
		{
			name: "reader cannot win",
			setup: func(r *Room, alice, bob *Player) {
				startRound(r, alice.ID)
				Reveal(r)
			},
			winner:  func(alice, bob *Player) string { return alice.ID },
			wantErr: ErrReaderCannotWin,
		},
		{
			name: "unknown winner",
			setup: func(r *Room, alice, bob *Player) {
				startRound(r, alice.ID)
				Reveal(r)
			},
			winner:  func(alice, bob *Player) string { return "nobody" },
			wantErr: ErrPlayerNotFound,
		},
		{
			name: "valid winner",
			setup: func(r *Room, alice, bob *Player) {
				startRound(r, alice.ID)
				Reveal(r)
			},
			winner: func(alice, bob *Player) string { return bob.ID },
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, alice, bob, _ := makeRoom()
			tc.setup(r, alice, bob)
			err := SelectWinner(r, tc.winner(alice, bob))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if r.CurrentRound.WinnerID != tc.winner(alice, bob) {
				t.Fatalf("winner not recorded")
			}
		})
	}
}

func TestReveal_Idempotent(t *testing.T) {
	r, alice, _, _ := makeRoom()
	Reveal(r) // no round: no-op
	startRound(r, alice.ID)
	Reveal(r)
	Reveal(r)
	if !r.CurrentRound.Revealed {
		t.Fatalf("round not revealed")
	}
}

func TestFinalizeAndLastRoundBoundary(t *testing.T) {
	r, alice, bob, _ := makeRoom()
	r.MaxRounds = 2

	if Finalize(r) != nil {
		t.Fatalf("finalize without round should return nil")
	}

	startRound(r, alice.ID)
	Reveal(r)
	if err := SelectWinner(r, bob.ID); err != nil {
		t.Fatalf("select winner: %v", err)
	}
	res := Finalize(r)
	if res == nil || res.WinnerID != bob.ID || res.Number != 1 {
		t.Fatalf("bad result: %+v", res)
	}
	if IsLastRound(r) {
		t.Fatalf("after 1 of 2 rounds isLastRound must be false")
	}

	startRound(r, bob.ID)
	Finalize(r)
	if !IsLastRound(r) {
		t.Fatalf("after 2 of 2 rounds isLastRound must be true")
	}
}

func TestNextReader(t *testing.T) {
	r, alice, bob, _ := makeRoom()
	if NextReader(r) != alice.ID {
		t.Fatalf("host should be next reader")
	}
	r.HostID = "gone"
	if NextReader(r) != alice.ID {
		t.Fatalf("first player in join order should be fallback")
	}
	Leave(r, alice.ID)
	r.HostID = ""
	if NextReader(r) != bob.ID {
		t.Fatalf("fallback should follow join order")
	}
}

func TestToLobby_SoftReset(t *testing.T) {
	r, alice, bob, _ := makeRoom()
	startRound(r, alice.ID)
	r.UsePrompt("1:1:A")
	Reveal(r)
	_ = SelectWinner(r, bob.ID)
	Award(r, bob.ID)
	Finalize(r)
	ToEnded(r)

	ResetScores(r)
	ToLobby(r)

	if r.Phase != PhaseLobby {
		t.Fatalf("want lobby, got %s", r.Phase)
	}
	if r.CurrentRound != nil || len(r.History) != 0 || len(r.UsedPrompts) != 0 {
		t.Fatalf("soft reset incomplete: %+v", r)
	}
	for _, p := range r.PlayerList() {
		if p.Score != 0 {
			t.Fatalf("score not reset for %s", p.Name)
		}
	}
}

func TestLeaderboard_StableTies(t *testing.T) {
	r, alice, bob, carol := makeRoom()
	Award(r, bob.ID)
	Award(r, carol.ID)

	board := Leaderboard(r)
	if len(board) != 3 {
		t.Fatalf("want 3 entries, got %d", len(board))
	}
	// Bob joined before Carol, so the tie keeps that order.
	if board[0].ID != bob.ID || board[1].ID != carol.ID || board[2].ID != alice.ID {
		t.Fatalf("unexpected order: %+v", board)
	}

	winners := Winners(r)
	if len(winners) != 2 || winners[0] != bob.ID || winners[1] != carol.ID {
		t.Fatalf("unexpected winners: %v", winners)
	}
}

func TestAward_UnknownPlayerIgnored(t *testing.T) {
	r, _, _, _ := makeRoom()
	Award(r, "nobody")
	for _, p := range r.PlayerList() {
		if p.Score != 0 {
			t.Fatalf("score changed unexpectedly")
		}
	}
}

func TestNameTaken_CaseInsensitive(t *testing.T) {
	r, _, _, _ := makeRoom()
	if !r.NameTaken("alice") {
		t.Fatalf("case-insensitive duplicate not detected")
	}
	if r.NameTaken("Dave") {
		t.Fatalf("false positive")
	}
}

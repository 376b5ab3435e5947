// Package view renders per-player snapshots of a room. Resume secrets and
// transport handles never leave the core, and an unrevealed prompt is only
// ever visible to the round's reader.
package view

import "github.com/blackout-game/blackout-backend/internal/game"

type RoomView struct {
	Code            string             `json:"code"`
	OwnerID         string             `json:"ownerId,omitempty"`
	Phase           game.Phase         `json:"phase"`
	Players         []PlayerView       `json:"players"`
	Language        game.Language      `json:"language"`
	ExcludedLetters []string           `json:"excludedLetters"`
	MaxRounds       int                `json:"maxRounds"`
	CurrentRound    *RoundView         `json:"currentRound"`
	RoundHistory    []game.RoundResult `json:"roundHistory"`
}

type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Connected bool   `json:"connected"`
	IsHost    bool   `json:"isHost"`
}

type RoundView struct {
	RoundNumber int            `json:"roundNumber"`
	Category    *game.Category `json:"category"`
	Task        *game.TaskRule `json:"task"`
	Letter      string         `json:"letter,omitempty"`
	ReaderID    string         `json:"readerId"`
	WinnerID    string         `json:"winnerId,omitempty"`
	Revealed    bool           `json:"revealed"`
}

// Project renders the room as the given viewer is allowed to see it.
func Project(room *game.Room, viewerID string) RoomView {
	return RoomView{
		Code:            room.Code,
		OwnerID:         room.OwnerID,
		Phase:           room.Phase,
		Players:         projectPlayers(room),
		Language:        room.Language,
		ExcludedLetters: room.ExcludedLetters,
		MaxRounds:       room.MaxRounds,
		CurrentRound:    projectRound(room, viewerID),
		RoundHistory:    room.History,
	}
}

func projectPlayers(room *game.Room) []PlayerView {
	players := make([]PlayerView, 0, len(room.Order))
	for _, p := range room.PlayerList() {
		players = append(players, PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Score:     p.Score,
			Connected: p.Connected,
			IsHost:    p.IsHost,
		})
	}
	return players
}

func projectRound(room *game.Room, viewerID string) *RoundView {
	round := room.CurrentRound
	if round == nil {
		return nil
	}

	rv := &RoundView{
		RoundNumber: round.Number,
		ReaderID:    round.ReaderID,
		WinnerID:    round.WinnerID,
		Revealed:    round.Revealed,
	}
	if viewerID == round.ReaderID || round.Revealed {
		cat, task := round.Category, round.Task
		rv.Category = &cat
		rv.Task = &task
		rv.Letter = round.Letter
	}
	return rv
}

package game

import "sort"

type ScoreEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Award gives the player one point. Unknown ids are ignored; upstream
// validation should have caught them.
func Award(r *Room, playerID string) {
	if p := r.Players[playerID]; p != nil {
		p.Score++
	}
}

// Leaderboard sorts by score descending; ties keep join order.
func Leaderboard(r *Room) []ScoreEntry {
	entries := make([]ScoreEntry, 0, len(r.Order))
	for _, p := range r.PlayerList() {
		entries = append(entries, ScoreEntry{ID: p.ID, Name: p.Name, Score: p.Score})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

// Winners returns every player sharing the top score.
func Winners(r *Room) []string {
	board := Leaderboard(r)
	if len(board) == 0 {
		return nil
	}
	top := board[0].Score
	var ids []string
	for _, e := range board {
		if e.Score == top {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func ResetScores(r *Room) {
	for _, p := range r.Players {
		p.Score = 0
	}
}

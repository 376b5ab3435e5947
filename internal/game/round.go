package game

// Reveal makes the current prompt visible to everyone. Idempotent; no-op
// without an active round. Host authorization is the caller's job.
func Reveal(r *Room) {
	if r.CurrentRound == nil || r.CurrentRound.Revealed {
		return
	}
	r.CurrentRound.Revealed = true
}

// SelectWinner records the round winner. Requires a revealed round and a
// winner who is a member and not the reader. Scoring and host rotation are
// explicit follow-up steps, not side effects.
func SelectWinner(r *Room, winnerID string) error {
	round := r.CurrentRound
	if round == nil {
		return ErrNoRound
	}
	if !round.Revealed {
		return ErrNotRevealed
	}
	if r.Players[winnerID] == nil {
		return ErrPlayerNotFound
	}
	if winnerID == round.ReaderID {
		return ErrReaderCannotWin
	}
	round.WinnerID = winnerID
	return nil
}

// Finalize snapshots the current round into history and returns the
// snapshot. The round itself is left in place; the following phase
// transition decides what replaces it.
func Finalize(r *Room) *RoundResult {
	round := r.CurrentRound
	if round == nil {
		return nil
	}
	result := RoundResult{
		Number:   round.Number,
		Category: round.Category,
		Task:     round.Task,
		Letter:   round.Letter,
		ReaderID: round.ReaderID,
		WinnerID: round.WinnerID,
	}
	r.History = append(r.History, result)
	return &result
}

func IsLastRound(r *Room) bool {
	return len(r.History) >= r.MaxRounds
}

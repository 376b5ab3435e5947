package game

func ToPlaying(r *Room) {
	r.Phase = PhasePlaying
}

func ToRoundEnd(r *Room) {
	r.Phase = PhaseRoundEnd
}

func ToEnded(r *Room) {
	r.Phase = PhaseEnded
}

// ToLobby is a full soft reset for a rematch with the same code and
// players: round gone, history gone, used prompts forgotten.
func ToLobby(r *Room) {
	r.Phase = PhaseLobby
	r.CurrentRound = nil
	r.History = nil
	r.UsedPrompts = make(map[string]struct{})
}

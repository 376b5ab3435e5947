package game

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhasePlaying  Phase = "playing"
	PhaseRoundEnd Phase = "roundEnd"
	PhaseEnded    Phase = "ended"
)

type Language string

const (
	LangGerman  Language = "de"
	LangEnglish Language = "en"
)

func ParseLanguage(s string) (Language, bool) {
	switch Language(s) {
	case LangGerman, LangEnglish:
		return Language(s), true
	default:
		return "", false
	}
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type TaskRule struct {
	ID             int    `json:"id"`
	Text           string `json:"text"`
	RequiresLetter bool   `json:"requiresLetter"`
}

// Player is owned exclusively by its Room. ResumeSecret and Outbox must
// never appear in anything sent to clients.
type Player struct {
	ID           string
	Name         string
	ResumeSecret string
	Score        int
	Connected    bool
	IsHost       bool
	Outbox       chan<- any // nil while disconnected
}

func NewPlayer(name string, host bool) *Player {
	return &Player{
		ID:           uuid.NewString(),
		Name:         name,
		ResumeSecret: newResumeSecret(),
		Connected:    true,
		IsHost:       host,
	}
}

func newResumeSecret() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

// RoundState is the live round held inside a Room. Letter is empty for
// tasks that don't require one. While Revealed is false the prompt must
// only ever be shown to the reader.
type RoundState struct {
	Number   int
	Category Category
	Task     TaskRule
	Letter   string
	ReaderID string
	WinnerID string
	Revealed bool
}

// RoundResult is the immutable snapshot appended to history. The history
// length is the authoritative round counter.
type RoundResult struct {
	Number   int      `json:"roundNumber"`
	Category Category `json:"category"`
	Task     TaskRule `json:"task"`
	Letter   string   `json:"letter,omitempty"`
	ReaderID string   `json:"readerId"`
	WinnerID string   `json:"winnerId,omitempty"`
}

type Room struct {
	Code            string
	OwnerID         string // first creator; cleared when they leave
	HostID          string // current reader; cleared when no players remain
	Phase           Phase
	Players         map[string]*Player
	Order           []string // player ids in join order
	Language        Language
	ExcludedLetters []string
	MaxRounds       int
	CurrentRound    *RoundState
	History         []RoundResult
	UsedPrompts     map[string]struct{}
}

func NewRoom(code string, lang Language, excluded []string, maxRounds int) *Room {
	return &Room{
		Code:            code,
		Phase:           PhaseLobby,
		Players:         make(map[string]*Player),
		Language:        lang,
		ExcludedLetters: excluded,
		MaxRounds:       maxRounds,
		UsedPrompts:     make(map[string]struct{}),
	}
}

func (r *Room) AddPlayer(p *Player) {
	r.Players[p.ID] = p
	r.Order = append(r.Order, p.ID)
}

func (r *Room) Player(id string) *Player {
	return r.Players[id]
}

// PlayerList returns players in join order.
func (r *Room) PlayerList() []*Player {
	out := make([]*Player, 0, len(r.Order))
	for _, id := range r.Order {
		if p, ok := r.Players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) FirstPlayerID() string {
	if len(r.Order) == 0 {
		return ""
	}
	return r.Order[0]
}

func (r *Room) NameTaken(name string) bool {
	for _, p := range r.Players {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func (r *Room) ConnectedCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

func (r *Room) AllDisconnected() bool {
	for _, p := range r.Players {
		if p.Connected {
			return false
		}
	}
	return true
}

func (r *Room) UsePrompt(key string) {
	r.UsedPrompts[key] = struct{}{}
}

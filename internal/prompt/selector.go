package prompt

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/blackout-game/blackout-backend/internal/game"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

type Prompt struct {
	Category game.Category
	Task     game.TaskRule
	Letter   string // empty when the task needs no letter
}

// Key is the composite de-duplication key recorded in the room's
// used-prompt set.
func (p Prompt) Key() string {
	letter := p.Letter
	if letter == "" {
		letter = "-"
	}
	return fmt.Sprintf("%d:%d:%s", p.Category.ID, p.Task.ID, letter)
}

type Selector struct {
	src Source
	rng *rand.Rand
}

func NewSelector(src Source) *Selector {
	return &Selector{src: src, rng: rand.New(rand.NewSource(rand.Int63()))}
}

// Draw picks a prompt whose key is not yet used in the room. It makes up
// to |categories|*|tasks|*max(|letters|,1) independent random draws, then
// gives up and accepts a repeat; under normal catalog sizes repeats stay
// rare. Recording the key is the caller's job.
func (s *Selector) Draw(room *game.Room) (Prompt, error) {
	cats, err := s.src.Categories(room.Language)
	if err != nil {
		return Prompt{}, fmt.Errorf("load categories: %w", err)
	}
	if len(cats) == 0 {
		return Prompt{}, fmt.Errorf("%w %q", ErrNoCategories, room.Language)
	}
	tasks, err := s.src.Tasks(room.Language)
	if err != nil {
		return Prompt{}, fmt.Errorf("load tasks: %w", err)
	}
	if len(tasks) == 0 {
		return Prompt{}, fmt.Errorf("%w %q", ErrNoTasks, room.Language)
	}

	letters := availableLetters(room.ExcludedLetters)

	maxAttempts := len(cats) * len(tasks) * max(len(letters), 1)
	for i := 0; i < maxAttempts; i++ {
		p := s.randomPrompt(cats, tasks, letters)
		if _, used := room.UsedPrompts[p.Key()]; !used {
			return p, nil
		}
	}
	return s.randomPrompt(cats, tasks, letters), nil
}

// Reroll replaces the current round's prompt in place: new draw, winner
// cleared, revealed reset. Round number and reader stay untouched.
func (s *Selector) Reroll(room *game.Room) (Prompt, error) {
	round := room.CurrentRound
	if round == nil {
		return Prompt{}, game.ErrNoRound
	}
	p, err := s.Draw(room)
	if err != nil {
		return Prompt{}, err
	}
	round.Category = p.Category
	round.Task = p.Task
	round.Letter = p.Letter
	round.WinnerID = ""
	round.Revealed = false
	return p, nil
}

func (s *Selector) randomPrompt(cats []game.Category, tasks []game.TaskRule, letters []string) Prompt {
	p := Prompt{
		Category: cats[s.rng.Intn(len(cats))],
		Task:     tasks[s.rng.Intn(len(tasks))],
	}
	if p.Task.RequiresLetter {
		p.Letter = letters[s.rng.Intn(len(letters))]
	}
	return p
}

// availableLetters is the 26-letter alphabet minus the exclusions, or the
// full alphabet when exclusion would empty it.
func availableLetters(excluded []string) []string {
	skip := make(map[string]struct{}, len(excluded))
	for _, l := range excluded {
		upper := strings.ToUpper(strings.TrimSpace(l))
		if len(upper) == 1 && upper[0] >= 'A' && upper[0] <= 'Z' {
			skip[upper] = struct{}{}
		}
	}
	out := make([]string, 0, len(alphabet))
	for _, r := range alphabet {
		if _, ok := skip[string(r)]; !ok {
			out = append(out, string(r))
		}
	}
	if len(out) == 0 {
		for _, r := range alphabet {
			out = append(out, string(r))
		}
	}
	return out
}

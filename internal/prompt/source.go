// Package prompt draws (category, task, letter) prompts for a room from a
// read-only catalog, avoiding repeats within a room's lifetime.
package prompt

import (
	"errors"

	"github.com/blackout-game/blackout-backend/internal/game"
)

var ErrNoCategories = errors.New("no categories for language")
var ErrNoTasks = errors.New("no tasks for language")

// FallbackExcludedLetters applies when the catalog has no default set.
var FallbackExcludedLetters = []string{"Q", "X", "Y"}

// Source is the read-only prompt catalog. Queried on demand, never
// mutated by the core.
type Source interface {
	Categories(lang game.Language) ([]game.Category, error)
	Tasks(lang game.Language) ([]game.TaskRule, error)
	DefaultExcludedLetters() []string
}

// StaticSource serves a fixed catalog from memory. Used by tests and
// handy as a stand-in before the sqlite catalog exists.
type StaticSource struct {
	Cats     []game.Category
	Rules    []game.TaskRule
	Excluded []string
}

func (s *StaticSource) Categories(game.Language) ([]game.Category, error) {
	return s.Cats, nil
}

func (s *StaticSource) Tasks(game.Language) ([]game.TaskRule, error) {
	return s.Rules, nil
}

func (s *StaticSource) DefaultExcludedLetters() []string {
	if len(s.Excluded) == 0 {
		return append([]string(nil), FallbackExcludedLetters...)
	}
	return s.Excluded
}

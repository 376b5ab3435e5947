package prompt

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/blackout-game/blackout-backend/internal/game"
)

//go:embed schema.sql
var schemaSQL string

//go:embed seed.sql
var seedSQL string

// SQLiteSource reads the prompt catalog from an embedded-schema sqlite
// database. The database is created and seeded on first open.
type SQLiteSource struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("inspect catalog: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec(seedSQL); err != nil {
			db.Close()
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
	}

	return &SQLiteSource{db: db}, nil
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) Categories(lang game.Language) ([]game.Category, error) {
	rows, err := s.db.Query(`
		SELECT
			id,
			CASE WHEN ? = 'de' THEN name_de ELSE name_en END AS name
		FROM categories
	`, string(lang))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []game.Category
	for rows.Next() {
		var c game.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *SQLiteSource) Tasks(lang game.Language) ([]game.TaskRule, error) {
	rows, err := s.db.Query(`
		SELECT
			id,
			CASE WHEN ? = 'de' THEN text_de ELSE text_en END AS text,
			requires_letter
		FROM tasks
	`, string(lang))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []game.TaskRule
	for rows.Next() {
		var t game.TaskRule
		if err := rows.Scan(&t.ID, &t.Text, &t.RequiresLetter); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// DefaultExcludedLetters reads the configured exclusion set, keeping only
// single A-Z letters. Falls back to the built-in set when the table is
// empty or unreadable.
func (s *SQLiteSource) DefaultExcludedLetters() []string {
	rows, err := s.db.Query("SELECT letter FROM default_excluded_letters ORDER BY letter ASC")
	if err != nil {
		return append([]string(nil), FallbackExcludedLetters...)
	}
	defer rows.Close()

	var letters []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return append([]string(nil), FallbackExcludedLetters...)
		}
		upper := strings.ToUpper(strings.TrimSpace(l))
		if len(upper) == 1 && upper[0] >= 'A' && upper[0] <= 'Z' {
			letters = append(letters, upper)
		}
	}
	if rows.Err() != nil || len(letters) == 0 {
		return append([]string(nil), FallbackExcludedLetters...)
	}
	return letters
}

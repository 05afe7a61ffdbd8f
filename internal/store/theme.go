package store

import (
	"database/sql"
	"fmt"

	"github.com/rowanvale/ember/internal/model"
)

type ThemeStore struct {
	db *sql.DB
}

func NewThemeStore(db *sql.DB) *ThemeStore {
	return &ThemeStore{db: db}
}

// presets are the built-in themes. Unlocks are gated by user level.
var presets = []model.Theme{
	{Name: "Ember", RequiredLevel: 0, AccentColor: "#F97316"},
	{Name: "Tide", RequiredLevel: 2, AccentColor: "#0EA5E9"},
	{Name: "Moss", RequiredLevel: 4, AccentColor: "#22C55E"},
	{Name: "Dusk", RequiredLevel: 6, AccentColor: "#8B5CF6"},
	{Name: "Midnight", RequiredLevel: 10, AccentColor: "#0F172A"},
}

// SeedPresets inserts the built-in themes if missing. Safe to call on every
// startup; existing rows are left alone.
func (s *ThemeStore) SeedPresets() error {
	for _, p := range presets {
		_, err := s.db.Exec(
			`INSERT INTO themes (name, required_level, accent_color) VALUES (?, ?, ?)
			 ON CONFLICT(name) DO NOTHING`,
			p.Name, p.RequiredLevel, p.AccentColor,
		)
		if err != nil {
			return fmt.Errorf("seed theme %q: %w", p.Name, err)
		}
	}
	return nil
}

func scanTheme(scanner interface{ Scan(...any) error }) (*model.Theme, error) {
	var t model.Theme
	err := scanner.Scan(&t.ID, &t.Name, &t.RequiredLevel, &t.AccentColor)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const themeCols = `id, name, required_level, accent_color`

func (s *ThemeStore) List() ([]model.Theme, error) {
	rows, err := s.db.Query(`SELECT ` + themeCols + ` FROM themes ORDER BY required_level ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	var themes []model.Theme
	for rows.Next() {
		t, err := scanTheme(rows)
		if err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		themes = append(themes, *t)
	}
	return themes, rows.Err()
}

func (s *ThemeStore) GetByID(id int64) (*model.Theme, error) {
	row := s.db.QueryRow(`SELECT `+themeCols+` FROM themes WHERE id = ?`, id)
	t, err := scanTheme(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get theme: %w", err)
	}
	return t, nil
}

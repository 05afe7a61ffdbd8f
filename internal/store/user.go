package store

import (
	"database/sql"
	"fmt"

	"github.com/rowanvale/ember/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var themeID sql.NullInt64
	err := scanner.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &themeID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if themeID.Valid {
		u.ActiveThemeID = &themeID.Int64
	}
	return &u, nil
}

const userCols = `id, email, name, password_hash, active_theme_id, created_at, updated_at`

func (s *UserStore) Create(email, name, passwordHash string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (email, name, password_hash) VALUES (?, ?, ?)`,
		email, name, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) SetActiveTheme(id int64, themeID *int64) error {
	var tID sql.NullInt64
	if themeID != nil {
		tID = sql.NullInt64{Int64: *themeID, Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE users SET active_theme_id = ?, updated_at = datetime('now') WHERE id = ?`,
		tID, id,
	)
	if err != nil {
		return fmt.Errorf("set active theme: %w", err)
	}
	return nil
}

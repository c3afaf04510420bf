package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("directory: not found")

// Repository abstracts directory lookups for upstream triggers.
type Repository interface {
	GetUser(ctx context.Context, id string) (User, error)
	GetExtension(ctx context.Context, ext string) (Extension, error)
}

// PostgresRepo reads the users/extensions tables via database/sql (pgx stdlib driver).
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) GetUser(ctx context.Context, id string) (User, error) {
	const q = `SELECT id, name, email, COALESCE(extension, ''), created_at FROM users WHERE id = $1`

	var u User
	err := r.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Name, &u.Email, &u.Extension, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("user %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("directory: get user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepo) GetExtension(ctx context.Context, ext string) (Extension, error) {
	const q = `SELECT extension, agent_name, is_active, updated_at FROM extensions WHERE extension = $1`

	var e Extension
	err := r.db.QueryRowContext(ctx, q, ext).Scan(&e.Extension, &e.AgentName, &e.IsActive, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Extension{}, fmt.Errorf("extension %q: %w", ext, ErrNotFound)
	}
	if err != nil {
		return Extension{}, fmt.Errorf("directory: get extension: %w", err)
	}
	return e, nil
}

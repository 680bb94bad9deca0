package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"medcycle/internal/domain"
	dErrors "medcycle/pkg/domain-errors"
)

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		string(user.Role), user.Active, user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return dErrors.New(dErrors.CodeConflict, "username already taken")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT id, username, email, password_hash, role, active, created_at FROM users WHERE id = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT id, username, email, password_hash, role, active, created_at FROM users WHERE lower(username) = lower($1)`
	return scanUser(s.db.QueryRowContext(ctx, query, username))
}

func (s *PostgresStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("update user active flag: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		user User
		role string
	)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &role, &user.Active, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.Role = domain.Role(role)
	return &user, nil
}

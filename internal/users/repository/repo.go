package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskverse/taskverse-backend/internal/users/domain"
)

type Repo struct {
	db  *sql.DB
	log *zap.Logger
}

func NewRepo(db *sql.DB, log *zap.Logger) *Repo {
	return &Repo{db: db, log: log}
}

// Create inserts a user with a bcrypt-hashed password and returns the stored
// row.
func (r *Repo) Create(ctx context.Context, name, email, password string, avatar *string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	const q = `
INSERT INTO users (name, email, password, avatar)
VALUES ($1, $2, $3, $4)
RETURNING id, name, email, avatar;
`
	return scanUser(r.db.QueryRowContext(ctx, q, name, email, string(hash), avatar))
}

// GetByID returns one user without the password hash.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT id, name, email, avatar FROM users WHERE id = $1;`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// List returns all users.
func (r *Repo) List(ctx context.Context) ([]domain.User, error) {
	const q = `SELECT id, name, email, avatar FROM users ORDER BY id;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.User, 0, 16)
	for rows.Next() {
		var u domain.User
		var avatar sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &avatar); err != nil {
			return nil, err
		}
		if avatar.Valid {
			u.Avatar = &avatar.String
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateProfile overwrites name and avatar; email and password stay as they
// are.
func (r *Repo) UpdateProfile(ctx context.Context, id int64, name string, avatar *string) (*domain.User, error) {
	const q = `
UPDATE users SET name = $1, avatar = $2 WHERE id = $3
RETURNING id, name, email, avatar;
`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, name, avatar, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// Delete removes a user row.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM users WHERE id = $1;`
	result, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var avatar sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &avatar); err != nil {
		return nil, err
	}
	if avatar.Valid {
		u.Avatar = &avatar.String
	}
	return &u, nil
}

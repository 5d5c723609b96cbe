package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"quickDeliver/internal/db"
	"quickDeliver/models"
)

type UserRepository struct {
	db *db.DB
}

func NewUserRepository(d *db.DB) *UserRepository {
	return &UserRepository{db: d}
}

// Create inserts a new user with the given email and password hash.
// Emails are stored lower-cased. Role defaults to 'customer'.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u := models.User{
		Email:        normalizeEmail(email),
		Role:         models.RoleCustomer,
		PasswordHash: passwordHash,
		CreatedAt:    timestamp(),
	}
	err := r.db.QueryRowContext(ctx, r.db.Rebind(`INSERT INTO users (email, password_hash, role, created_at) VALUES (?,?,?,?) RETURNING id`),
		u.Email, u.PasswordHash, u.Role, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u models.User
	err := r.db.QueryRowContext(ctx, r.db.Rebind(`SELECT id, email, role, password_hash, created_at FROM users WHERE id = ?`), id).
		Scan(&u.ID, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u models.User
	err := r.db.QueryRowContext(ctx, r.db.Rebind(`SELECT id, email, role, password_hash, created_at FROM users WHERE email = ?`), normalizeEmail(email)).
		Scan(&u.ID, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`SELECT id, email, role, password_hash, created_at FROM users ORDER BY id LIMIT ? OFFSET ?`), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM users WHERE id = ?`), id)
	return err
}

// UpdateRoleByEmail sets the role for the given email.
// Intended for administrative flows and tests.
func (r *UserRepository) UpdateRoleByEmail(ctx context.Context, email, role string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET role = ? WHERE email = ?`), role, normalizeEmail(email))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

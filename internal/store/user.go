// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"riseup/internal/models"
)

const userColumns = `id, email, password_hash, display_name, role, created_at`

// UserStore handles the development fallback admin accounts.
type UserStore struct {
	db sqlx.ExtContext
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db sqlx.ExtContext) *UserStore {
	return &UserStore{db: db}
}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.find(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.find(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (s *UserStore) find(ctx context.Context, query string, arg any) (*models.User, error) {
	u := &models.User{}
	err := sqlx.GetContext(ctx, s.db, u, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// Create inserts a new user with a bcrypt-hashed password.
func (s *UserStore) Create(ctx context.Context, email, password, displayName string, role models.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{}
	err = sqlx.GetContext(ctx, s.db, u, `
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns, email, string(hash), displayName, role)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Count returns the number of users.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, s.db, &n, "SELECT COUNT(*) FROM users"); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// CheckPassword compares a plaintext password against the user's bcrypt hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

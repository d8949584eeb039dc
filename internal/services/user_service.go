package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/devicelink/backend/internal/models"
	"github.com/devicelink/backend/internal/storage"
)

// UserService is the credential store: username/password-hash pairs plus the
// per-user moderation flags.
type UserService struct {
	db *storage.DB
}

func NewUserService(db *storage.DB) *UserService {
	return &UserService{db: db}
}

// Register hashes the password and inserts the user. Username uniqueness is
// enforced by the store's UNIQUE constraint, so concurrent registrations for
// the same name resolve with exactly one winner.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, string(hash),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get user id: %w", err)
	}

	return &models.User{ID: id, Username: username, PasswordHash: string(hash)}, nil
}

// Authenticate verifies a username/password pair. A missing user and a wrong
// password fail identically so the endpoint never leaks account existence.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u := &models.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, is_admin, is_suspended, warning_count
		 FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.IsSuspended, &u.WarningCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", username, err)
	}
	return u, nil
}

// List returns all users, newest first, for the admin dashboard.
func (s *UserService) List(ctx context.Context) ([]models.UserSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, is_admin, is_suspended, warning_count
		 FROM users ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.UserSummary, 0)
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.IsAdmin, &u.IsSuspended, &u.WarningCount); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		summaries = append(summaries, u)
	}
	return summaries, rows.Err()
}

// SetAdmin flips the admin flag. Not exposed over HTTP; used by cmd/grant-admin.
func (s *UserService) SetAdmin(ctx context.Context, username string, isAdmin bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_admin = ? WHERE username = ?`, isAdmin, username)
	if err != nil {
		return fmt.Errorf("set admin %s: %w", username, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

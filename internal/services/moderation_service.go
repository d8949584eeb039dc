package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/devicelink/backend/internal/models"
	"github.com/devicelink/backend/internal/storage"
)

// ModerationService owns the admin actions: warnings, suspensions, listing
// approval, and the audit trail they produce. Callers must have passed
// Guard.RequireAdmin before invoking a mutation here.
type ModerationService struct {
	db       *storage.DB
	users    *UserService
	listings *ListingService
}

func NewModerationService(db *storage.DB, users *UserService, listings *ListingService) *ModerationService {
	return &ModerationService{db: db, users: users, listings: listings}
}

// IssueWarning records an immutable warning, bumps the target's counter and
// appends the audit row, all in one transaction.
func (s *ModerationService) IssueWarning(ctx context.Context, adminUsername, username, reason string) error {
	if _, err := s.users.GetByUsername(ctx, username); err != nil {
		return err
	}

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_warnings (username, reason, issued_by, created_at) VALUES (?, ?, ?, ?)`,
			username, reason, adminUsername, time.Now().UTC(),
		); err != nil {
			return fmt.Errorf("insert warning: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET warning_count = warning_count + 1 WHERE username = ?`,
			username,
		); err != nil {
			return fmt.Errorf("increment warning count: %w", err)
		}

		return logActivity(ctx, tx, "warning_issued", username, "Warning issued: "+reason)
	})
}

// SetSuspension toggles the suspended flag and logs user_suspended or
// user_unsuspended accordingly.
func (s *ModerationService) SetSuspension(ctx context.Context, adminUsername, username string, suspended bool) error {
	if _, err := s.users.GetByUsername(ctx, username); err != nil {
		return err
	}

	word := "unsuspended"
	if suspended {
		word = "suspended"
	}

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET is_suspended = ? WHERE username = ?`,
			suspended, username,
		); err != nil {
			return fmt.Errorf("set suspension: %w", err)
		}

		return logActivity(ctx, tx, "user_"+word, username,
			fmt.Sprintf("User %s by %s", word, adminUsername))
	})
}

// ApproveListing sets the approved flag. Approval also forces the status to
// ACTIVE regardless of what the owner had set — including DELETED, which the
// frontend has always relied on to resurrect withdrawn listings. Rejection
// leaves the status alone.
func (s *ModerationService) ApproveListing(ctx context.Context, adminUsername string, listingID int64, approved bool) error {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return err
	}

	word := "rejected"
	if approved {
		word = "approved"
	}

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if approved {
			if _, err := tx.ExecContext(ctx,
				`UPDATE listings SET approved = 1, status = ? WHERE id = ?`,
				models.StatusActive, listingID,
			); err != nil {
				return fmt.Errorf("approve listing %d: %w", listingID, err)
			}
		} else {
			if _, err := tx.ExecContext(ctx,
				`UPDATE listings SET approved = 0 WHERE id = ?`,
				listingID,
			); err != nil {
				return fmt.Errorf("reject listing %d: %w", listingID, err)
			}
		}

		return logActivity(ctx, tx, "listing_"+word, listing.Owner,
			fmt.Sprintf("Listing '%s' was %s", listing.Title, word))
	})
}

// Warnings returns the warnings issued against a user, newest first.
func (s *ModerationService) Warnings(ctx context.Context, username string) ([]models.UserWarning, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, reason, issued_by, created_at
		 FROM user_warnings WHERE username = ?
		 ORDER BY created_at DESC, id DESC`, username)
	if err != nil {
		return nil, fmt.Errorf("list warnings for %s: %w", username, err)
	}
	defer rows.Close()

	warnings := make([]models.UserWarning, 0)
	for rows.Next() {
		var w models.UserWarning
		if err := rows.Scan(&w.ID, &w.Username, &w.Reason, &w.IssuedBy, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		warnings = append(warnings, w)
	}
	return warnings, rows.Err()
}

// ActivityLogs returns the newest audit entries, capped at limit.
func (s *ModerationService) ActivityLogs(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action, username, details, created_at
		 FROM activity_logs
		 ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	defer rows.Close()

	logs := make([]models.ActivityLog, 0)
	for rows.Next() {
		var l models.ActivityLog
		if err := rows.Scan(&l.ID, &l.Action, &l.Username, &l.Details, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

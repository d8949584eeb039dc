package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devicelink/backend/internal/models"
	"github.com/devicelink/backend/internal/storage"
)

func newTestDB(t *testing.T) *storage.DB {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

// seedListing inserts a row directly so tests can control approved/status
// combinations, including the legacy NULL status.
func seedListing(t *testing.T, db *storage.DB, title, owner string, status *string, approved bool, createdAt time.Time) int64 {
	t.Helper()

	res, err := db.ExecContext(context.Background(),
		`INSERT INTO listings (title, description, category, condition, quantity, owner, status, approved, created_at)
		 VALUES (?, '', '', '', 1, ?, ?, ?, ?)`,
		title, owner, status, approved, createdAt,
	)
	require.NoError(t, err)

	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func strptr(s string) *string { return &s }

func intptr(n int) *int { return &n }

func searchTitles(t *testing.T, result *models.SearchResult) []string {
	t.Helper()

	titles := make([]string, 0, len(result.Items))
	for _, l := range result.Items {
		titles = append(titles, l.Title)
	}
	return titles
}

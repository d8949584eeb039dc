package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelink/backend/internal/models"
)

func TestRequireAdmin(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	guard := NewGuard(users)
	ctx := context.Background()

	_, err := users.Register(ctx, "alice", "password123")
	require.NoError(t, err)
	_, err = users.Register(ctx, "root", "password123")
	require.NoError(t, err)
	require.NoError(t, users.SetAdmin(ctx, "root", true))

	u, err := guard.RequireAdmin(ctx, "root")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)

	// Non-admin and nonexistent users fail the same way.
	_, err = guard.RequireAdmin(ctx, "alice")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = guard.RequireAdmin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRequireOwner(t *testing.T) {
	guard := NewGuard(nil)
	listing := &models.Listing{Owner: "alice"}

	assert.NoError(t, guard.RequireOwner(listing, "alice"))
	assert.ErrorIs(t, guard.RequireOwner(listing, "bob"), ErrForbidden)
}

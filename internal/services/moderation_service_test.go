package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelink/backend/internal/models"
)

func newModerationFixture(t *testing.T) (*UserService, *ListingService, *ModerationService) {
	db := newTestDB(t)
	users := NewUserService(db)
	listings := NewListingService(db)
	return users, listings, NewModerationService(db, users, listings)
}

func TestIssueWarningAccumulates(t *testing.T) {
	users, _, moderation := newModerationFixture(t)
	ctx := context.Background()

	_, err := users.Register(ctx, "bob", "password123")
	require.NoError(t, err)

	reasons := []string{"spam", "abusive language", "misleading listing"}
	for _, reason := range reasons {
		require.NoError(t, moderation.IssueWarning(ctx, "admin", "bob", reason))
	}

	u, err := users.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 3, u.WarningCount)

	warnings, err := moderation.Warnings(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, warnings, 3)
	// Newest first.
	assert.Equal(t, "misleading listing", warnings[0].Reason)
	assert.Equal(t, "admin", warnings[0].IssuedBy)

	logs, err := moderation.ActivityLogs(ctx, 50)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	for _, l := range logs {
		assert.Equal(t, "warning_issued", l.Action)
		assert.Equal(t, "bob", l.Username)
	}
}

func TestIssueWarningUnknownUser(t *testing.T) {
	_, _, moderation := newModerationFixture(t)

	err := moderation.IssueWarning(context.Background(), "admin", "nobody", "spam")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetSuspensionTogglesAndLogs(t *testing.T) {
	users, _, moderation := newModerationFixture(t)
	ctx := context.Background()

	_, err := users.Register(ctx, "bob", "password123")
	require.NoError(t, err)

	require.NoError(t, moderation.SetSuspension(ctx, "admin", "bob", true))
	u, err := users.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, u.IsSuspended)

	require.NoError(t, moderation.SetSuspension(ctx, "admin", "bob", false))
	u, err = users.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, u.IsSuspended)

	logs, err := moderation.ActivityLogs(ctx, 50)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "user_unsuspended", logs[0].Action)
	assert.Equal(t, "user_suspended", logs[1].Action)
}

func TestApproveListingForcesActive(t *testing.T) {
	_, listings, moderation := newModerationFixture(t)
	ctx := context.Background()

	l, err := listings.Create(ctx, "alice", &models.CreateListingRequest{Title: "Drill", Quantity: 5})
	require.NoError(t, err)

	// Approval applies even to a listing the owner has withdrawn; the status
	// comes back as ACTIVE.
	_, err = listings.Update(ctx, l.ID, &models.UpdateListingRequest{
		Title: "Drill", Quantity: 5, Status: models.StatusDeleted,
	})
	require.NoError(t, err)

	require.NoError(t, moderation.ApproveListing(ctx, "admin", l.ID, true))

	got, err := listings.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, got.Approved)
	assert.Equal(t, models.StatusActive, got.EffectiveStatus())
}

func TestRejectListingLeavesStatus(t *testing.T) {
	_, listings, moderation := newModerationFixture(t)
	ctx := context.Background()

	l, err := listings.Create(ctx, "alice", &models.CreateListingRequest{Title: "Drill", Quantity: 5})
	require.NoError(t, err)
	require.NoError(t, moderation.ApproveListing(ctx, "admin", l.ID, true))

	require.NoError(t, moderation.ApproveListing(ctx, "admin", l.ID, false))

	got, err := listings.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.False(t, got.Approved)
	assert.Equal(t, models.StatusActive, got.EffectiveStatus())

	logs, err := moderation.ActivityLogs(ctx, 50)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.Equal(t, "listing_rejected", logs[0].Action)
	assert.Equal(t, "Listing 'Drill' was rejected", logs[0].Details)
}

func TestApproveListingUnknownID(t *testing.T) {
	_, _, moderation := newModerationFixture(t)

	err := moderation.ApproveListing(context.Background(), "admin", 9999, true)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

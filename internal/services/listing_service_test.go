package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelink/backend/internal/models"
)

func TestCreateListingStartsPendingUnapproved(t *testing.T) {
	db := newTestDB(t)
	listings := NewListingService(db)
	ctx := context.Background()

	l, err := listings.Create(ctx, "alice", &models.CreateListingRequest{
		Title:    "Drill",
		Quantity: 5,
	})
	require.NoError(t, err)

	got, err := listings.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.False(t, got.Approved)
	assert.Equal(t, models.StatusPending, got.EffectiveStatus())
	assert.Equal(t, "alice", got.Owner)

	// The create must have produced exactly one audit row.
	moderation := NewModerationService(db, NewUserService(db), listings)
	logs, err := moderation.ActivityLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "listing_created", logs[0].Action)
	assert.Equal(t, "alice", logs[0].Username)
	assert.Equal(t, "Created listing: Drill", logs[0].Details)
}

func TestSearchVisibilityInvariant(t *testing.T) {
	db := newTestDB(t)
	listings := NewListingService(db)
	ctx := context.Background()
	now := time.Now().UTC()

	seedListing(t, db, "pending", "alice", strptr(models.StatusPending), false, now)
	seedListing(t, db, "unapproved-active", "alice", strptr(models.StatusActive), false, now)
	seedListing(t, db, "approved-active", "alice", strptr(models.StatusActive), true, now)
	seedListing(t, db, "approved-deleted", "alice", strptr(models.StatusDeleted), true, now)
	seedListing(t, db, "approved-completed", "alice", strptr(models.StatusCompleted), true, now)

	result, err := listings.Search(ctx, models.SearchFilters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"approved-active"}, searchTitles(t, result))
	assert.Equal(t, 1, result.Meta.Total)

	// Unapproved rows stay hidden regardless of other filters.
	result, err = listings.Search(ctx, models.SearchFilters{Owner: "alice", Text: "unapproved"})
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

func TestSearchNullStatusTreatedAsActive(t *testing.T) {
	db := newTestDB(t)
	listings := NewListingService(db)
	now := time.Now().UTC()

	seedListing(t, db, "legacy", "alice", nil, true, now)

	result, err := listings.Search(context.Background(), models.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "legacy", result.Items[0].Title)
	assert.Nil(t, result.Items[0].Status)
	assert.Equal(t, models.StatusActive, result.Items[0].EffectiveStatus())
}

func TestSearchViewerSeesOwnUnmoderatedListings(t *testing.T) {
	db := newTestDB(t)
	listings := NewListingService(db)
	ctx := context.Background()
	now := time.Now().UTC()

	seedListing(t, db, "mine-pending", "alice", strptr(models.StatusPending), false, now)
	seedListing(t, db, "mine-deleted", "alice", strptr(models.StatusDeleted), true, now)
	seedListing(t, db, "theirs", "bob", strptr(models.StatusActive), true, now)

	result, err := listings.Search(ctx, models.SearchFilters{ViewerUsername: "alice"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"mine-pending", "mine-deleted"}, searchTitles(t, result))
}

func TestSearchFilters(t *testing.T) {
	db := newTestDB(t)
	listings := NewListingService(db)
	ctx := context.Background()
	now := time.Now().UTC()

	insert := func(title, category, condition string, quantity int) {
		_, err := db.ExecContext(ctx,
			`INSERT INTO listings (title, description, category, condition, quantity, owner, status, approved, created_at)
			 VALUES (?, ?, ?, ?, ?, 'alice', 'ACTIVE', 1, ?)`,
			title, "desc of "+title, category, condition, quantity, now)
		require.NoError(t, err)
	}
	insert("Cordless Drill", "Tools", "Good", 5)
	insert("Bench Vise", "Tools", "New", 2)
	insert("Paperback Novel", "Books", "Fair", 30)

	// Case-insensitive substring over title or description.
	result, err := listings.Search(ctx, models.SearchFilters{Text: "dRiLl"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cordless Drill"}, searchTitles(t, result))

	result, err = listings.Search(ctx, models.SearchFilters{Text: "desc of bench"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bench Vise"}, searchTitles(t, result))

	result, err = listings.Search(ctx, models.SearchFilters{Category: "Tools", Condition: "New"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bench Vise"}, searchTitles(t, result))

	// Quantity bounds are inclusive.
	result, err = listings.Search(ctx, models.SearchFilters{MinQuantity: intptr(5), MaxQuantity: intptr(30)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Cordless Drill", "Paperback Novel"}, searchTitles(t, result))
}

func TestSearchPagination(t *testing.T) {
	db := newTestDB(t)
	listings := NewListingService(db)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 45; i++ {
		seedListing(t, db, fmt.Sprintf("item-%02d", i), "alice",
			strptr(models.StatusActive), true, base.Add(time.Duration(i)*time.Second))
	}

	result, err := listings.Search(ctx, models.SearchFilters{PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, 45, result.Meta.Total)
	assert.Equal(t, 3, result.Meta.Pages)
	assert.Len(t, result.Items, 20)
	// Newest first.
	assert.Equal(t, "item-44", result.Items[0].Title)

	result, err = listings.Search(ctx, models.SearchFilters{Page: 3, PerPage: 20})
	require.NoError(t, err)
	assert.Len(t, result.Items, 5)
	assert.Equal(t, "item-00", result.Items[4].Title)

	// Past the end: empty items, intact meta.
	result, err = listings.Search(ctx, models.SearchFilters{Page: 4, PerPage: 20})
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, 45, result.Meta.Total)
	assert.Equal(t, 4, result.Meta.Page)
}

func TestSearchTiesBreakByIDDescending(t *testing.T) {
	db := newTestDB(t)
	listings := NewListingService(db)
	now := time.Now().UTC().Truncate(time.Second)

	seedListing(t, db, "first", "alice", strptr(models.StatusActive), true, now)
	seedListing(t, db, "second", "alice", strptr(models.StatusActive), true, now)

	result, err := listings.Search(context.Background(), models.SearchFilters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, searchTitles(t, result))
}

func TestUpdateStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	listings := NewListingService(db)
	ctx := context.Background()

	l, err := listings.Create(ctx, "alice", &models.CreateListingRequest{Title: "Drill", Quantity: 5})
	require.NoError(t, err)

	// Nothing may move a listing back to PENDING.
	_, err = listings.Update(ctx, l.ID, &models.UpdateListingRequest{
		Title: "Drill", Quantity: 5, Status: models.StatusPending,
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = listings.Update(ctx, l.ID, &models.UpdateListingRequest{
		Title: "Drill", Quantity: 5, Status: "BOGUS",
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	updated, err := listings.Update(ctx, l.ID, &models.UpdateListingRequest{
		Title: "Drill", Quantity: 5, Status: models.StatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.EffectiveStatus())

	got, err := listings.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.EffectiveStatus())

	// Empty status leaves the current value alone.
	updated, err = listings.Update(ctx, l.ID, &models.UpdateListingRequest{
		Title: "Hammer Drill", Quantity: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.EffectiveStatus())
	assert.Equal(t, "Hammer Drill", updated.Title)
}

func TestDeleteRemovesRow(t *testing.T) {
	db := newTestDB(t)
	listings := NewListingService(db)
	ctx := context.Background()

	l, err := listings.Create(ctx, "alice", &models.CreateListingRequest{Title: "Drill", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, listings.Delete(ctx, l.ID))

	_, err = listings.GetByID(ctx, l.ID)
	assert.ErrorIs(t, err, ErrListingNotFound)

	assert.ErrorIs(t, listings.Delete(ctx, l.ID), ErrListingNotFound)
}

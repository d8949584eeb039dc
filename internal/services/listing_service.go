package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devicelink/backend/internal/models"
	"github.com/devicelink/backend/internal/storage"
)

const listingColumns = `id, title, description, category, condition, quantity, owner, status, approved, created_at`

// ListingService owns the listings table: CRUD plus the filtered, paginated
// search query.
type ListingService struct {
	db *storage.DB
}

func NewListingService(db *storage.DB) *ListingService {
	return &ListingService{db: db}
}

// Create inserts a listing in moderation limbo: status PENDING, not approved.
// The activity-log row commits in the same transaction.
func (s *ListingService) Create(ctx context.Context, owner string, req *models.CreateListingRequest) (*models.Listing, error) {
	now := time.Now().UTC()
	status := models.StatusPending

	listing := &models.Listing{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Condition:   req.Condition,
		Quantity:    req.Quantity,
		Owner:       owner,
		Status:      &status,
		Approved:    false,
		CreatedAt:   now,
	}

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO listings (title, description, category, condition, quantity, owner, status, approved, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`,
			req.Title, req.Description, req.Category, req.Condition, req.Quantity, owner, status, now,
		)
		if err != nil {
			return fmt.Errorf("insert listing: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		listing.ID = id

		return logActivity(ctx, tx, "listing_created", owner, "Created listing: "+req.Title)
	})
	if err != nil {
		return nil, err
	}

	return listing, nil
}

func (s *ListingService) GetByID(ctx context.Context, id int64) (*models.Listing, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = ?`, id)

	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("get listing %d: %w", id, err)
	}
	return listing, nil
}

// Update applies the owner-editable fields. An empty status leaves the
// current value alone; any non-empty status outside ACTIVE/DELETED/COMPLETED
// fails with ErrInvalidStatus (nothing can move a listing back to PENDING).
// Ownership is checked by the caller via Guard.RequireOwner.
func (s *ListingService) Update(ctx context.Context, id int64, req *models.UpdateListingRequest) (*models.Listing, error) {
	listing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := listing.Status
	if req.Status != "" {
		if !models.AllowedStatusTarget(req.Status) {
			return nil, ErrInvalidStatus
		}
		st := req.Status
		status = &st
	}

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE listings
			 SET title = ?, description = ?, category = ?, condition = ?, quantity = ?, status = ?
			 WHERE id = ?`,
			req.Title, req.Description, req.Category, req.Condition, req.Quantity, status, id,
		); err != nil {
			return fmt.Errorf("update listing %d: %w", id, err)
		}

		return logActivity(ctx, tx, "listing_updated", listing.Owner, "Updated listing: "+req.Title)
	})
	if err != nil {
		return nil, err
	}

	listing.Title = req.Title
	listing.Description = req.Description
	listing.Category = req.Category
	listing.Condition = req.Condition
	listing.Quantity = req.Quantity
	listing.Status = status
	return listing, nil
}

// Delete removes the row entirely. This is the irreversible hard delete, a
// different thing from an owner setting status=DELETED (which only hides the
// listing from default search).
func (s *ListingService) Delete(ctx context.Context, id int64) error {
	listing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete listing %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrListingNotFound
		}

		return logActivity(ctx, tx, "listing_deleted", listing.Owner, "Deleted listing: "+listing.Title)
	})
}

// ListAll returns every listing, newest first, for the admin dashboard.
func (s *ListingService) ListAll(ctx context.Context) ([]models.ListingSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, owner, approved, category, created_at
		 FROM listings ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.ListingSummary, 0)
	for rows.Next() {
		var l models.ListingSummary
		if err := rows.Scan(&l.ID, &l.Title, &l.Owner, &l.Approved, &l.Category, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		summaries = append(summaries, l)
	}
	return summaries, rows.Err()
}

// Search runs the filter/pagination query.
//
// Viewer mode (ViewerUsername set) returns all of that owner's listings with
// no visibility predicate, so users always see their own pending, deleted and
// completed rows. Default mode shows only approved listings whose status is
// ACTIVE, with NULL status counting as ACTIVE for rows that predate the
// status column. Remaining filters AND together; the total is counted before
// the page slice; ordering is newest first with id as the tiebreaker.
func (s *ListingService) Search(ctx context.Context, f models.SearchFilters) (*models.SearchResult, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 200 {
		perPage = 200
	}

	conds := make([]string, 0, 7)
	args := make([]interface{}, 0, 9)

	if f.ViewerUsername != "" {
		conds = append(conds, "owner = ?")
		args = append(args, f.ViewerUsername)
	} else if f.ApprovedOnly == nil || *f.ApprovedOnly {
		conds = append(conds, "approved = 1 AND (status IS NULL OR status = ?)")
		args = append(args, models.StatusActive)
	}

	if f.Text != "" {
		like := "%" + strings.ToLower(f.Text) + "%"
		conds = append(conds, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)")
		args = append(args, like, like)
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.Condition != "" {
		conds = append(conds, "condition = ?")
		args = append(args, f.Condition)
	}
	if f.MinQuantity != nil {
		conds = append(conds, "quantity >= ?")
		args = append(args, *f.MinQuantity)
	}
	if f.MaxQuantity != nil {
		conds = append(conds, "quantity <= ?")
		args = append(args, *f.MaxQuantity)
	}
	if f.Owner != "" && f.ViewerUsername == "" {
		conds = append(conds, "owner = ?")
		args = append(args, f.Owner)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM listings`+where, args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count listings: %w", err)
	}

	query := `SELECT ` + listingColumns + ` FROM listings` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	defer rows.Close()

	items := make([]models.Listing, 0, perPage)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		items = append(items, *listing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.SearchResult{
		Items: items,
		Meta: models.SearchMeta{
			Total:   total,
			Page:    page,
			PerPage: perPage,
			Pages:   (total + perPage - 1) / perPage,
		},
	}, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*models.Listing, error) {
	l := &models.Listing{}
	var status sql.NullString

	if err := row.Scan(
		&l.ID, &l.Title, &l.Description, &l.Category, &l.Condition,
		&l.Quantity, &l.Owner, &status, &l.Approved, &l.CreatedAt,
	); err != nil {
		return nil, err
	}

	if status.Valid {
		l.Status = &status.String
	}
	return l, nil
}

// logActivity appends the audit row for a mutation inside the mutation's own
// transaction.
func logActivity(ctx context.Context, tx *sql.Tx, action, username, details string) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO activity_logs (action, username, details, created_at) VALUES (?, ?, ?, ?)`,
		action, username, details, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("log activity %s: %w", action, err)
	}
	return nil
}

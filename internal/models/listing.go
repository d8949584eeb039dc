package models

import (
	"time"
)

// Listing statuses. Status is owner-controlled and independent of the
// admin-controlled approved flag. Rows created before the status column
// existed carry no status at all; EffectiveStatus treats those as ACTIVE.
const (
	StatusPending   = "PENDING"
	StatusActive    = "ACTIVE"
	StatusDeleted   = "DELETED"
	StatusCompleted = "COMPLETED"
)

type Listing struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	Quantity    int       `json:"quantity"`
	Owner       string    `json:"owner"`
	Status      *string   `json:"status"`
	Approved    bool      `json:"approved"`
	CreatedAt   time.Time `json:"created_at"`
}

// EffectiveStatus resolves the legacy NULL status to ACTIVE.
func (l *Listing) EffectiveStatus() string {
	if l.Status == nil {
		return StatusActive
	}
	return *l.Status
}

// ListingSummary is the admin-facing view of a listing.
type ListingSummary struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Owner     string    `json:"owner"`
	Approved  bool      `json:"approved"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateListingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Condition   string `json:"condition"`
	Quantity    int    `json:"quantity"`
}

func (r *CreateListingRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Title == "" {
		errors["title"] = "Title is required"
	}
	if r.Quantity < 0 {
		errors["quantity"] = "Quantity cannot be negative"
	}

	return errors
}

// UpdateListingRequest carries the owner-editable fields. Status may only move
// to ACTIVE, DELETED or COMPLETED; nothing re-PENDs a listing.
type UpdateListingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Condition   string `json:"condition"`
	Quantity    int    `json:"quantity"`
	Status      string `json:"status"`
}

func (r *UpdateListingRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Title == "" {
		errors["title"] = "Title is required"
	}
	if r.Quantity < 0 {
		errors["quantity"] = "Quantity cannot be negative"
	}

	return errors
}

// AllowedStatusTarget reports whether an owner update may set the given status.
func AllowedStatusTarget(status string) bool {
	switch status {
	case StatusActive, StatusDeleted, StatusCompleted:
		return true
	}
	return false
}

// SearchFilters drives the listing query engine. All fields are optional;
// ViewerUsername switches the query into owner mode, which bypasses the
// approved/status visibility predicate entirely. ApprovedOnly defaults to
// true when nil and is only meaningful without a viewer.
type SearchFilters struct {
	Text           string
	Category       string
	Condition      string
	MinQuantity    *int
	MaxQuantity    *int
	Owner          string
	ViewerUsername string
	ApprovedOnly   *bool
	Page           int
	PerPage        int
}

type SearchMeta struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Pages   int `json:"pages"`
}

type SearchResult struct {
	Items []Listing  `json:"items"`
	Meta  SearchMeta `json:"meta"`
}

// Common listing categories, mirrored by the frontend pickers.
var ListingCategories = []string{
	"Electronics",
	"Furniture",
	"Tools",
	"Clothing",
	"Books",
	"Kitchen",
	"Sports",
	"Other",
}

// Common listing conditions.
var ListingConditions = []string{
	"New",
	"Like New",
	"Good",
	"Fair",
	"Poor",
}

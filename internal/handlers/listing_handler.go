package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/devicelink/backend/internal/middleware"
	"github.com/devicelink/backend/internal/models"
	"github.com/devicelink/backend/internal/services"
)

type ListingHandler struct {
	listings *services.ListingService
	guard    *services.Guard
}

func NewListingHandler(listings *services.ListingService, guard *services.Guard) *ListingHandler {
	return &ListingHandler{
		listings: listings,
		guard:    guard,
	}
}

// Search handles GET /listings. Anonymous callers see only approved, active
// listings; an authenticated caller passing mine=true gets all of their own
// rows regardless of moderation state.
func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) {
	filters, errMsg := parseSearchFilters(r.URL.Query())
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(errMsg))
		return
	}

	if mine := r.URL.Query().Get("mine"); mine == "true" || mine == "1" {
		username := middleware.GetUsername(r.Context())
		if username == "" {
			writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Authentication required for mine=true"))
			return
		}
		filters.ViewerUsername = username
	}

	result, err := h.listings.Search(r.Context(), *filters)
	if err != nil {
		log.Printf("[SearchListings] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to search listings"))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	username := middleware.GetUsername(r.Context())

	var req models.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(validationDetail(errs)))
		return
	}

	listing, err := h.listings.Create(r.Context(), username, &req)
	if err != nil {
		log.Printf("[CreateListing] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to create listing"))
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	username := middleware.GetUsername(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "listingID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid listing id"))
		return
	}

	var req models.UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(validationDetail(errs)))
		return
	}

	listing, err := h.listings.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Listing not found"))
			return
		}
		log.Printf("[UpdateListing] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update listing"))
		return
	}

	if err := h.guard.RequireOwner(listing, username); err != nil {
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Not authorized to update this listing"))
		return
	}

	updated, err := h.listings.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid status"))
			return
		}
		if errors.Is(err, services.ErrListingNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Listing not found"))
			return
		}
		log.Printf("[UpdateListing] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update listing"))
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := middleware.GetUsername(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "listingID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid listing id"))
		return
	}

	listing, err := h.listings.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Listing not found"))
			return
		}
		log.Printf("[DeleteListing] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to delete listing"))
		return
	}

	if err := h.guard.RequireOwner(listing, username); err != nil {
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Not authorized to delete this listing"))
		return
	}

	if err := h.listings.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Listing not found"))
			return
		}
		log.Printf("[DeleteListing] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to delete listing"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewMessageResponse("Listing deleted"))
}

// parseSearchFilters maps the query string onto SearchFilters. Out-of-range
// pagination is a validation error, not a silent clamp.
func parseSearchFilters(q url.Values) (*models.SearchFilters, string) {
	f := &models.SearchFilters{
		Text:      q.Get("text"),
		Category:  q.Get("category"),
		Condition: q.Get("condition"),
		Owner:     q.Get("owner"),
		Page:      1,
		PerPage:   20,
	}

	if v := q.Get("min_quantity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, "min_quantity must be a non-negative integer"
		}
		f.MinQuantity = &n
	}
	if v := q.Get("max_quantity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, "max_quantity must be a non-negative integer"
		}
		f.MaxQuantity = &n
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, "page must be a positive integer"
		}
		f.Page = n
	}
	if v := q.Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			return nil, "per_page must be between 1 and 200"
		}
		f.PerPage = n
	}
	if v := q.Get("approved_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, "approved_only must be a boolean"
		}
		f.ApprovedOnly = &b
	}

	return f, ""
}

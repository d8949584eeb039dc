package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/devicelink/backend/internal/middleware"
	"github.com/devicelink/backend/internal/models"
	"github.com/devicelink/backend/internal/services"
)

// AdminHandler serves the moderation surface. Every route except the admin
// check requires the acting identity to pass Guard.RequireAdmin.
type AdminHandler struct {
	users      *services.UserService
	listings   *services.ListingService
	moderation *services.ModerationService
	guard      *services.Guard
}

func NewAdminHandler(users *services.UserService, listings *services.ListingService, moderation *services.ModerationService, guard *services.Guard) *AdminHandler {
	return &AdminHandler{
		users:      users,
		listings:   listings,
		moderation: moderation,
		guard:      guard,
	}
}

// CheckAdmin reports whether the named user is an admin. Authenticated
// callers only; the frontend uses it right after login to decide whether to
// show the moderation dashboard.
func (h *AdminHandler) CheckAdmin(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("User not found"))
			return
		}
		log.Printf("[CheckAdmin] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to check admin status"))
		return
	}

	writeJSON(w, http.StatusOK, models.AdminCheckResponse{IsAdmin: user.IsAdmin})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	users, err := h.users.List(r.Context())
	if err != nil {
		log.Printf("[ListUsers] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list users"))
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	listings, err := h.listings.ListAll(r.Context())
	if err != nil {
		log.Printf("[ListListings] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list listings"))
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

func (h *AdminHandler) IssueWarning(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetUsername(r.Context())
	if !h.requireAdmin(w, r) {
		return
	}

	var req models.WarningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(validationDetail(errs)))
		return
	}

	if err := h.moderation.IssueWarning(r.Context(), admin, req.Username, req.Reason); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("User not found"))
			return
		}
		log.Printf("[IssueWarning] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to issue warning"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewMessageResponse(fmt.Sprintf("Warning issued to %s", req.Username)))
}

func (h *AdminHandler) SuspendUser(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetUsername(r.Context())
	if !h.requireAdmin(w, r) {
		return
	}

	var req models.SuspensionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if req.Username == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("username: Username is required"))
		return
	}

	if err := h.moderation.SetSuspension(r.Context(), admin, req.Username, req.IsSuspended); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("User not found"))
			return
		}
		log.Printf("[SuspendUser] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update suspension"))
		return
	}

	message := "User unsuspended"
	if req.IsSuspended {
		message = "User suspended"
	}
	writeJSON(w, http.StatusOK, models.NewMessageResponse(message))
}

func (h *AdminHandler) ApproveListing(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetUsername(r.Context())
	if !h.requireAdmin(w, r) {
		return
	}

	var req models.ApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if err := h.moderation.ApproveListing(r.Context(), admin, req.ListingID, req.Approved); err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Listing not found"))
			return
		}
		log.Printf("[ApproveListing] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update approval"))
		return
	}

	message := "Listing rejected"
	if req.Approved {
		message = "Listing approved"
	}
	writeJSON(w, http.StatusOK, models.NewMessageResponse(message))
}

func (h *AdminHandler) ListWarnings(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	username := chi.URLParam(r, "username")
	warnings, err := h.moderation.Warnings(r.Context(), username)
	if err != nil {
		log.Printf("[ListWarnings] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list warnings"))
		return
	}

	writeJSON(w, http.StatusOK, warnings)
}

func (h *AdminHandler) ListActivityLogs(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("limit must be a positive integer"))
			return
		}
		limit = n
	}

	logs, err := h.moderation.ActivityLogs(r.Context(), limit)
	if err != nil {
		log.Printf("[ListActivityLogs] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list activity logs"))
		return
	}

	writeJSON(w, http.StatusOK, logs)
}

// requireAdmin resolves the acting identity against the guard and writes the
// 403 itself. Absent user and non-admin user are indistinguishable on the
// wire.
func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	username := middleware.GetUsername(r.Context())

	if _, err := h.guard.RequireAdmin(r.Context(), username); err != nil {
		if errors.Is(err, services.ErrForbidden) {
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Admin privileges required"))
			return false
		}
		log.Printf("[RequireAdmin] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Authorization check failed"))
		return false
	}
	return true
}

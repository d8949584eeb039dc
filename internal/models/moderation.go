package models

import "time"

// UserWarning is an immutable disciplinary record issued by an admin.
type UserWarning struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Reason    string    `json:"reason"`
	IssuedBy  string    `json:"issued_by"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityLog is an append-only audit record, one per state-changing operation.
type ActivityLog struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Username  string    `json:"username"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

type WarningRequest struct {
	Username string `json:"username"`
	Reason   string `json:"reason"`
}

func (r *WarningRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Username == "" {
		errors["username"] = "Username is required"
	}
	if r.Reason == "" {
		errors["reason"] = "Reason is required"
	}

	return errors
}

type SuspensionRequest struct {
	Username    string `json:"username"`
	IsSuspended bool   `json:"is_suspended"`
}

type ApprovalRequest struct {
	ListingID int64 `json:"listing_id"`
	Approved  bool  `json:"approved"`
}

type AdminCheckResponse struct {
	IsAdmin bool `json:"is_admin"`
}

package models

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
	IsSuspended  bool   `json:"is_suspended"`
	WarningCount int    `json:"warning_count"`
}

// UserSummary is the admin-facing view of a user (no credential material).
type UserSummary struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	IsSuspended  bool   `json:"is_suspended"`
	WarningCount int    `json:"warning_count"`
	IsAdmin      bool   `json:"is_admin"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:           u.ID,
		Username:     u.Username,
		IsSuspended:  u.IsSuspended,
		WarningCount: u.WarningCount,
		IsAdmin:      u.IsAdmin,
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

func (r *RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Username == "" {
		errors["username"] = "Username is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 8 {
		errors["password"] = "Password must be at least 8 characters"
	}

	return errors
}

func (r *LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Username == "" {
		errors["username"] = "Username is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

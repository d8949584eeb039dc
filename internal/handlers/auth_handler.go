package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/devicelink/backend/internal/models"
	"github.com/devicelink/backend/internal/services"
)

type AuthHandler struct {
	users         *services.UserService
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthHandler(users *services.UserService, jwtSecret string, jwtExpiration time.Duration) *AuthHandler {
	return &AuthHandler{
		users:         users,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(validationDetail(errs)))
		return
	}

	if _, err := h.users.Register(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, services.ErrDuplicateUsername) {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Username already taken"))
			return
		}
		log.Printf("[Register] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to create user"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewMessageResponse("User created"))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(validationDetail(errs)))
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid credentials"))
			return
		}
		log.Printf("[Login] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Login failed"))
		return
	}

	token, err := h.generateToken(user.Username)
	if err != nil {
		log.Printf("[Login] Token error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to generate token"))
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{
		Message: "Login successful",
		Token:   token,
	})
}

func (h *AuthHandler) generateToken(username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": username,
		"jti": uuid.New().String(),
		"iat": now.Unix(),
		"exp": now.Add(h.jwtExpiration).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/abdougueye/diiokko-tv-sub000/internal/auth"
	"github.com/abdougueye/diiokko-tv-sub000/internal/database"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// LoginResponse contains the JWT token
type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := h.userStore.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, database.ErrInvalidCredentials) {
		respondError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("login query failed")
		respondError(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Username, user.IsAdmin, req.RememberMe)
	if err != nil {
		h.logger.Error().Err(err).Msg("token generation failed")
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	expiration := time.Now().Add(24 * time.Hour)
	if req.RememberMe {
		expiration = time.Now().Add(30 * 24 * time.Hour)
	}

	respondJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		ExpiresAt: expiration,
	})
}

// VerifyToken validates the current token
func (h *Handler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	tokenString := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if tokenString == "" {
		respondError(w, http.StatusUnauthorized, "no token provided")
		return
	}

	claims, err := auth.ValidateToken(tokenString)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"valid":    true,
		"user_id":  claims.UserID,
		"username": claims.Username,
		"is_admin": claims.IsAdmin,
	})
}

// Logout acknowledges the request; JWT logout is client-side token deletion.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// AuthStatus checks if setup is required (no users exist)
func (h *Handler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	count, err := h.userStore.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to check users")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"setup_required": count == 0,
		"user_count":     count,
	})
}

// CreateFirstUser creates the initial admin user if no users exist
func (h *Handler) CreateFirstUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := h.userStore.Count(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to check users")
		return
	}
	if count > 0 {
		respondError(w, http.StatusBadRequest, "users already exist")
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password required")
		return
	}

	if _, err := h.userStore.Create(ctx, req.Username, req.Password, true); err != nil {
		h.logger.Error().Err(err).Msg("failed to create first user")
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "admin user created successfully",
	})
}

package api

import (
	"alcyxob/swimtrack/internal/domain"
	"alcyxob/swimtrack/internal/service"
	"alcyxob/swimtrack/internal/store"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AuthHandler exposes registration and login over the session stores.
type AuthHandler struct {
	stores *store.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(stores *store.Manager) *AuthHandler {
	return &AuthHandler{stores: stores}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     domain.Role `json:"role" binding:"required,oneof=swimmer coach"`

	// Optional Strava application credentials captured at signup.
	StravaClientID     string `json:"stravaClientId"`
	StravaClientSecret string `json:"stravaClientSecret"`
}

type RegisterResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// --- Handler Methods ---

// Register creates a new account (swimmer or coach).
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	var creds *domain.StravaCredentials
	if req.StravaClientID != "" && req.StravaClientSecret != "" {
		creds = &domain.StravaCredentials{
			ClientID:     req.StravaClientID,
			ClientSecret: req.StravaClientSecret,
		}
	}

	st := h.stores.Get(req.Email)
	account, err := st.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role, creds)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		}
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		ID:        account.ID.String(),
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
	})
}

// Login authenticates a user and returns a JWT token. Invalid credentials
// are a 401, not an internal error.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	st := h.stores.Get(req.Email)
	token, ok, err := st.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		return
	}
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token})
}

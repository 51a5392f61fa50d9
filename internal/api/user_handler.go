package api

import (
	"alcyxob/swimtrack/internal/domain"
	"alcyxob/swimtrack/internal/repository"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler serves the admin/coach user-management endpoints. All routes
// are gated by the role middlewares, which check against the stored
// profile document rather than the token.
type UserHandler struct {
	userRepo repository.UserRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// UserResponse excludes sensitive fields like token material.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Admin     bool        `json:"admin"`
	Birthdate string      `json:"birthdate,omitempty"`
	CoachIDs  []string    `json:"coachIds,omitempty"`
	HasStrava bool        `json:"hasStrava"`
}

type UpdateUserRequest struct {
	Name      *string      `json:"name"`
	Role      *domain.Role `json:"role" binding:"omitempty,oneof=swimmer coach"`
	Admin     *bool        `json:"admin"`
	Birthdate *string      `json:"birthdate"`
	CoachIDs  []string     `json:"coachIds"`
}

// ListUsers returns the full roster. Coach or admin only.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userRepo.List(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list users")
		return
	}
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = mapUserToResponse(&users[i])
	}
	c.JSON(http.StatusOK, out)
}

// UpdateUser applies profile edits to one user. Coach or admin only.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load user")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Admin != nil {
		user.Admin = *req.Admin
	}
	if req.Birthdate != nil {
		user.Birthdate = *req.Birthdate
	}
	if req.CoachIDs != nil {
		coachIDs := make([]primitive.ObjectID, 0, len(req.CoachIDs))
		for _, raw := range req.CoachIDs {
			coachID, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				abortWithError(c, http.StatusBadRequest, "Invalid coach ID")
				return
			}
			coachIDs = append(coachIDs, coachID)
		}
		user.CoachIDs = coachIDs
	}

	if err := h.userRepo.Update(c.Request.Context(), user); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, mapUserToResponse(user))
}

// DeleteUser removes a profile document. Admin only; this is the one hard
// deletion path for users.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.userRepo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the authenticated identity and its resolved profile.
func (h *UserHandler) Me(c *gin.Context) {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get identity from token")
		return
	}
	profile, err := getProfileFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accountId": accountID,
		"profile":   mapUserToResponse(profile),
	})
}

func mapUserToResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Admin:     user.Admin,
		Birthdate: user.Birthdate,
		HasStrava: user.Strava != nil,
	}
	if len(user.CoachIDs) > 0 {
		resp.CoachIDs = make([]string, len(user.CoachIDs))
		for i, id := range user.CoachIDs {
			resp.CoachIDs[i] = id.Hex()
		}
	}
	return resp
}

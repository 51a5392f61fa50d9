package api

import (
	"alcyxob/swimtrack/internal/domain"
	"alcyxob/swimtrack/internal/repository"
	"alcyxob/swimtrack/internal/store"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SwimHandler is a thin wrapper over the session store's swim actions.
type SwimHandler struct {
	stores *store.Manager
}

// NewSwimHandler creates a new SwimHandler.
func NewSwimHandler(stores *store.Manager) *SwimHandler {
	return &SwimHandler{stores: stores}
}

type CreateSwimRequest struct {
	Date         *time.Time        `json:"date"`
	Distance     int               `json:"distance" binding:"required,gt=0"`
	Duration     float64           `json:"duration" binding:"required,gt=0"`
	TargetTime   *float64          `json:"targetTime"`
	Stroke       domain.Stroke     `json:"stroke" binding:"required,oneof=freestyle backstroke breaststroke butterfly"`
	Gear         []domain.Gear     `json:"gear"`
	PoolLength   domain.PoolLength `json:"poolLength" binding:"required,oneof=25 50"`
	StrokeRate   *float64          `json:"strokeRate"`
	HeartRate    *float64          `json:"heartRate"`
	PaceDistance *int              `json:"paceDistance"`
	UserID       string            `json:"userId"` // coach/admin logging for a swimmer
}

// ListSwims returns the role-scoped swim list from the session store.
func (h *SwimHandler) ListSwims(c *gin.Context) {
	st, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}
	st.LoadSwims(c.Request.Context())
	c.JSON(http.StatusOK, st.UserSwims())
}

// CreateSwim logs a new swim. Derived metrics are computed before insert;
// a missing target time is scaled from the matching goal time when one
// exists.
func (h *SwimHandler) CreateSwim(c *gin.Context) {
	var req CreateSwimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	st, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}

	swim := &domain.Swim{
		Distance:     req.Distance,
		Duration:     req.Duration,
		TargetTime:   req.TargetTime,
		Stroke:       req.Stroke,
		Gear:         req.Gear,
		PoolLength:   req.PoolLength,
		StrokeRate:   req.StrokeRate,
		HeartRate:    req.HeartRate,
		PaceDistance: req.PaceDistance,
		UserID:       req.UserID,
	}
	if req.Date != nil {
		swim.Date = *req.Date
	}

	if swim.TargetTime == nil {
		if goal := st.GoalFor(swim.Distance, swim.Stroke, swim.Gear, swim.PoolLength); goal != nil {
			target := goal.TargetTime
			if swim.PaceDistance != nil && *swim.PaceDistance > 0 && swim.Distance > 0 {
				target = goal.TargetTime * float64(*swim.PaceDistance) / float64(swim.Distance)
			}
			swim.TargetTime = &target
		}
	}

	if err := st.AddSwim(c.Request.Context(), swim); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to save swim")
		return
	}
	c.JSON(http.StatusCreated, swim)
}

// UpdateSwim applies a partial edit to one record.
func (h *SwimHandler) UpdateSwim(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid swim ID")
		return
	}

	var patch domain.SwimPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	st, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}

	if err := st.UpdateSwim(c.Request.Context(), id, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Swim not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to update swim")
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteSwim removes one record by id.
func (h *SwimHandler) DeleteSwim(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid swim ID")
		return
	}

	st, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}

	if err := st.DeleteSwim(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Swim not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete swim")
		return
	}
	c.Status(http.StatusNoContent)
}

package api

import (
	"alcyxob/swimtrack/internal/domain"
	"alcyxob/swimtrack/internal/repository"
	"alcyxob/swimtrack/internal/store"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DashboardHandler serves the derived views the dashboard renders: the
// filtered swim list, summary statistics, outliers, achievement zones and
// chart data, plus the filter and goal-time state behind them.
type DashboardHandler struct {
	stores *store.Manager
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(stores *store.Manager) *DashboardHandler {
	return &DashboardHandler{stores: stores}
}

// DashboardResponse bundles everything a dashboard render needs.
type DashboardResponse struct {
	Filter           domain.Filter           `json:"filter"`
	Swims            []domain.Swim           `json:"swims"`
	AverageAndSD     *store.AverageSD        `json:"averageAndSd,omitempty"`
	Outliers         []domain.Swim           `json:"outliers,omitempty"`
	AchievementZones []store.AchievementZone `json:"achievementZones,omitempty"`
	VelocityDistance []store.ChartSeries     `json:"velocityDistance,omitempty"`
	StrokeCounts     []store.StrokeCount     `json:"strokeCounts,omitempty"`
	SDChart          *store.SDChart          `json:"sdChart,omitempty"`
	Sessions         []domain.StravaSession  `json:"sessions,omitempty"`
	Loading          bool                    `json:"loading"`
}

// GetDashboard returns the current derived state for the session.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	st, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, DashboardResponse{
		Filter:           st.Filter(),
		Swims:            st.FilteredSwims(),
		AverageAndSD:     st.AverageAndSD(),
		Outliers:         st.OutlierSwims(),
		AchievementZones: st.AchievementZones(),
		VelocityDistance: st.VelocityDistanceData(),
		StrokeCounts:     st.StrokeDistribution(),
		SDChart:          st.SDChartData(),
		Sessions:         st.Sessions(),
		Loading:          st.Loading(),
	})
}

// ApplyFilters merges a partial filter update into the session filter.
func (h *DashboardHandler) ApplyFilters(c *gin.Context) {
	var patch domain.FilterPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	st, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}
	st.ApplyFilters(patch)
	c.JSON(http.StatusOK, st.Filter())
}

// ClearFilters resets the session filter to defaults.
func (h *DashboardHandler) ClearFilters(c *gin.Context) {
	st, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}
	st.ClearFilters()
	c.JSON(http.StatusOK, st.Filter())
}

type CreateGoalRequest struct {
	Distance   int               `json:"distance" binding:"required,gt=0"`
	Stroke     domain.Stroke     `json:"stroke" binding:"required,oneof=freestyle backstroke breaststroke butterfly"`
	Gear       []domain.Gear     `json:"gear"`
	PoolLength domain.PoolLength `json:"poolLength" binding:"required,oneof=25 50"`
	TargetTime float64           `json:"targetTime" binding:"required,gt=0"`
}

// ListGoals returns the session user's goal times.
func (h *DashboardHandler) ListGoals(c *gin.Context) {
	st, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}
	st.LoadGoalTimes(c.Request.Context())
	c.JSON(http.StatusOK, st.Goals())
}

// CreateGoal persists a new goal time.
func (h *DashboardHandler) CreateGoal(c *gin.Context) {
	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	st, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}

	goal := &domain.GoalTime{
		Distance:   req.Distance,
		Stroke:     req.Stroke,
		Gear:       req.Gear,
		PoolLength: req.PoolLength,
		TargetTime: req.TargetTime,
	}
	if err := st.AddGoalTime(c.Request.Context(), goal); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to save goal time")
		return
	}
	c.JSON(http.StatusCreated, goal)
}

// DeleteGoal removes a goal time by id.
func (h *DashboardHandler) DeleteGoal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid goal ID")
		return
	}

	st, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}

	if err := st.DeleteGoalTime(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Goal time not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete goal time")
		return
	}
	c.Status(http.StatusNoContent)
}

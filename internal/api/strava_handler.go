package api

import (
	"alcyxob/swimtrack/internal/repository"
	"alcyxob/swimtrack/internal/service"
	"alcyxob/swimtrack/internal/store"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StravaHandler drives the OAuth link flow and session sync. The callback
// route is hit by a browser redirect from Strava, so it carries no bearer
// token; the state parameter identifies the linking user instead.
type StravaHandler struct {
	stores   *store.Manager
	strava   service.StravaService
	userRepo repository.UserRepository
}

// NewStravaHandler creates a new StravaHandler.
func NewStravaHandler(stores *store.Manager, strava service.StravaService, userRepo repository.UserRepository) *StravaHandler {
	return &StravaHandler{stores: stores, strava: strava, userRepo: userRepo}
}

// Connect redirects the caller to Strava's authorization page.
func (h *StravaHandler) Connect(c *gin.Context) {
	st, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}
	user := st.CurrentUser()
	if user == nil {
		abortWithError(c, http.StatusForbidden, "No profile for this account")
		return
	}

	authURL, err := h.strava.AuthCodeURL(user, user.ID.Hex())
	if err != nil {
		if errors.Is(err, service.ErrStravaNotLinked) {
			abortWithError(c, http.StatusBadRequest, "No Strava application credentials on profile")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to build authorization URL")
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

// Callback completes the OAuth exchange and stores the tokens on the
// user's profile.
func (h *StravaHandler) Callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		abortWithError(c, http.StatusBadRequest, "Authorization denied")
		return
	}
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		abortWithError(c, http.StatusBadRequest, "Missing code or state")
		return
	}

	userID, err := primitive.ObjectIDFromHex(state)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid state")
		return
	}
	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load user")
		return
	}

	if err := h.strava.Exchange(c.Request.Context(), user, code); err != nil {
		abortWithError(c, http.StatusBadGateway, "Token exchange failed")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// Sync pulls swim activities from Strava into the local session cache and
// reloads the enriched list.
func (h *StravaHandler) Sync(c *gin.Context) {
	st, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}

	synced, err := st.SyncStravaSessions(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStravaNotLinked), errors.Is(err, service.ErrStravaTokenMissing):
			abortWithError(c, http.StatusBadRequest, "Strava is not linked for this account")
		case errors.Is(err, service.ErrStravaUpstreamFailed):
			abortWithError(c, http.StatusBadGateway, "Strava request failed")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to sync sessions")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": synced, "sessions": st.Sessions()})
}

// Sessions returns the cached session list with heart-rate zone times.
func (h *StravaHandler) Sessions(c *gin.Context) {
	st, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}
	if err := st.LoadStravaSessions(c.Request.Context()); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load sessions")
		return
	}
	c.JSON(http.StatusOK, st.Sessions())
}

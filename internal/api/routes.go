package api

import (
	"alcyxob/swimtrack/internal/repository"
	"alcyxob/swimtrack/internal/service"
	"alcyxob/swimtrack/internal/store"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	stores *store.Manager,
	userRepo repository.UserRepository,
	stravaService service.StravaService,
	staticDir string,
) {

	authHandler := NewAuthHandler(stores)
	userHandler := NewUserHandler(userRepo)
	swimHandler := NewSwimHandler(stores)
	dashboardHandler := NewDashboardHandler(stores)
	stravaHandler := NewStravaHandler(stores, stravaService, userRepo)

	authMiddleware := AuthMiddleware(jwtSecret)
	profileMiddleware := ProfileMiddleware(userRepo)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	// The Strava callback is a browser redirect and carries no bearer
	// token; state identifies the user.
	apiV1.GET("/strava/callback", stravaHandler.Callback)

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	protected.Use(profileMiddleware)
	{
		protected.GET("/me", userHandler.Me)

		// --- User Management Routes ---
		userGroup := protected.Group("/users")
		{
			// GET /api/v1/users - roster for coaches and admins
			userGroup.GET("", RequireCoachOrAdmin(), userHandler.ListUsers)
			// PUT /api/v1/users/{id} - profile edits incl. role and coach links
			userGroup.PUT("/:id", RequireCoachOrAdmin(), userHandler.UpdateUser)
			// DELETE /api/v1/users/{id} - admins only
			userGroup.DELETE("/:id", RequireAdmin(), userHandler.DeleteUser)
		}

		// --- Swim Routes ---
		swimGroup := protected.Group("/swims")
		{
			swimGroup.GET("", swimHandler.ListSwims)
			swimGroup.POST("", swimHandler.CreateSwim)
			swimGroup.PUT("/:id", swimHandler.UpdateSwim)
			swimGroup.DELETE("/:id", swimHandler.DeleteSwim)
		}

		// --- Goal Time Routes ---
		goalGroup := protected.Group("/goals")
		{
			goalGroup.GET("", dashboardHandler.ListGoals)
			goalGroup.POST("", dashboardHandler.CreateGoal)
			goalGroup.DELETE("/:id", dashboardHandler.DeleteGoal)
		}

		// --- Dashboard Routes ---
		dashboardGroup := protected.Group("/dashboard")
		{
			dashboardGroup.GET("", dashboardHandler.GetDashboard)
			dashboardGroup.PUT("/filters", dashboardHandler.ApplyFilters)
			dashboardGroup.DELETE("/filters", dashboardHandler.ClearFilters)
		}

		// --- Strava Routes ---
		stravaGroup := protected.Group("/strava")
		{
			stravaGroup.GET("/connect", stravaHandler.Connect)
			stravaGroup.GET("/sessions", stravaHandler.Sessions)
			stravaGroup.POST("/sync", stravaHandler.Sync)
		}
	}

	if staticDir != "" {
		setupStatic(router, staticDir)
	}
}

// setupStatic serves the built frontend. Unknown non-API paths fall back
// to index.html so client-side routing works after a hard reload.
func setupStatic(router *gin.Engine, staticDir string) {
	router.Static("/assets", filepath.Join(staticDir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(staticDir, "favicon.ico"))

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	})
}

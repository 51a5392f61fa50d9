package api

import (
	"alcyxob/swimtrack/internal/domain"
	"alcyxob/swimtrack/internal/repository"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Constants for context keys
const (
	ContextAccountIDKey = "accountID"
	ContextEmailKey     = "email"
	ContextProfileKey   = "profile"
)

// jwtClaims mirrors the payload produced by the auth service. The token
// carries identity only; roles are checked against the stored profile.
type jwtClaims struct {
	AccountID string `json:"uid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}
		tokenString := parts[1]

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})

		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, "Invalid token")
			}
			return
		}

		if !token.Valid || claims.AccountID == "" || claims.Email == "" {
			abortWithError(c, http.StatusUnauthorized, "Invalid token or missing claims")
			return
		}

		c.Set(ContextAccountIDKey, claims.AccountID)
		c.Set(ContextEmailKey, claims.Email)

		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// ProfileMiddleware resolves the stored profile document for the
// authenticated identity and puts it on the context. The bearer token is
// proof of identity; the profile document is the authority on roles.
// Must run AFTER AuthMiddleware.
func ProfileMiddleware(userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := getEmailFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "Email not found in context")
			return
		}

		profile, err := userRepo.GetByEmail(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				abortWithError(c, http.StatusForbidden, "No profile for this identity")
				return
			}
			abortWithError(c, http.StatusInternalServerError, "Failed to load profile")
			return
		}

		c.Set(ContextProfileKey, profile)
		c.Next()
	}
}

// RequireAdmin rejects requests whose stored profile is not an admin.
// Must run AFTER ProfileMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := getProfileFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "Profile not found in context")
			return
		}
		if !profile.Admin {
			abortWithError(c, http.StatusForbidden, "Access denied: admin only")
			return
		}
		c.Next()
	}
}

// RequireCoachOrAdmin rejects requests unless the stored profile is a
// coach or an admin. Must run AFTER ProfileMiddleware.
func RequireCoachOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := getProfileFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "Profile not found in context")
			return
		}
		if !profile.Admin && !profile.IsCoach() {
			abortWithError(c, http.StatusForbidden, "Access denied: coach or admin only")
			return
		}
		c.Next()
	}
}

// Helper function to get the account ID from context (used by handlers)
func getAccountIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextAccountIDKey)
	if !exists {
		return "", errors.New("account ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return "", errors.New("invalid account ID type in context")
	}
	return idStr, nil
}

// Helper function to get the email from context (used by handlers)
func getEmailFromContext(c *gin.Context) (string, error) {
	emailRaw, exists := c.Get(ContextEmailKey)
	if !exists {
		return "", errors.New("email not found in context")
	}
	email, ok := emailRaw.(string)
	if !ok {
		return "", errors.New("invalid email type in context")
	}
	return email, nil
}

// Helper function to get the resolved profile from context
func getProfileFromContext(c *gin.Context) (*domain.User, error) {
	profileRaw, exists := c.Get(ContextProfileKey)
	if !exists {
		return nil, errors.New("profile not found in context")
	}
	profile, ok := profileRaw.(*domain.User)
	if !ok {
		return nil, errors.New("invalid profile type in context")
	}
	return profile, nil
}

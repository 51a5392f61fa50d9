package domain

import (
	"time"

	"alcyxob/swimtrack/internal/stats"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleSwimmer Role = "swimmer"
	RoleCoach   Role = "coach"
)

// User represents a user profile document (either a Swimmer or a Coach).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	Admin        bool               `bson:"admin" json:"admin"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Birthdate in YYYY-MM-DD form, used to estimate max heart rate (220 - age).
	Birthdate string `bson:"birthdate,omitempty" json:"birthdate,omitempty"`

	// --- Swimmer-specific ---
	// Stores ObjectIDs of Coaches this swimmer is linked to.
	CoachIDs []primitive.ObjectID `bson:"coachIds,omitempty" json:"coachIds,omitempty"`

	// --- Strava link (optional) ---
	// Per-user API application credentials plus the tokens obtained through
	// the OAuth authorization-code exchange.
	Strava *StravaCredentials `bson:"strava,omitempty" json:"strava,omitempty"`
}

// StravaCredentials holds a user's Strava application credentials and tokens.
type StravaCredentials struct {
	ClientID     string    `bson:"clientId" json:"clientId"`
	ClientSecret string    `bson:"clientSecret" json:"-"`
	AccessToken  string    `bson:"accessToken,omitempty" json:"-"`
	RefreshToken string    `bson:"refreshToken,omitempty" json:"-"`
	Expiry       time.Time `bson:"expiry,omitempty" json:"-"`
}

func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

func (u *User) IsSwimmer() bool {
	return u.Role == RoleSwimmer
}

// MaxHeartRate estimates the user's maximum heart rate from their age using
// the common 220-minus-age rule. Returns nil when no birthdate is recorded.
func (u *User) MaxHeartRate(now time.Time) *float64 {
	age := stats.AgeFromBirthdate(u.Birthdate, now)
	if age == nil {
		return nil
	}
	maxHr := float64(220 - *age)
	return &maxHr
}

// HasStravaToken reports whether the profile carries a usable access token.
func (u *User) HasStravaToken() bool {
	return u.Strava != nil && u.Strava.AccessToken != ""
}

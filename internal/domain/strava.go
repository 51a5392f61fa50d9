package domain

import (
	"time"

	"github.com/google/uuid"

	"alcyxob/swimtrack/internal/stats"
)

// StravaSession is one activity imported from Strava. Sessions are created
// by the sync action and never edited by the user. The owning user is joined
// by email, not by profile id, because that is the only stable key the
// Strava import carries.
type StravaSession struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ActivityID  int64     `gorm:"column:activity_id;not null;uniqueIndex" json:"activityId"`
	UserEmail   string    `gorm:"column:user_email;not null;index" json:"userEmail"`
	Name        string    `gorm:"column:name" json:"name"`
	Distance    float64   `gorm:"column:distance" json:"distance"` // meters
	MovingTime  int       `gorm:"column:moving_time" json:"movingTime"`
	ElapsedTime int       `gorm:"column:elapsed_time" json:"elapsedTime"`
	StartDate   time.Time `gorm:"column:start_date" json:"startDate"`
	AvgHR       *float64  `gorm:"column:avg_hr" json:"avgHr,omitempty"`
	MaxHR       *float64  `gorm:"column:max_hr" json:"maxHr,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`

	// ZoneTimes is the per-zone heart-rate breakdown, enriched in memory
	// after load when a token and a max heart rate are available. Never
	// persisted.
	ZoneTimes []stats.ZoneTime `gorm:"-" json:"zoneTimes,omitempty"`
}

func (StravaSession) TableName() string { return "strava_sessions" }

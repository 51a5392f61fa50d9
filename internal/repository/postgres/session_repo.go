package postgres

import (
	"alcyxob/swimtrack/internal/domain"
	"alcyxob/swimtrack/internal/repository"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormSessionRepository implements repository.SessionRepository on GORM.
type gormSessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository constructs a Strava session cache repository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &gormSessionRepository{db: db}
}

// Upsert inserts a session or updates the cached copy when the Strava
// activity id is already known. The sync re-imports overlapping pages, so
// conflicts are routine rather than exceptional.
func (r *gormSessionRepository) Upsert(ctx context.Context, session *domain.StravaSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "activity_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "distance", "moving_time", "elapsed_time", "start_date", "avg_hr", "max_hr",
		}),
	}).Create(session).Error
}

// GetByEmail returns the cached sessions belonging to a user, newest first.
func (r *gormSessionRepository) GetByEmail(ctx context.Context, email string) ([]domain.StravaSession, error) {
	var sessions []domain.StravaSession
	err := r.db.WithContext(ctx).
		Where("user_email = ?", email).
		Order("start_date DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

package postgres

import (
	"alcyxob/swimtrack/internal/domain"
	"alcyxob/swimtrack/internal/repository"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormGoalRepository implements repository.GoalRepository on GORM.
type gormGoalRepository struct {
	db *gorm.DB
}

// NewGoalRepository constructs a goal-time repository.
func NewGoalRepository(db *gorm.DB) repository.GoalRepository {
	return &gormGoalRepository{db: db}
}

// Create inserts a new goal time.
func (r *gormGoalRepository) Create(ctx context.Context, goal *domain.GoalTime) (uuid.UUID, error) {
	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(goal).Error; err != nil {
		return uuid.Nil, err
	}
	return goal.ID, nil
}

// GetByUserID returns the user's goal times.
func (r *gormGoalRepository) GetByUserID(ctx context.Context, userID string) ([]domain.GoalTime, error) {
	var goals []domain.GoalTime
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&goals).Error
	if err != nil {
		return nil, err
	}
	return goals, nil
}

// Delete removes a goal time by id.
func (r *gormGoalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.GoalTime{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

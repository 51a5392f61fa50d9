package postgres

import (
	"alcyxob/swimtrack/internal/domain"
	"alcyxob/swimtrack/internal/repository"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormSwimRepository implements repository.SwimRepository on GORM.
type gormSwimRepository struct {
	db *gorm.DB
}

// NewSwimRepository constructs a swim repository bound to the provided DB.
func NewSwimRepository(db *gorm.DB) repository.SwimRepository {
	return &gormSwimRepository{db: db}
}

// Create inserts a new swim record.
func (r *gormSwimRepository) Create(ctx context.Context, swim *domain.Swim) (uuid.UUID, error) {
	if swim.ID == uuid.Nil {
		swim.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(swim).Error; err != nil {
		return uuid.Nil, err
	}
	return swim.ID, nil
}

// GetByID loads a single swim.
func (r *gormSwimRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Swim, error) {
	var swim domain.Swim
	if err := r.db.WithContext(ctx).First(&swim, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &swim, nil
}

// GetAll returns every swim record, newest first. Admin view.
func (r *gormSwimRepository) GetAll(ctx context.Context) ([]domain.Swim, error) {
	var swims []domain.Swim
	if err := r.db.WithContext(ctx).Order("date DESC").Find(&swims).Error; err != nil {
		return nil, err
	}
	return swims, nil
}

// GetByUserIDs returns swims owned by any of the given users, newest first.
func (r *gormSwimRepository) GetByUserIDs(ctx context.Context, userIDs []string) ([]domain.Swim, error) {
	if len(userIDs) == 0 {
		return []domain.Swim{}, nil
	}
	var swims []domain.Swim
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("date DESC").
		Find(&swims).Error
	if err != nil {
		return nil, err
	}
	return swims, nil
}

// Update saves the full record. Last write wins; there is no concurrency
// token on swim rows.
func (r *gormSwimRepository) Update(ctx context.Context, swim *domain.Swim) error {
	result := r.db.WithContext(ctx).Model(&domain.Swim{}).
		Where("id = ?", swim.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(swim)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a swim by id.
func (r *gormSwimRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Swim{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

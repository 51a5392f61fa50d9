package postgres

import (
	"alcyxob/swimtrack/internal/domain"
	"alcyxob/swimtrack/internal/repository"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormAccountRepository implements repository.AccountRepository on GORM.
type gormAccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository constructs an account repository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &gormAccountRepository{db: db}
}

// Create inserts a new authentication identity.
func (r *gormAccountRepository) Create(ctx context.Context, account *domain.Account) (uuid.UUID, error) {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate key") {
			return uuid.Nil, repository.ErrDuplicate
		}
		return uuid.Nil, err
	}
	return account.ID, nil
}

// GetByEmail loads the identity matching the provided email.
func (r *gormAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetByID loads an identity by its UUID.
func (r *gormAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

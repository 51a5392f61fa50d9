package repository

import (
	"alcyxob/swimtrack/internal/domain"
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("already exists")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// AccountRepository is the authentication identity store (Backend B).
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (uuid.UUID, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
}

// UserRepository is the profile-document store (Backend A).
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	GetSwimmersByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateStrava(ctx context.Context, id primitive.ObjectID, creds *domain.StravaCredentials) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SwimRepository is the swim-record store (Backend B).
type SwimRepository interface {
	Create(ctx context.Context, swim *domain.Swim) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Swim, error)
	GetAll(ctx context.Context) ([]domain.Swim, error)
	GetByUserIDs(ctx context.Context, userIDs []string) ([]domain.Swim, error)
	Update(ctx context.Context, swim *domain.Swim) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// GoalRepository stores per-user goal times (Backend B).
type GoalRepository interface {
	Create(ctx context.Context, goal *domain.GoalTime) (uuid.UUID, error)
	GetByUserID(ctx context.Context, userID string) ([]domain.GoalTime, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionRepository stores cached Strava sessions (Backend B). Sessions are
// written by the import sync only; there is no user-facing edit path.
type SessionRepository interface {
	Upsert(ctx context.Context, session *domain.StravaSession) error
	GetByEmail(ctx context.Context, email string) ([]domain.StravaSession, error)
}

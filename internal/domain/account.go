package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is the authentication identity row (Backend B). It carries only
// credentials; everything role-related lives on the profile document, which
// may lag behind the account when profile creation failed after a
// successful signup. That gap is repaired lazily on first login.
type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Account) TableName() string { return "accounts" }

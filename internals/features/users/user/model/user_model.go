package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"csesociety_backend/internals/constants"
)

// UserModel is the society member record. Account management lives elsewhere;
// the payment flow only reads identity and contact fields.
type UserModel struct {
	ID       uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserName string         `gorm:"column:user_name;size:50;not null" json:"user_name"`
	FullName *string        `gorm:"column:full_name;size:120" json:"full_name,omitempty"`
	Email    string         `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	Phone    *string        `gorm:"column:phone;size:30" json:"phone,omitempty"`
	Role     constants.Role `gorm:"column:role;type:varchar(20);not null;default:'member'" json:"role"`
	IsActive bool           `gorm:"column:is_active;not null" json:"is_active"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = constants.RoleMember
	}
	return nil
}

// DisplayName prefers the full name over the handle.
func (u *UserModel) DisplayName() string {
	if u.FullName != nil && strings.TrimSpace(*u.FullName) != "" {
		return strings.TrimSpace(*u.FullName)
	}
	return u.UserName
}

func (u *UserModel) PhoneNumber() string {
	if u.Phone == nil {
		return ""
	}
	return strings.TrimSpace(*u.Phone)
}

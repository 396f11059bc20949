package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"csesociety_backend/internals/features/users/user/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserInactive = errors.New("user inactive")
)

func FindUser(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.UserModel, error) {
	var u model.UserModel
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return &u, nil
}

// FindActiveUser is FindUser plus the is_active gate.
func FindActiveUser(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.UserModel, error) {
	u, err := FindUser(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrUserInactive
	}
	return u, nil
}

// ActiveUserChecker adapts FindActiveUser to the JWT middleware hook.
func ActiveUserChecker(db *gorm.DB) func(ctx context.Context, id uuid.UUID) error {
	return func(ctx context.Context, id uuid.UUID) error {
		_, err := FindActiveUser(ctx, db, id)
		return err
	}
}

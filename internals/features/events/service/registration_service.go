package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"csesociety_backend/internals/features/events/model"
)

var ErrEventNotFound = errors.New("event not found")

// FindEvent returns an active, non-deleted event.
func FindEvent(ctx context.Context, db *gorm.DB, eventID uuid.UUID) (*model.Event, error) {
	var e model.Event
	err := db.WithContext(ctx).
		Where("event_id = ? AND event_is_active = ?", eventID, true).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("find event %s: %w", eventID, err)
	}
	return &e, nil
}

// RegisterUser adds userID to the event's registered users. Registering twice
// keeps a single row and reports created=false.
func RegisterUser(ctx context.Context, tx *gorm.DB, eventID, userID uuid.UUID, transactionID string) (bool, error) {
	reg := model.EventRegistration{
		EventRegistrationEventID: eventID,
		EventRegistrationUserID:  userID,
	}
	if transactionID != "" {
		reg.EventRegistrationPaymentTransactionID = &transactionID
	}
	res := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_registration_event_id"}, {Name: "event_registration_user_id"}},
			DoNothing: true,
		}).
		Create(&reg)
	if res.Error != nil {
		return false, fmt.Errorf("register user %s for event %s: %w", userID, eventID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func IsRegistered(ctx context.Context, db *gorm.DB, eventID, userID uuid.UUID) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.EventRegistration{}).
		Where("event_registration_event_id = ? AND event_registration_user_id = ?", eventID, userID).
		Count(&n).Error
	return n > 0, err
}

func RegisteredUserIDs(ctx context.Context, db *gorm.DB, eventID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.WithContext(ctx).Model(&model.EventRegistration{}).
		Where("event_registration_event_id = ?", eventID).
		Order("event_registration_registered_at ASC").
		Pluck("event_registration_user_id", &ids).Error
	return ids, err
}

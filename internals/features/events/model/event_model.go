package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Event struct {
	EventID     uuid.UUID       `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	EventClubID *uuid.UUID      `gorm:"column:event_club_id;type:uuid;index" json:"event_club_id,omitempty"`
	EventTitle  string          `gorm:"column:event_title;type:varchar(160);not null" json:"event_title"`
	EventSlug   string          `gorm:"column:event_slug;type:varchar(160);not null;uniqueIndex" json:"event_slug"`
	EventFee    decimal.Decimal `gorm:"column:event_fee;type:numeric(12,2);not null" json:"event_fee"`

	EventStartsAt *time.Time `gorm:"column:event_starts_at" json:"event_starts_at,omitempty"`
	EventIsActive bool       `gorm:"column:event_is_active;not null" json:"event_is_active"`

	EventCreatedAt time.Time      `gorm:"column:event_created_at;autoCreateTime" json:"event_created_at"`
	EventUpdatedAt time.Time      `gorm:"column:event_updated_at;autoUpdateTime" json:"event_updated_at"`
	EventDeletedAt gorm.DeletedAt `gorm:"column:event_deleted_at;index" json:"event_deleted_at,omitempty"`
}

func (Event) TableName() string { return "events" }

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}

// EventRegistration is one entry of an event's registered-user set;
// (event, user) is unique.
type EventRegistration struct {
	EventRegistrationID      uuid.UUID `gorm:"column:event_registration_id;type:uuid;primaryKey" json:"event_registration_id"`
	EventRegistrationEventID uuid.UUID `gorm:"column:event_registration_event_id;type:uuid;not null;uniqueIndex:uq_event_registration_event_user" json:"event_registration_event_id"`
	EventRegistrationUserID  uuid.UUID `gorm:"column:event_registration_user_id;type:uuid;not null;uniqueIndex:uq_event_registration_event_user" json:"event_registration_user_id"`

	EventRegistrationPaymentTransactionID *string `gorm:"column:event_registration_payment_transaction_id;type:varchar(200)" json:"event_registration_payment_transaction_id,omitempty"`

	EventRegistrationRegisteredAt time.Time `gorm:"column:event_registration_registered_at;not null" json:"event_registration_registered_at"`
}

func (EventRegistration) TableName() string { return "event_registrations" }

func (r *EventRegistration) BeforeCreate(tx *gorm.DB) error {
	if r.EventRegistrationID == uuid.Nil {
		r.EventRegistrationID = uuid.New()
	}
	if r.EventRegistrationRegisteredAt.IsZero() {
		r.EventRegistrationRegisteredAt = time.Now()
	}
	return nil
}

package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	GatewayManual = "manual"
)

var ErrImmutablePaymentField = errors.New("payment amount and transaction id are immutable")

/*
payment_records = permanent payment ledger.
  - gateway rows are written only after a VALID/VALIDATED verification
  - manual rows are written by a super admin (recorded_by set)
  - amount and transaction_id never change; status/notes may
*/
type PaymentRecord struct {
	PaymentRecordID uuid.UUID `gorm:"column:payment_record_id;type:uuid;primaryKey" json:"payment_record_id"`

	PaymentRecordUserID     uuid.UUID  `gorm:"column:payment_record_user_id;type:uuid;not null;index" json:"payment_record_user_id"`
	PaymentRecordTargetType TargetType `gorm:"column:payment_record_target_type;type:varchar(10);not null;index:idx_payment_record_target" json:"payment_record_target_type"`
	PaymentRecordTargetID   uuid.UUID  `gorm:"column:payment_record_target_id;type:uuid;not null;index:idx_payment_record_target" json:"payment_record_target_id"`

	PaymentRecordAmount   decimal.Decimal `gorm:"column:payment_record_amount;type:numeric(12,2);not null" json:"payment_record_amount"`
	PaymentRecordCurrency string          `gorm:"column:payment_record_currency;type:varchar(8);not null" json:"payment_record_currency"`
	PaymentRecordStatus   PaymentStatus   `gorm:"column:payment_record_status;type:varchar(16);not null;index" json:"payment_record_status"`

	PaymentRecordPaymentDate   time.Time `gorm:"column:payment_record_payment_date;not null" json:"payment_record_payment_date"`
	PaymentRecordTransactionID string    `gorm:"column:payment_record_transaction_id;type:varchar(200);not null;uniqueIndex" json:"payment_record_transaction_id"`
	PaymentRecordGateway       string    `gorm:"column:payment_record_gateway;type:varchar(20);not null" json:"payment_record_gateway"`

	PaymentRecordNotes      *string    `gorm:"column:payment_record_notes;type:text" json:"payment_record_notes,omitempty"`
	PaymentRecordRecordedBy *uuid.UUID `gorm:"column:payment_record_recorded_by;type:uuid" json:"payment_record_recorded_by,omitempty"`

	// validation payload from the gateway (val_id, bank_tran_id, card_type, ...)
	PaymentRecordMeta datatypes.JSONMap `gorm:"column:payment_record_meta" json:"payment_record_meta,omitempty"`

	PaymentRecordCreatedAt time.Time `gorm:"column:payment_record_created_at;autoCreateTime" json:"payment_record_created_at"`
	PaymentRecordUpdatedAt time.Time `gorm:"column:payment_record_updated_at;autoUpdateTime" json:"payment_record_updated_at"`
}

func (PaymentRecord) TableName() string { return "payment_records" }

func (p *PaymentRecord) BeforeCreate(tx *gorm.DB) error {
	if p.PaymentRecordID == uuid.Nil {
		p.PaymentRecordID = uuid.New()
	}
	if p.PaymentRecordPaymentDate.IsZero() {
		p.PaymentRecordPaymentDate = time.Now()
	}
	return nil
}

func (p *PaymentRecord) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("PaymentRecordAmount", "PaymentRecordTransactionID") {
		return ErrImmutablePaymentField
	}
	return nil
}

func (p *PaymentRecord) IsPaid() bool {
	return p.PaymentRecordStatus == PaymentStatusPaid
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

/*
pending_transactions = in-flight gateway attempts.
  - written before the gateway session is requested
  - removed when the success callback is confirmed (or by the reaper)
  - (target_type, target_id) points at the club or event being paid for
*/
type PendingTransaction struct {
	PendingTransactionID uuid.UUID `gorm:"column:pending_transaction_id;type:uuid;primaryKey" json:"pending_transaction_id"`

	PendingTransactionTransactionID string `gorm:"column:pending_transaction_transaction_id;type:varchar(200);not null;uniqueIndex" json:"pending_transaction_transaction_id"`

	PendingTransactionUserID     uuid.UUID  `gorm:"column:pending_transaction_user_id;type:uuid;not null;index" json:"pending_transaction_user_id"`
	PendingTransactionTargetType TargetType `gorm:"column:pending_transaction_target_type;type:varchar(10);not null" json:"pending_transaction_target_type"`
	PendingTransactionTargetID   uuid.UUID  `gorm:"column:pending_transaction_target_id;type:uuid;not null" json:"pending_transaction_target_id"`

	// amount and currency requested at initiation; the ledger records what the gateway reports
	PendingTransactionAmount   decimal.Decimal `gorm:"column:pending_transaction_amount;type:numeric(12,2);not null" json:"pending_transaction_amount"`
	PendingTransactionCurrency string          `gorm:"column:pending_transaction_currency;type:varchar(8);not null" json:"pending_transaction_currency"`

	PendingTransactionCreatedAt time.Time `gorm:"column:pending_transaction_created_at;not null;index" json:"pending_transaction_created_at"`
}

func (PendingTransaction) TableName() string { return "pending_transactions" }

func (p *PendingTransaction) BeforeCreate(tx *gorm.DB) error {
	if p.PendingTransactionID == uuid.Nil {
		p.PendingTransactionID = uuid.New()
	}
	if p.PendingTransactionCreatedAt.IsZero() {
		p.PendingTransactionCreatedAt = time.Now()
	}
	return nil
}

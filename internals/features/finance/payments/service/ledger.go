package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	clubService "csesociety_backend/internals/features/clubs/service"
	eventService "csesociety_backend/internals/features/events/service"
	"csesociety_backend/internals/features/finance/payments/model"
	userService "csesociety_backend/internals/features/users/user/service"
)

type ListFilter struct {
	UserID     *uuid.UUID
	TargetType model.TargetType
	TargetID   *uuid.UUID
	Status     model.PaymentStatus
	From       *time.Time
	To         *time.Time
	Query      string // substring of transaction id
}

type ManualEntry struct {
	UserID        uuid.UUID
	Target        Target
	Amount        decimal.Decimal
	Currency      string
	Status        model.PaymentStatus
	PaymentDate   *time.Time
	TransactionID string
	Notes         *string
}

// Ledger is the permanent payment record store.
type Ledger struct {
	db              *gorm.DB
	defaultCurrency string
}

func NewLedger(db *gorm.DB, defaultCurrency string) *Ledger {
	return &Ledger{db: db, defaultCurrency: defaultCurrency}
}

func (l *Ledger) List(ctx context.Context, f ListFilter, offset, limit int) ([]model.PaymentRecord, int64, error) {
	q := l.db.WithContext(ctx).Model(&model.PaymentRecord{})
	if f.UserID != nil {
		q = q.Where("payment_record_user_id = ?", *f.UserID)
	}
	if f.TargetType != "" {
		q = q.Where("payment_record_target_type = ?", f.TargetType)
	}
	if f.TargetID != nil {
		q = q.Where("payment_record_target_id = ?", *f.TargetID)
	}
	if f.Status != "" {
		q = q.Where("payment_record_status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("payment_record_payment_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("payment_record_payment_date < ?", *f.To)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		q = q.Where("payment_record_transaction_id LIKE ?", "%"+s+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.PaymentRecord
	if err := q.Order("payment_record_payment_date DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (l *Ledger) ListForUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.PaymentRecord, int64, error) {
	return l.List(ctx, ListFilter{UserID: &userID}, offset, limit)
}

func (l *Ledger) Get(ctx context.Context, id uuid.UUID) (*model.PaymentRecord, error) {
	var rec model.PaymentRecord
	if err := l.db.WithContext(ctx).First(&rec, "payment_record_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// RecordManual books an offline payment (cash, bank slip) on behalf of a member.
// It does not open join requests or registrations.
func (l *Ledger) RecordManual(ctx context.Context, e ManualEntry, recordedBy uuid.UUID) (*model.PaymentRecord, error) {
	if !e.Target.Type.Valid() || e.Target.ID == uuid.Nil {
		return nil, ErrInvalidTarget
	}
	if e.Amount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if e.Status == "" {
		e.Status = model.PaymentStatusPaid
	}
	if !e.Status.Valid() {
		return nil, ErrInvalidPaymentStatus
	}
	if _, err := userService.FindUser(ctx, l.db, e.UserID); err != nil {
		return nil, err
	}
	if err := l.targetExists(ctx, e.Target); err != nil {
		return nil, err
	}

	now := time.Now()
	tranID := strings.TrimSpace(e.TransactionID)
	if tranID == "" {
		tranID = "MANUAL_" + NewTransactionID(e.Target.Type, e.Target.ID, e.UserID, now)
	}
	currency := strings.ToUpper(strings.TrimSpace(e.Currency))
	if currency == "" {
		currency = l.defaultCurrency
	}
	payDate := now
	if e.PaymentDate != nil {
		payDate = *e.PaymentDate
	}

	rec := model.PaymentRecord{
		PaymentRecordUserID:        e.UserID,
		PaymentRecordTargetType:    e.Target.Type,
		PaymentRecordTargetID:      e.Target.ID,
		PaymentRecordAmount:        e.Amount,
		PaymentRecordCurrency:      currency,
		PaymentRecordStatus:        e.Status,
		PaymentRecordPaymentDate:   payDate,
		PaymentRecordTransactionID: tranID,
		PaymentRecordGateway:       model.GatewayManual,
		PaymentRecordNotes:         e.Notes,
		PaymentRecordRecordedBy:    &recordedBy,
	}
	if err := l.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTransaction
		}
		return nil, fmt.Errorf("insert manual payment: %w", err)
	}
	log.Printf("[PAYMENT] manual entry tran_id=%s by=%s amount=%s", tranID, recordedBy, e.Amount.StringFixed(2))
	return &rec, nil
}

// UpdateStatus changes status (and optionally notes). Amount and transaction
// id stay as recorded.
func (l *Ledger) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus, notes *string, actor uuid.UUID) (*model.PaymentRecord, error) {
	if !status.Valid() {
		return nil, ErrInvalidPaymentStatus
	}
	rec, err := l.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := map[string]any{"payment_record_status": status}
	if notes != nil {
		patch["payment_record_notes"] = strings.TrimSpace(*notes)
	}
	if err := l.db.WithContext(ctx).Model(rec).Updates(patch).Error; err != nil {
		return nil, fmt.Errorf("update payment %s: %w", id, err)
	}
	log.Printf("[PAYMENT] status of %s set to %s by %s", rec.PaymentRecordTransactionID, status, actor)
	return l.Get(ctx, id)
}

func (l *Ledger) targetExists(ctx context.Context, t Target) error {
	var err error
	switch t.Type {
	case model.TargetTypeClub:
		_, err = clubService.FindClub(ctx, l.db, t.ID)
		if errors.Is(err, clubService.ErrClubNotFound) {
			return fmt.Errorf("%w: club %s", ErrTargetNotFound, t.ID)
		}
	case model.TargetTypeEvent:
		_, err = eventService.FindEvent(ctx, l.db, t.ID)
		if errors.Is(err, eventService.ErrEventNotFound) {
			return fmt.Errorf("%w: event %s", ErrTargetNotFound, t.ID)
		}
	default:
		return ErrInvalidTarget
	}
	return err
}

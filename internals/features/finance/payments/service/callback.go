package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"csesociety_backend/internals/configs"
	clubService "csesociety_backend/internals/features/clubs/service"
	eventService "csesociety_backend/internals/features/events/service"
	"csesociety_backend/internals/features/finance/payments/gateway"
	"csesociety_backend/internals/features/finance/payments/model"
)

// State is where a callback left its transaction.
type State string

const (
	StateConfirmed State = "confirmed"
	StateRejected  State = "rejected"
	StateOrphaned  State = "orphaned"
	StateDuplicate State = "duplicate"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Client-side landing pages.
const (
	PageSuccess = "success"
	PageFail    = "fail"
	PageCancel  = "cancel"
)

type CallbackInput struct {
	TargetType    model.TargetType
	TargetID      string // from ?target_id=, display only
	TransactionID string
	ValID         string
}

type Outcome struct {
	State         State
	RedirectURL   string
	TransactionID string
	Record        *model.PaymentRecord
}

// gateway payload keys worth keeping on the ledger row
var metaKeys = []string{
	"val_id", "bank_tran_id", "card_type", "card_issuer", "tran_date", "store_amount", "risk_level",
	"transaction_id", "transaction_status", "fraud_status", "payment_type",
}

type CallbackHandler struct {
	db  *gorm.DB
	gw  gateway.Gateway
	cfg configs.PaymentConfig
}

func NewCallbackHandler(db *gorm.DB, gw gateway.Gateway, cfg configs.PaymentConfig) *CallbackHandler {
	return &CallbackHandler{db: db, gw: gw, cfg: cfg}
}

// HandleSuccess verifies the payment with the gateway and, if it holds up,
// confirms it exactly once. The returned error explains any non-confirmed
// outcome; the Outcome always carries a redirect.
func (h *CallbackHandler) HandleSuccess(ctx context.Context, in CallbackInput) (Outcome, error) {
	tranID := strings.TrimSpace(in.TransactionID)
	out := Outcome{TransactionID: tranID}

	pending, err := h.findPending(ctx, tranID)
	if err != nil {
		if errors.Is(err, ErrOrphanedTransaction) {
			out.State = StateOrphaned
			if h.alreadyRecorded(ctx, tranID) {
				out.State = StateDuplicate
				err = ErrDuplicateCallback
			}
			log.Printf("[PAYMENT] %s success callback tran_id=%q", out.State, tranID)
		}
		out.RedirectURL = h.clientURL(PageFail, in.TargetType, in.TargetID)
		return out, err
	}

	target := Target{Type: pending.PendingTransactionTargetType, ID: pending.PendingTransactionTargetID}
	failURL := h.clientURL(PageFail, target.Type, target.ID.String())

	if in.TargetType != "" && in.TargetType != target.Type {
		out.State = StateRejected
		out.RedirectURL = failURL
		log.Printf("[PAYMENT] callback type %s does not match tran_id=%s (%s)", in.TargetType, tranID, target.Type)
		return out, fmt.Errorf("%w: target type mismatch", ErrVerificationFailed)
	}

	v, err := h.gw.Validate(ctx, gateway.ValidationRequest{ValID: in.ValID, TransactionID: tranID})
	if err != nil {
		out.State = StateRejected
		out.RedirectURL = failURL
		log.Printf("[PAYMENT] validation unreachable tran_id=%s: %v", tranID, err)
		return out, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	if !v.IsValid() {
		out.State = StateRejected
		out.RedirectURL = failURL
		log.Printf("[PAYMENT] validation rejected tran_id=%s status=%q", tranID, v.Status)
		return out, fmt.Errorf("%w: status %q", ErrVerificationFailed, v.Status)
	}
	if v.TransactionID != tranID {
		out.State = StateRejected
		out.RedirectURL = failURL
		log.Printf("[PAYMENT] validation tran_id mismatch: callback=%s gateway=%s", tranID, v.TransactionID)
		return out, fmt.Errorf("%w: validated transaction %q", ErrVerificationFailed, v.TransactionID)
	}

	rec, err := h.confirm(ctx, pending, v, in.ValID)
	if err != nil {
		out.RedirectURL = failURL
		if errors.Is(err, ErrDuplicateCallback) {
			out.State = StateDuplicate
			log.Printf("[PAYMENT] duplicate success callback tran_id=%s", tranID)
		} else {
			out.State = StateRejected
			log.Printf("[ERROR] confirm tran_id=%s: %v", tranID, err)
		}
		return out, err
	}

	out.State = StateConfirmed
	out.Record = rec
	out.RedirectURL = h.clientURL(PageSuccess, target.Type, target.ID.String())
	log.Printf("[PAYMENT] confirmed tran_id=%s user=%s %s=%s amount=%s %s",
		tranID, rec.PaymentRecordUserID, target.Type, target.ID, rec.PaymentRecordAmount.StringFixed(2), rec.PaymentRecordCurrency)
	return out, nil
}

// HandleFailure and HandleCancel never touch the ledger; an abandoned pending
// row is left for the reaper.
func (h *CallbackHandler) HandleFailure(ctx context.Context, in CallbackInput) Outcome {
	log.Printf("[PAYMENT] gateway reported failure tran_id=%q %s=%s", in.TransactionID, in.TargetType, in.TargetID)
	return Outcome{
		State:         StateFailed,
		TransactionID: in.TransactionID,
		RedirectURL:   h.clientURL(PageFail, in.TargetType, in.TargetID),
	}
}

func (h *CallbackHandler) HandleCancel(ctx context.Context, in CallbackInput) Outcome {
	log.Printf("[PAYMENT] payer cancelled tran_id=%q %s=%s", in.TransactionID, in.TargetType, in.TargetID)
	return Outcome{
		State:         StateCancelled,
		TransactionID: in.TransactionID,
		RedirectURL:   h.clientURL(PageCancel, in.TargetType, in.TargetID),
	}
}

// confirm is the atomic unit: whoever deletes the pending row owns the
// confirmation, everyone else sees ErrDuplicateCallback.
func (h *CallbackHandler) confirm(ctx context.Context, p *model.PendingTransaction, v *gateway.Validation, valID string) (*model.PaymentRecord, error) {
	currency := v.Currency
	if currency == "" {
		currency = p.PendingTransactionCurrency
	}
	rec := model.PaymentRecord{
		PaymentRecordUserID:        p.PendingTransactionUserID,
		PaymentRecordTargetType:    p.PendingTransactionTargetType,
		PaymentRecordTargetID:      p.PendingTransactionTargetID,
		PaymentRecordAmount:        v.Amount,
		PaymentRecordCurrency:      currency,
		PaymentRecordStatus:        model.PaymentStatusPaid,
		PaymentRecordPaymentDate:   time.Now(),
		PaymentRecordTransactionID: p.PendingTransactionTransactionID,
		PaymentRecordGateway:       h.gw.Name(),
		PaymentRecordMeta:          pickMeta(v.Raw, valID),
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("pending_transaction_transaction_id = ?", p.PendingTransactionTransactionID).
			Delete(&model.PendingTransaction{})
		if res.Error != nil {
			return fmt.Errorf("claim pending transaction: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrDuplicateCallback
		}

		if err := tx.Create(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateCallback
			}
			return fmt.Errorf("insert payment record: %w", err)
		}
		return applySideEffect(ctx, tx, p)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func applySideEffect(ctx context.Context, tx *gorm.DB, p *model.PendingTransaction) error {
	userID := p.PendingTransactionUserID
	targetID := p.PendingTransactionTargetID
	tranID := p.PendingTransactionTransactionID

	switch p.PendingTransactionTargetType {
	case model.TargetTypeClub:
		req, created, err := clubService.CreatePendingJoinRequest(ctx, tx, userID, targetID, tranID)
		if err != nil {
			return err
		}
		if created {
			log.Printf("[PAYMENT] join request %s opened user=%s club=%s", req.ClubJoinRequestID, userID, targetID)
		}
		return nil
	case model.TargetTypeEvent:
		created, err := eventService.RegisterUser(ctx, tx, targetID, userID, tranID)
		if err != nil {
			return err
		}
		if !created {
			log.Printf("[PAYMENT] user=%s already registered for event=%s", userID, targetID)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidTarget, p.PendingTransactionTargetType)
}

func (h *CallbackHandler) findPending(ctx context.Context, tranID string) (*model.PendingTransaction, error) {
	if tranID == "" {
		return nil, ErrOrphanedTransaction
	}
	var p model.PendingTransaction
	err := h.db.WithContext(ctx).
		Where("pending_transaction_transaction_id = ?", tranID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrphanedTransaction
		}
		return nil, fmt.Errorf("lookup pending transaction: %w", err)
	}
	return &p, nil
}

func (h *CallbackHandler) alreadyRecorded(ctx context.Context, tranID string) bool {
	if tranID == "" {
		return false
	}
	var n int64
	err := h.db.WithContext(ctx).Model(&model.PaymentRecord{}).
		Where("payment_record_transaction_id = ?", tranID).
		Count(&n).Error
	if err != nil {
		log.Printf("[ERROR] duplicate lookup tran_id=%s: %v", tranID, err)
		return false
	}
	return n > 0
}

// clientURL builds {client}/payment/{page}?target_type=..&target_id=..
func (h *CallbackHandler) clientURL(page string, tt model.TargetType, targetID string) string {
	q := url.Values{}
	if tt != "" {
		q.Set("target_type", string(tt))
	}
	if _, err := uuid.Parse(targetID); err == nil {
		q.Set("target_id", targetID)
	}
	u := h.cfg.ClientBaseURL + "/payment/" + page
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

func pickMeta(raw map[string]any, valID string) datatypes.JSONMap {
	meta := datatypes.JSONMap{}
	for _, k := range metaKeys {
		if v, ok := raw[k]; ok && v != nil && v != "" {
			meta[k] = v
		}
	}
	if valID != "" {
		meta["val_id"] = valID
	}
	return meta
}

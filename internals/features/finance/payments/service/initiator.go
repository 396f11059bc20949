package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"csesociety_backend/internals/configs"
	clubService "csesociety_backend/internals/features/clubs/service"
	eventService "csesociety_backend/internals/features/events/service"
	"csesociety_backend/internals/features/finance/payments/gateway"
	"csesociety_backend/internals/features/finance/payments/model"
	userService "csesociety_backend/internals/features/users/user/service"
)

// Target is the thing being paid for: a club membership or an event seat.
type Target struct {
	Type model.TargetType
	ID   uuid.UUID
}

type InitiateResult struct {
	TransactionID string
	RedirectURL   string
	Amount        decimal.Decimal
	Currency      string
	Target        Target
}

type quote struct {
	amount   decimal.Decimal
	product  string
	category string
}

type Initiator struct {
	db  *gorm.DB
	gw  gateway.Gateway
	cfg configs.PaymentConfig
	now func() time.Time
}

func NewInitiator(db *gorm.DB, gw gateway.Gateway, cfg configs.PaymentConfig) *Initiator {
	return &Initiator{db: db, gw: gw, cfg: cfg, now: time.Now}
}

func (s *Initiator) InitiateClubPayment(ctx context.Context, userID, clubID uuid.UUID) (*InitiateResult, error) {
	return s.Initiate(ctx, userID, Target{Type: model.TargetTypeClub, ID: clubID})
}

func (s *Initiator) InitiateEventPayment(ctx context.Context, userID, eventID uuid.UUID) (*InitiateResult, error) {
	return s.Initiate(ctx, userID, Target{Type: model.TargetTypeEvent, ID: eventID})
}

// Initiate stores the pending transaction and only then asks the gateway for a
// session, so a callback racing our own response can still be matched.
func (s *Initiator) Initiate(ctx context.Context, userID uuid.UUID, t Target) (*InitiateResult, error) {
	if !t.Type.Valid() || t.ID == uuid.Nil {
		return nil, ErrInvalidTarget
	}

	user, err := userService.FindActiveUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	q, err := s.quote(ctx, t)
	if err != nil {
		return nil, err
	}

	tranID := NewTransactionID(t.Type, t.ID, userID, s.now())
	pending := model.PendingTransaction{
		PendingTransactionTransactionID: tranID,
		PendingTransactionUserID:        userID,
		PendingTransactionTargetType:    t.Type,
		PendingTransactionTargetID:      t.ID,
		PendingTransactionAmount:        q.amount,
		PendingTransactionCurrency:      s.cfg.Currency,
	}
	if err := s.db.WithContext(ctx).Create(&pending).Error; err != nil {
		return nil, fmt.Errorf("persist pending transaction: %w", err)
	}

	sess, err := s.gw.CreateSession(ctx, gateway.SessionRequest{
		TransactionID:   tranID,
		Amount:          q.amount,
		Currency:        s.cfg.Currency,
		ProductName:     q.product,
		ProductCategory: q.category,
		SuccessURL:      CallbackURL(s.cfg.ServerBaseURL, t, "success"),
		FailURL:         CallbackURL(s.cfg.ServerBaseURL, t, "fail"),
		CancelURL:       CallbackURL(s.cfg.ServerBaseURL, t, "cancel"),
		NotifyURL:       CallbackURL(s.cfg.ServerBaseURL, t, "ipn"),
		Customer: gateway.Customer{
			Name:  user.DisplayName(),
			Email: user.Email,
			Phone: user.PhoneNumber(),
		},
	})
	if err != nil {
		log.Printf("[PAYMENT] session init failed tran_id=%s gateway=%s: %v", tranID, s.gw.Name(), err)
		s.discardPending(ctx, tranID)
		return nil, fmt.Errorf("%w: %v", ErrGatewayInit, err)
	}

	log.Printf("[PAYMENT] initiated tran_id=%s user=%s %s=%s amount=%s %s",
		tranID, userID, t.Type, t.ID, q.amount.StringFixed(2), s.cfg.Currency)
	return &InitiateResult{
		TransactionID: tranID,
		RedirectURL:   sess.RedirectURL,
		Amount:        q.amount,
		Currency:      s.cfg.Currency,
		Target:        t,
	}, nil
}

func (s *Initiator) quote(ctx context.Context, t Target) (quote, error) {
	switch t.Type {
	case model.TargetTypeClub:
		club, err := clubService.FindClub(ctx, s.db, t.ID)
		if err != nil {
			if errors.Is(err, clubService.ErrClubNotFound) {
				return quote{}, fmt.Errorf("%w: club %s", ErrTargetNotFound, t.ID)
			}
			return quote{}, err
		}
		return quote{amount: s.cfg.ClubMembershipFee, product: club.ClubName + " membership", category: "club"}, nil
	case model.TargetTypeEvent:
		ev, err := eventService.FindEvent(ctx, s.db, t.ID)
		if err != nil {
			if errors.Is(err, eventService.ErrEventNotFound) {
				return quote{}, fmt.Errorf("%w: event %s", ErrTargetNotFound, t.ID)
			}
			return quote{}, err
		}
		return quote{amount: ev.EventFee, product: ev.EventTitle + " registration", category: "event"}, nil
	}
	return quote{}, ErrInvalidTarget
}

// discardPending runs even if the request context is already cancelled.
func (s *Initiator) discardPending(ctx context.Context, tranID string) {
	err := s.db.WithContext(context.WithoutCancel(ctx)).
		Where("pending_transaction_transaction_id = ?", tranID).
		Delete(&model.PendingTransaction{}).Error
	if err != nil {
		log.Printf("[ERROR] discard pending tran_id=%s: %v", tranID, err)
	}
}

// NewTransactionID renders {PREFIX}_{targetId}_{userId}_{unix nanos}.
func NewTransactionID(tt model.TargetType, targetID, userID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%d", tt.TransactionPrefix(), targetID, userID, at.UnixNano())
}

// CallbackURL points the gateway at /api/payments/{type}/{kind}?target_id=...
func CallbackURL(serverBaseURL string, t Target, kind string) string {
	return fmt.Sprintf("%s/api/payments/%s/%s?target_id=%s", serverBaseURL, t.Type, kind, t.ID)
}

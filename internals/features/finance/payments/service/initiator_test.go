package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csesociety_backend/internals/features/finance/payments/gateway"
	"csesociety_backend/internals/features/finance/payments/model"
	userService "csesociety_backend/internals/features/users/user/service"
)

func TestInitiateClubPayment(t *testing.T) {
	f := newFixture(t)
	s := NewInitiator(f.db, f.gw, f.cfg)

	res, err := s.InitiateClubPayment(context.Background(), f.user.ID, f.club.ClubID)
	require.NoError(t, err)

	assert.Equal(t, "https://gateway.test/pay/"+res.TransactionID, res.RedirectURL)
	assert.True(t, decimal.NewFromInt(100).Equal(res.Amount))
	assert.Equal(t, "BDT", res.Currency)
	assert.Regexp(t, regexp.MustCompile(fmt.Sprintf(`^CLUB_%s_%s_\d+$`, f.club.ClubID, f.user.ID)), res.TransactionID)

	var p model.PendingTransaction
	require.NoError(t, f.db.First(&p, "pending_transaction_transaction_id = ?", res.TransactionID).Error)
	assert.Equal(t, f.user.ID, p.PendingTransactionUserID)
	assert.Equal(t, model.TargetTypeClub, p.PendingTransactionTargetType)
	assert.Equal(t, f.club.ClubID, p.PendingTransactionTargetID)
	assert.EqualValues(t, 1, f.pendingCount(t))

	require.Len(t, f.gw.sessions, 1)
	req := f.gw.sessions[0]
	assert.Equal(t, res.TransactionID, req.TransactionID)
	assert.Equal(t, "Rahim Uddin", req.Customer.Name)
	assert.Equal(t, "rahim@example.com", req.Customer.Email)
	assert.Empty(t, req.Customer.Phone)
	assert.Equal(t, "https://api.test/api/payments/club/success?target_id="+f.club.ClubID.String(), req.SuccessURL)
	assert.Equal(t, "https://api.test/api/payments/club/fail?target_id="+f.club.ClubID.String(), req.FailURL)
	assert.Equal(t, "https://api.test/api/payments/club/cancel?target_id="+f.club.ClubID.String(), req.CancelURL)
	assert.Equal(t, "https://api.test/api/payments/club/ipn?target_id="+f.club.ClubID.String(), req.NotifyURL)
}

func TestInitiateWritesPendingBeforeGatewayCall(t *testing.T) {
	f := newFixture(t)
	var seen int64 = -1
	f.gw.onSession = func(req gateway.SessionRequest) {
		seen = f.count(t, &model.PendingTransaction{}, "pending_transaction_transaction_id = ?", req.TransactionID)
	}

	_, err := NewInitiator(f.db, f.gw, f.cfg).InitiateEventPayment(context.Background(), f.user.ID, f.event.EventID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, seen)
}

func TestInitiateEventUsesEventFee(t *testing.T) {
	f := newFixture(t)
	s := NewInitiator(f.db, f.gw, f.cfg)

	res, err := s.InitiateEventPayment(context.Background(), f.user.ID, f.event.EventID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(250).Equal(res.Amount))
	assert.Regexp(t, `^EVENT_`, res.TransactionID)

	free, err := s.InitiateEventPayment(context.Background(), f.user.ID, f.free.EventID)
	require.NoError(t, err)
	assert.True(t, free.Amount.IsZero())
	assert.EqualValues(t, 2, f.pendingCount(t))
}

func TestInitiateTargetNotFound(t *testing.T) {
	f := newFixture(t)
	s := NewInitiator(f.db, f.gw, f.cfg)

	_, err := s.InitiateClubPayment(context.Background(), f.user.ID, uuid.New())
	assert.ErrorIs(t, err, ErrTargetNotFound)

	_, err = s.InitiateEventPayment(context.Background(), f.user.ID, uuid.New())
	assert.ErrorIs(t, err, ErrTargetNotFound)

	require.NoError(t, f.db.Model(&f.club).Update("club_is_active", false).Error)
	_, err = s.InitiateClubPayment(context.Background(), f.user.ID, f.club.ClubID)
	assert.ErrorIs(t, err, ErrTargetNotFound)

	assert.Zero(t, f.pendingCount(t))
	assert.Empty(t, f.gw.sessions)
}

func TestInitiateGatewayFailureDropsPending(t *testing.T) {
	f := newFixture(t)
	f.gw.sessionErr = fmt.Errorf("%w: status=FAILED reason=Store Credential Error", gateway.ErrSessionFailed)

	_, err := NewInitiator(f.db, f.gw, f.cfg).InitiateClubPayment(context.Background(), f.user.ID, f.club.ClubID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGatewayInit))
	assert.Len(t, f.gw.sessions, 1)
	assert.Zero(t, f.pendingCount(t))
}

func TestInitiateRejectsInactiveUser(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&f.user).Update("is_active", false).Error)

	_, err := NewInitiator(f.db, f.gw, f.cfg).InitiateClubPayment(context.Background(), f.user.ID, f.club.ClubID)
	assert.ErrorIs(t, err, userService.ErrUserInactive)
	assert.Zero(t, f.pendingCount(t))
}

func TestInitiateInvalidTarget(t *testing.T) {
	f := newFixture(t)
	_, err := NewInitiator(f.db, f.gw, f.cfg).Initiate(context.Background(), f.user.ID, Target{Type: "scholarship", ID: uuid.New()})
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestTransactionIDsDifferPerAttempt(t *testing.T) {
	f := newFixture(t)
	s := NewInitiator(f.db, f.gw, f.cfg)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	calls := 0
	s.now = func() time.Time {
		calls++
		return at.Add(time.Duration(calls) * time.Millisecond)
	}

	a, err := s.InitiateClubPayment(context.Background(), f.user.ID, f.club.ClubID)
	require.NoError(t, err)
	b, err := s.InitiateClubPayment(context.Background(), f.user.ID, f.club.ClubID)
	require.NoError(t, err)

	assert.NotEqual(t, a.TransactionID, b.TransactionID)
	assert.EqualValues(t, 2, f.pendingCount(t))
}

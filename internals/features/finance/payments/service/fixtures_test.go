package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"csesociety_backend/internals/configs"
	"csesociety_backend/internals/constants"
	"csesociety_backend/internals/databases/dbtest"
	clubModel "csesociety_backend/internals/features/clubs/model"
	eventModel "csesociety_backend/internals/features/events/model"
	"csesociety_backend/internals/features/finance/payments/gateway"
	"csesociety_backend/internals/features/finance/payments/model"
	userModel "csesociety_backend/internals/features/users/user/model"
)

type fakeGateway struct {
	mu sync.Mutex

	sessionErr  error
	onSession   func(req gateway.SessionRequest)
	validation  *gateway.Validation
	validateErr error

	sessions    []gateway.SessionRequest
	validations []gateway.ValidationRequest
}

func (f *fakeGateway) Name() string { return "fake" }

func (f *fakeGateway) CreateSession(ctx context.Context, req gateway.SessionRequest) (*gateway.Session, error) {
	f.mu.Lock()
	f.sessions = append(f.sessions, req)
	hook, err := f.onSession, f.sessionErr
	f.mu.Unlock()

	if hook != nil {
		hook(req)
	}
	if err != nil {
		return nil, err
	}
	return &gateway.Session{RedirectURL: "https://gateway.test/pay/" + req.TransactionID, SessionKey: "sk"}, nil
}

func (f *fakeGateway) Validate(ctx context.Context, req gateway.ValidationRequest) (*gateway.Validation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validations = append(f.validations, req)
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	if f.validation == nil {
		return &gateway.Validation{Status: "INVALID_TRANSACTION"}, nil
	}
	v := *f.validation
	return &v, nil
}

// validated answers the next Validate call with a VALIDATED payload for tranID.
func (f *fakeGateway) validated(tranID string, amount decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validation = &gateway.Validation{
		Status:        gateway.StatusValidated,
		TransactionID: tranID,
		Amount:        amount,
		Currency:      "BDT",
		Raw:           map[string]any{"bank_tran_id": "BANK123", "card_type": "VISA-Dutch Bangla"},
	}
}

type fixture struct {
	db    *gorm.DB
	cfg   configs.PaymentConfig
	gw    *fakeGateway
	user  userModel.UserModel
	admin userModel.UserModel
	club  clubModel.Club
	event eventModel.Event
	free  eventModel.Event
}

func testPaymentConfig() configs.PaymentConfig {
	return configs.PaymentConfig{
		Provider:          configs.ProviderSSLCommerz,
		StoreID:           "teststore",
		StorePassword:     "secret",
		ServerBaseURL:     "https://api.test",
		ClientBaseURL:     "https://app.test",
		Currency:          "BDT",
		ClubMembershipFee: decimal.NewFromInt(100),
		PendingTTL:        24 * time.Hour,
		ReaperSchedule:    "*/30 * * * *",
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	f := &fixture{db: db, cfg: testPaymentConfig(), gw: &fakeGateway{}}

	name := "Rahim Uddin"
	f.user = userModel.UserModel{UserName: "rahim", FullName: &name, Email: "rahim@example.com", IsActive: true}
	f.admin = userModel.UserModel{UserName: "treasurer", Email: "treasurer@example.com", Role: constants.RoleSuperAdmin, IsActive: true}
	f.club = clubModel.Club{ClubName: "Programming Club", ClubSlug: "programming-club", ClubIsActive: true}
	f.event = eventModel.Event{EventTitle: "Hackathon", EventSlug: "hackathon", EventFee: decimal.NewFromInt(250), EventIsActive: true}
	f.free = eventModel.Event{EventTitle: "Orientation", EventSlug: "orientation", EventFee: decimal.Zero, EventIsActive: true}

	require.NoError(t, db.Create(&f.user).Error)
	require.NoError(t, db.Create(&f.admin).Error)
	require.NoError(t, db.Create(&f.club).Error)
	require.NoError(t, db.Create(&f.event).Error)
	require.NoError(t, db.Create(&f.free).Error)
	return f
}

func (f *fixture) count(t *testing.T, m any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(m)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func (f *fixture) pendingCount(t *testing.T) int64 {
	return f.count(t, &model.PendingTransaction{}, "")
}

func (f *fixture) recordCount(t *testing.T) int64 {
	return f.count(t, &model.PaymentRecord{}, "")
}

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }

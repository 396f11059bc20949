package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csesociety_backend/internals/databases/dbtest"
	"csesociety_backend/internals/features/events/model"
	userModel "csesociety_backend/internals/features/users/user/model"
)

func TestRegisterUserKeepsOneRow(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	e := model.Event{EventTitle: "Hackathon", EventSlug: "hackathon", EventFee: decimal.NewFromInt(250), EventIsActive: true}
	require.NoError(t, db.Create(&e).Error)
	a := userModel.UserModel{UserName: "a", Email: "a@example.com", IsActive: true}
	b := userModel.UserModel{UserName: "b", Email: "b@example.com", IsActive: true}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	created, err := RegisterUser(ctx, db, e.EventID, a.ID, "EVENT_1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = RegisterUser(ctx, db, e.EventID, a.ID, "EVENT_2")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = RegisterUser(ctx, db, e.EventID, b.ID, "")
	require.NoError(t, err)
	assert.True(t, created)

	ids, err := RegisteredUserIDs(ctx, db, e.EventID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, ids)

	ok, err := IsRegistered(ctx, db, e.EventID, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	var reg model.EventRegistration
	require.NoError(t, db.Where("event_registration_user_id = ?", a.ID).First(&reg).Error)
	require.NotNil(t, reg.EventRegistrationPaymentTransactionID)
	assert.Equal(t, "EVENT_1", *reg.EventRegistrationPaymentTransactionID)
}

func TestFindEvent(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	e := model.Event{EventTitle: "Seminar", EventSlug: "seminar", EventFee: decimal.Zero, EventIsActive: true}
	require.NoError(t, db.Create(&e).Error)

	got, err := FindEvent(ctx, db, e.EventID)
	require.NoError(t, err)
	assert.True(t, got.EventFee.IsZero())

	require.NoError(t, db.Delete(&e).Error)
	_, err = FindEvent(ctx, db, e.EventID)
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = FindEvent(ctx, db, uuid.New())
	assert.ErrorIs(t, err, ErrEventNotFound)
}

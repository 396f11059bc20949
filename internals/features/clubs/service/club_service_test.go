package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"csesociety_backend/internals/databases/dbtest"
	"csesociety_backend/internals/features/clubs/model"
	userModel "csesociety_backend/internals/features/users/user/model"
)

func seedClub(t *testing.T, db *gorm.DB) (model.Club, userModel.UserModel) {
	t.Helper()
	u := userModel.UserModel{UserName: "karim", Email: "karim@example.com", IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	c := model.Club{ClubName: "Programming Club", ClubSlug: "programming-club", ClubIsActive: true}
	require.NoError(t, db.Create(&c).Error)
	return c, u
}

func TestFindClub(t *testing.T) {
	db := dbtest.Open(t)
	c, _ := seedClub(t, db)
	ctx := context.Background()

	got, err := FindClub(ctx, db, c.ClubID)
	require.NoError(t, err)
	assert.Equal(t, "Programming Club", got.ClubName)

	_, err = FindClub(ctx, db, uuid.New())
	assert.ErrorIs(t, err, ErrClubNotFound)

	require.NoError(t, db.Model(&c).Update("club_is_active", false).Error)
	_, err = FindClub(ctx, db, c.ClubID)
	assert.ErrorIs(t, err, ErrClubNotFound)
}

func TestCreatePendingJoinRequestIsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	c, u := seedClub(t, db)
	ctx := context.Background()

	first, created, err := CreatePendingJoinRequest(ctx, db, u.ID, c.ClubID, "CLUB_a")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.JoinRequestStatusPending, first.ClubJoinRequestStatus)
	require.NotNil(t, first.ClubJoinRequestPaymentTransactionID)
	assert.Equal(t, "CLUB_a", *first.ClubJoinRequestPaymentTransactionID)

	again, created, err := CreatePendingJoinRequest(ctx, db, u.ID, c.ClubID, "CLUB_b")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ClubJoinRequestID, again.ClubJoinRequestID)

	var n int64
	require.NoError(t, db.Model(&model.ClubJoinRequest{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestCreatePendingJoinRequestSkipsMembers(t *testing.T) {
	db := dbtest.Open(t)
	c, u := seedClub(t, db)
	ctx := context.Background()

	added, err := AddMember(ctx, db, c.ClubID, u.ID, model.ClubMemberRoleMember)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = AddMember(ctx, db, c.ClubID, u.ID, model.ClubMemberRoleMember)
	require.NoError(t, err)
	assert.False(t, added)

	req, created, err := CreatePendingJoinRequest(ctx, db, u.ID, c.ClubID, "CLUB_a")
	require.NoError(t, err)
	assert.Nil(t, req)
	assert.False(t, created)
}

func TestReviewJoinRequest(t *testing.T) {
	db := dbtest.Open(t)
	c, u := seedClub(t, db)
	reviewer := uuid.New()
	ctx := context.Background()

	req, _, err := CreatePendingJoinRequest(ctx, db, u.ID, c.ClubID, "")
	require.NoError(t, err)

	_, err = ReviewJoinRequest(ctx, db, req.ClubJoinRequestID, model.JoinRequestStatusPending, reviewer)
	assert.ErrorIs(t, err, ErrInvalidJoinDecision)

	out, err := ReviewJoinRequest(ctx, db, req.ClubJoinRequestID, model.JoinRequestStatusApproved, reviewer)
	require.NoError(t, err)
	assert.Equal(t, model.JoinRequestStatusApproved, out.ClubJoinRequestStatus)
	require.NotNil(t, out.ClubJoinRequestProcessedBy)
	assert.Equal(t, reviewer, *out.ClubJoinRequestProcessedBy)

	member, err := IsMember(ctx, db, c.ClubID, u.ID)
	require.NoError(t, err)
	assert.True(t, member)

	_, err = ReviewJoinRequest(ctx, db, req.ClubJoinRequestID, model.JoinRequestStatusRejected, reviewer)
	assert.ErrorIs(t, err, ErrJoinRequestProcessed)

	_, err = ReviewJoinRequest(ctx, db, uuid.New(), model.JoinRequestStatusRejected, reviewer)
	assert.ErrorIs(t, err, ErrJoinRequestNotFound)
}

func TestRejectedRequestAddsNoMember(t *testing.T) {
	db := dbtest.Open(t)
	c, u := seedClub(t, db)
	ctx := context.Background()

	req, _, err := CreatePendingJoinRequest(ctx, db, u.ID, c.ClubID, "")
	require.NoError(t, err)
	_, err = ReviewJoinRequest(ctx, db, req.ClubJoinRequestID, model.JoinRequestStatusRejected, uuid.New())
	require.NoError(t, err)

	member, err := IsMember(ctx, db, c.ClubID, u.ID)
	require.NoError(t, err)
	assert.False(t, member)

	rows, total, err := ListJoinRequests(ctx, db, c.ClubID, model.JoinRequestStatusRejected, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, rows, 1)

	// a fresh payment after rejection opens a new request
	_, created, err := CreatePendingJoinRequest(ctx, db, u.ID, c.ClubID, "CLUB_c")
	require.NoError(t, err)
	assert.True(t, created)
}

func TestPendingJoinRequestIsUniquePerUserAndClub(t *testing.T) {
	db := dbtest.Open(t)
	c, u := seedClub(t, db)
	ctx := context.Background()

	// both confirmations got past the pending lookup before either inserted
	first, created, err := insertPendingJoinRequest(ctx, db, u.ID, c.ClubID, "CLUB_tab1")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := insertPendingJoinRequest(ctx, db, u.ID, c.ClubID, "CLUB_tab2")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ClubJoinRequestID, second.ClubJoinRequestID)
	assert.Equal(t, "CLUB_tab1", *second.ClubJoinRequestPaymentTransactionID)

	dup := model.ClubJoinRequest{ClubJoinRequestUserID: u.ID, ClubJoinRequestClubID: c.ClubID}
	assert.ErrorIs(t, db.Create(&dup).Error, gorm.ErrDuplicatedKey)

	var n int64
	require.NoError(t, db.Model(&model.ClubJoinRequest{}).
		Where("club_join_request_status = ?", model.JoinRequestStatusPending).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	// processed requests do not block a new pending one
	_, err = ReviewJoinRequest(ctx, db, first.ClubJoinRequestID, model.JoinRequestStatusRejected, uuid.New())
	require.NoError(t, err)
	_, created, err = insertPendingJoinRequest(ctx, db, u.ID, c.ClubID, "CLUB_tab3")
	require.NoError(t, err)
	assert.True(t, created)
}

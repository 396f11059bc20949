package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"csesociety_backend/internals/features/clubs/model"
)

var (
	ErrClubNotFound         = errors.New("club not found")
	ErrJoinRequestNotFound  = errors.New("join request not found")
	ErrJoinRequestProcessed = errors.New("join request already processed")
	ErrInvalidJoinDecision  = errors.New("decision must be approved or rejected")
)

// FindClub returns an active, non-deleted club.
func FindClub(ctx context.Context, db *gorm.DB, clubID uuid.UUID) (*model.Club, error) {
	var c model.Club
	err := db.WithContext(ctx).
		Where("club_id = ? AND club_is_active = ?", clubID, true).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("find club %s: %w", clubID, err)
	}
	return &c, nil
}

func IsMember(ctx context.Context, db *gorm.DB, clubID, userID uuid.UUID) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.ClubMember{}).
		Where("club_member_club_id = ? AND club_member_user_id = ?", clubID, userID).
		Count(&n).Error
	return n > 0, err
}

// AddMember appends userID to the club roster; a second call is a no-op.
func AddMember(ctx context.Context, tx *gorm.DB, clubID, userID uuid.UUID, role string) (bool, error) {
	m := model.ClubMember{
		ClubMemberClubID: clubID,
		ClubMemberUserID: userID,
		ClubMemberRole:   role,
	}
	res := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "club_member_club_id"}, {Name: "club_member_user_id"}},
			DoNothing: true,
		}).
		Create(&m)
	if res.Error != nil {
		return false, fmt.Errorf("add club member: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// CreatePendingJoinRequest opens a pending join request for (user, club).
// An already pending request is returned as-is (created=false); an existing
// member gets no request at all (nil, false, nil).
func CreatePendingJoinRequest(ctx context.Context, tx *gorm.DB, userID, clubID uuid.UUID, transactionID string) (*model.ClubJoinRequest, bool, error) {
	member, err := IsMember(ctx, tx, clubID, userID)
	if err != nil {
		return nil, false, fmt.Errorf("check membership: %w", err)
	}
	if member {
		log.Printf("[INFO] user %s already in club %s, no join request opened", userID, clubID)
		return nil, false, nil
	}

	var existing model.ClubJoinRequest
	err = tx.WithContext(ctx).
		Where("club_join_request_user_id = ? AND club_join_request_club_id = ? AND club_join_request_status = ?",
			userID, clubID, model.JoinRequestStatusPending).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("lookup pending join request: %w", err)
	}

	return insertPendingJoinRequest(ctx, tx, userID, clubID, transactionID)
}

// insertPendingJoinRequest relies on uq_club_join_request_pending: when a
// concurrent confirmation already opened the request, the insert is skipped
// and that row is returned instead.
func insertPendingJoinRequest(ctx context.Context, tx *gorm.DB, userID, clubID uuid.UUID, transactionID string) (*model.ClubJoinRequest, bool, error) {
	req := model.ClubJoinRequest{
		ClubJoinRequestUserID: userID,
		ClubJoinRequestClubID: clubID,
		ClubJoinRequestStatus: model.JoinRequestStatusPending,
	}
	if transactionID != "" {
		req.ClubJoinRequestPaymentTransactionID = &transactionID
	}
	res := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&req)
	if res.Error != nil {
		return nil, false, fmt.Errorf("create join request: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return &req, true, nil
	}

	var existing model.ClubJoinRequest
	if err := tx.WithContext(ctx).
		Where("club_join_request_user_id = ? AND club_join_request_club_id = ? AND club_join_request_status = ?",
			userID, clubID, model.JoinRequestStatusPending).
		First(&existing).Error; err != nil {
		return nil, false, fmt.Errorf("reload pending join request: %w", err)
	}
	return &existing, false, nil
}

func ListJoinRequests(ctx context.Context, db *gorm.DB, clubID uuid.UUID, status model.JoinRequestStatus, offset, limit int) ([]model.ClubJoinRequest, int64, error) {
	q := db.WithContext(ctx).Model(&model.ClubJoinRequest{}).
		Where("club_join_request_club_id = ?", clubID)
	if status != "" {
		q = q.Where("club_join_request_status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.ClubJoinRequest
	if err := q.Order("club_join_request_requested_at ASC").
		Offset(offset).Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ReviewJoinRequest moves a pending request to approved/rejected. Approval also
// adds the member. The status guard in the UPDATE makes concurrent reviews safe.
func ReviewJoinRequest(ctx context.Context, db *gorm.DB, requestID uuid.UUID, decision model.JoinRequestStatus, reviewerID uuid.UUID) (*model.ClubJoinRequest, error) {
	if decision != model.JoinRequestStatusApproved && decision != model.JoinRequestStatusRejected {
		return nil, ErrInvalidJoinDecision
	}

	var out model.ClubJoinRequest
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&model.ClubJoinRequest{}).
			Where("club_join_request_id = ? AND club_join_request_status = ?", requestID, model.JoinRequestStatusPending).
			Updates(map[string]any{
				"club_join_request_status":       decision,
				"club_join_request_processed_at": now,
				"club_join_request_processed_by": reviewerID,
			})
		if res.Error != nil {
			return res.Error
		}

		if err := tx.First(&out, "club_join_request_id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrJoinRequestNotFound
			}
			return err
		}
		if res.RowsAffected == 0 {
			return ErrJoinRequestProcessed
		}

		if decision == model.JoinRequestStatusApproved {
			if _, err := AddMember(ctx, tx, out.ClubJoinRequestClubID, out.ClubJoinRequestUserID, model.ClubMemberRoleMember); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

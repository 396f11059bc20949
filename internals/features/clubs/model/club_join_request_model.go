package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JoinRequestStatus string

const (
	JoinRequestStatusPending  JoinRequestStatus = "pending"
	JoinRequestStatusApproved JoinRequestStatus = "approved"
	JoinRequestStatusRejected JoinRequestStatus = "rejected"
)

func (s JoinRequestStatus) Valid() bool {
	switch s {
	case JoinRequestStatusPending, JoinRequestStatusApproved, JoinRequestStatusRejected:
		return true
	}
	return false
}

// ClubJoinRequest is a membership application awaiting coordinator review.
// A confirmed club payment opens one; approval is a separate step.
type ClubJoinRequest struct {
	ClubJoinRequestID     uuid.UUID         `gorm:"column:club_join_request_id;type:uuid;primaryKey" json:"club_join_request_id"`
	ClubJoinRequestUserID uuid.UUID         `gorm:"column:club_join_request_user_id;type:uuid;not null;index:idx_cjr_club_user" json:"club_join_request_user_id"`
	ClubJoinRequestClubID uuid.UUID         `gorm:"column:club_join_request_club_id;type:uuid;not null;index:idx_cjr_club_user" json:"club_join_request_club_id"`
	ClubJoinRequestStatus JoinRequestStatus `gorm:"column:club_join_request_status;type:varchar(20);not null" json:"club_join_request_status"`

	// transaction id of the payment that unlocked this request
	ClubJoinRequestPaymentTransactionID *string `gorm:"column:club_join_request_payment_transaction_id;type:varchar(200)" json:"club_join_request_payment_transaction_id,omitempty"`

	ClubJoinRequestRequestedAt time.Time  `gorm:"column:club_join_request_requested_at;not null" json:"club_join_request_requested_at"`
	ClubJoinRequestProcessedAt *time.Time `gorm:"column:club_join_request_processed_at" json:"club_join_request_processed_at,omitempty"`
	ClubJoinRequestProcessedBy *uuid.UUID `gorm:"column:club_join_request_processed_by;type:uuid" json:"club_join_request_processed_by,omitempty"`
}

func (ClubJoinRequest) TableName() string { return "club_join_requests" }

// PendingJoinRequestIndexSQL allows at most one pending request per (user, club).
// Partial indexes are not expressible in gorm tags; the migrator runs this after AutoMigrate.
const PendingJoinRequestIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS uq_club_join_request_pending
ON club_join_requests (club_join_request_user_id, club_join_request_club_id)
WHERE club_join_request_status = 'pending'`

func (r *ClubJoinRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ClubJoinRequestID == uuid.Nil {
		r.ClubJoinRequestID = uuid.New()
	}
	if r.ClubJoinRequestStatus == "" {
		r.ClubJoinRequestStatus = JoinRequestStatusPending
	}
	if r.ClubJoinRequestRequestedAt.IsZero() {
		r.ClubJoinRequestRequestedAt = time.Now()
	}
	return nil
}

func (r *ClubJoinRequest) IsPending() bool {
	return r.ClubJoinRequestStatus == JoinRequestStatusPending
}

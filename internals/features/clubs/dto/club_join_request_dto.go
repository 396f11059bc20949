package dto

import (
	"time"

	"github.com/google/uuid"

	"csesociety_backend/internals/features/clubs/model"
)

type ReviewJoinRequestRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

type ClubJoinRequestResponse struct {
	ClubJoinRequestID     uuid.UUID `json:"club_join_request_id"`
	ClubJoinRequestUserID uuid.UUID `json:"club_join_request_user_id"`
	ClubJoinRequestClubID uuid.UUID `json:"club_join_request_club_id"`
	ClubJoinRequestStatus string    `json:"club_join_request_status"`

	ClubJoinRequestPaymentTransactionID *string `json:"club_join_request_payment_transaction_id,omitempty"`

	ClubJoinRequestRequestedAt time.Time  `json:"club_join_request_requested_at"`
	ClubJoinRequestProcessedAt *time.Time `json:"club_join_request_processed_at,omitempty"`
	ClubJoinRequestProcessedBy *uuid.UUID `json:"club_join_request_processed_by,omitempty"`
}

func FromJoinRequest(m *model.ClubJoinRequest) ClubJoinRequestResponse {
	return ClubJoinRequestResponse{
		ClubJoinRequestID:                   m.ClubJoinRequestID,
		ClubJoinRequestUserID:               m.ClubJoinRequestUserID,
		ClubJoinRequestClubID:               m.ClubJoinRequestClubID,
		ClubJoinRequestStatus:               string(m.ClubJoinRequestStatus),
		ClubJoinRequestPaymentTransactionID: m.ClubJoinRequestPaymentTransactionID,
		ClubJoinRequestRequestedAt:          m.ClubJoinRequestRequestedAt,
		ClubJoinRequestProcessedAt:          m.ClubJoinRequestProcessedAt,
		ClubJoinRequestProcessedBy:          m.ClubJoinRequestProcessedBy,
	}
}

func FromJoinRequests(rows []model.ClubJoinRequest) []ClubJoinRequestResponse {
	out := make([]ClubJoinRequestResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromJoinRequest(&rows[i]))
	}
	return out
}

package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"csesociety_backend/internals/features/finance/payments/model"
	"csesociety_backend/internals/features/finance/payments/service"
)

/* =========================================================
   Initiation
========================================================= */

type InitiatePaymentResponse struct {
	TransactionID string          `json:"transaction_id"`
	RedirectURL   string          `json:"redirect_url"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	TargetType    string          `json:"target_type"`
	TargetID      uuid.UUID       `json:"target_id"`
}

func FromInitiateResult(r *service.InitiateResult) InitiatePaymentResponse {
	return InitiatePaymentResponse{
		TransactionID: r.TransactionID,
		RedirectURL:   r.RedirectURL,
		Amount:        r.Amount,
		Currency:      r.Currency,
		TargetType:    string(r.Target.Type),
		TargetID:      r.Target.ID,
	}
}

/* =========================================================
   Gateway callbacks (form POST, JSON IPN or GET redirect)
========================================================= */

type GatewayCallbackRequest struct {
	TranID  string `json:"tran_id" form:"tran_id" query:"tran_id"`
	ValID   string `json:"val_id" form:"val_id" query:"val_id"`
	Status  string `json:"status" form:"status" query:"status"`
	OrderID string `json:"order_id" form:"order_id" query:"order_id"`
}

// TransactionID falls back to order_id for gateways that call it that.
func (r GatewayCallbackRequest) TransactionID() string {
	if r.TranID != "" {
		return r.TranID
	}
	return r.OrderID
}

type CallbackAckResponse struct {
	TransactionID string `json:"transaction_id"`
	State         string `json:"state"`
}

/* =========================================================
   Ledger
========================================================= */

type ListPaymentsQuery struct {
	UserID     string `query:"user_id" validate:"omitempty,uuid"`
	TargetType string `query:"target_type" validate:"omitempty,oneof=club event"`
	TargetID   string `query:"target_id" validate:"omitempty,uuid"`
	Status     string `query:"status" validate:"omitempty,oneof=pending paid refunded failed"`
	From       string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Q          string `query:"q" validate:"omitempty,max=200"`
}

type CreateManualPaymentRequest struct {
	UserID        string          `json:"user_id" validate:"required,uuid"`
	TargetType    string          `json:"target_type" validate:"required,oneof=club event"`
	TargetID      string          `json:"target_id" validate:"required,uuid"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency" validate:"omitempty,len=3,alpha"`
	Status        string          `json:"status" validate:"omitempty,oneof=pending paid refunded failed"`
	PaymentDate   *time.Time      `json:"payment_date"`
	TransactionID string          `json:"transaction_id" validate:"omitempty,max=200"`
	Notes         *string         `json:"notes" validate:"omitempty,max=2000"`
}

type UpdatePaymentStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=pending paid refunded failed"`
	Notes  *string `json:"notes" validate:"omitempty,max=2000"`
}

type PaymentRecordResponse struct {
	PaymentRecordID            uuid.UUID         `json:"payment_record_id"`
	PaymentRecordUserID        uuid.UUID         `json:"payment_record_user_id"`
	PaymentRecordTargetType    string            `json:"payment_record_target_type"`
	PaymentRecordTargetID      uuid.UUID         `json:"payment_record_target_id"`
	PaymentRecordAmount        decimal.Decimal   `json:"payment_record_amount"`
	PaymentRecordCurrency      string            `json:"payment_record_currency"`
	PaymentRecordStatus        string            `json:"payment_record_status"`
	PaymentRecordPaymentDate   time.Time         `json:"payment_record_payment_date"`
	PaymentRecordTransactionID string            `json:"payment_record_transaction_id"`
	PaymentRecordGateway       string            `json:"payment_record_gateway"`
	PaymentRecordNotes         *string           `json:"payment_record_notes,omitempty"`
	PaymentRecordRecordedBy    *uuid.UUID        `json:"payment_record_recorded_by,omitempty"`
	PaymentRecordMeta          datatypes.JSONMap `json:"payment_record_meta,omitempty"`
	PaymentRecordCreatedAt     time.Time         `json:"payment_record_created_at"`
	PaymentRecordUpdatedAt     time.Time         `json:"payment_record_updated_at"`
}

func FromPaymentRecord(m *model.PaymentRecord) PaymentRecordResponse {
	return PaymentRecordResponse{
		PaymentRecordID:            m.PaymentRecordID,
		PaymentRecordUserID:        m.PaymentRecordUserID,
		PaymentRecordTargetType:    string(m.PaymentRecordTargetType),
		PaymentRecordTargetID:      m.PaymentRecordTargetID,
		PaymentRecordAmount:        m.PaymentRecordAmount,
		PaymentRecordCurrency:      m.PaymentRecordCurrency,
		PaymentRecordStatus:        string(m.PaymentRecordStatus),
		PaymentRecordPaymentDate:   m.PaymentRecordPaymentDate,
		PaymentRecordTransactionID: m.PaymentRecordTransactionID,
		PaymentRecordGateway:       m.PaymentRecordGateway,
		PaymentRecordNotes:         m.PaymentRecordNotes,
		PaymentRecordRecordedBy:    m.PaymentRecordRecordedBy,
		PaymentRecordMeta:          m.PaymentRecordMeta,
		PaymentRecordCreatedAt:     m.PaymentRecordCreatedAt,
		PaymentRecordUpdatedAt:     m.PaymentRecordUpdatedAt,
	}
}

func FromPaymentRecords(rows []model.PaymentRecord) []PaymentRecordResponse {
	out := make([]PaymentRecordResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromPaymentRecord(&rows[i]))
	}
	return out
}

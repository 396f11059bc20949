package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"csesociety_backend/internals/configs"
)

/* =========================================================
   Midtrans (Snap for checkout, Core API for status checks)
   PAYMENT_STORE_PASSWORD carries the server key.
   Notifications go to the dashboard URL, which should be
   {SERVER_BASE_URL}/api/payments/ipn (type-agnostic).
========================================================= */

// snapCreator and statusChecker are the slices of the SDK clients we call.
type snapCreator interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

type statusChecker interface {
	CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error)
}

type Midtrans struct {
	snap snapCreator
	core statusChecker
}

func NewMidtrans(cfg configs.PaymentConfig) *Midtrans {
	env := midtrans.Sandbox
	if cfg.IsProduction {
		env = midtrans.Production
	}
	s := &snap.Client{}
	s.New(cfg.StorePassword, env)
	c := &coreapi.Client{}
	c.New(cfg.StorePassword, env)
	return &Midtrans{snap: s, core: c}
}

func (g *Midtrans) Name() string { return configs.ProviderMidtrans }

func (g *Midtrans) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cust := req.Customer.WithPlaceholders()
	addr := &midtrans.CustomerAddress{
		FName:    cust.Name,
		Phone:    cust.Phone,
		Address:  cust.Address,
		City:     cust.City,
		Postcode: cust.Postcode,
	}

	sreq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.TransactionID,
			GrossAmt: req.Amount.Round(0).IntPart(),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName:    cust.Name,
			Email:    cust.Email,
			Phone:    cust.Phone,
			BillAddr: addr,
			ShipAddr: addr,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    req.TransactionID,
			Name:  orDefault(req.ProductName, "Society fee"),
			Price: req.Amount.Round(0).IntPart(),
			Qty:   1,
		}},
		Callbacks: &snap.Callbacks{
			Finish: req.SuccessURL,
		},
	}

	resp, mErr := g.snap.CreateTransaction(sreq)
	if mErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionFailed, mErr.GetMessage())
	}
	if resp == nil || strings.TrimSpace(resp.RedirectURL) == "" {
		return nil, fmt.Errorf("%w: empty redirect_url", ErrSessionFailed)
	}
	return &Session{RedirectURL: resp.RedirectURL, SessionKey: resp.Token}, nil
}

// Validate asks Core API for the order status. Midtrans has no val_id, so the
// order id doubles as the lookup key.
func (g *Midtrans) Validate(ctx context.Context, req ValidationRequest) (*Validation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	orderID := strings.TrimSpace(req.ValID)
	if orderID == "" {
		orderID = strings.TrimSpace(req.TransactionID)
	}
	if orderID == "" {
		return &Validation{Status: "MISSING_ORDER_ID"}, nil
	}

	st, mErr := g.core.CheckTransaction(orderID)
	if mErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationUnavailable, mErr.GetMessage())
	}
	if st == nil {
		return nil, fmt.Errorf("%w: empty status response", ErrValidationUnavailable)
	}

	v := &Validation{
		Status:        mapMidtransStatus(st.TransactionStatus, st.FraudStatus),
		TransactionID: st.OrderID,
		Currency:      st.Currency,
		Raw: map[string]any{
			"transaction_id":     st.TransactionID,
			"transaction_status": st.TransactionStatus,
			"fraud_status":       st.FraudStatus,
			"payment_type":       st.PaymentType,
			"gross_amount":       st.GrossAmount,
		},
	}
	if v.Currency == "" {
		v.Currency = "IDR"
	}
	if d, err := decimal.NewFromString(strings.TrimSpace(st.GrossAmount)); err == nil {
		v.Amount = d
	} else {
		v.Status = "INVALID_AMOUNT"
	}
	return v, nil
}

func mapMidtransStatus(trx, fraud string) string {
	trx = strings.ToLower(trx)
	fraud = strings.ToLower(fraud)
	switch trx {
	case "settlement":
		return StatusValid
	case "capture":
		if fraud == "" || fraud == "accept" {
			return StatusValid
		}
		return "CHALLENGE"
	default:
		return strings.ToUpper(trx)
	}
}

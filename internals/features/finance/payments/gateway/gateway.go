package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"csesociety_backend/internals/configs"
)

var (
	// ErrSessionFailed: the gateway did not hand back a redirect URL.
	ErrSessionFailed = errors.New("gateway session init failed")
	// ErrValidationUnavailable: the validation endpoint could not be reached or parsed.
	ErrValidationUnavailable = errors.New("gateway validation unavailable")
)

// Verification statuses accepted as a confirmed payment.
const (
	StatusValid     = "VALID"
	StatusValidated = "VALIDATED"
)

// Placeholders for customer fields the gateway requires but the member profile may lack.
const (
	PlaceholderName     = "CSE Society Member"
	PlaceholderEmail    = "no-reply@csesociety.local"
	PlaceholderPhone    = "01700000000"
	PlaceholderAddress  = "N/A"
	PlaceholderCity     = "Dhaka"
	PlaceholderPostcode = "1000"
	PlaceholderCountry  = "Bangladesh"
)

type Customer struct {
	Name     string
	Email    string
	Phone    string
	Address  string
	City     string
	Postcode string
	Country  string
}

// WithPlaceholders fills every empty required field.
func (c Customer) WithPlaceholders() Customer {
	c.Name = orDefault(c.Name, PlaceholderName)
	c.Email = orDefault(c.Email, PlaceholderEmail)
	c.Phone = orDefault(c.Phone, PlaceholderPhone)
	c.Address = orDefault(c.Address, PlaceholderAddress)
	c.City = orDefault(c.City, PlaceholderCity)
	c.Postcode = orDefault(c.Postcode, PlaceholderPostcode)
	c.Country = orDefault(c.Country, PlaceholderCountry)
	return c
}

type SessionRequest struct {
	TransactionID   string
	Amount          decimal.Decimal
	Currency        string
	ProductName     string
	ProductCategory string

	SuccessURL string
	FailURL    string
	CancelURL  string
	NotifyURL  string

	Customer Customer
}

type Session struct {
	RedirectURL string
	SessionKey  string
}

type ValidationRequest struct {
	ValID         string
	TransactionID string
}

// Validation is the gateway's out-of-band answer to "did this payment succeed".
type Validation struct {
	Status        string
	TransactionID string
	Amount        decimal.Decimal
	Currency      string
	Raw           map[string]any
}

func (v *Validation) IsValid() bool {
	return v != nil && (v.Status == StatusValid || v.Status == StatusValidated)
}

type Gateway interface {
	Name() string
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	Validate(ctx context.Context, req ValidationRequest) (*Validation, error)
}

// New picks the provider named in cfg.
func New(cfg configs.PaymentConfig) (Gateway, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", configs.ProviderSSLCommerz:
		return NewSSLCommerz(cfg), nil
	case configs.ProviderMidtrans:
		return NewMidtrans(cfg), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider)
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

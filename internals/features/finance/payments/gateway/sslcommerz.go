package gateway

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"csesociety_backend/internals/configs"
)

const (
	sslcommerzSandboxURL    = "https://sandbox.sslcommerz.com"
	sslcommerzLiveURL       = "https://securepay.sslcommerz.com"
	sslcommerzInitPath      = "/gwprocess/v4/api.php"
	sslcommerzValidatorPath = "/validator/api/validationserverAPI.php"
)

type SSLCommerz struct {
	storeID       string
	storePassword string
	baseURL       string
	timeout       time.Duration
}

func NewSSLCommerz(cfg configs.PaymentConfig) *SSLCommerz {
	base := cfg.GatewayBaseURL
	if base == "" {
		base = sslcommerzSandboxURL
		if cfg.IsProduction {
			base = sslcommerzLiveURL
		}
	}
	timeout := cfg.GatewayTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SSLCommerz{
		storeID:       cfg.StoreID,
		storePassword: cfg.StorePassword,
		baseURL:       strings.TrimRight(base, "/"),
		timeout:       timeout,
	}
}

func (g *SSLCommerz) Name() string { return configs.ProviderSSLCommerz }

type sslcommerzInitResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

func (g *SSLCommerz) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cust := req.Customer.WithPlaceholders()

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("store_id", g.storeID)
	args.Set("store_passwd", g.storePassword)
	args.Set("total_amount", req.Amount.StringFixed(2))
	args.Set("currency", req.Currency)
	args.Set("tran_id", req.TransactionID)
	args.Set("success_url", req.SuccessURL)
	args.Set("fail_url", req.FailURL)
	args.Set("cancel_url", req.CancelURL)
	args.Set("ipn_url", req.NotifyURL)

	args.Set("product_name", orDefault(req.ProductName, "Society fee"))
	args.Set("product_category", orDefault(req.ProductCategory, "membership"))
	args.Set("product_profile", "non-physical-goods")
	args.Set("num_of_item", "1")

	args.Set("cus_name", cust.Name)
	args.Set("cus_email", cust.Email)
	args.Set("cus_phone", cust.Phone)
	args.Set("cus_add1", cust.Address)
	args.Set("cus_city", cust.City)
	args.Set("cus_postcode", cust.Postcode)
	args.Set("cus_country", cust.Country)

	args.Set("shipping_method", "NO")
	args.Set("ship_name", cust.Name)
	args.Set("ship_add1", cust.Address)
	args.Set("ship_city", cust.City)
	args.Set("ship_postcode", cust.Postcode)
	args.Set("ship_country", cust.Country)

	agent := fiber.Post(g.baseURL + sslcommerzInitPath).
		Timeout(g.timeout).
		Form(args)
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrSessionFailed, errs[0])
	}

	var resp sslcommerzInitResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: http %d, undecodable body: %v", ErrSessionFailed, code, err)
	}
	if strings.TrimSpace(resp.GatewayPageURL) == "" {
		return nil, fmt.Errorf("%w: status=%s reason=%s", ErrSessionFailed, resp.Status, resp.FailedReason)
	}
	return &Session{RedirectURL: resp.GatewayPageURL, SessionKey: resp.SessionKey}, nil
}

func (g *SSLCommerz) Validate(ctx context.Context, req ValidationRequest) (*Validation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ValID) == "" {
		return &Validation{Status: "MISSING_VAL_ID"}, nil
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("val_id", req.ValID)
	args.Set("store_id", g.storeID)
	args.Set("store_passwd", g.storePassword)
	args.Set("format", "json")

	agent := fiber.Get(g.baseURL + sslcommerzValidatorPath).
		Timeout(g.timeout).
		QueryString(string(args.QueryString()))
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrValidationUnavailable, errs[0])
	}
	if code >= 500 {
		return nil, fmt.Errorf("%w: http %d", ErrValidationUnavailable, code)
	}

	raw := map[string]any{}
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: undecodable body: %v", ErrValidationUnavailable, err)
	}

	v := &Validation{
		Status:        strings.ToUpper(strings.TrimSpace(stringField(raw, "status"))),
		TransactionID: stringField(raw, "tran_id"),
		Currency:      stringField(raw, "currency"),
		Raw:           raw,
	}
	if amt := stringField(raw, "amount"); amt != "" {
		d, err := decimal.NewFromString(amt)
		if err != nil {
			log.Printf("[PAYMENT] sslcommerz: unparsable amount %q for val_id=%s", amt, req.ValID)
			v.Status = "INVALID_AMOUNT"
		} else {
			v.Amount = d
		}
	}
	return v, nil
}

// stringField reads a JSON value that the gateway may send as string or number.
func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return decimal.NewFromFloat(v).String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

package configs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ .env file not found, using system ENV")
		} else {
			log.Println("✅ .env file loaded")
		}
	} else {
		log.Println("🚀 Running in Railway, using system ENV")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return strings.TrimSpace(value)
}

func getEnvBool(key string, def bool) bool {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[WARN] %s=%q is not a bool, using %v", key, v, def)
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[WARN] %s=%q is not a duration, using %s", key, v, def)
		return def
	}
	return d
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(GetEnv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvDecimal(key string, def decimal.Decimal) decimal.Decimal {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		log.Printf("[WARN] %s=%q is not a number, using %s", key, v, def)
		return def
	}
	return d
}

// =======================
// APP CONFIG
// =======================

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=csesociety&options=-c statement_timeout=3000",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Gateway providers supported by PaymentConfig.Provider.
const (
	ProviderSSLCommerz = "sslcommerz"
	ProviderMidtrans   = "midtrans"
)

// PaymentConfig is handed to the gateway client, initiator, callback handler and reaper.
// Nothing in the payment core reads the environment on its own.
type PaymentConfig struct {
	Provider      string
	StoreID       string
	StorePassword string
	IsProduction  bool

	// Optional; overrides the sandbox/live host picked from IsProduction.
	GatewayBaseURL string
	GatewayTimeout time.Duration

	ServerBaseURL string
	ClientBaseURL string

	Currency          string
	ClubMembershipFee decimal.Decimal

	PendingTTL     time.Duration
	ReaperSchedule string
}

func (p PaymentConfig) Validate() error {
	var missing []string
	if p.StoreID == "" {
		missing = append(missing, "PAYMENT_STORE_ID")
	}
	if p.StorePassword == "" {
		missing = append(missing, "PAYMENT_STORE_PASSWORD")
	}
	if p.ServerBaseURL == "" {
		missing = append(missing, "SERVER_BASE_URL")
	}
	if p.ClientBaseURL == "" {
		missing = append(missing, "CLIENT_BASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("payment config: missing %s", strings.Join(missing, ", "))
	}
	switch p.Provider {
	case ProviderSSLCommerz, ProviderMidtrans:
	default:
		return fmt.Errorf("payment config: unknown provider %q", p.Provider)
	}
	if p.ClubMembershipFee.IsNegative() {
		return errors.New("payment config: CLUB_MEMBERSHIP_FEE must not be negative")
	}
	return nil
}

type AppConfig struct {
	Port        string
	Environment string
	JWTSecret   string

	// CIDRs or IPs whose X-Forwarded-For is honoured; empty means the header is ignored.
	TrustedProxies []string

	Database DatabaseConfig
	Payment  PaymentConfig
}

// Load reads the process environment once; call after LoadEnv.
func Load() AppConfig {
	cfg := AppConfig{
		Port:           GetEnv("PORT", "3000"),
		Environment:    GetEnv("RAILWAY_ENVIRONMENT", "development"),
		JWTSecret:      GetEnv("JWT_SECRET"),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),
		Database: DatabaseConfig{
			Host:     GetEnv("DB_HOST"),
			Port:     GetEnv("DB_PORT", "5432"),
			User:     GetEnv("DB_USER"),
			Password: GetEnv("DB_PASSWORD"),
			Name:     GetEnv("DB_NAME"),
			SSLMode:  GetEnv("DB_SSLMODE", "require"),
		},
		Payment: PaymentConfig{
			Provider:          strings.ToLower(GetEnv("PAYMENT_PROVIDER", ProviderSSLCommerz)),
			StoreID:           GetEnv("PAYMENT_STORE_ID"),
			StorePassword:     GetEnv("PAYMENT_STORE_PASSWORD"),
			IsProduction:      getEnvBool("PAYMENT_IS_PRODUCTION", false),
			GatewayBaseURL:    strings.TrimRight(GetEnv("PAYMENT_GATEWAY_BASE_URL"), "/"),
			GatewayTimeout:    getEnvDuration("PAYMENT_GATEWAY_TIMEOUT", 30*time.Second),
			ServerBaseURL:     strings.TrimRight(GetEnv("SERVER_BASE_URL"), "/"),
			ClientBaseURL:     strings.TrimRight(GetEnv("CLIENT_BASE_URL"), "/"),
			Currency:          GetEnv("PAYMENT_CURRENCY", "BDT"),
			ClubMembershipFee: getEnvDecimal("CLUB_MEMBERSHIP_FEE", decimal.NewFromInt(100)),
			PendingTTL:        getEnvDuration("PENDING_TRANSACTION_TTL", 24*time.Hour),
			ReaperSchedule:    GetEnv("PENDING_REAPER_SCHEDULE", "*/30 * * * *"),
		},
	}

	if cfg.JWTSecret == "" {
		log.Println("❌ JWT_SECRET is not set!")
	} else {
		log.Println("✅ JWT_SECRET loaded.")
	}
	if cfg.Payment.IsProduction {
		log.Println("💳 Payment gateway: LIVE mode")
	} else {
		log.Println("💳 Payment gateway: sandbox mode")
	}
	return cfg
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Warn,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	nl := *l
	nl.LogLevel = level
	return &nl
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error:
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}

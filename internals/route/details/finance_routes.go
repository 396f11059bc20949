package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"csesociety_backend/internals/configs"
	"csesociety_backend/internals/features/finance/payments/gateway"
	paymentRoute "csesociety_backend/internals/features/finance/payments/route"
)

// FinancePublicRoutes: gateway callbacks (/api/payments/...).
func FinancePublicRoutes(r fiber.Router, db *gorm.DB, gw gateway.Gateway, cfg configs.PaymentConfig) {
	paymentRoute.PaymentGatewayRoutes(r, db, gw, cfg)
}

func FinanceUserRoutes(r fiber.Router, db *gorm.DB, gw gateway.Gateway, cfg configs.PaymentConfig) {
	paymentRoute.PaymentUserRoutes(r, db, gw, cfg)
}

func FinanceOwnerRoutes(r fiber.Router, db *gorm.DB, gw gateway.Gateway, cfg configs.PaymentConfig) {
	paymentRoute.PaymentOwnerRoutes(r, db, gw, cfg)
}

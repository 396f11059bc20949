package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"csesociety_backend/internals/configs"
	"csesociety_backend/internals/constants"
	"csesociety_backend/internals/features/finance/payments/controller"
	"csesociety_backend/internals/features/finance/payments/gateway"
	"csesociety_backend/internals/features/finance/payments/model"
	"csesociety_backend/internals/middlewares"
	authMiddleware "csesociety_backend/internals/middlewares/auth"
)

// PaymentUserRoutes mounts under the authenticated user group (/api/u).
func PaymentUserRoutes(r fiber.Router, db *gorm.DB, gw gateway.Gateway, cfg configs.PaymentConfig) {
	ctl := controller.NewPaymentController(db, gw, cfg)

	canPay := authMiddleware.RequireCapability(constants.CapPaymentInitiate)
	limit := middlewares.PaymentInitRateLimiter()

	g := r.Group("/payments")
	g.Post("/clubs/:club_id", canPay, limit, ctl.InitiateClub)
	g.Post("/events/:event_id", canPay, limit, ctl.InitiateEvent)

	g.Get("/my", authMiddleware.RequireCapability(constants.CapPaymentReadOwn), ctl.MyPayments)
}

// PaymentGatewayRoutes are hit by the gateway and the payer's browser; no JWT.
func PaymentGatewayRoutes(r fiber.Router, db *gorm.DB, gw gateway.Gateway, cfg configs.PaymentConfig) {
	ctl := controller.NewPaymentController(db, gw, cfg)

	g := r.Group("/payments", middlewares.GatewayCallbackRateLimiter())
	// single notification URL (Midtrans dashboard); the type comes from the pending row
	g.Post("/ipn", ctl.IPN(""))
	for _, tt := range []model.TargetType{model.TargetTypeClub, model.TargetTypeEvent} {
		t := g.Group("/" + string(tt))
		t.Post("/success", ctl.Success(tt))
		t.Get("/success", ctl.Success(tt))
		t.Post("/fail", ctl.Fail(tt))
		t.Get("/fail", ctl.Fail(tt))
		t.Post("/cancel", ctl.Cancel(tt))
		t.Get("/cancel", ctl.Cancel(tt))
		t.Post("/ipn", ctl.IPN(tt))
	}
}

// PaymentOwnerRoutes mounts the ledger under the super admin group (/api/o).
func PaymentOwnerRoutes(r fiber.Router, db *gorm.DB, gw gateway.Gateway, cfg configs.PaymentConfig) {
	ctl := controller.NewPaymentController(db, gw, cfg)
	read := authMiddleware.RequireCapability(constants.CapPaymentLedgerRead)
	write := authMiddleware.RequireCapability(constants.CapPaymentLedgerWrite)

	g := r.Group("/payments")
	g.Get("/", read, ctl.List)
	g.Get("/:id", read, ctl.Get)
	g.Post("/", write, ctl.CreateManual)
	g.Patch("/:id", write, ctl.UpdateStatus)
}

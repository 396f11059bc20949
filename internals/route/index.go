package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"csesociety_backend/internals/configs"
	"csesociety_backend/internals/features/finance/payments/gateway"
	userService "csesociety_backend/internals/features/users/user/service"
	"csesociety_backend/internals/middlewares"
	authMiddleware "csesociety_backend/internals/middlewares/auth"
	routeDetails "csesociety_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg configs.AppConfig, gw gateway.Gateway) {
	startTime = time.Now()

	BaseRoutes(app, db, cfg.Environment)

	auth := authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
		Secret:              cfg.JWTSecret,
		AllowCookieFallback: true,
		ActiveUserChecker:   userService.ActiveUserChecker(db),
	})

	// ===================== GROUPS =====================
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api")

	log.Println("[INFO] Setting up USER group...")
	user := app.Group("/api/u", middlewares.GlobalRateLimiter(), auth)

	log.Println("[INFO] Setting up ADMIN group...")
	admin := app.Group("/api/a", middlewares.GlobalRateLimiter(), auth)

	log.Println("[INFO] Setting up OWNER group...")
	owner := app.Group("/api/o", middlewares.GlobalRateLimiter(), auth)

	// ===================== MOUNT ROUTES =====================
	log.Println("[INFO] Mounting Finance routes...")
	routeDetails.FinancePublicRoutes(public, db, gw, cfg.Payment)
	routeDetails.FinanceUserRoutes(user, db, gw, cfg.Payment)
	routeDetails.FinanceOwnerRoutes(owner, db, gw, cfg.Payment)

	log.Println("[INFO] Mounting Society routes...")
	routeDetails.SocietyAdminRoutes(admin, db)
}

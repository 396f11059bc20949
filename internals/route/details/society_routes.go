package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	clubRoute "csesociety_backend/internals/features/clubs/route"
	eventRoute "csesociety_backend/internals/features/events/route"
)

// SocietyAdminRoutes: club and event staff endpoints (/api/a/...).
func SocietyAdminRoutes(r fiber.Router, db *gorm.DB) {
	clubRoute.ClubAdminRoutes(r, db)
	eventRoute.EventAdminRoutes(r, db)
}

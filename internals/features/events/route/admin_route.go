package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"csesociety_backend/internals/constants"
	eventController "csesociety_backend/internals/features/events/controller"
	authMiddleware "csesociety_backend/internals/middlewares/auth"
)

func EventAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := eventController.NewEventRegistrationController(db)
	r.Get("/events/:event_id/registrations", authMiddleware.RequireCapability(constants.CapEventManage), ctl.ListRegistrations)
}

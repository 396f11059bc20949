package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"csesociety_backend/internals/constants"
	clubController "csesociety_backend/internals/features/clubs/controller"
	authMiddleware "csesociety_backend/internals/middlewares/auth"
)

// ClubAdminRoutes mounts join-request review under an authenticated group (/api/a).
func ClubAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := clubController.NewClubJoinRequestController(db)
	guard := authMiddleware.RequireCapability(constants.CapJoinRequestReview)

	r.Get("/clubs/:club_id/join-requests", guard, ctl.ListByClub)
	r.Patch("/club-join-requests/:id", guard, ctl.Review)
}

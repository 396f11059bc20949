package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"csesociety_backend/internals/features/events/service"
	helper "csesociety_backend/internals/helpers"
)

type EventRegistrationController struct {
	DB *gorm.DB
}

func NewEventRegistrationController(db *gorm.DB) *EventRegistrationController {
	return &EventRegistrationController{DB: db}
}

type registrationsResponse struct {
	EventID uuid.UUID   `json:"event_id"`
	UserIDs []uuid.UUID `json:"user_ids"`
	Total   int         `json:"total"`
}

// GET /api/a/events/:event_id/registrations
func (h *EventRegistrationController) ListRegistrations(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(strings.TrimSpace(c.Params("event_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid event_id")
	}
	if _, err := service.FindEvent(c.UserContext(), h.DB, eventID); err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "event not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	ids, err := service.RegisteredUserIDs(c.UserContext(), h.DB, eventID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return helper.JsonOK(c, "ok", registrationsResponse{EventID: eventID, UserIDs: ids, Total: len(ids)})
}

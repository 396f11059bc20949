package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"csesociety_backend/internals/features/clubs/dto"
	"csesociety_backend/internals/features/clubs/model"
	"csesociety_backend/internals/features/clubs/service"
	helper "csesociety_backend/internals/helpers"
	helperAuth "csesociety_backend/internals/helpers/auth"
)

type ClubJoinRequestController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewClubJoinRequestController(db *gorm.DB) *ClubJoinRequestController {
	return &ClubJoinRequestController{DB: db, Validator: validator.New()}
}

// GET /api/a/clubs/:club_id/join-requests?status=pending
func (h *ClubJoinRequestController) ListByClub(c *fiber.Ctx) error {
	clubID, err := uuid.Parse(strings.TrimSpace(c.Params("club_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid club_id")
	}

	status := model.JoinRequestStatus(strings.ToLower(strings.TrimSpace(c.Query("status"))))
	if status != "" && !status.Valid() {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid status filter")
	}

	if _, err := service.FindClub(c.UserContext(), h.DB, clubID); err != nil {
		if errors.Is(err, service.ErrClubNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "club not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := service.ListJoinRequests(c.UserContext(), h.DB, clubID, status, p.Offset, p.Limit)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonList(c, "ok", dto.FromJoinRequests(rows), helper.BuildPagination(total, p, len(rows)))
}

// PATCH /api/a/club-join-requests/:id
func (h *ClubJoinRequestController) Review(c *fiber.Ctx) error {
	reviewerID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}

	var req dto.ReviewJoinRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorsToMap(err))
	}

	out, err := service.ReviewJoinRequest(c.UserContext(), h.DB, id, model.JoinRequestStatus(req.Status), reviewerID)
	switch {
	case errors.Is(err, service.ErrJoinRequestNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "join request not found")
	case errors.Is(err, service.ErrJoinRequestProcessed):
		return helper.JsonError(c, fiber.StatusConflict, "join request already processed")
	case err != nil:
		log.Printf("[ERROR] review join request %s: %v", id, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "failed to review join request")
	}

	log.Printf("[INFO] join request %s %s by %s", id, req.Status, reviewerID)
	return helper.JsonUpdated(c, "join request "+req.Status, dto.FromJoinRequest(out))
}

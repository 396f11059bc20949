package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"csesociety_backend/internals/configs"
	"csesociety_backend/internals/features/finance/payments/dto"
	"csesociety_backend/internals/features/finance/payments/gateway"
	"csesociety_backend/internals/features/finance/payments/model"
	"csesociety_backend/internals/features/finance/payments/service"
	userService "csesociety_backend/internals/features/users/user/service"
	helper "csesociety_backend/internals/helpers"
	helperAuth "csesociety_backend/internals/helpers/auth"
)

type PaymentController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Initiator *service.Initiator
	Callbacks *service.CallbackHandler
	Ledger    *service.Ledger
}

func NewPaymentController(db *gorm.DB, gw gateway.Gateway, cfg configs.PaymentConfig) *PaymentController {
	return &PaymentController{
		DB:        db,
		Validator: validator.New(),
		Initiator: service.NewInitiator(db, gw, cfg),
		Callbacks: service.NewCallbackHandler(db, gw, cfg),
		Ledger:    service.NewLedger(db, cfg.Currency),
	}
}

/* =========================================================
   User: initiate
========================================================= */

// POST /api/u/payments/clubs/:club_id
func (h *PaymentController) InitiateClub(c *fiber.Ctx) error {
	return h.initiate(c, model.TargetTypeClub, "club_id")
}

// POST /api/u/payments/events/:event_id
func (h *PaymentController) InitiateEvent(c *fiber.Ctx) error {
	return h.initiate(c, model.TargetTypeEvent, "event_id")
}

func (h *PaymentController) initiate(c *fiber.Ctx, tt model.TargetType, param string) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	targetID, err := uuid.Parse(strings.TrimSpace(c.Params(param)))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid "+param)
	}

	res, err := h.Initiator.Initiate(c.UserContext(), userID, service.Target{Type: tt, ID: targetID})
	switch {
	case errors.Is(err, service.ErrTargetNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, string(tt)+" not found")
	case errors.Is(err, service.ErrInvalidTarget):
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid payment target")
	case errors.Is(err, userService.ErrUserNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, userService.ErrUserInactive):
		return helper.JsonError(c, fiber.StatusForbidden, "account is inactive")
	case errors.Is(err, service.ErrGatewayInit):
		return helper.JsonError(c, fiber.StatusInternalServerError, "failed to start payment session")
	case err != nil:
		log.Printf("[ERROR] initiate %s payment user=%s: %v", tt, userID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "failed to initiate payment")
	}
	return helper.JsonCreated(c, "payment session created", dto.FromInitiateResult(res))
}

// GET /api/u/payments/my
func (h *PaymentController) MyPayments(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Ledger.ListForUser(c.UserContext(), userID, p.Offset, p.Limit)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonList(c, "ok", dto.FromPaymentRecords(rows), helper.BuildPagination(total, p, len(rows)))
}

/* =========================================================
   Gateway callbacks
   Browser-driven: always a redirect, never a JSON error.
========================================================= */

func (h *PaymentController) Success(tt model.TargetType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := parseCallback(c, tt)
		out, err := h.Callbacks.HandleSuccess(c.UserContext(), in)
		if err != nil {
			log.Printf("[PAYMENT] success callback tran_id=%q ended %s: %v", in.TransactionID, out.State, err)
		}
		return c.Redirect(out.RedirectURL, fiber.StatusSeeOther)
	}
}

func (h *PaymentController) Fail(tt model.TargetType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out := h.Callbacks.HandleFailure(c.UserContext(), parseCallback(c, tt))
		return c.Redirect(out.RedirectURL, fiber.StatusSeeOther)
	}
}

func (h *PaymentController) Cancel(tt model.TargetType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out := h.Callbacks.HandleCancel(c.UserContext(), parseCallback(c, tt))
		return c.Redirect(out.RedirectURL, fiber.StatusSeeOther)
	}
}

// IPN confirms like Success but answers the gateway with JSON. Duplicates are
// acknowledged so the gateway stops retrying.
func (h *PaymentController) IPN(tt model.TargetType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := parseCallback(c, tt)
		out, err := h.Callbacks.HandleSuccess(c.UserContext(), in)
		ack := dto.CallbackAckResponse{TransactionID: in.TransactionID, State: string(out.State)}
		switch {
		case err == nil, errors.Is(err, service.ErrDuplicateCallback):
			return helper.JsonOK(c, "acknowledged", ack)
		case errors.Is(err, service.ErrOrphanedTransaction):
			return helper.JsonError(c, fiber.StatusNotFound, "unknown transaction")
		case errors.Is(err, service.ErrVerificationFailed):
			log.Printf("[PAYMENT] ipn tran_id=%q not verified: %v", in.TransactionID, err)
			return helper.JsonError(c, fiber.StatusBadRequest, "payment not verified")
		default:
			log.Printf("[ERROR] ipn tran_id=%q: %v", in.TransactionID, err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "failed to process notification")
		}
	}
}

func parseCallback(c *fiber.Ctx, tt model.TargetType) service.CallbackInput {
	var body dto.GatewayCallbackRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			log.Printf("[WARN] callback body not parsed (%s): %v", c.Get(fiber.HeaderContentType), err)
		}
	}
	var q dto.GatewayCallbackRequest
	if err := c.QueryParser(&q); err != nil {
		log.Printf("[WARN] callback query not parsed (%s): %v", c.Request().URI().QueryString(), err)
	}

	tranID := strings.TrimSpace(body.TransactionID())
	if tranID == "" {
		tranID = strings.TrimSpace(q.TransactionID())
	}
	valID := strings.TrimSpace(body.ValID)
	if valID == "" {
		valID = strings.TrimSpace(q.ValID)
	}
	return service.CallbackInput{
		TargetType:    tt,
		TargetID:      strings.TrimSpace(c.Query("target_id")),
		TransactionID: tranID,
		ValID:         valID,
	}
}

/* =========================================================
   Super admin: ledger
========================================================= */

// GET /api/o/payments
func (h *PaymentController) List(c *fiber.Ctx) error {
	var q dto.ListPaymentsQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query: "+err.Error())
	}
	if err := h.Validator.Struct(q); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorsToMap(err))
	}

	f := service.ListFilter{
		TargetType: model.TargetType(q.TargetType),
		Status:     model.PaymentStatus(q.Status),
		Query:      q.Q,
	}
	if q.UserID != "" {
		id := uuid.MustParse(q.UserID)
		f.UserID = &id
	}
	if q.TargetID != "" {
		id := uuid.MustParse(q.TargetID)
		f.TargetID = &id
	}
	if q.From != "" {
		t, _ := time.Parse("2006-01-02", q.From)
		f.From = &t
	}
	if q.To != "" {
		t, _ := time.Parse("2006-01-02", q.To)
		t = t.AddDate(0, 0, 1)
		f.To = &t
	}

	p := helper.ResolvePaging(c, 20, 200)
	rows, total, err := h.Ledger.List(c.UserContext(), f, p.Offset, p.Limit)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonList(c, "ok", dto.FromPaymentRecords(rows), helper.BuildPagination(total, p, len(rows)))
}

// GET /api/o/payments/:id
func (h *PaymentController) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	rec, err := h.Ledger.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "payment not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "ok", dto.FromPaymentRecord(rec))
}

// POST /api/o/payments
func (h *PaymentController) CreateManual(c *fiber.Ctx) error {
	actor, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	var req dto.CreateManualPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	req.TargetType = strings.ToLower(strings.TrimSpace(req.TargetType))
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorsToMap(err))
	}
	if req.Amount.LessThan(decimal.Zero) {
		return helper.JsonValidationError(c, map[string][]string{"amount": {"must not be negative"}})
	}

	rec, err := h.Ledger.RecordManual(c.UserContext(), service.ManualEntry{
		UserID:        uuid.MustParse(req.UserID),
		Target:        service.Target{Type: model.TargetType(req.TargetType), ID: uuid.MustParse(req.TargetID)},
		Amount:        req.Amount,
		Currency:      req.Currency,
		Status:        model.PaymentStatus(req.Status),
		PaymentDate:   req.PaymentDate,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
	}, actor)
	switch {
	case errors.Is(err, service.ErrTargetNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, req.TargetType+" not found")
	case errors.Is(err, userService.ErrUserNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrDuplicateTransaction):
		return helper.JsonError(c, fiber.StatusConflict, "transaction id already recorded")
	case errors.Is(err, service.ErrInvalidTarget), errors.Is(err, service.ErrInvalidPaymentStatus), errors.Is(err, service.ErrInvalidAmount):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		log.Printf("[ERROR] manual payment by %s: %v", actor, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "failed to record payment")
	}
	return helper.JsonCreated(c, "payment recorded", dto.FromPaymentRecord(rec))
}

// PATCH /api/o/payments/:id
func (h *PaymentController) UpdateStatus(c *fiber.Ctx) error {
	actor, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	var req dto.UpdatePaymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorsToMap(err))
	}

	rec, err := h.Ledger.UpdateStatus(c.UserContext(), id, model.PaymentStatus(req.Status), req.Notes, actor)
	switch {
	case errors.Is(err, service.ErrPaymentNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "payment not found")
	case errors.Is(err, model.ErrImmutablePaymentField):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case err != nil:
		log.Printf("[ERROR] update payment %s: %v", id, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "failed to update payment")
	}
	return helper.JsonUpdated(c, "payment updated", dto.FromPaymentRecord(rec))
}

package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadex/acadex-api/internal/dto"
	"github.com/acadex/acadex-api/internal/middleware"
	"github.com/acadex/acadex-api/internal/service"
	"github.com/acadex/acadex-api/internal/utils"
)

// SubmissionHandler manages answer submission and result endpoints.
type SubmissionHandler struct {
	service   service.SubmissionService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, validate *validator.Validate, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("/my", h.listMine)
	router.Get("/:id", h.getDetail)
}

// RegisterSubmit attaches the submit route under the assessments group.
// Guards apply to this route only, so sibling assessment routes keep
// their own access rules.
func (h *SubmissionHandler) RegisterSubmit(router fiber.Router, guards ...fiber.Handler) {
	router.Post("/:id/submissions", append(guards, h.submit)...)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	assessmentID, err := parseUintParam(c, "id")
	if err != nil {
		return h.handleError(c, err)
	}

	var req dto.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Submit(c.Context(), middleware.PrincipalFromContext(c), assessmentID, req)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission scored", result)
}

func (h *SubmissionHandler) listMine(c *fiber.Ctx) error {
	submissions, err := h.service.ListMine(c.Context(), middleware.PrincipalFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) getDetail(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return h.handleError(c, err)
	}

	detail, err := h.service.GetDetail(c.Context(), middleware.PrincipalFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", detail)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var attempted *service.AlreadyAttemptedError
	switch {
	case errors.Is(err, service.ErrAssessmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assessment not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.As(err, &attempted):
		return utils.SendErrorWithData(c, fiber.StatusConflict, "assessment already attempted",
			fiber.Map{"submission_id": attempted.SubmissionID})
	default:
		return handleCommonError(c, requestLogger(h.logger, c), err)
	}
}

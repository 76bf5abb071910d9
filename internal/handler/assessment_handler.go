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

// AssessmentHandler manages assessment authoring and viewing endpoints.
type AssessmentHandler struct {
	service   service.AssessmentService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAssessmentHandler builds an assessment handler instance.
func NewAssessmentHandler(service service.AssessmentService, validate *validator.Validate, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AssessmentHandler) Register(router fiber.Router) {
	router.Get("", h.listOwned)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AssessmentHandler) listOwned(c *fiber.Ctx) error {
	assessments, err := h.service.ListOwned(c.Context(), middleware.PrincipalFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assessments retrieved", assessments)
}

func (h *AssessmentHandler) create(c *fiber.Ctx) error {
	var draft dto.AssessmentDraft
	if err := c.BodyParser(&draft); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assessment, err := h.service.Create(c.Context(), middleware.PrincipalFromContext(c), draft)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assessment created", assessment)
}

func (h *AssessmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return h.handleError(c, err)
	}

	view, err := h.service.GetForPrincipal(c.Context(), middleware.PrincipalFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	if view.Teacher != nil {
		return utils.SendSuccess(c, "assessment retrieved", view.Teacher)
	}

	return utils.SendSuccess(c, "assessment retrieved", view.Student)
}

func (h *AssessmentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return h.handleError(c, err)
	}

	var draft dto.AssessmentDraft
	if err := c.BodyParser(&draft); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assessment, err := h.service.Update(c.Context(), middleware.PrincipalFromContext(c), id, draft)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assessment updated", assessment)
}

func (h *AssessmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return h.handleError(c, err)
	}

	if err := h.service.Delete(c.Context(), middleware.PrincipalFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assessment and related submissions deleted", nil)
}

func (h *AssessmentHandler) handleError(c *fiber.Ctx, err error) error {
	var draftErr *service.DraftValidationError
	var attempted *service.AlreadyAttemptedError
	switch {
	case errors.Is(err, service.ErrAssessmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assessment not found")
	case errors.Is(err, service.ErrAssessmentLocked):
		return utils.SendError(c, fiber.StatusConflict, "assessment has submissions and can no longer be edited")
	case errors.As(err, &attempted):
		return utils.SendErrorWithData(c, fiber.StatusConflict, "assessment already attempted",
			fiber.Map{"submission_id": attempted.SubmissionID})
	case errors.As(err, &draftErr):
		return utils.SendError(c, fiber.StatusBadRequest, draftErr.Error())
	default:
		return handleCommonError(c, requestLogger(h.logger, c), err)
	}
}

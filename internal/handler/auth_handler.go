package handler

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadex/acadex-api/internal/middleware"
	"github.com/acadex/acadex-api/internal/service"
	"github.com/acadex/acadex-api/internal/utils"
)

// AuthHandler manages login, logout and current-user endpoints.
type AuthHandler struct {
	service      service.AuthService
	validator    *validator.Validate
	logger       zerolog.Logger
	secureCookie bool
	sessionTTL   time.Duration
}

// NewAuthHandler builds an auth handler instance.
func NewAuthHandler(service service.AuthService, validate *validator.Validate, secureCookie bool, sessionTTL time.Duration, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:      service,
		validator:    validate,
		logger:       logger.With().Str("component", "auth_handler").Logger(),
		secureCookie: secureCookie,
		sessionTTL:   sessionTTL,
	}
}

// Register attaches the public auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/google/start", h.start)
	router.Post("/google/callback", h.callback)
}

// RegisterProtected attaches the session-guarded auth routes.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Get("/me", h.currentUser)
	router.Post("/logout", h.logout)
	router.Delete("/me", h.deleteAccount)
}

type startLoginRequest struct {
	Role string `json:"role" validate:"required,oneof=teacher student"`
}

type callbackRequest struct {
	State   string `json:"state" validate:"required"`
	IDToken string `json:"id_token" validate:"required"`
}

func (h *AuthHandler) start(c *fiber.Ctx) error {
	var payload startLoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "role selection is required")
	}

	state, err := h.service.BeginLogin(c.Context(), payload.Role)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "login started", fiber.Map{"state": state})
}

func (h *AuthHandler) callback(c *fiber.Ctx) error {
	var payload callbackRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "state and id_token are required")
	}

	user, token, err := h.service.CompleteLogin(c.Context(), payload.State, payload.IDToken)
	if err != nil {
		return h.handleError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: "Lax",
		Path:     "/",
		Expires:  time.Now().Add(h.sessionTTL),
	})

	return utils.SendSuccess(c, "logged in", user)
}

func (h *AuthHandler) currentUser(c *fiber.Ctx) error {
	user, err := h.service.CurrentUser(c.Context(), middleware.PrincipalFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "current user", user)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if err := h.service.Logout(c.Context(), middleware.SessionTokenFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	h.clearSessionCookie(c)

	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) deleteAccount(c *fiber.Ctx) error {
	err := h.service.DeleteAccount(c.Context(), middleware.PrincipalFromContext(c), middleware.SessionTokenFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	h.clearSessionCookie(c)

	return utils.SendSuccess(c, "account deleted", nil)
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: "Lax",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
	})
}

func (h *AuthHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrRoleNotSelected):
		return utils.SendError(c, fiber.StatusBadRequest, "role selection is required")
	case errors.Is(err, service.ErrInvalidIDToken):
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid identity token")
	case errors.Is(err, service.ErrRoleMismatch):
		return utils.SendError(c, fiber.StatusConflict, "account already registered with a different role")
	case errors.Is(err, service.ErrEmailTaken):
		return utils.SendError(c, fiber.StatusConflict, "email already registered")
	default:
		return handleCommonError(c, requestLogger(h.logger, c), err)
	}
}

package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadex/acadex-api/internal/middleware"
	"github.com/acadex/acadex-api/internal/policy"
	"github.com/acadex/acadex-api/internal/utils"
)

// errMalformedID distinguishes an unparseable identifier (400) from an
// identifier that parses but matches nothing (404).
var errMalformedID = errors.New("malformed identifier")

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := c.Params(key)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errMalformedID
	}
	return uint(parsed), nil
}

// handleCommonError maps the error kinds shared by every handler: the
// authentication/authorization split, validation failures and the catch-all
// 500. Handler-specific kinds are mapped before falling through to this.
func handleCommonError(c *fiber.Ctx, logger *zerolog.Logger, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, policy.ErrUnauthenticated):
		return utils.SendError(c, fiber.StatusUnauthorized, "not logged in")
	case errors.Is(err, policy.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "forbidden")
	case errors.Is(err, errMalformedID):
		return utils.SendError(c, fiber.StatusBadRequest, "malformed identifier")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

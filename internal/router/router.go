package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/acadex/acadex-api/internal/config"
	"github.com/acadex/acadex-api/internal/handler"
	"github.com/acadex/acadex-api/internal/middleware"
	"github.com/acadex/acadex-api/internal/models"
	"github.com/acadex/acadex-api/internal/observability"
	"github.com/acadex/acadex-api/internal/session"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	AssessmentHandler *handler.AssessmentHandler
	SubmissionHandler *handler.SubmissionHandler
	Sessions          session.Store
	DB                *gorm.DB
	Redis             *redis.Client
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB, deps.Redis))
	api.Get("/metrics", observability.MetricsHandler())

	protected := middleware.SessionProtected(deps.Sessions)

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		deps.AuthHandler.Register(auth.Group("", middleware.RateLimit("auth", 20, time.Minute)))
		deps.AuthHandler.RegisterProtected(auth.Group("", protected))
	}

	if deps.AssessmentHandler != nil {
		// Authoring authorization lives in the service layer so retrieval
		// can stay open to both roles with a role-shaped view.
		assessments := api.Group("/assessments", protected)
		deps.AssessmentHandler.Register(assessments)

		if deps.SubmissionHandler != nil {
			deps.SubmissionHandler.RegisterSubmit(assessments,
				middleware.RequireRole(models.RoleStudent),
				middleware.RateLimit("submit", 10, time.Minute))
		}
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", protected, middleware.RequireRole(models.RoleStudent))
		deps.SubmissionHandler.Register(submissions)
	}
}

package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/artem13815/recruitment/api/http/handlers"
	"github.com/artem13815/recruitment/api/http/presenter"
	"github.com/artem13815/recruitment/pkg/application"
	"github.com/artem13815/recruitment/pkg/auth"
	"github.com/artem13815/recruitment/pkg/config"
	"github.com/artem13815/recruitment/pkg/health"
	"github.com/artem13815/recruitment/pkg/job"
	"github.com/artem13815/recruitment/pkg/resume"
	"github.com/artem13815/recruitment/pkg/security/jwt"
	"github.com/artem13815/recruitment/pkg/storage/files"
)

// Deps are the adapters the HTTP layer runs on.
type Deps struct {
	Users    auth.UserRepository
	Jobs     job.Repository
	Apps     application.Repository
	Store    files.Storage
	Checkers []health.Checker
}

// NewApp wires use cases and handlers and returns a ready Fiber app.
func NewApp(cfg config.Config, d Deps) *fiber.App {
	policy := files.Policy{MaxBytes: cfg.Resume.MaxBytes, Extensions: cfg.Resume.Extensions}

	app := fiber.New(fiber.Config{
		AppName: "recruitment-api",
		// larger than one resume so an oversize file reaches the handler
		// and gets a validation error instead of a bare 413
		BodyLimit:    int(2*policy.MaxBytes) + 1<<20,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: errorHandler(policy.MaxBytes),
	})
	app.Use(recover.New())
	if cfg.Env != "test" {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Range",
		ExposeHeaders: "Content-Disposition, Content-Range, Accept-Ranges, Content-Length",
	}))

	tokens := jwt.NewGenerator(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.JWTTTLMinutes)*time.Minute)

	authUC := auth.NewAuthService(d.Users, tokens)
	jobUC := job.NewService(d.Jobs)
	appUC := application.NewService(d.Apps, d.Jobs, d.Store, policy)
	resumeUC := resume.NewService(d.Apps, d.Jobs, d.Store, cfg.Resume.HRAnyJob)

	authMW := jwt.NewAuthMiddleware(tokens, d.Users)
	resumeMW := jwt.NewAuthMiddleware(tokens, d.Users, jwt.WithQueryToken("token"), jwt.WithScope(jwt.ScopeResume))

	Register(app, Handlers{
		Auth:        handlers.NewAuthHandler(authUC),
		Health:      handlers.NewHealthHandler(health.NewService(d.Checkers...)),
		Job:         handlers.NewJobHandler(jobUC),
		Application: handlers.NewApplicationHandler(appUC, policy.MaxBytes),
		Resume:      handlers.NewResumeHandler(resumeUC, tokens, time.Duration(cfg.TicketTTLSeconds)*time.Second),
	}, authMW, resumeMW)
	return app
}

// errorHandler renders errors that escape handlers, including those raised by
// fasthttp before routing, in the same {message, code} shape.
func errorHandler(maxBytes int64) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			return presenter.Fail(c, err)
		}
		switch fe.Code {
		case fiber.StatusRequestEntityTooLarge:
			// only the upload route takes large bodies
			return presenter.ErrorCode(c, fiber.StatusBadRequest, "VALIDATION_ERROR",
				fmt.Sprintf("file too large: limit is %d bytes", maxBytes))
		case fiber.StatusNotFound:
			return presenter.ErrorCode(c, fe.Code, "NOT_FOUND", fe.Message)
		case fiber.StatusMethodNotAllowed:
			return presenter.ErrorCode(c, fe.Code, "METHOD_NOT_ALLOWED", fe.Message)
		}
		return presenter.Error(c, fe.Code, fe.Message)
	}
}

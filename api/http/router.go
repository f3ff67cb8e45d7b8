package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/recruitment/api/http/handlers"
	"github.com/artem13815/recruitment/pkg/auth"
	"github.com/artem13815/recruitment/pkg/security/jwt"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Health      *handlers.HealthHandler
	Job         *handlers.JobHandler
	Application *handlers.ApplicationHandler
	Resume      *handlers.ResumeHandler
}

// Register wires all HTTP routes onto given Fiber app.
// authMW guards regular routes; resumeMW additionally accepts ?token= and
// resume tickets and is used only for the resume delivery routes.
func Register(app *fiber.App, h Handlers, authMW, resumeMW fiber.Handler) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", h.Health.Health)
	v1.Get("/ready", h.Health.Ready)

	a := v1.Group("/auth")
	a.Post("/register", h.Auth.Register)
	a.Post("/login", h.Auth.Login)
	a.Get("/me", authMW, h.Auth.Me)

	admin := v1.Group("/admin", authMW, jwt.RequireRole(auth.RoleAdmin))
	admin.Get("/hrs", h.Auth.ListHRs)
	admin.Patch("/hrs/:id/approve", h.Auth.ApproveHR)

	jobs := v1.Group("/jobs")
	jobs.Get("/", h.Job.ListOpen)
	jobs.Get("/my", authMW, jwt.RequireRole(auth.RoleHR), h.Job.ListMine)
	jobs.Get("/all", authMW, jwt.RequireRole(auth.RoleAdmin), h.Job.ListAll)
	jobs.Post("/", authMW, jwt.RequireRole(auth.RoleHR), h.Job.Create)
	jobs.Patch("/:id/close", authMW, jwt.RequireRole(auth.RoleHR, auth.RoleAdmin), h.Job.Close)
	jobs.Get("/:id", h.Job.GetByID)

	apps := v1.Group("/application", authMW)
	apps.Post("/apply/:jobId", jwt.RequireRole(auth.RoleCandidate), h.Application.Apply)
	apps.Get("/my", jwt.RequireRole(auth.RoleCandidate), h.Application.ListMine)
	apps.Get("/job/:jobId", jwt.RequireRole(auth.RoleHR), h.Application.ListForJob)
	apps.Patch("/:id/status", jwt.RequireRole(auth.RoleHR), h.Application.UpdateStatus)

	rg := v1.Group("/resume")
	rg.Post("/ticket/:applicationId", authMW, h.Resume.Ticket)
	rg.Get("/view/:applicationId", resumeMW, h.Resume.View)
	rg.Get("/download/:applicationId", resumeMW, h.Resume.Download)
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/recruitment/api/http/presenter"
	"github.com/artem13815/recruitment/pkg/auth"
	"github.com/artem13815/recruitment/pkg/security/jwt"
)

type AuthHandler struct {
	useCase auth.AuthUseCase
}

func NewAuthHandler(useCase auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{useCase: useCase}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	// candidate (default) or hr
	Role string `json:"role"`
}

// Register handles user registration.
// HR accounts are created unapproved and receive no token.
// @Summary Register user
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body registerRequest true "registration payload"
// @Success 201 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, "email and password are required")
	}

	result, err := h.useCase.Register(c.UserContext(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     auth.Role(strings.ToLower(strings.TrimSpace(req.Role))),
	})
	if err != nil {
		return presenter.Fail(c, err)
	}

	resp := fiber.Map{"user": result.User}
	if result.Token != "" {
		resp["token"] = result.Token
	} else {
		resp["message"] = "registered; waiting for admin approval"
	}
	return presenter.JSON(c, http.StatusCreated, resp)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles user login.
// @Summary Login
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse "HR account awaiting approval"
// @Router  /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, "email and password are required")
	}

	result, err := h.useCase.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return presenter.Fail(c, err)
	}

	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"user":  result.User,
		"token": result.Token,
	})
}

// Me returns the authenticated user.
// @Summary Current user
// @Tags    auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.User
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := jwt.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	return presenter.JSON(c, http.StatusOK, user)
}

// ListHRs lists HR accounts with their approval state.
// @Summary List HR accounts
// @Tags    admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} auth.User
// @Failure 403 {object} presenter.ErrorResponse
// @Router  /admin/hrs [get]
func (h *AuthHandler) ListHRs(c *fiber.Ctx) error {
	users, err := h.useCase.ListHRs(c.UserContext())
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, users)
}

type approveRequest struct {
	Approved *bool `json:"approved"`
}

// ApproveHR approves or revokes an HR account.
// @Summary Approve HR account
// @Tags    admin
// @Accept  json
// @Produce json
// @Param   id path string true "HR user id (UUID)"
// @Param   input body approveRequest false "approved flag, defaults to true"
// @Security BearerAuth
// @Success 200 {object} auth.User
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /admin/hrs/{id}/approve [patch]
func (h *AuthHandler) ApproveHR(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidParam(c, "id")
	}
	approved := true
	var req approveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
		}
		if req.Approved != nil {
			approved = *req.Approved
		}
	}
	user, err := h.useCase.ApproveHR(c.UserContext(), id, approved)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, user)
}

package jwt

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/recruitment/pkg/auth"
)

// Locals keys set by the middleware.
const (
	LocalUser     = "user"
	LocalTicketID = "ticketApplicationId"
)

type options struct {
	queryParam string
	scopes     map[string]bool
}

type Option func(*options)

// WithQueryToken also reads the token from the named query parameter when the
// Authorization header is absent. Embedded viewers cannot set headers.
func WithQueryToken(name string) Option {
	return func(o *options) { o.queryParam = name }
}

// WithScope lets scoped tickets through in addition to session tokens.
func WithScope(scope string) Option {
	return func(o *options) { o.scopes[scope] = true }
}

// NewAuthMiddleware returns a Fiber middleware that validates Bearer JWT (HS256)
// and loads the current user, so role and approval changes apply immediately.
// On success sets auth.User into c.Locals("user").
func NewAuthMiddleware(tokens *Generator, users auth.UserRepository, opts ...Option) fiber.Handler {
	o := options{scopes: map[string]bool{}}
	for _, opt := range opts {
		opt(&o)
	}
	return func(c *fiber.Ctx) error {
		tokenStr := bearerToken(c.Get(fiber.HeaderAuthorization))
		if tokenStr == "" && o.queryParam != "" {
			tokenStr = strings.TrimSpace(c.Query(o.queryParam))
		}
		if tokenStr == "" {
			return deny(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing token")
		}
		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			return deny(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
		}
		var ticketID uuid.UUID
		if claims.Scope != "" {
			if !o.scopes[claims.Scope] {
				return deny(c, http.StatusUnauthorized, "UNAUTHORIZED", "token is not valid for this route")
			}
			if ticketID, err = uuid.Parse(claims.ApplicationID); err != nil || ticketID == uuid.Nil {
				return deny(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token claims")
			}
		}
		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return deny(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token claims")
		}
		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, auth.ErrNotFound) {
				return deny(c, http.StatusUnauthorized, "UNAUTHORIZED", "user no longer exists")
			}
			return deny(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
		if !user.Active() {
			return deny(c, http.StatusForbidden, "PENDING_APPROVAL", auth.ErrPendingApproval.Error())
		}

		c.Locals(LocalUser, user)
		if ticketID != uuid.Nil {
			c.Locals(LocalTicketID, ticketID)
		}
		return c.Next()
	}
}

// RequireRole lets through only users with one of roles. It must run after NewAuthMiddleware.
func RequireRole(roles ...auth.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(LocalUser).(auth.User)
		if !ok {
			return deny(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing token")
		}
		for _, r := range roles {
			if user.Role == r {
				return c.Next()
			}
		}
		return deny(c, http.StatusForbidden, "FORBIDDEN", "access denied")
	}
}

// CurrentUser returns the user stored by NewAuthMiddleware.
func CurrentUser(c *fiber.Ctx) (auth.User, bool) {
	user, ok := c.Locals(LocalUser).(auth.User)
	return user, ok
}

// TicketApplicationID is uuid.Nil unless the request was authorized by a ticket.
func TicketApplicationID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(LocalTicketID).(uuid.UUID)
	return id
}

// bearerToken supports both "Bearer <token>" and "<token>" (no prefix).
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if scheme, rest, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(rest)
	}
	return header
}

func deny(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg, "code": code})
}

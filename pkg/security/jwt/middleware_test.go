package jwt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/recruitment/pkg/auth"
)

type usersStub map[uuid.UUID]auth.User

func (s usersStub) Create(context.Context, auth.User) error { return nil }
func (s usersStub) GetByEmail(context.Context, string) (auth.User, error) {
	return auth.User{}, auth.ErrNotFound
}
func (s usersStub) GetByID(_ context.Context, id uuid.UUID) (auth.User, error) {
	u, ok := s[id]
	if !ok {
		return auth.User{}, auth.ErrNotFound
	}
	return u, nil
}
func (s usersStub) ListByRole(context.Context, auth.Role) ([]auth.User, error) { return nil, nil }
func (s usersStub) SetApproved(context.Context, uuid.UUID, bool) error         { return nil }

func newTestApp(g *Generator, users auth.UserRepository, opts ...Option) *fiber.App {
	app := fiber.New()
	app.Get("/r/:id", NewAuthMiddleware(g, users, opts...), func(c *fiber.Ctx) error {
		u, _ := CurrentUser(c)
		return c.JSON(fiber.Map{"id": u.ID, "ticket": TicketApplicationID(c)})
	})
	return app
}

func status(t *testing.T, app *fiber.App, target, header string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestMiddleware(t *testing.T) {
	g := NewGenerator("secret", "iss", time.Hour)
	candidate := auth.User{ID: uuid.New(), Role: auth.RoleCandidate, Approved: true}
	pending := auth.User{ID: uuid.New(), Role: auth.RoleHR}
	users := usersStub{candidate.ID: candidate, pending.ID: pending}

	token, err := g.Generate(context.Background(), candidate)
	require.NoError(t, err)
	pendingToken, err := g.Generate(context.Background(), pending)
	require.NoError(t, err)
	ghostToken, err := g.Generate(context.Background(), auth.User{ID: uuid.New(), Role: auth.RoleCandidate})
	require.NoError(t, err)
	appID := uuid.New()
	ticket, _, err := g.GenerateTicket(candidate, appID, time.Minute)
	require.NoError(t, err)

	plain := newTestApp(g, users)
	withQuery := newTestApp(g, users, WithQueryToken("token"), WithScope(ScopeResume))

	assert.Equal(t, http.StatusOK, status(t, plain, "/r/1", "Bearer "+token))
	assert.Equal(t, http.StatusOK, status(t, plain, "/r/1", token))
	assert.Equal(t, http.StatusUnauthorized, status(t, plain, "/r/1", ""))
	assert.Equal(t, http.StatusUnauthorized, status(t, plain, "/r/1?token="+token, ""), "query token only where enabled")
	assert.Equal(t, http.StatusUnauthorized, status(t, plain, "/r/1", "Bearer "+ticket), "tickets only where enabled")
	assert.Equal(t, http.StatusUnauthorized, status(t, plain, "/r/1", "Bearer "+ghostToken))
	assert.Equal(t, http.StatusForbidden, status(t, plain, "/r/1", "Bearer "+pendingToken))

	assert.Equal(t, http.StatusOK, status(t, withQuery, "/r/1?token="+token, ""))
	assert.Equal(t, http.StatusOK, status(t, withQuery, "/r/1?token="+ticket, ""))
	assert.Equal(t, http.StatusUnauthorized, status(t, withQuery, "/r/1?token=garbage", ""))
	assert.Equal(t, http.StatusUnauthorized, status(t, withQuery, "/r/1?token=", ""))
}

func TestRequireRole(t *testing.T) {
	g := NewGenerator("secret", "iss", time.Hour)
	hr := auth.User{ID: uuid.New(), Role: auth.RoleHR, Approved: true}
	candidate := auth.User{ID: uuid.New(), Role: auth.RoleCandidate, Approved: true}
	users := usersStub{hr.ID: hr, candidate.ID: candidate}

	app := fiber.New()
	app.Get("/hr", NewAuthMiddleware(g, users), RequireRole(auth.RoleHR), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	hrToken, err := g.Generate(context.Background(), hr)
	require.NoError(t, err)
	candToken, err := g.Generate(context.Background(), candidate)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, status(t, app, "/hr", "Bearer "+hrToken))
	assert.Equal(t, http.StatusForbidden, status(t, app, "/hr", "Bearer "+candToken))
}

func TestMiddlewareExposesUserAndTicket(t *testing.T) {
	g := NewGenerator("secret", "iss", time.Hour)
	candidate := auth.User{ID: uuid.New(), Role: auth.RoleCandidate, Approved: true}
	app := newTestApp(g, usersStub{candidate.ID: candidate}, WithQueryToken("token"), WithScope(ScopeResume))
	appID := uuid.New()
	ticket, _, err := g.GenerateTicket(candidate, appID, time.Minute)
	require.NoError(t, err)
	token, err := g.Generate(context.Background(), candidate)
	require.NoError(t, err)

	tests := []struct {
		name       string
		token      string
		wantTicket uuid.UUID
	}{
		{name: "session", token: token, wantTicket: uuid.Nil},
		{name: "ticket", token: ticket, wantTicket: appID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/r/1?token="+tt.token, nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var body struct {
				ID     uuid.UUID `json:"id"`
				Ticket uuid.UUID `json:"ticket"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, candidate.ID, body.ID)
			assert.Equal(t, tt.wantTicket, body.Ticket)
		})
	}
}

package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/artem13815/recruitment/pkg/auth"
)

// ScopeResume marks a ticket that opens one application's resume and nothing else.
const ScopeResume = "resume"

var ErrInvalidToken = errors.New("invalid or expired token")

type Generator struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewGenerator(secret, issuer string, ttl time.Duration) *Generator {
	return &Generator{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Claims включает стандартные поля, роль и (для тикетов) область действия.
type Claims struct {
	jwt.RegisteredClaims
	Role          auth.Role `json:"role"`
	Scope         string    `json:"scope,omitempty"`
	ApplicationID string    `json:"application_id,omitempty"`
}

func (g *Generator) Generate(ctx context.Context, user auth.User) (string, error) {
	return g.sign(user, g.ttl, "", "")
}

// GenerateTicket issues a short-lived token that is accepted only by the
// resume routes and only for applicationID.
func (g *Generator) GenerateTicket(user auth.User, applicationID uuid.UUID, ttl time.Duration) (string, time.Time, error) {
	exp := g.now().UTC().Add(ttl).Truncate(time.Second)
	token, err := g.sign(user, ttl, ScopeResume, applicationID.String())
	return token, exp, err
}

func (g *Generator) sign(user auth.User, ttl time.Duration, scope, applicationID string) (string, error) {
	now := g.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:          user.Role,
		Scope:         scope,
		ApplicationID: applicationID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// Parse validates signature, expiry and issuer. Header and query tokens both
// go through here so they are held to the same rules.
func (g *Generator) Parse(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	}
	if g.issuer != "" {
		opts = append(opts, jwt.WithIssuer(g.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return g.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

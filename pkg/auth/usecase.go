package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthUseCase describes authentication/registration behavior.
type AuthUseCase interface {
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	// ApproveHR approves or disapproves an HR account (admin action).
	ApproveHR(ctx context.Context, hrID uuid.UUID, approved bool) (User, error)
	ListHRs(ctx context.Context) ([]User, error)
	// EnsureAdmin creates the bootstrap admin account unless the email is taken.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     Role
}

type AuthResult struct {
	User  User
	Token string
}

type authService struct {
	repo   UserRepository
	tokens TokenGenerator
}

// NewAuthService returns default implementation of AuthUseCase.
func NewAuthService(repo UserRepository, tokens TokenGenerator) AuthUseCase {
	return &authService{repo: repo, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || in.Password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}
	if in.Role == "" {
		in.Role = RoleCandidate
	}
	// admins are bootstrapped from configuration only
	if !in.Role.Valid() || in.Role == RoleAdmin {
		return AuthResult{}, ErrInvalidRole
	}

	// If user exists, fail fast (best-effort check)
	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return AuthResult{}, ErrUserAlreadyExists
	}

	user, err := newUser(in)
	if err != nil {
		return AuthResult{}, err
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}
	// HR accounts get no token until an admin approves them
	if !user.Active() {
		return AuthResult{User: user}, nil
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	if !user.Active() {
		return AuthResult{}, ErrPendingApproval
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) ApproveHR(ctx context.Context, hrID uuid.UUID, approved bool) (User, error) {
	user, err := s.repo.GetByID(ctx, hrID)
	if err != nil {
		return User{}, err
	}
	if user.Role != RoleHR {
		return User{}, ErrNotHR
	}
	if err := s.repo.SetApproved(ctx, hrID, approved); err != nil {
		return User{}, err
	}
	user.Approved = approved
	return user, nil
}

func (s *authService) ListHRs(ctx context.Context) ([]User, error) {
	return s.repo.ListByRole(ctx, RoleHR)
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return ErrInvalidCredentials
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	user, err := newUser(RegisterInput{Username: "admin", Email: email, Password: password, Role: RoleAdmin})
	if err != nil {
		return err
	}
	if err := s.repo.Create(ctx, user); err != nil && !errors.Is(err, ErrUserAlreadyExists) {
		return err
	}
	return nil
}

func newUser(in RegisterInput) (User, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		username, _, _ = strings.Cut(in.Email, "@")
	}
	return User{
		ID:           uuid.New(),
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(passwordHash),
		Role:         in.Role,
		Approved:     in.Role != RoleHR,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

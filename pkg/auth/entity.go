package auth

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCandidate Role = "candidate"
	RoleHR        Role = "hr"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCandidate, RoleHR, RoleAdmin:
		return true
	}
	return false
}

// User is a domain entity representing a system user.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	// Approved is only meaningful for HR accounts; candidates and admins are always approved.
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"createdAt"`
}

// Active reports whether the account may act in its role right now.
func (u User) Active() bool {
	return u.Role != RoleHR || u.Approved
}

package auth

import (
	"time"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/auth"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity"
)

type userResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	BusinessID string    `json:"business_id,omitempty"`
	Role       auth.Role `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	Active     bool      `json:"active"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(u *auth.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		BusinessID: u.BusinessID,
		Role:       u.Role,
		CreatedAt:  u.CreatedAt,
		Active:     u.Active,
	}
}

func toSessionResponse(u *auth.User, s *identity.Session) sessionResponse {
	return sessionResponse{
		Token: s.Token,
		User:  toUserResponse(u),
	}
}

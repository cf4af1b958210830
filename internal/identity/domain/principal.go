package domain

import (
	"time"

	"github.com/gocommerce/commerce-backend/internal/apperror"
)

// Principal is the acting identity resolved for a request. The zero value is
// anonymous. Core services take it as an explicit parameter; nothing reads it
// out of ambient state.
type Principal struct {
	ID    string
	Email string
	Staff bool
}

func (p Principal) Anonymous() bool { return p.ID == "" }

// RequireUser rejects anonymous callers.
func RequireUser(p Principal) error {
	if p.Anonymous() {
		return apperror.ErrNotAuthenticated
	}
	return nil
}

// RequireStaff rejects anonymous and non-staff callers.
func RequireStaff(p Principal) error {
	if p.Anonymous() {
		return apperror.ErrNotAuthenticated
	}
	if !p.Staff {
		return apperror.ErrNotAuthorized
	}
	return nil
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Staff        bool
	CreatedAt    time.Time
}

func (u User) Principal() Principal {
	return Principal{ID: u.ID, Email: u.Email, Staff: u.Staff}
}

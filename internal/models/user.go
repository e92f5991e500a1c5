package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	OTPHash      string     `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`
	OTPAttempts  int        `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// HasPendingOTP reports whether a code was issued and not yet consumed
func (u *User) HasPendingOTP() bool {
	return u.OTPHash != "" && u.OTPExpiresAt != nil
}

// OTPExpired reports whether the pending code is past its expiry at now
func (u *User) OTPExpired(now time.Time) bool {
	return u.OTPExpiresAt == nil || u.OTPExpiresAt.Before(now)
}

package models

import (
	"time"
)

// LoginOTP is the one-time code stored in Redis while a login is pending.
type LoginOTP struct {
	Phone     string    `json:"phone"`
	OTP       string    `json:"otp"`
	ExpiresAt time.Time `json:"expiresAt"`
	Attempts  int       `json:"attempts"`
}

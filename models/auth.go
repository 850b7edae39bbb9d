// models/auth.go

package models

// RequestOTPRequest asks for a login OTP to be sent to a phone number.
type RequestOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// LoginRequest is the OTP-based login for marketplace roles.
type LoginRequest struct {
	Role       string `json:"role" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	OTP        string `json:"otp" validate:"required"`
	RememberMe bool   `json:"rememberMe,omitempty"`
}

// AdminLoginRequest is the password login for admin accounts.
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// SessionTokenRequest retrieves or removes remembered credentials.
type SessionTokenRequest struct {
	Role  string `json:"role" validate:"required"`
	Token string `json:"token" validate:"required"`
}

// ReviewRequest is the admin decision on a pending registration.
type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason,omitempty"`
}

// TokenPair is returned on every successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

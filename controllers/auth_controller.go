// controllers/auth_controller.go

package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/medisetu/medisetu_backend/middleware"
	"github.com/medisetu/medisetu_backend/models"
	"github.com/medisetu/medisetu_backend/repositories"
	"github.com/medisetu/medisetu_backend/services"
	"github.com/medisetu/medisetu_backend/utils"
	"github.com/medisetu/medisetu_backend/wizard"
)

const (
	loginOTPPrefix = "login_otp:"
	loginOTPTTL    = 10 * time.Minute
	maxOTPChecks   = 5

	maxAdminAttempts   = 5
	adminLockoutWindow = 15 * time.Minute
)

type adminAttempt struct {
	count     int
	lastTried time.Time
}

// AuthController handles OTP login for marketplace roles, password login for
// admins, and token/session lifecycle.
type AuthController struct {
	Users    repositories.UserRepository
	Admins   repositories.AdminRepository
	Sessions utils.SessionStore
	SMS      *services.SMSService
	Redis    *redis.Client
	logger   *log.Logger

	adminAttempts   map[string]*adminAttempt
	adminAttemptsMu sync.Mutex
}

func NewAuthController(users repositories.UserRepository, admins repositories.AdminRepository, sessions utils.SessionStore, sms *services.SMSService, redisClient *redis.Client) *AuthController {
	ac := &AuthController{
		Users:         users,
		Admins:        admins,
		Sessions:      sessions,
		SMS:           sms,
		Redis:         redisClient,
		logger:        log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
		adminAttempts: make(map[string]*adminAttempt),
	}
	go ac.cleanupAdminAttempts()
	return ac
}

func (ac *AuthController) cleanupAdminAttempts() {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		ac.adminAttemptsMu.Lock()
		for email, attempt := range ac.adminAttempts {
			if time.Since(attempt.lastTried) > adminLockoutWindow {
				delete(ac.adminAttempts, email)
			}
		}
		ac.adminAttemptsMu.Unlock()
	}
}

// RequestOTP sends a login code to a registered phone number.
// POST /api/auth/request-otp
func (ac *AuthController) RequestOTP(c echo.Context) error {
	var req models.RequestOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request format",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Phone number is required",
		})
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	ctx := c.Request().Context()
	if _, err := ac.Users.FindByPhone(ctx, phone); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "No account found with this phone number",
			})
		}
		ac.logger.Printf("Failed to look up phone %s: %v", phone, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process request",
		})
	}

	if err := utils.ValidateOTPAttempts(phone, ac.Redis); err != nil {
		return c.JSON(http.StatusTooManyRequests, models.Response{
			Status:  http.StatusTooManyRequests,
			Message: "Too many OTP requests. Please try again later.",
		})
	}

	otp, err := utils.GenerateNumericOTP(6)
	if err != nil {
		ac.logger.Printf("Failed to generate OTP: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate verification code",
		})
	}

	record := models.LoginOTP{
		Phone:     phone,
		OTP:       otp,
		ExpiresAt: time.Now().Add(loginOTPTTL),
	}
	payload, _ := json.Marshal(record)
	if err := ac.Redis.Set(ctx, loginOTPPrefix+phone, payload, loginOTPTTL).Err(); err != nil {
		ac.logger.Printf("Failed to store OTP for %s: %v", phone, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process request",
		})
	}

	if ac.SMS != nil && ac.SMS.Configured() {
		if err := ac.SMS.SendOTP(phone, otp); err != nil {
			ac.logger.Printf("Failed to send OTP SMS to %s: %v", phone, err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to send verification code",
			})
		}
	} else if os.Getenv("ENV") == "development" {
		ac.logger.Printf("Development mode: OTP for %s is %s", phone, otp)
	} else {
		ac.logger.Printf("SMS gateway not configured, cannot deliver OTP to %s", phone)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to send verification code",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Verification code sent",
		Data:    map[string]interface{}{"expiresInSeconds": int(loginOTPTTL.Seconds())},
	})
}

// Login verifies the OTP and issues tokens for the requested role.
// POST /api/auth/login
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request format",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Role, phone and OTP are required",
		})
	}

	role, err := wizard.ParseRole(req.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	ctx := c.Request().Context()
	key := loginOTPPrefix + phone
	stored, err := ac.Redis.Get(ctx, key).Result()
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Verification code expired or not requested",
		})
	}

	var record models.LoginOTP
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		ac.Redis.Del(ctx, key)
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Verification code expired or not requested",
		})
	}

	if record.OTP != req.OTP {
		record.Attempts++
		if record.Attempts >= maxOTPChecks {
			ac.Redis.Del(ctx, key)
		} else if payload, err := json.Marshal(record); err == nil {
			ac.Redis.Set(ctx, key, payload, time.Until(record.ExpiresAt))
		}
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid verification code",
		})
	}

	ac.Redis.Del(ctx, key)
	utils.ClearOTPAttempts(phone, ac.Redis)

	user, err := ac.Users.FindByPhoneAndRole(ctx, phone, string(role))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "No account with this phone number for the selected role",
			})
		}
		ac.logger.Printf("Failed to look up user: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process login",
		})
	}

	switch user.Status {
	case models.StatusPending:
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Your registration is still under review",
		})
	case models.StatusRejected:
		msg := "Your registration was not approved"
		if user.RejectionReason != "" {
			msg += ": " + user.RejectionReason
		}
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: msg,
		})
	}

	accessToken, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Phone, user.Role)
	if err != nil {
		ac.logger.Printf("Failed to generate tokens: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process login",
		})
	}

	scope := utils.ScopeSession
	if req.RememberMe {
		scope = utils.ScopeDurable
	}
	sessionToken, err := ac.Sessions.Save(ctx, scope, utils.SessionCredentials{
		Phone:      user.Phone,
		Role:       user.Role,
		UserID:     user.ID.Hex(),
		DeviceInfo: c.Request().UserAgent(),
	})
	if err != nil {
		ac.logger.Printf("Failed to save session: %v", err)
	}

	user.Password = ""
	ac.logger.Printf("Login successful: role=%s id=%s", user.Role, user.ID.Hex())
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"tokens": models.TokenPair{
				AccessToken:  accessToken,
				RefreshToken: refreshToken,
			},
			"sessionToken": sessionToken,
			"user":         user,
		},
	})
}

// AdminLogin authenticates a back-office account with email and password.
// POST /api/admin/login
func (ac *AuthController) AdminLogin(c echo.Context) error {
	var req models.AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request format",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email and password are required",
		})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	ac.adminAttemptsMu.Lock()
	attempt := ac.adminAttempts[email]
	if attempt != nil && attempt.count >= maxAdminAttempts && time.Since(attempt.lastTried) < adminLockoutWindow {
		ac.adminAttemptsMu.Unlock()
		return c.JSON(http.StatusTooManyRequests, models.Response{
			Status:  http.StatusTooManyRequests,
			Message: "Too many failed login attempts. Please try again later.",
		})
	}
	ac.adminAttemptsMu.Unlock()

	fail := func() error {
		ac.adminAttemptsMu.Lock()
		if ac.adminAttempts[email] == nil {
			ac.adminAttempts[email] = &adminAttempt{}
		}
		ac.adminAttempts[email].count++
		ac.adminAttempts[email].lastTried = time.Now()
		ac.adminAttemptsMu.Unlock()
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	admin, err := ac.Admins.FindByEmail(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminNotFound) {
			return fail()
		}
		ac.logger.Printf("Failed to look up admin: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process login",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		return fail()
	}

	ac.adminAttemptsMu.Lock()
	delete(ac.adminAttempts, email)
	ac.adminAttemptsMu.Unlock()

	accessToken, refreshToken, err := middleware.GenerateJWT(admin.ID.Hex(), admin.Email, "admin")
	if err != nil {
		ac.logger.Printf("Failed to generate admin tokens: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process login",
		})
	}

	ac.logger.Printf("Admin login successful: %s", email)
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"tokens": models.TokenPair{
				AccessToken:  accessToken,
				RefreshToken: refreshToken,
			},
			"admin": admin,
		},
	})
}

// RefreshToken exchanges a valid refresh token for a new token pair.
// POST /api/auth/refresh-token
func (ac *AuthController) RefreshToken(c echo.Context) error {
	var req models.RefreshTokenRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Refresh token is required",
		})
	}

	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil || middleware.IsTokenBlacklisted(req.RefreshToken) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired refresh token",
		})
	}

	accessToken, refreshToken, err := middleware.GenerateJWT(claims.UserID, claims.Phone, claims.Role)
	if err != nil {
		ac.logger.Printf("Failed to refresh tokens: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to refresh tokens",
		})
	}

	middleware.BlacklistToken(req.RefreshToken, time.Unix(claims.ExpiresAt, 0))

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Tokens refreshed",
		Data: models.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	})
}

// ValidateToken reports whether the bearer token is still usable.
// POST /api/auth/validate-token
func (ac *AuthController) ValidateToken(c echo.Context) error {
	token := extractBearerToken(c)
	if token == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Authorization token is required",
		})
	}

	claims, err := middleware.ParseToken(token)
	if err != nil || middleware.IsTokenBlacklisted(token) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Token is valid",
		Data: map[string]interface{}{
			"userId":    claims.UserID,
			"role":      claims.Role,
			"expiresAt": claims.ExpiresAt,
		},
	})
}

// Logout blacklists the presented token and clears the caller's sessions.
// Always responds with success so clients can discard local state.
// POST /api/auth/logout
func (ac *AuthController) Logout(c echo.Context) error {
	token := extractBearerToken(c)
	if token != "" {
		if claims, err := middleware.ParseToken(token); err == nil {
			middleware.BlacklistToken(token, time.Unix(claims.ExpiresAt, 0))
			if err := ac.Sessions.Clear(c.Request().Context(), claims.Role); err != nil {
				ac.logger.Printf("Failed to clear sessions for role %s: %v", claims.Role, err)
			}
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logout successful",
	})
}

// GetRememberedCredentials recovers saved login details from a session token.
// POST /api/auth/remember-me/get
func (ac *AuthController) GetRememberedCredentials(c echo.Context) error {
	var req models.SessionTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request format",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Role and token are required",
		})
	}

	ctx := c.Request().Context()
	creds, err := ac.Sessions.Get(ctx, req.Role, utils.ScopeDurable, req.Token)
	if err != nil {
		creds, err = ac.Sessions.Get(ctx, req.Role, utils.ScopeSession, req.Token)
	}
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No remembered credentials found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Remembered credentials retrieved",
		Data: map[string]string{
			"phone": creds.Phone,
			"role":  creds.Role,
		},
	})
}

// RemoveRememberedCredentials deletes a saved session token.
// POST /api/auth/remember-me/remove
func (ac *AuthController) RemoveRememberedCredentials(c echo.Context) error {
	var req models.SessionTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request format",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Role and token are required",
		})
	}

	ctx := c.Request().Context()
	if err := ac.Sessions.Remove(ctx, req.Role, utils.ScopeDurable, req.Token); err != nil {
		ac.logger.Printf("Failed to remove durable session: %v", err)
	}
	if err := ac.Sessions.Remove(ctx, req.Role, utils.ScopeSession, req.Token); err != nil {
		ac.logger.Printf("Failed to remove session: %v", err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Remembered credentials removed",
	})
}

func extractBearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// routes/auth_routes.go

package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/medisetu/medisetu_backend/controllers"
)

// RegisterAuthRoutes wires OTP login and token/session endpoints.
func RegisterAuthRoutes(e *echo.Echo, ac *controllers.AuthController) {
	auth := e.Group("/api/auth")

	auth.POST("/request-otp", ac.RequestOTP)
	auth.POST("/login", ac.Login)
	auth.POST("/refresh-token", ac.RefreshToken)
	auth.POST("/validate-token", ac.ValidateToken)
	auth.POST("/logout", ac.Logout)
	auth.POST("/remember-me/get", ac.GetRememberedCredentials)
	auth.POST("/remember-me/remove", ac.RemoveRememberedCredentials)
}

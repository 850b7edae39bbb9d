// routes/admin_routes.go

package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/medisetu/medisetu_backend/controllers"
	"github.com/medisetu/medisetu_backend/middleware"
)

// RegisterAdminRoutes wires admin login and the registration review backlog.
func RegisterAdminRoutes(e *echo.Echo, authController *controllers.AuthController, adminController *controllers.AdminController) {
	e.POST("/api/admin/login", authController.AdminLogin)

	admin := e.Group("/api/admin", middleware.JWTMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/registrations", adminController.ListRegistrations)
	admin.GET("/registrations/:id", adminController.GetRegistration)
	admin.PUT("/registrations/:id/review", adminController.ReviewRegistration)
	admin.GET("/ws", adminController.AdminSocket)
}

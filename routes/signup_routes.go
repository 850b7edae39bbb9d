// routes/signup_routes.go

package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/medisetu/medisetu_backend/controllers"
)

// RegisterSignupRoutes wires the multi-step registration wizard endpoints.
// All of them are public; the draft session header scopes the state.
func RegisterSignupRoutes(e *echo.Echo, wc *controllers.WizardController) {
	signup := e.Group("/api/signup/:role")

	signup.POST("/draft", wc.CreateDraft)
	signup.GET("/draft", wc.GetDraft)
	signup.PATCH("/draft/field", wc.UpdateField)
	signup.POST("/draft/advance", wc.Advance)
	signup.POST("/draft/retreat", wc.Retreat)
	signup.POST("/draft/documents", wc.AttachDocument)
	signup.DELETE("/draft/documents/:id", wc.DetachDocument)
	signup.POST("/draft/submit", wc.Submit)
}

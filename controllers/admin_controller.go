// controllers/admin_controller.go

package controllers

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/medisetu/medisetu_backend/models"
	"github.com/medisetu/medisetu_backend/repositories"
	"github.com/medisetu/medisetu_backend/services"
	"github.com/medisetu/medisetu_backend/websocket"
	"github.com/medisetu/medisetu_backend/wizard"
)

// AdminController serves the registration review backlog.
type AdminController struct {
	Users  repositories.UserRepository
	Hub    *websocket.Hub
	Mailer *services.EmailService
	logger *log.Logger
}

func NewAdminController(users repositories.UserRepository, hub *websocket.Hub, mailer *services.EmailService) *AdminController {
	return &AdminController{
		Users:  users,
		Hub:    hub,
		Mailer: mailer,
		logger: log.New(os.Stdout, "[ADMIN] ", log.LstdFlags),
	}
}

// ListRegistrations returns registrations filtered by status and role.
// GET /api/admin/registrations?status=&role=
func (ac *AdminController) ListRegistrations(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		status = models.StatusPending
	}
	switch status {
	case models.StatusPending, models.StatusApproved, models.StatusRejected:
	default:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid status filter",
		})
	}

	role := c.QueryParam("role")
	if role != "" {
		if _, err := wizard.ParseRole(role); err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		}
	}

	users, err := ac.Users.List(c.Request().Context(), status, role)
	if err != nil {
		ac.logger.Printf("Failed to list registrations: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to list registrations",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Registrations retrieved",
		Data: map[string]interface{}{
			"registrations": users,
			"count":         len(users),
		},
	})
}

// GetRegistration returns a single registration with full details.
// GET /api/admin/registrations/:id
func (ac *AdminController) GetRegistration(c echo.Context) error {
	user, err := ac.Users.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Registration not found",
			})
		}
		ac.logger.Printf("Failed to load registration: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load registration",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Registration retrieved",
		Data:    user,
	})
}

// ReviewRegistration approves or rejects a pending registration.
// PUT /api/admin/registrations/:id/review
func (ac *AdminController) ReviewRegistration(c echo.Context) error {
	var req models.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request format",
		})
	}
	if !req.Approve && req.Reason == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "A reason is required when rejecting a registration",
		})
	}

	status := models.StatusApproved
	reason := ""
	if !req.Approve {
		status = models.StatusRejected
		reason = req.Reason
	}

	user, err := ac.Users.UpdateStatus(c.Request().Context(), c.Param("id"), status, reason)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Registration not found",
			})
		}
		ac.logger.Printf("Failed to review registration: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update registration",
		})
	}

	if ac.Hub != nil {
		ac.Hub.NotifyRegistrationReviewed(user.ID.Hex(), user.Status)
	}
	if ac.Mailer != nil && ac.Mailer.Configured() && user.Email != "" {
		go func(email, name string, approved bool, reason string) {
			if err := ac.Mailer.SendReviewResult(email, name, approved, reason); err != nil {
				ac.logger.Printf("Failed to send review email to %s: %v", email, err)
			}
		}(user.Email, user.FullName, req.Approve, reason)
	}

	ac.logger.Printf("Registration %s marked %s", user.ID.Hex(), user.Status)
	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Registration " + user.Status,
		Data:    user,
	})
}

// AdminSocket upgrades the connection for live registration notifications.
// GET /api/admin/ws
func (ac *AdminController) AdminSocket(c echo.Context) error {
	return websocket.HandleAdminSocket(c, ac.Hub)
}

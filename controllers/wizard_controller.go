// controllers/wizard_controller.go

package controllers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medisetu/medisetu_backend/models"
	"github.com/medisetu/medisetu_backend/repositories"
	"github.com/medisetu/medisetu_backend/security"
	"github.com/medisetu/medisetu_backend/services"
	"github.com/medisetu/medisetu_backend/utils"
	"github.com/medisetu/medisetu_backend/websocket"
	"github.com/medisetu/medisetu_backend/wizard"
)

// SessionHeader carries the anonymous draft session between wizard requests.
const SessionHeader = "X-Signup-Session"

// WizardController drives the multi-step registration flow. A draft lives in
// the store under (session, role) until it is submitted or expires.
type WizardController struct {
	Drafts repositories.DraftStore
	Users  repositories.UserRepository
	Hub    *websocket.Hub
	Mailer *services.EmailService
	logger *log.Logger

	submitting   map[string]bool
	submittingMu sync.Mutex
}

func NewWizardController(drafts repositories.DraftStore, users repositories.UserRepository, hub *websocket.Hub, mailer *services.EmailService) *WizardController {
	return &WizardController{
		Drafts:     drafts,
		Users:      users,
		Hub:        hub,
		Mailer:     mailer,
		logger:     log.New(os.Stdout, "[WIZARD] ", log.LstdFlags),
		submitting: make(map[string]bool),
	}
}

// roleAndSchema resolves the :role path parameter.
func roleAndSchema(c echo.Context) (wizard.Role, *wizard.Schema, error) {
	role, err := wizard.ParseRole(c.Param("role"))
	if err != nil {
		return "", nil, err
	}
	return role, wizard.SchemaFor(role), nil
}

// sessionID returns the draft session from the request header, or a fresh one.
func sessionID(c echo.Context) (string, bool) {
	if session := strings.TrimSpace(c.Request().Header.Get(SessionHeader)); session != "" {
		return session, false
	}
	return uuid.New().String(), true
}

// loadDraft fetches the draft for the request's session and role.
func (wc *WizardController) loadDraft(c echo.Context) (*wizard.Draft, *wizard.Schema, error) {
	role, schema, err := roleAndSchema(c)
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	session, fresh := sessionID(c)
	if fresh {
		return nil, nil, echo.NewHTTPError(http.StatusNotFound, "no signup draft for this session")
	}
	draft, err := wc.Drafts.Get(c.Request().Context(), session, role)
	if err != nil {
		if errors.Is(err, repositories.ErrDraftNotFound) {
			return nil, nil, echo.NewHTTPError(http.StatusNotFound, "no signup draft for this session")
		}
		wc.logger.Printf("Failed to load draft: %v", err)
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to load signup draft")
	}
	return draft, schema, nil
}

func draftView(d *wizard.Draft, s *wizard.Schema) map[string]interface{} {
	return map[string]interface{}{
		"session":   d.Session,
		"role":      d.Role,
		"step":      d.Step,
		"summary":   s.StepSummary(d),
		"fields":    d.Fields,
		"documents": d.Attachments(s),
	}
}

// CreateDraft starts (or resumes) a signup draft for a role.
// POST /api/signup/:role/draft
func (wc *WizardController) CreateDraft(c echo.Context) error {
	role, schema, err := roleAndSchema(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	ctx := c.Request().Context()
	session, fresh := sessionID(c)

	var draft *wizard.Draft
	if !fresh {
		draft, err = wc.Drafts.Get(ctx, session, role)
		if err != nil && !errors.Is(err, repositories.ErrDraftNotFound) {
			wc.logger.Printf("Failed to load draft: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to load signup draft",
			})
		}
	}
	if draft == nil {
		draft = wizard.NewDraft(session, role)
		if err := wc.Drafts.Save(ctx, draft); err != nil {
			wc.logger.Printf("Failed to save draft: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to create signup draft",
			})
		}
	}

	c.Response().Header().Set(SessionHeader, session)
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Signup draft ready",
		Data:    draftView(draft, schema),
	})
}

// GetDraft returns the current draft state.
// GET /api/signup/:role/draft
func (wc *WizardController) GetDraft(c echo.Context) error {
	draft, schema, err := wc.loadDraft(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Signup draft retrieved",
		Data:    draftView(draft, schema),
	})
}

// UpdateField applies one field mutation to the draft.
// PATCH /api/signup/:role/draft/field
func (wc *WizardController) UpdateField(c echo.Context) error {
	draft, schema, err := wc.loadDraft(c)
	if err != nil {
		return err
	}

	var m wizard.Mutation
	if err := c.Bind(&m); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request format",
		})
	}
	if strings.TrimSpace(m.Field) == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Field is required",
		})
	}

	draft.Apply(schema, m)
	if err := wc.Drafts.Save(c.Request().Context(), draft); err != nil {
		wc.logger.Printf("Failed to save draft: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save signup draft",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Field updated",
		Data: map[string]interface{}{
			"field": m.Field,
			"value": draft.Get(m.Field),
		},
	})
}

// Advance validates the current step and moves to the next one.
// POST /api/signup/:role/draft/advance
func (wc *WizardController) Advance(c echo.Context) error {
	draft, schema, err := wc.loadDraft(c)
	if err != nil {
		return err
	}

	if err := schema.Advance(draft); err != nil {
		var verr *wizard.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: verr.Message,
				Data:    map[string]string{"field": verr.Field},
			})
		}
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	if err := wc.Drafts.Save(c.Request().Context(), draft); err != nil {
		wc.logger.Printf("Failed to save draft: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save signup draft",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Step advanced",
		Data:    schema.StepSummary(draft),
	})
}

// Retreat moves back one step without validation.
// POST /api/signup/:role/draft/retreat
func (wc *WizardController) Retreat(c echo.Context) error {
	draft, schema, err := wc.loadDraft(c)
	if err != nil {
		return err
	}

	schema.Retreat(draft)
	if err := wc.Drafts.Save(c.Request().Context(), draft); err != nil {
		wc.logger.Printf("Failed to save draft: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save signup draft",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Step moved back",
		Data:    schema.StepSummary(draft),
	})
}

// AttachDocument uploads a document into the draft.
// POST /api/signup/:role/draft/documents
func (wc *WizardController) AttachDocument(c echo.Context) error {
	if !security.ValidateContentType(c.Request().Header.Get(echo.HeaderContentType), "multipart/form-data") {
		return c.JSON(http.StatusUnsupportedMediaType, models.Response{
			Status:  http.StatusUnsupportedMediaType,
			Message: "Expected multipart/form-data",
		})
	}

	draft, schema, err := wc.loadDraft(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "No file provided",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Failed to read uploaded file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Failed to read uploaded file",
		})
	}

	slot := c.FormValue("slot")
	att, err := schema.Attach(draft, slot, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	if err := wc.Drafts.Save(c.Request().Context(), draft); err != nil {
		wc.logger.Printf("Failed to save draft: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save signup draft",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Document attached",
		Data:    att,
	})
}

// DetachDocument removes a document (by id or slot name) from the draft.
// DELETE /api/signup/:role/draft/documents/:id
func (wc *WizardController) DetachDocument(c echo.Context) error {
	draft, schema, err := wc.loadDraft(c)
	if err != nil {
		return err
	}

	if !draft.Detach(c.Param("id")) {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Document not found",
		})
	}

	if err := wc.Drafts.Save(c.Request().Context(), draft); err != nil {
		wc.logger.Printf("Failed to save draft: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save signup draft",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Document removed",
		Data:    draft.Attachments(schema),
	})
}

// Submit finalizes the draft into a pending registration.
// POST /api/signup/:role/draft/submit
func (wc *WizardController) Submit(c echo.Context) error {
	draft, schema, err := wc.loadDraft(c)
	if err != nil {
		return err
	}

	guard := draft.Session + ":" + string(draft.Role)
	wc.submittingMu.Lock()
	if wc.submitting[guard] {
		wc.submittingMu.Unlock()
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Submission already in progress",
		})
	}
	wc.submitting[guard] = true
	wc.submittingMu.Unlock()
	defer func() {
		wc.submittingMu.Lock()
		delete(wc.submitting, guard)
		wc.submittingMu.Unlock()
	}()

	user, err := schema.BuildRegistration(draft)
	if err != nil {
		var verr *wizard.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: verr.Message,
				Data:    map[string]string{"field": verr.Field},
			})
		}
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	ctx := c.Request().Context()
	exists, err := wc.Users.ExistsForRole(ctx, user.Role, user.Email, user.Phone)
	if err != nil {
		wc.logger.Printf("Failed to check existing registrations: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process registration",
		})
	}
	if exists {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "An account with this email or phone already exists for this role",
		})
	}

	// Persist uploads to disk before the user record references them.
	for _, att := range draft.Attachments(schema) {
		path, err := utils.SaveDocument(att.Data, att.Name, "certificates")
		if err != nil {
			wc.logger.Printf("Failed to store document %s: %v", att.Name, err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to store uploaded documents",
			})
		}
		user.Documents = append(user.Documents, models.Document{
			ID:   att.ID,
			Slot: att.Slot,
			Name: att.Name,
			Type: att.Type,
			Size: att.Size,
			Path: path,
		})
	}

	if err := wc.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserExists) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "An account with this email or phone already exists for this role",
			})
		}
		wc.logger.Printf("Failed to create registration: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create registration",
		})
	}

	if err := wc.Drafts.Delete(ctx, draft.Session, draft.Role); err != nil {
		wc.logger.Printf("Failed to delete submitted draft: %v", err)
	}

	if wc.Hub != nil {
		wc.Hub.NotifyRegistrationSubmitted(user.ID.Hex(), user.Role, user.FullName)
	}
	if wc.Mailer != nil && wc.Mailer.Configured() {
		go func(email, name, role string) {
			if err := wc.Mailer.SendRegistrationReceived(email, name, role); err != nil {
				wc.logger.Printf("Failed to send registration email to %s: %v", email, err)
			}
		}(user.Email, user.FullName, user.Role)
	}

	wc.logger.Printf("Registration submitted: role=%s id=%s", user.Role, user.ID.Hex())
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Registration submitted for review",
		Data: map[string]string{
			"registrationId": user.ID.Hex(),
			"redirectTo":     "/login?role=" + string(draft.Role),
		},
	})
}

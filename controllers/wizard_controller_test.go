package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medisetu/medisetu_backend/models"
	"github.com/medisetu/medisetu_backend/repositories"
	"github.com/medisetu/medisetu_backend/wizard"
)

type stubUserRepository struct {
	created []*models.User
	exists  bool
}

func (s *stubUserRepository) Create(ctx context.Context, user *models.User) error {
	s.created = append(s.created, user)
	return nil
}

func (s *stubUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (s *stubUserRepository) FindByPhoneAndRole(ctx context.Context, phone, role string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (s *stubUserRepository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (s *stubUserRepository) FindByEmailAndRole(ctx context.Context, email, role string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (s *stubUserRepository) ExistsForRole(ctx context.Context, role, email, phone string) (bool, error) {
	return s.exists, nil
}

func (s *stubUserRepository) UpdateStatus(ctx context.Context, id, status, reason string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (s *stubUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	return nil
}

func (s *stubUserRepository) List(ctx context.Context, status, role string) ([]models.User, error) {
	return nil, nil
}

func newTestWizard() (*WizardController, *repositories.MemoryDraftStore, *stubUserRepository) {
	drafts := repositories.NewMemoryDraftStore()
	users := &stubUserRepository{}
	return NewWizardController(drafts, users, nil, nil), drafts, users
}

func doRequest(wc *WizardController, handler func(echo.Context) error, method, path, session string, body string, paramNames []string, paramValues []string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames(paramNames...)
	c.SetParamValues(paramValues...)
	return rec, handler(c)
}

func seedDraft(t *testing.T, drafts *repositories.MemoryDraftStore, session string, role wizard.Role) *wizard.Draft {
	t.Helper()
	d := wizard.NewDraft(session, role)
	if err := drafts.Save(context.Background(), d); err != nil {
		t.Fatalf("seed draft failed: %v", err)
	}
	return d
}

func TestCreateDraftIssuesSession(t *testing.T) {
	wc, _, _ := newTestWizard()

	rec, err := doRequest(wc, wc.CreateDraft, http.MethodPost, "/api/signup/doctor/draft", "", "", []string{"role"}, []string{"doctor"})
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get(SessionHeader) == "" {
		t.Error("response should carry a session header")
	}
}

func TestCreateDraftRejectsUnknownRole(t *testing.T) {
	wc, _, _ := newTestWizard()

	rec, err := doRequest(wc, wc.CreateDraft, http.MethodPost, "/api/signup/dentist/draft", "", "", []string{"role"}, []string{"dentist"})
	if err != nil {
		t.Fatalf("CreateDraft returned transport error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateFieldNormalizes(t *testing.T) {
	wc, drafts, _ := newTestWizard()
	seedDraft(t, drafts, "sess-1", wizard.RoleDoctor)

	body := `{"field":"phone","value":"98-76 543a210"}`
	rec, err := doRequest(wc, wc.UpdateField, http.MethodPatch, "/api/signup/doctor/draft/field", "sess-1", body, []string{"role"}, []string{"doctor"})
	if err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp models.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	data := resp.Data.(map[string]interface{})
	if data["value"] != "9876543210" {
		t.Errorf("normalized value = %v, want 9876543210", data["value"])
	}

	stored, err := drafts.Get(context.Background(), "sess-1", wizard.RoleDoctor)
	if err != nil {
		t.Fatalf("stored draft missing: %v", err)
	}
	if got := stored.GetString("phone"); got != "9876543210" {
		t.Errorf("stored phone = %q, want normalized", got)
	}
}

func TestAdvanceReportsValidationError(t *testing.T) {
	wc, drafts, _ := newTestWizard()
	seedDraft(t, drafts, "sess-1", wizard.RolePharmacy)

	rec, err := doRequest(wc, wc.Advance, http.MethodPost, "/api/signup/pharmacy/draft/advance", "sess-1", "", []string{"role"}, []string{"pharmacy"})
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "required") {
		t.Errorf("body = %s, want a required-field message", rec.Body.String())
	}

	stored, _ := drafts.Get(context.Background(), "sess-1", wizard.RolePharmacy)
	if stored.Step != 1 {
		t.Errorf("step = %d after blocked advance, want 1", stored.Step)
	}
}

func TestDraftMissingSession(t *testing.T) {
	wc, _, _ := newTestWizard()

	_, err := doRequest(wc, wc.GetDraft, http.MethodGet, "/api/signup/doctor/draft", "", "", []string{"role"}, []string{"doctor"})
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("error = %v, want 404", err)
	}
}

func TestAttachDocumentMultipart(t *testing.T) {
	wc, drafts, _ := newTestWizard()
	seedDraft(t, drafts, "sess-1", wizard.RoleNurse)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "cert.pdf")
	fw.Write([]byte("pdf content"))
	mw.WriteField("slot", wizard.SlotNursingCertificate)
	mw.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/signup/nurse/draft/documents", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.Header.Set(SessionHeader, "sess-1")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("role")
	c.SetParamValues("nurse")

	if err := wc.AttachDocument(c); err != nil {
		t.Fatalf("AttachDocument failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	stored, _ := drafts.Get(context.Background(), "sess-1", wizard.RoleNurse)
	if stored.Documents.Slots[wizard.SlotNursingCertificate] == nil {
		t.Error("nursing certificate slot should be filled")
	}
}

func TestAttachDocumentRejectsJSON(t *testing.T) {
	wc, drafts, _ := newTestWizard()
	seedDraft(t, drafts, "sess-1", wizard.RoleNurse)

	rec, err := doRequest(wc, wc.AttachDocument, http.MethodPost, "/api/signup/nurse/draft/documents", "sess-1", `{"file":"x"}`, []string{"role"}, []string{"nurse"})
	if err != nil {
		t.Fatalf("AttachDocument failed: %v", err)
	}
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}

func TestSubmitPharmacy(t *testing.T) {
	wc, drafts, users := newTestWizard()
	d := seedDraft(t, drafts, "sess-1", wizard.RolePharmacy)

	s := wizard.SchemaFor(wizard.RolePharmacy)
	checked := true
	d.Apply(s, wizard.Mutation{Field: "pharmacyName", Value: "City Pharmacy"})
	d.Apply(s, wizard.Mutation{Field: "email", Value: "shop@example.com"})
	d.Apply(s, wizard.Mutation{Field: "phone", Value: "9876543210"})
	d.Apply(s, wizard.Mutation{Field: "licenseNumber", Value: "PH-555"})
	d.Apply(s, wizard.Mutation{Field: "termsAccepted", Checked: &checked})
	drafts.Save(context.Background(), d)

	rec, err := doRequest(wc, wc.Submit, http.MethodPost, "/api/signup/pharmacy/draft/submit", "sess-1", "", []string{"role"}, []string{"pharmacy"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if len(users.created) != 1 {
		t.Fatalf("created users = %d, want 1", len(users.created))
	}
	if users.created[0].Status != models.StatusPending {
		t.Errorf("status = %q, want pending", users.created[0].Status)
	}
	if !strings.Contains(rec.Body.String(), "/login?role=pharmacy") {
		t.Errorf("body = %s, want a login redirect hint", rec.Body.String())
	}

	// The draft is gone after a successful submission.
	if _, err := drafts.Get(context.Background(), "sess-1", wizard.RolePharmacy); err != repositories.ErrDraftNotFound {
		t.Errorf("draft lookup after submit = %v, want not found", err)
	}
}

func TestSubmitBlockedWithoutTerms(t *testing.T) {
	wc, drafts, users := newTestWizard()
	d := seedDraft(t, drafts, "sess-1", wizard.RolePharmacy)

	s := wizard.SchemaFor(wizard.RolePharmacy)
	d.Apply(s, wizard.Mutation{Field: "pharmacyName", Value: "City Pharmacy"})
	d.Apply(s, wizard.Mutation{Field: "email", Value: "shop@example.com"})
	d.Apply(s, wizard.Mutation{Field: "phone", Value: "9876543210"})
	d.Apply(s, wizard.Mutation{Field: "licenseNumber", Value: "PH-555"})
	drafts.Save(context.Background(), d)

	rec, err := doRequest(wc, wc.Submit, http.MethodPost, "/api/signup/pharmacy/draft/submit", "sess-1", "", []string{"role"}, []string{"pharmacy"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(users.created) != 0 {
		t.Error("no user should be created when terms are not accepted")
	}
	// The draft survives a failed submission.
	if _, err := drafts.Get(context.Background(), "sess-1", wizard.RolePharmacy); err != nil {
		t.Errorf("draft should survive: %v", err)
	}
}

func TestSubmitDuplicateRegistration(t *testing.T) {
	wc, drafts, users := newTestWizard()
	users.exists = true
	d := seedDraft(t, drafts, "sess-1", wizard.RolePatient)

	s := wizard.SchemaFor(wizard.RolePatient)
	checked := true
	d.Apply(s, wizard.Mutation{Field: "firstName", Value: "Rahul"})
	d.Apply(s, wizard.Mutation{Field: "email", Value: "rahul@example.com"})
	d.Apply(s, wizard.Mutation{Field: "phone", Value: "9876543210"})
	d.Apply(s, wizard.Mutation{Field: "termsAccepted", Checked: &checked})
	drafts.Save(context.Background(), d)

	rec, err := doRequest(wc, wc.Submit, http.MethodPost, "/api/signup/patient/draft/submit", "sess-1", "", []string{"role"}, []string{"patient"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if len(users.created) != 0 {
		t.Error("no user should be created for a duplicate registration")
	}
}

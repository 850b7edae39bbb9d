package wizard

import (
	"errors"
	"strings"
	"testing"
)

func fillStep1(d *Draft, s *Schema, name, nameField string) {
	d.Apply(s, Mutation{Field: nameField, Value: name})
	d.Apply(s, Mutation{Field: "email", Value: "test@example.com"})
	d.Apply(s, Mutation{Field: "phone", Value: "9876543210"})
}

func TestAdvanceWithMinimalIdentity(t *testing.T) {
	d := NewDraft("s1", RoleDoctor)
	s := SchemaFor(RoleDoctor)

	// A two-character name and a short but well-formed email pass step 1:
	// format rules are deferred to submission for this role.
	d.Apply(s, Mutation{Field: "firstName", Value: "Jo"})
	d.Apply(s, Mutation{Field: "email", Value: "a@b.co"})
	d.Apply(s, Mutation{Field: "phone", Value: "9876543210"})

	if err := s.Advance(d); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if d.Step != 2 {
		t.Errorf("step = %d, want 2", d.Step)
	}
}

func TestAdvanceBlockedOnMissingRequired(t *testing.T) {
	d := NewDraft("s1", RoleDoctor)
	s := SchemaFor(RoleDoctor)

	d.Apply(s, Mutation{Field: "firstName", Value: "Asha"})
	// email and phone missing

	err := s.Advance(d)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if verr.Field != "email" {
		t.Errorf("failing field = %q, want %q", verr.Field, "email")
	}
	if d.Step != 1 {
		t.Errorf("step = %d after blocked advance, want 1", d.Step)
	}
}

func TestAdvanceCapsAtTotalSteps(t *testing.T) {
	d := NewDraft("s1", RolePharmacy)
	s := SchemaFor(RolePharmacy)
	fillStep1(d, s, "City Pharmacy", "pharmacyName")

	for i := 0; i < 5; i++ {
		if err := s.Advance(d); err != nil {
			t.Fatalf("Advance %d failed: %v", i, err)
		}
	}
	if d.Step != s.TotalSteps {
		t.Errorf("step = %d, want %d", d.Step, s.TotalSteps)
	}
}

func TestRetreat(t *testing.T) {
	d := NewDraft("s1", RoleNurse)
	s := SchemaFor(RoleNurse)

	s.Retreat(d)
	if d.Step != 1 {
		t.Errorf("retreat at first step moved to %d, want 1", d.Step)
	}

	d.Step = 3
	s.Retreat(d)
	if d.Step != 2 {
		t.Errorf("step = %d, want 2", d.Step)
	}
}

func TestNurseStep1ChecksFormats(t *testing.T) {
	d := NewDraft("s1", RoleNurse)
	s := SchemaFor(RoleNurse)

	d.Apply(s, Mutation{Field: "fullName", Value: "Priya Sharma"})
	d.Apply(s, Mutation{Field: "email", Value: "not-an-email"})
	d.Apply(s, Mutation{Field: "phone", Value: "9876543210"})

	err := s.Advance(d)
	if err == nil {
		t.Fatal("expected email format error")
	}
	if !strings.Contains(err.Error(), "email") {
		t.Errorf("error = %q, want an email format message", err.Error())
	}

	d.Apply(s, Mutation{Field: "email", Value: "priya@example.com"})
	if err := s.Advance(d); err != nil {
		t.Fatalf("Advance failed after fixing email: %v", err)
	}
	if d.Step != 2 {
		t.Errorf("step = %d, want 2", d.Step)
	}
}

func TestNurseStep2RequiresAddress(t *testing.T) {
	d := NewDraft("s1", RoleNurse)
	s := SchemaFor(RoleNurse)
	fillStep1(d, s, "Priya Sharma", "fullName")
	if err := s.Advance(d); err != nil {
		t.Fatalf("step 1 advance failed: %v", err)
	}

	err := s.Advance(d)
	if err == nil {
		t.Fatal("expected address validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "address.line1" {
		t.Errorf("failing field = %v, want address.line1", err)
	}

	d.Apply(s, Mutation{Field: "address.line1", Value: "12 MG Road"})
	d.Apply(s, Mutation{Field: "address.city", Value: "Mumbai"})
	d.Apply(s, Mutation{Field: "address.state", Value: "Maharashtra"})
	d.Apply(s, Mutation{Field: "address.postalCode", Value: "400001"})
	if err := s.Advance(d); err != nil {
		t.Fatalf("step 2 advance failed: %v", err)
	}
	if d.Step != 3 {
		t.Errorf("step = %d, want 3", d.Step)
	}
}

func TestPatientSingleStep(t *testing.T) {
	d := NewDraft("s1", RolePatient)
	s := SchemaFor(RolePatient)

	if s.TotalSteps != 1 {
		t.Fatalf("patient total steps = %d, want 1", s.TotalSteps)
	}
	// Step 1 has no gated requirements; Advance just stays on the only step.
	if err := s.Advance(d); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if d.Step != 1 {
		t.Errorf("step = %d, want 1", d.Step)
	}
}

func TestValidateFinalTermsFirst(t *testing.T) {
	for _, role := range Roles {
		d := NewDraft("s1", role)
		s := SchemaFor(role)

		err := s.ValidateFinal(d)
		if err == nil {
			t.Fatalf("%s: expected terms error", role)
		}
		if !strings.Contains(err.Error(), "terms and conditions") {
			t.Errorf("%s: error = %q, want terms message", role, err.Error())
		}
	}
}

func TestCheckFormatNameBounds(t *testing.T) {
	if err := checkFormat("firstName", "J"); err == nil {
		t.Error("one-character name should fail")
	}
	if err := checkFormat("firstName", "Jo"); err != nil {
		t.Errorf("two-character name should pass, got %v", err)
	}
	if err := checkFormat("firstName", strings.Repeat("a", 101)); err == nil {
		t.Error("101-character name should fail")
	}
	if err := checkFormat("pharmacyName", "City Pharmacy"); err != nil {
		t.Errorf("pharmacy name should pass, got %v", err)
	}
}

func TestFieldLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"firstName", "first name"},
		{"address.postalCode", "postal code"},
		{"registrationCouncilName", "registration council name"},
		{"nursingCertificate", "nursing certificate"},
	}
	for _, tt := range tests {
		if got := fieldLabel(tt.path); got != tt.want {
			t.Errorf("fieldLabel(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

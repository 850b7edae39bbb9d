package wizard

import (
	"reflect"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestDigitsOnly(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"98-76 543a210", 10, "9876543210"},
		{"987654321099", 10, "9876543210"},
		{"12ab34", 10, "1234"},
		{"", 10, ""},
		{"400001xyz99", 6, "400001"},
	}
	for _, tt := range tests {
		if got := DigitsOnly(tt.input, tt.max); got != tt.want {
			t.Errorf("DigitsOnly(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
		}
	}
}

func TestDecimalString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"12.34.56abc", "12.3456"},
		{"500", "500"},
		{"rs 99.50", "99.50"},
		{".5", ".5"},
		{"", ""},
		{"1.2.3.4", "1.234"},
	}
	for _, tt := range tests {
		if got := DecimalString(tt.input); got != tt.want {
			t.Errorf("DecimalString(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestApplyNormalizesPhone(t *testing.T) {
	d := NewDraft("s1", RoleDoctor)
	s := SchemaFor(RoleDoctor)

	d.Apply(s, Mutation{Field: "phone", Value: "98-76 543a210 extra digits 555"})
	if got := d.GetString("phone"); got != "9876543210" {
		t.Errorf("phone = %q, want %q", got, "9876543210")
	}
}

func TestApplyNormalizesNursePostalCode(t *testing.T) {
	d := NewDraft("s1", RoleNurse)
	s := SchemaFor(RoleNurse)

	d.Apply(s, Mutation{Field: "address.postalCode", Value: "4000011234"})
	if got := d.GetString("address.postalCode"); got != "400001" {
		t.Errorf("postalCode = %q, want %q", got, "400001")
	}

	// The same field name on a non-nurse role is left untouched.
	dp := NewDraft("s2", RolePharmacy)
	sp := SchemaFor(RolePharmacy)
	dp.Apply(sp, Mutation{Field: "address.postalCode", Value: "4000011234"})
	if got := dp.GetString("address.postalCode"); got != "4000011234" {
		t.Errorf("pharmacy postalCode = %q, want %q", got, "4000011234")
	}
}

func TestApplyNormalizesMoneyFields(t *testing.T) {
	d := NewDraft("s1", RoleDoctor)
	s := SchemaFor(RoleDoctor)

	d.Apply(s, Mutation{Field: "consultationFee", Value: "12.34.56abc"})
	if got := d.GetString("consultationFee"); got != "12.3456" {
		t.Errorf("consultationFee = %q, want %q", got, "12.3456")
	}

	dn := NewDraft("s2", RoleNurse)
	sn := SchemaFor(RoleNurse)
	dn.Apply(sn, Mutation{Field: "fees", Value: "rs 450.00"})
	if got := dn.GetString("fees"); got != "450.00" {
		t.Errorf("fees = %q, want %q", got, "450.00")
	}
}

func TestApplyDottedPath(t *testing.T) {
	d := NewDraft("s1", RoleDoctor)
	s := SchemaFor(RoleDoctor)

	d.Apply(s, Mutation{Field: "education.0.degree", Value: "MBBS"})
	if got := d.GetString("education.0.degree"); got != "MBBS" {
		t.Errorf("education.0.degree = %q, want %q", got, "MBBS")
	}

	// Writing past the current length grows the rows.
	d.Apply(s, Mutation{Field: "education.2.institution", Value: "AIIMS Delhi"})
	if got := d.GetString("education.2.institution"); got != "AIIMS Delhi" {
		t.Errorf("education.2.institution = %q, want %q", got, "AIIMS Delhi")
	}
	rows, ok := d.Get("education").([]any)
	if !ok || len(rows) != 3 {
		t.Errorf("education rows = %d, want 3", len(rows))
	}
}

func TestApplyCheckbox(t *testing.T) {
	d := NewDraft("s1", RolePatient)
	s := SchemaFor(RolePatient)

	if d.TermsAccepted() {
		t.Fatal("new draft should not have terms accepted")
	}
	d.Apply(s, Mutation{Field: "termsAccepted", Checked: boolPtr(true)})
	if !d.TermsAccepted() {
		t.Error("terms should be accepted after checking")
	}
	d.Apply(s, Mutation{Field: "termsAccepted", Checked: boolPtr(false)})
	if d.TermsAccepted() {
		t.Error("terms should not be accepted after unchecking")
	}
}

func TestToggleMembershipSetSemantics(t *testing.T) {
	d := NewDraft("s1", RoleDoctor)
	s := SchemaFor(RoleDoctor)

	d.Apply(s, Mutation{Field: "consultationModes", Value: "video", Checked: boolPtr(true)})
	d.Apply(s, Mutation{Field: "consultationModes", Value: "inPerson", Checked: boolPtr(true)})
	// Checking an already-present value must not duplicate it.
	d.Apply(s, Mutation{Field: "consultationModes", Value: "video", Checked: boolPtr(true)})

	if got := d.GetStrings("consultationModes"); !reflect.DeepEqual(got, []string{"video", "inPerson"}) {
		t.Errorf("consultationModes = %v, want [video inPerson]", got)
	}

	d.Apply(s, Mutation{Field: "consultationModes", Value: "video", Checked: boolPtr(false)})
	if got := d.GetStrings("consultationModes"); !reflect.DeepEqual(got, []string{"inPerson"}) {
		t.Errorf("consultationModes after removal = %v, want [inPerson]", got)
	}

	// Unchecking a value that is not present is a no-op.
	d.Apply(s, Mutation{Field: "consultationModes", Value: "home", Checked: boolPtr(false)})
	if got := d.GetStrings("consultationModes"); !reflect.DeepEqual(got, []string{"inPerson"}) {
		t.Errorf("consultationModes after no-op removal = %v, want [inPerson]", got)
	}
}

func TestAppendTag(t *testing.T) {
	d := NewDraft("s1", RoleDoctor)
	s := SchemaFor(RoleDoctor)

	d.Apply(s, Mutation{Field: "languages", Value: "English", Action: ActionTag})
	d.Apply(s, Mutation{Field: "languages", Value: "  Hindi  ", Action: ActionTag})
	d.Apply(s, Mutation{Field: "languages", Value: "English", Action: ActionTag})
	d.Apply(s, Mutation{Field: "languages", Value: "   ", Action: ActionTag})

	if got := d.GetStrings("languages"); !reflect.DeepEqual(got, []string{"English", "Hindi"}) {
		t.Errorf("languages = %v, want [English Hindi]", got)
	}
}

func TestOperatingDaysAreSetField(t *testing.T) {
	d := NewDraft("s1", RoleLaboratory)
	s := SchemaFor(RoleLaboratory)

	// SetFields route through toggle semantics even without an explicit action.
	d.Apply(s, Mutation{Field: "operatingHours.days", Value: "monday", Checked: boolPtr(true)})
	d.Apply(s, Mutation{Field: "operatingHours.days", Value: "tuesday", Checked: boolPtr(true)})
	d.Apply(s, Mutation{Field: "operatingHours.days", Value: "monday", Checked: boolPtr(false)})

	if got := d.GetStrings("operatingHours.days"); !reflect.DeepEqual(got, []string{"tuesday"}) {
		t.Errorf("operatingHours.days = %v, want [tuesday]", got)
	}
}

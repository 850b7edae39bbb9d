package wizard

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ValidationError blocks a step transition or a submission. The message is
// meant to be shown to the user as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Name-like identity fields that carry the 2..100 character rule.
var nameFields = map[string]bool{
	"firstName":    true,
	"fullName":     true,
	"pharmacyName": true,
	"labName":      true,
}

// Advance validates the current step's required fields and moves forward.
// On a validation failure the step index is left unchanged.
func (s *Schema) Advance(d *Draft) error {
	if err := s.validateStep(d, d.Step); err != nil {
		return err
	}
	if d.Step < s.TotalSteps {
		d.Step++
	}
	return nil
}

// Retreat moves one step back, floored at 1. No validation is performed.
func (s *Schema) Retreat(d *Draft) {
	if d.Step > 1 {
		d.Step--
	}
}

func (s *Schema) validateStep(d *Draft, step int) error {
	for _, field := range s.StepRequired[step] {
		if strings.TrimSpace(d.GetString(field)) == "" {
			return &ValidationError{Field: field, Message: fieldLabel(field) + " is required"}
		}
	}
	for _, field := range s.StepFormats[step] {
		if err := checkFormat(field, d.GetString(field)); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFinal is the defensive superset check run at submission time:
// terms, every required field, format rules and the document policy.
func (s *Schema) ValidateFinal(d *Draft) error {
	if !d.TermsAccepted() {
		return &ValidationError{Field: "termsAccepted", Message: "you must accept the terms and conditions"}
	}
	for _, field := range s.FinalRequired {
		if strings.TrimSpace(d.GetString(field)) == "" {
			return &ValidationError{Field: field, Message: fieldLabel(field) + " is required"}
		}
	}
	for _, field := range s.FinalFormats {
		if err := checkFormat(field, d.GetString(field)); err != nil {
			return err
		}
	}
	if s.RequireEducation && !hasEducationRow(d) {
		return &ValidationError{Field: "education", Message: "at least one education entry is required"}
	}
	if s.Documents.SlotMode() {
		for _, slot := range s.Documents.Slots {
			if d.Documents.Slots[slot] == nil {
				return &ValidationError{Field: slot, Message: fieldLabel(slot) + " is required"}
			}
		}
	}
	return nil
}

func checkFormat(field, value string) error {
	name := lastSegment(field)
	switch {
	case name == "email":
		if !emailRegex.MatchString(strings.ToLower(strings.TrimSpace(value))) {
			return &ValidationError{Field: field, Message: "invalid email format"}
		}
	case strings.Contains(strings.ToLower(name), "phone"):
		if len(value) != 10 {
			return &ValidationError{Field: field, Message: "phone number must be exactly 10 digits"}
		}
	case name == "postalCode":
		if len(value) != 6 {
			return &ValidationError{Field: field, Message: "postal code must be exactly 6 digits"}
		}
	case nameFields[name]:
		n := utf8.RuneCountInString(strings.TrimSpace(value))
		if n < 2 || n > 100 {
			return &ValidationError{Field: field, Message: fieldLabel(field) + " must be between 2 and 100 characters"}
		}
	}
	return nil
}

func hasEducationRow(d *Draft) bool {
	rows, _ := d.Get("education").([]any)
	for _, raw := range rows {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		inst, _ := row["institution"].(string)
		degree, _ := row["degree"].(string)
		if strings.TrimSpace(inst) != "" && strings.TrimSpace(degree) != "" {
			return true
		}
	}
	return false
}

// fieldLabel turns "address.postalCode" into "postal code" for messages.
func fieldLabel(path string) string {
	name := lastSegment(path)
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// StepSummary describes the wizard position for API responses.
func (s *Schema) StepSummary(d *Draft) map[string]interface{} {
	return map[string]interface{}{
		"step":       d.Step,
		"totalSteps": s.TotalSteps,
		"final":      d.Step == s.TotalSteps,
	}
}

// Package wizard implements the multi-step signup workflow shared by all
// marketplace roles: one generic step controller, field mutator set and
// document store, parameterized by a per-role schema.
package wizard

import (
	"fmt"
)

type Role string

const (
	RoleDoctor     Role = "doctor"
	RolePharmacy   Role = "pharmacy"
	RoleLaboratory Role = "laboratory"
	RoleNurse      Role = "nurse"
	RolePatient    Role = "patient"
)

// Roles lists every role that has a signup wizard.
var Roles = []Role{RoleDoctor, RolePharmacy, RoleLaboratory, RoleNurse, RolePatient}

// ParseRole validates a role string from a request path.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role: %s", s)
}

// Nurse document slots
const (
	SlotNursingCertificate      = "nursingCertificate"
	SlotRegistrationCertificate = "registrationCertificate"
)

// DocumentPolicy constrains uploads for one role. Slots empty means the role
// keeps an ordered list of attachments instead of named single-file slots.
type DocumentPolicy struct {
	MaxSize     int64
	AllowedExts map[string]bool
	Slots       []string
}

func (p DocumentPolicy) SlotMode() bool { return len(p.Slots) > 0 }

func (p DocumentPolicy) ValidSlot(slot string) bool {
	for _, s := range p.Slots {
		if s == slot {
			return true
		}
	}
	return false
}

// Schema drives the wizard engine for one role.
type Schema struct {
	Role       Role
	TotalSteps int
	// StepRequired lists the draft field paths that must be non-empty before
	// Advance moves past the given step.
	StepRequired map[int][]string
	// StepFormats lists fields that must additionally pass their format rule
	// at the given step. Most roles defer format checks to submission.
	StepFormats map[int][]string
	// FinalRequired is the superset re-checked defensively at submit time.
	FinalRequired []string
	FinalFormats  []string
	// SetFields have set semantics over an ordered array: toggling adds when
	// checked and absent, removes when unchecked and present.
	SetFields map[string]bool
	// TagFields collect free-text tags (trimmed, deduplicated).
	TagFields map[string]bool
	// RequireEducation demands at least one filled education row at submit.
	RequireEducation bool
	Documents        DocumentPolicy
}

var listExts = map[string]bool{
	".pdf": true, ".jpg": true, ".jpeg": true, ".png": true, ".doc": true, ".docx": true,
}

var slotExts = map[string]bool{
	".pdf": true, ".jpeg": true, ".jpg": true, ".png": true,
}

var schemas = map[Role]*Schema{
	RoleDoctor: {
		Role:       RoleDoctor,
		TotalSteps: 3,
		StepRequired: map[int][]string{
			1: {"firstName", "email", "phone"},
		},
		FinalRequired: []string{"firstName", "email", "phone", "specialization", "gender", "licenseNumber"},
		FinalFormats:  []string{"firstName", "email", "phone"},
		SetFields:     map[string]bool{"consultationModes": true},
		TagFields:     map[string]bool{"languages": true},
		RequireEducation: true,
		Documents: DocumentPolicy{
			MaxSize:     10 * 1024 * 1024,
			AllowedExts: listExts,
		},
	},
	RolePharmacy: {
		Role:       RolePharmacy,
		TotalSteps: 3,
		StepRequired: map[int][]string{
			1: {"pharmacyName", "email", "phone"},
		},
		FinalRequired: []string{"pharmacyName", "email", "phone", "licenseNumber"},
		FinalFormats:  []string{"pharmacyName", "email", "phone"},
		Documents: DocumentPolicy{
			MaxSize:     10 * 1024 * 1024,
			AllowedExts: listExts,
		},
	},
	RoleLaboratory: {
		Role:       RoleLaboratory,
		TotalSteps: 3,
		StepRequired: map[int][]string{
			1: {"labName", "email", "phone"},
		},
		FinalRequired: []string{"labName", "email", "phone", "registrationNumber"},
		FinalFormats:  []string{"labName", "email", "phone"},
		SetFields:     map[string]bool{"operatingHours.days": true},
		Documents: DocumentPolicy{
			MaxSize:     10 * 1024 * 1024,
			AllowedExts: listExts,
		},
	},
	RoleNurse: {
		Role:       RoleNurse,
		TotalSteps: 4,
		StepRequired: map[int][]string{
			1: {"fullName", "email", "phone"},
			2: {"address.line1", "address.city", "address.state", "address.postalCode"},
			3: {"qualification", "registrationNumber", "registrationCouncilName"},
		},
		StepFormats: map[int][]string{
			1: {"email", "phone"},
		},
		FinalRequired: []string{
			"fullName", "email", "phone",
			"address.line1", "address.city", "address.state", "address.postalCode",
			"qualification", "registrationNumber", "registrationCouncilName",
		},
		FinalFormats: []string{"fullName", "email", "phone", "address.postalCode"},
		Documents: DocumentPolicy{
			MaxSize:     5 * 1024 * 1024,
			AllowedExts: slotExts,
			Slots:       []string{SlotNursingCertificate, SlotRegistrationCertificate},
		},
	},
	RolePatient: {
		Role:          RolePatient,
		TotalSteps:    1,
		FinalRequired: []string{"firstName", "email", "phone"},
		FinalFormats:  []string{"firstName", "email", "phone"},
		Documents: DocumentPolicy{
			MaxSize:     10 * 1024 * 1024,
			AllowedExts: listExts,
		},
	},
}

// SchemaFor returns the wizard schema for a role.
func SchemaFor(role Role) *Schema {
	return schemas[role]
}

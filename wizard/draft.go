package wizard

import (
	"strconv"
	"strings"
	"time"
)

// Draft is the in-memory signup record for one role and one session. It is
// created when the wizard starts, mutated only through Apply/Attach/Detach,
// and destroyed on successful submission.
type Draft struct {
	Session   string         `json:"session"`
	Role      Role           `json:"role"`
	Step      int            `json:"step"`
	Fields    map[string]any `json:"fields"`
	Documents DocumentSet    `json:"documents"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// DocumentSet holds attachments either as an ordered list or as named slots,
// depending on the role's document policy.
type DocumentSet struct {
	List  []*Attachment          `json:"list,omitempty"`
	Slots map[string]*Attachment `json:"slots,omitempty"`
}

// NewDraft returns a fresh draft with the role-specific empty shape and the
// step index reset to 1.
func NewDraft(session string, role Role) *Draft {
	d := &Draft{
		Session:   session,
		Role:      role,
		Step:      1,
		Fields:    defaultFields(role),
		UpdatedAt: time.Now(),
	}
	if SchemaFor(role).Documents.SlotMode() {
		d.Documents.Slots = make(map[string]*Attachment)
	}
	return d
}

func defaultFields(role Role) map[string]any {
	f := map[string]any{
		"email":         "",
		"phone":         "",
		"termsAccepted": false,
	}
	switch role {
	case RoleDoctor:
		f["firstName"] = ""
		f["lastName"] = ""
		f["gender"] = ""
		f["specialization"] = ""
		f["licenseNumber"] = ""
		f["qualification"] = ""
		f["experienceYears"] = ""
		f["consultationFee"] = ""
		f["bio"] = ""
		f["languages"] = []any{}
		f["consultationModes"] = []any{}
		f["education"] = []any{
			map[string]any{"institution": "", "degree": "", "year": ""},
		}
		f["clinicName"] = ""
		f["clinicDetails"] = map[string]any{"address": emptyAddress()}
	case RolePharmacy:
		f["pharmacyName"] = ""
		f["licenseNumber"] = ""
		f["gstNumber"] = ""
		f["address"] = emptyAddress()
		f["contactPerson"] = map[string]any{"name": "", "phone": "", "email": ""}
	case RoleLaboratory:
		f["labName"] = ""
		f["registrationNumber"] = ""
		f["gstNumber"] = ""
		f["address"] = emptyAddress()
		f["contactPerson"] = map[string]any{"name": "", "phone": "", "email": ""}
		f["operatingHours"] = map[string]any{"days": []any{}, "open": "", "close": ""}
	case RoleNurse:
		f["fullName"] = ""
		f["qualification"] = ""
		f["registrationNumber"] = ""
		f["registrationCouncilName"] = ""
		f["specialization"] = ""
		f["experienceYears"] = ""
		f["fees"] = ""
		f["address"] = emptyAddress()
	case RolePatient:
		f["firstName"] = ""
		f["lastName"] = ""
		f["gender"] = ""
		f["dateOfBirth"] = ""
	}
	return f
}

func emptyAddress() map[string]any {
	return map[string]any{
		"line1": "", "line2": "", "city": "", "state": "", "postalCode": "", "country": "",
	}
}

// Get returns the value at a dotted field path, or nil.
func (d *Draft) Get(path string) any {
	var node any = d.Fields
	for _, part := range strings.Split(path, ".") {
		switch v := node.(type) {
		case map[string]any:
			node = v[part]
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil
			}
			node = v[idx]
		default:
			return nil
		}
	}
	return node
}

// GetString returns the string at path, or "".
func (d *Draft) GetString(path string) string {
	s, _ := d.Get(path).(string)
	return s
}

// GetBool returns the bool at path, or false.
func (d *Draft) GetBool(path string) bool {
	b, _ := d.Get(path).(bool)
	return b
}

// GetStrings returns the string list at path.
func (d *Draft) GetStrings(path string) []string {
	raw, _ := d.Get(path).([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// TermsAccepted reports whether the terms checkbox has been ticked.
func (d *Draft) TermsAccepted() bool {
	return d.GetBool("termsAccepted")
}

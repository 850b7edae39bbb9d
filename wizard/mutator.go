package wizard

import (
	"strconv"
	"strings"
	"time"
)

// Mutation is one field update event. Action defaults to a plain assignment;
// "toggle" flips membership in a set-like list, "tag" appends a free-text tag.
type Mutation struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Checked *bool  `json:"checked,omitempty"`
	Action  string `json:"action,omitempty"`
}

const (
	ActionSet    = "set"
	ActionToggle = "toggle"
	ActionTag    = "tag"
)

// Money-like field names, matched against the last path segment.
var moneyFields = map[string]bool{
	"fee":             true,
	"fees":            true,
	"consultationfee": true,
	"price":           true,
}

// Apply routes one mutation into the draft. Out-of-policy characters are
// silently dropped by the normalizers rather than rejected, so typing is
// never interrupted.
func (d *Draft) Apply(s *Schema, m Mutation) {
	switch {
	case m.Action == ActionToggle || s.SetFields[m.Field]:
		checked := m.Checked != nil && *m.Checked
		d.toggleMembership(m.Field, m.Value, checked)
	case m.Action == ActionTag || s.TagFields[m.Field]:
		d.appendTag(m.Field, m.Value)
	case m.Checked != nil:
		d.setPath(m.Field, *m.Checked)
	default:
		d.setPath(m.Field, NormalizeValue(d.Role, m.Field, m.Value))
	}
	d.UpdatedAt = time.Now()
}

// NormalizeValue applies the role-independent normalization rules: phone-like
// fields keep at most 10 digits, nurse postal codes at most 6 digits, money
// fields collapse to a single decimal point.
func NormalizeValue(role Role, field, value string) string {
	name := strings.ToLower(lastSegment(field))
	switch {
	case strings.Contains(name, "phone"):
		return DigitsOnly(value, 10)
	case name == "postalcode" && role == RoleNurse:
		return DigitsOnly(value, 6)
	case moneyFields[name]:
		return DecimalString(value)
	default:
		return value
	}
}

// DigitsOnly strips non-digits and truncates to max characters.
func DigitsOnly(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == max {
				break
			}
		}
	}
	return b.String()
}

// DecimalString strips everything but digits and dots, then collapses to at
// most one decimal point: the first dot is kept and the digits of any later
// segments are concatenated after it ("12.34.56" -> "12.3456").
func DecimalString(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	i := strings.IndexByte(cleaned, '.')
	if i < 0 {
		return cleaned
	}
	return cleaned[:i] + "." + strings.ReplaceAll(cleaned[i+1:], ".", "")
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// setPath writes a value at a dotted path, creating intermediate maps and
// growing slices for numeric segments as needed.
func (d *Draft) setPath(path string, value any) {
	if d.Fields == nil {
		d.Fields = make(map[string]any)
	}
	setIn(d.Fields, strings.Split(path, "."), value)
}

func setIn(node map[string]any, parts []string, value any) {
	key := parts[0]
	if len(parts) == 1 {
		node[key] = value
		return
	}
	if idx, err := strconv.Atoi(parts[1]); err == nil && idx >= 0 {
		list, _ := node[key].([]any)
		for len(list) <= idx {
			list = append(list, map[string]any{})
		}
		node[key] = list
		if len(parts) == 2 {
			list[idx] = value
			return
		}
		child, _ := list[idx].(map[string]any)
		if child == nil {
			child = make(map[string]any)
			list[idx] = child
		}
		setIn(child, parts[2:], value)
		return
	}
	child, _ := node[key].(map[string]any)
	if child == nil {
		child = make(map[string]any)
		node[key] = child
	}
	setIn(child, parts[1:], value)
}

// toggleMembership keeps set semantics over an ordered array: no duplicates,
// removal preserves order of the rest.
func (d *Draft) toggleMembership(field, value string, checked bool) {
	current := d.GetStrings(field)
	if checked {
		for _, v := range current {
			if v == value {
				return
			}
		}
		d.setList(field, append(current, value))
		return
	}
	out := current[:0]
	for _, v := range current {
		if v != value {
			out = append(out, v)
		}
	}
	d.setList(field, out)
}

// appendTag trims and appends a tag, skipping empties and duplicates.
func (d *Draft) appendTag(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	current := d.GetStrings(field)
	for _, v := range current {
		if v == value {
			return
		}
	}
	d.setList(field, append(current, value))
}

func (d *Draft) setList(field string, values []string) {
	list := make([]any, len(values))
	for i, v := range values {
		list[i] = v
	}
	d.setPath(field, list)
}

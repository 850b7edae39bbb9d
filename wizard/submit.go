package wizard

import (
	"strconv"
	"strings"
	"time"

	"github.com/medisetu/medisetu_backend/models"
	"github.com/medisetu/medisetu_backend/utils"
)

// BuildRegistration assembles the normalized draft into a persistable
// registration. It re-runs the final validation superset first, parses money
// fields exactly once at this boundary and leaves empty optionals unset.
func (s *Schema) BuildRegistration(d *Draft) (*models.User, error) {
	if err := s.ValidateFinal(d); err != nil {
		return nil, err
	}

	now := time.Now()
	u := &models.User{
		Email:         strings.ToLower(strings.TrimSpace(d.GetString("email"))),
		Phone:         d.GetString("phone"),
		Role:          string(d.Role),
		Status:        models.StatusPending,
		TermsAccepted: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	switch d.Role {
	case RoleDoctor:
		u.FullName = joinName(d.GetString("firstName"), d.GetString("lastName"))
		u.Gender = d.GetString("gender")
		u.DoctorInfo = &models.DoctorInfo{
			FirstName:         strings.TrimSpace(d.GetString("firstName")),
			LastName:          strings.TrimSpace(d.GetString("lastName")),
			Specialization:    d.GetString("specialization"),
			LicenseNumber:     d.GetString("licenseNumber"),
			Qualification:     d.GetString("qualification"),
			ExperienceYears:   parseYears(d.GetString("experienceYears")),
			Bio:               d.GetString("bio"),
			Languages:         d.GetStrings("languages"),
			ConsultationModes: d.GetStrings("consultationModes"),
			Education:         buildEducation(d),
			ClinicName:        d.GetString("clinicName"),
			ClinicAddress:     buildAddress(d, "clinicDetails.address"),
		}
		u.DoctorInfo.ConsultationFee, _ = utils.ParseFloat(d.GetString("consultationFee"))
	case RolePharmacy:
		u.FullName = strings.TrimSpace(d.GetString("pharmacyName"))
		u.PharmacyInfo = &models.PharmacyInfo{
			PharmacyName:  u.FullName,
			LicenseNumber: d.GetString("licenseNumber"),
			GSTNumber:     d.GetString("gstNumber"),
			Address:       buildAddress(d, "address"),
			ContactPerson: buildContactPerson(d),
		}
	case RoleLaboratory:
		u.FullName = strings.TrimSpace(d.GetString("labName"))
		u.LabInfo = &models.LabInfo{
			LabName:            u.FullName,
			RegistrationNumber: d.GetString("registrationNumber"),
			GSTNumber:          d.GetString("gstNumber"),
			Address:            buildAddress(d, "address"),
			ContactPerson:      buildContactPerson(d),
			OperatingHours:     buildOperatingHours(d),
		}
	case RoleNurse:
		u.FullName = strings.TrimSpace(d.GetString("fullName"))
		addr := buildAddress(d, "address")
		info := &models.NurseInfo{
			Qualification:           d.GetString("qualification"),
			RegistrationNumber:      d.GetString("registrationNumber"),
			RegistrationCouncilName: d.GetString("registrationCouncilName"),
			Specialization:          d.GetString("specialization"),
			ExperienceYears:         parseYears(d.GetString("experienceYears")),
		}
		if addr != nil {
			info.Address = *addr
		}
		info.Fees, _ = utils.ParseFloat(d.GetString("fees"))
		u.NurseInfo = info
	case RolePatient:
		u.FullName = joinName(d.GetString("firstName"), d.GetString("lastName"))
		u.Gender = d.GetString("gender")
	}

	return u, nil
}

func joinName(first, last string) string {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if last == "" {
		return first
	}
	return first + " " + last
}

// parseYears reads a non-negative integer, treating anything else as zero.
func parseYears(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func buildEducation(d *Draft) []models.Education {
	rows, _ := d.Get("education").([]any)
	out := make([]models.Education, 0, len(rows))
	for _, raw := range rows {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		e := models.Education{
			Institution: stringAt(row, "institution"),
			Degree:      stringAt(row, "degree"),
			Year:        stringAt(row, "year"),
		}
		if e.Institution == "" && e.Degree == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

func buildAddress(d *Draft, base string) *models.Address {
	addr := &models.Address{
		Line1:      d.GetString(base + ".line1"),
		Line2:      d.GetString(base + ".line2"),
		City:       d.GetString(base + ".city"),
		State:      d.GetString(base + ".state"),
		PostalCode: d.GetString(base + ".postalCode"),
		Country:    d.GetString(base + ".country"),
	}
	if addr.Line1 == "" && addr.Line2 == "" && addr.City == "" &&
		addr.State == "" && addr.PostalCode == "" && addr.Country == "" {
		return nil
	}
	return addr
}

func buildContactPerson(d *Draft) *models.ContactPerson {
	cp := &models.ContactPerson{
		Name:  d.GetString("contactPerson.name"),
		Phone: d.GetString("contactPerson.phone"),
		Email: d.GetString("contactPerson.email"),
	}
	if cp.Name == "" && cp.Phone == "" && cp.Email == "" {
		return nil
	}
	return cp
}

func buildOperatingHours(d *Draft) *models.OperatingHours {
	oh := &models.OperatingHours{
		Days:  d.GetStrings("operatingHours.days"),
		Open:  d.GetString("operatingHours.open"),
		Close: d.GetString("operatingHours.close"),
	}
	if len(oh.Days) == 0 && oh.Open == "" && oh.Close == "" {
		return nil
	}
	return oh
}

func stringAt(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registration statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// User is one registered account on the marketplace. Exactly one of the
// role-specific info structs is set, matching the Role field.
type User struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email           string             `json:"email" bson:"email"`
	Phone           string             `json:"phone" bson:"phone"`
	FullName        string             `json:"fullName" bson:"fullName"`
	Role            string             `json:"role" bson:"role"` // "doctor", "pharmacy", "laboratory", "nurse", "patient", "admin"
	Status          string             `json:"status" bson:"status"`
	RejectionReason string             `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	Password        string             `json:"password,omitempty" bson:"password,omitempty"` // bcrypt hash, admin accounts only
	Gender          string             `json:"gender,omitempty" bson:"gender,omitempty"`
	TermsAccepted   bool               `json:"termsAccepted" bson:"termsAccepted"`
	IsActive        bool               `json:"isActive" bson:"isActive"`
	DoctorInfo      *DoctorInfo        `json:"doctorInfo,omitempty" bson:"doctorInfo,omitempty"`
	PharmacyInfo    *PharmacyInfo      `json:"pharmacyInfo,omitempty" bson:"pharmacyInfo,omitempty"`
	LabInfo         *LabInfo           `json:"labInfo,omitempty" bson:"labInfo,omitempty"`
	NurseInfo       *NurseInfo         `json:"nurseInfo,omitempty" bson:"nurseInfo,omitempty"`
	Documents       []Document         `json:"documents,omitempty" bson:"documents,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
	ReviewedAt      *time.Time         `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
}

// Document is a stored certificate/licence file attached to a registration.
type Document struct {
	ID   string `json:"id" bson:"id"`
	Slot string `json:"slot,omitempty" bson:"slot,omitempty"`
	Name string `json:"name" bson:"name"`
	Type string `json:"type" bson:"type"`
	Size int64  `json:"size" bson:"size"`
	Path string `json:"path" bson:"path"`
}

// Address model
type Address struct {
	Line1      string `json:"line1,omitempty" bson:"line1,omitempty"`
	Line2      string `json:"line2,omitempty" bson:"line2,omitempty"`
	City       string `json:"city,omitempty" bson:"city,omitempty"`
	State      string `json:"state,omitempty" bson:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty" bson:"postalCode,omitempty"`
	Country    string `json:"country,omitempty" bson:"country,omitempty"`
}

// ContactPerson for pharmacy/laboratory registrations
type ContactPerson struct {
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
	Email string `json:"email,omitempty" bson:"email,omitempty"`
}

// Education is one qualification row of a doctor's profile.
type Education struct {
	Institution string `json:"institution" bson:"institution"`
	Degree      string `json:"degree" bson:"degree"`
	Year        string `json:"year,omitempty" bson:"year,omitempty"`
}

// OperatingHours for laboratories
type OperatingHours struct {
	Days  []string `json:"days,omitempty" bson:"days,omitempty"`
	Open  string   `json:"open,omitempty" bson:"open,omitempty"`
	Close string   `json:"close,omitempty" bson:"close,omitempty"`
}

type DoctorInfo struct {
	FirstName         string      `json:"firstName" bson:"firstName"`
	LastName          string      `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Specialization    string      `json:"specialization" bson:"specialization"`
	LicenseNumber     string      `json:"licenseNumber" bson:"licenseNumber"`
	Qualification     string      `json:"qualification,omitempty" bson:"qualification,omitempty"`
	ExperienceYears   int         `json:"experienceYears" bson:"experienceYears"`
	ConsultationFee   float64     `json:"consultationFee,omitempty" bson:"consultationFee,omitempty"`
	Bio               string      `json:"bio,omitempty" bson:"bio,omitempty"`
	Languages         []string    `json:"languages,omitempty" bson:"languages,omitempty"`
	ConsultationModes []string    `json:"consultationModes,omitempty" bson:"consultationModes,omitempty"`
	Education         []Education `json:"education,omitempty" bson:"education,omitempty"`
	ClinicName        string      `json:"clinicName,omitempty" bson:"clinicName,omitempty"`
	ClinicAddress     *Address    `json:"clinicAddress,omitempty" bson:"clinicAddress,omitempty"`
}

type PharmacyInfo struct {
	PharmacyName  string         `json:"pharmacyName" bson:"pharmacyName"`
	LicenseNumber string         `json:"licenseNumber" bson:"licenseNumber"`
	GSTNumber     string         `json:"gstNumber,omitempty" bson:"gstNumber,omitempty"`
	Address       *Address       `json:"address,omitempty" bson:"address,omitempty"`
	ContactPerson *ContactPerson `json:"contactPerson,omitempty" bson:"contactPerson,omitempty"`
}

type LabInfo struct {
	LabName            string          `json:"labName" bson:"labName"`
	RegistrationNumber string          `json:"registrationNumber" bson:"registrationNumber"`
	GSTNumber          string          `json:"gstNumber,omitempty" bson:"gstNumber,omitempty"`
	Address            *Address        `json:"address,omitempty" bson:"address,omitempty"`
	ContactPerson      *ContactPerson  `json:"contactPerson,omitempty" bson:"contactPerson,omitempty"`
	OperatingHours     *OperatingHours `json:"operatingHours,omitempty" bson:"operatingHours,omitempty"`
}

type NurseInfo struct {
	Qualification           string  `json:"qualification" bson:"qualification"`
	RegistrationNumber      string  `json:"registrationNumber" bson:"registrationNumber"`
	RegistrationCouncilName string  `json:"registrationCouncilName" bson:"registrationCouncilName"`
	Specialization          string  `json:"specialization,omitempty" bson:"specialization,omitempty"`
	ExperienceYears         int     `json:"experienceYears" bson:"experienceYears"`
	Fees                    float64 `json:"fees,omitempty" bson:"fees,omitempty"`
	Address                 Address `json:"address" bson:"address"`
}

// Response is the standard API envelope.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

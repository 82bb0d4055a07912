package patient

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Gender codes.
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)

// BloodGroups lists the accepted ABO/Rh combinations.
var BloodGroups = map[string]bool{
	"A+": true, "A-": true,
	"B+": true, "B-": true,
	"AB+": true, "AB-": true,
	"O+": true, "O-": true,
}

// Patient maps to the patients table. PatientID is the public identifier,
// assigned once at first persistence and never updated.
type Patient struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	PatientID             string     `db:"patient_id" json:"patient_id"`
	FirstName             string     `db:"first_name" json:"first_name"`
	LastName              string     `db:"last_name" json:"last_name"`
	DateOfBirth           time.Time  `db:"date_of_birth" json:"date_of_birth"`
	Gender                string     `db:"gender" json:"gender"`
	BloodGroup            string     `db:"blood_group" json:"blood_group,omitempty"`
	Phone                 string     `db:"phone" json:"phone"`
	Email                 string     `db:"email" json:"email,omitempty"`
	Address               string     `db:"address" json:"address"`
	EmergencyContactName  string     `db:"emergency_contact_name" json:"emergency_contact_name"`
	EmergencyContactPhone string     `db:"emergency_contact_phone" json:"emergency_contact_phone"`
	PhotoID               *string    `db:"photo_id" json:"photo_id,omitempty"`
	RegisteredBy          *uuid.UUID `db:"registered_by" json:"registered_by,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName returns "First Last".
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// NewPatientID generates a public patient identifier: "PAT" followed by
// 8 uppercase hex characters drawn from a random UUID. Collisions are
// possible and handled by retrying the insert.
func NewPatientID() string {
	u := uuid.New()
	return fmt.Sprintf("PAT%X", u[:4])
}

// Filter is the explicit search specification for patient listings: a
// free-text query matched case-insensitively against name, public id, email
// and phone, plus optional exact-match filters.
type Filter struct {
	Query      string
	Gender     *string
	BloodGroup *string
}

// SearchResult is the quick-search (AJAX) projection of a patient.
type SearchResult struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	PatientID string    `json:"patient_id"`
	Name      string    `json:"name"`
}

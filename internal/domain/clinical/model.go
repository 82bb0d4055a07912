package clinical

import (
	"time"

	"github.com/google/uuid"
)

// Diagnosis severities.
var DiagnosisSeverities = map[string]bool{
	"mild": true, "moderate": true, "severe": true, "critical": true,
}

// Allergy severities.
var AllergySeverities = map[string]bool{
	"mild": true, "moderate": true, "severe": true, "life_threatening": true,
}

// allergyPlaceholderComplaint is the chief complaint stamped on a history
// auto-created to hold an allergy recorded without an explicit visit.
const allergyPlaceholderComplaint = "Allergy record"

const allergyPlaceholderNotes = "Created for allergy entry"

// MedicalHistory maps to the medical_histories table: one visit/encounter
// record per patient. It owns diagnoses, allergies and medications; deleting
// the patient cascades through it to all of them.
type MedicalHistory struct {
	ID                  uuid.UUID              `db:"id" json:"id"`
	PatientID           uuid.UUID              `db:"patient_id" json:"patient_id"`
	DateRecorded        time.Time              `db:"date_recorded" json:"date_recorded"`
	RecordedBy          *uuid.UUID             `db:"recorded_by" json:"recorded_by,omitempty"`
	ChiefComplaint      string                 `db:"chief_complaint" json:"chief_complaint"`
	VitalSigns          map[string]interface{} `db:"vital_signs" json:"vital_signs,omitempty"`
	PhysicalExamination string                 `db:"physical_examination" json:"physical_examination,omitempty"`
	Notes               string                 `db:"notes" json:"notes,omitempty"`
}

// Diagnosis maps to the diagnoses table.
type Diagnosis struct {
	ID               uuid.UUID `db:"id" json:"id"`
	MedicalHistoryID uuid.UUID `db:"medical_history_id" json:"medical_history_id"`
	DiagnosisName    string    `db:"diagnosis_name" json:"diagnosis_name"`
	DiagnosisDate    time.Time `db:"diagnosis_date" json:"diagnosis_date"`
	Severity         string    `db:"severity" json:"severity"`
	Description      string    `db:"description" json:"description"`
	ICDCode          string    `db:"icd_code" json:"icd_code,omitempty"`
	Status           string    `db:"status" json:"status"`
}

// Allergy maps to the allergies table.
type Allergy struct {
	ID               uuid.UUID `db:"id" json:"id"`
	MedicalHistoryID uuid.UUID `db:"medical_history_id" json:"medical_history_id"`
	Allergen         string    `db:"allergen" json:"allergen"`
	Reaction         string    `db:"reaction" json:"reaction"`
	Severity         string    `db:"severity" json:"severity"`
	IdentifiedDate   time.Time `db:"identified_date" json:"identified_date"`
	Notes            string    `db:"notes" json:"notes,omitempty"`
}

// Medication maps to the medications table.
type Medication struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	MedicalHistoryID uuid.UUID  `db:"medical_history_id" json:"medical_history_id"`
	MedicationName   string     `db:"medication_name" json:"medication_name"`
	Dosage           string     `db:"dosage" json:"dosage"`
	Frequency        string     `db:"frequency" json:"frequency"`
	Route            string     `db:"route" json:"route"`
	StartDate        time.Time  `db:"start_date" json:"start_date"`
	EndDate          *time.Time `db:"end_date" json:"end_date,omitempty"`
	Purpose          string     `db:"purpose" json:"purpose"`
	SideEffects      string     `db:"side_effects" json:"side_effects,omitempty"`
	IsActive         bool       `db:"is_active" json:"is_active"`
	PrescribedBy     *uuid.UUID `db:"prescribed_by" json:"prescribed_by,omitempty"`
}

// HistoryDetail is a history with the clinical events it owns.
type HistoryDetail struct {
	MedicalHistory
	Diagnoses   []*Diagnosis  `json:"diagnoses"`
	Allergies   []*Allergy    `json:"allergies"`
	Medications []*Medication `json:"medications"`
}

// Summary aggregates a patient's clinical record across every history:
// all diagnoses, all allergies, and the currently active medications.
type Summary struct {
	Diagnoses         []*Diagnosis  `json:"diagnoses"`
	Allergies         []*Allergy    `json:"allergies"`
	ActiveMedications []*Medication `json:"active_medications"`
}

// List projections for the admin surface carry the owning patient alongside
// the record.

type DiagnosisListItem struct {
	Diagnosis
	PatientName     string `json:"patient_name"`
	PatientPublicID string `json:"patient_public_id"`
}

type AllergyListItem struct {
	Allergy
	PatientName     string `json:"patient_name"`
	PatientPublicID string `json:"patient_public_id"`
}

type MedicationListItem struct {
	Medication
	PatientName     string `json:"patient_name"`
	PatientPublicID string `json:"patient_public_id"`
}

// Filter specifications for the admin list endpoints.

type DiagnosisFilter struct {
	Query    string
	Severity *string
}

type AllergyFilter struct {
	Query    string
	Severity *string
}

type MedicationFilter struct {
	Query    string
	IsActive *bool
}

// Aggregate counters computed over the filtered, pre-pagination set.

type DiagnosisCounters struct {
	Total            int `json:"total"`
	DistinctPatients int `json:"distinct_patients"`
	ThisMonth        int `json:"this_month"`
}

type MedicationCounters struct {
	Total            int `json:"total"`
	Active           int `json:"active"`
	DistinctPatients int `json:"distinct_patients"`
}

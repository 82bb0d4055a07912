package dashboard

import (
	"github.com/hms/hms/internal/domain/clinical"
	"github.com/hms/hms/internal/domain/patient"
)

// recentLimit caps the recent/critical record lists on both dashboards.
const recentLimit = 5

// Overview is the general staff dashboard.
type Overview struct {
	TotalPatients  int                `json:"total_patients"`
	TotalDoctors   int                `json:"total_doctors"`
	TotalNurses    int                `json:"total_nurses"`
	TotalRecords   int                `json:"total_records"`
	RecentPatients []*patient.Patient `json:"recent_patients"`
}

// AdminOverview is the clinical admin dashboard: record totals plus the
// most recent activity and the allergies needing attention.
type AdminOverview struct {
	TotalPatients     int                          `json:"total_patients"`
	TotalAllergies    int                          `json:"total_allergies"`
	TotalDiagnoses    int                          `json:"total_diagnoses"`
	TotalMedications  int                          `json:"total_medications"`
	RecentPatients    []*patient.Patient           `json:"recent_patients"`
	CriticalAllergies []*clinical.AllergyListItem  `json:"critical_allergies"`
	RecentDiagnoses   []*clinical.DiagnosisListItem `json:"recent_diagnoses"`
}

// OverviewCounts carries the general dashboard totals. Staff headcounts
// come from the identity service, not from here.
type OverviewCounts struct {
	Patients int
	Records  int
}

// AdminCounts carries the admin dashboard totals.
type AdminCounts struct {
	Patients    int
	Allergies   int
	Diagnoses   int
	Medications int
}

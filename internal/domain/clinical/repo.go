package clinical

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists the clinical record graph. Histories are append-only
// through this interface; leaves support full CRUD but never move between
// parents.
type Repository interface {
	// Histories
	CreateHistory(ctx context.Context, h *MedicalHistory) error
	GetHistory(ctx context.Context, id uuid.UUID) (*MedicalHistory, error)
	MostRecentHistory(ctx context.Context, patientID uuid.UUID) (*MedicalHistory, error)
	ListHistories(ctx context.Context, patientID uuid.UUID) ([]*MedicalHistory, error)

	// Diagnoses
	CreateDiagnosis(ctx context.Context, d *Diagnosis) error
	GetDiagnosis(ctx context.Context, id uuid.UUID) (*Diagnosis, error)
	UpdateDiagnosis(ctx context.Context, d *Diagnosis) error
	DeleteDiagnosis(ctx context.Context, id uuid.UUID) error
	DiagnosesByHistory(ctx context.Context, historyID uuid.UUID) ([]*Diagnosis, error)
	DiagnosesByPatient(ctx context.Context, patientID uuid.UUID) ([]*Diagnosis, error)
	ListDiagnoses(ctx context.Context, f DiagnosisFilter, limit, offset int) ([]*DiagnosisListItem, int, error)
	DiagnosisCounters(ctx context.Context, f DiagnosisFilter) (DiagnosisCounters, error)

	// Allergies
	CreateAllergy(ctx context.Context, a *Allergy) error
	GetAllergy(ctx context.Context, id uuid.UUID) (*Allergy, error)
	UpdateAllergy(ctx context.Context, a *Allergy) error
	DeleteAllergy(ctx context.Context, id uuid.UUID) error
	AllergiesByHistory(ctx context.Context, historyID uuid.UUID) ([]*Allergy, error)
	AllergiesByPatient(ctx context.Context, patientID uuid.UUID) ([]*Allergy, error)
	ListAllergies(ctx context.Context, f AllergyFilter, limit, offset int) ([]*AllergyListItem, int, error)

	// Medications
	CreateMedication(ctx context.Context, m *Medication) error
	GetMedication(ctx context.Context, id uuid.UUID) (*Medication, error)
	UpdateMedication(ctx context.Context, m *Medication) error
	DeleteMedication(ctx context.Context, id uuid.UUID) error
	MedicationsByHistory(ctx context.Context, historyID uuid.UUID) ([]*Medication, error)
	ActiveMedicationsByPatient(ctx context.Context, patientID uuid.UUID) ([]*Medication, error)
	ListMedications(ctx context.Context, f MedicationFilter, limit, offset int) ([]*MedicationListItem, int, error)
	MedicationCounters(ctx context.Context, f MedicationFilter) (MedicationCounters, error)
}

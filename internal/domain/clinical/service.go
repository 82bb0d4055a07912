package clinical

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

// PatientDirectory is the slice of the patient store the clinical service
// needs: resolving the owning patient before attaching records to it.
type PatientDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// TxRunner executes fn atomically. The production wiring runs fn inside a
// database transaction carried on the context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	records  Repository
	patients PatientDirectory
	tx       TxRunner
}

func NewService(records Repository, patients PatientDirectory, tx TxRunner) *Service {
	return &Service{records: records, patients: patients, tx: tx}
}

// -- Histories --

// HistoryInput carries the visit record form. date_recorded is stamped server
// side at creation time.
type HistoryInput struct {
	ChiefComplaint      string                 `json:"chief_complaint"`
	VitalSigns          map[string]interface{} `json:"vital_signs"`
	PhysicalExamination string                 `json:"physical_examination"`
	Notes               string                 `json:"notes"`
}

func (in HistoryInput) validate() error {
	if in.ChiefComplaint == "" {
		return apperr.NewValidation("chief_complaint", "chief complaint is required")
	}
	return nil
}

// AddHistory records a new visit for the patient, stamped with the acting
// user and the current time.
func (s *Service) AddHistory(ctx context.Context, actor auth.Actor, patientID uuid.UUID, in HistoryInput) (*MedicalHistory, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	h := &MedicalHistory{
		PatientID:           patientID,
		DateRecorded:        time.Now().UTC(),
		ChiefComplaint:      in.ChiefComplaint,
		VitalSigns:          in.VitalSigns,
		PhysicalExamination: in.PhysicalExamination,
		Notes:               in.Notes,
	}
	if actor.ID != uuid.Nil {
		id := actor.ID
		h.RecordedBy = &id
	}

	if err := s.records.CreateHistory(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// GetHistoryDetail loads a history together with every record it owns.
func (s *Service) GetHistoryDetail(ctx context.Context, id uuid.UUID) (*HistoryDetail, error) {
	h, err := s.records.GetHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	diagnoses, err := s.records.DiagnosesByHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	allergies, err := s.records.AllergiesByHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	medications, err := s.records.MedicationsByHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &HistoryDetail{
		MedicalHistory: *h,
		Diagnoses:      diagnoses,
		Allergies:      allergies,
		Medications:    medications,
	}
	if detail.Diagnoses == nil {
		detail.Diagnoses = []*Diagnosis{}
	}
	if detail.Allergies == nil {
		detail.Allergies = []*Allergy{}
	}
	if detail.Medications == nil {
		detail.Medications = []*Medication{}
	}
	return detail, nil
}

func (s *Service) ListHistories(ctx context.Context, patientID uuid.UUID) ([]*MedicalHistory, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	histories, err := s.records.ListHistories(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if histories == nil {
		histories = []*MedicalHistory{}
	}
	return histories, nil
}

// Summary aggregates the patient's record across every history: all
// diagnoses, all allergies, and the medications still active.
func (s *Service) Summary(ctx context.Context, patientID uuid.UUID) (*Summary, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	diagnoses, err := s.records.DiagnosesByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	allergies, err := s.records.AllergiesByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	medications, err := s.records.ActiveMedicationsByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Diagnoses: diagnoses, Allergies: allergies, ActiveMedications: medications}
	if sum.Diagnoses == nil {
		sum.Diagnoses = []*Diagnosis{}
	}
	if sum.Allergies == nil {
		sum.Allergies = []*Allergy{}
	}
	if sum.ActiveMedications == nil {
		sum.ActiveMedications = []*Medication{}
	}
	return sum, nil
}

// -- Diagnoses --

type DiagnosisInput struct {
	DiagnosisName string `json:"diagnosis_name"`
	DiagnosisDate string `json:"diagnosis_date"`
	Severity      string `json:"severity"`
	Description   string `json:"description"`
	ICDCode       string `json:"icd_code"`
	Status        string `json:"status"`
}

func (in DiagnosisInput) validate() (time.Time, error) {
	fields := map[string]string{}
	if in.DiagnosisName == "" {
		fields["diagnosis_name"] = "diagnosis name is required"
	}
	if !DiagnosisSeverities[in.Severity] {
		fields["severity"] = "severity must be mild, moderate, severe or critical"
	}
	if in.Description == "" {
		fields["description"] = "description is required"
	}

	var date time.Time
	if in.DiagnosisDate == "" {
		fields["diagnosis_date"] = "diagnosis date is required"
	} else {
		var err error
		date, err = time.Parse("2006-01-02", in.DiagnosisDate)
		if err != nil {
			fields["diagnosis_date"] = "diagnosis date must be YYYY-MM-DD"
		}
	}

	if len(fields) > 0 {
		return time.Time{}, &apperr.Validation{Fields: fields}
	}
	return date, nil
}

// AddDiagnosis attaches a diagnosis to an existing history.
func (s *Service) AddDiagnosis(ctx context.Context, historyID uuid.UUID, in DiagnosisInput) (*Diagnosis, error) {
	date, err := in.validate()
	if err != nil {
		return nil, err
	}
	if _, err := s.records.GetHistory(ctx, historyID); err != nil {
		return nil, err
	}

	d := &Diagnosis{
		MedicalHistoryID: historyID,
		DiagnosisName:    in.DiagnosisName,
		DiagnosisDate:    date,
		Severity:         in.Severity,
		Description:      in.Description,
		ICDCode:          in.ICDCode,
		Status:           in.Status,
	}
	if d.Status == "" {
		d.Status = "active"
	}

	if err := s.records.CreateDiagnosis(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GetDiagnosis(ctx context.Context, id uuid.UUID) (*Diagnosis, error) {
	return s.records.GetDiagnosis(ctx, id)
}

// UpdateDiagnosis applies the edit form. The diagnosis stays attached to the
// history it was created under.
func (s *Service) UpdateDiagnosis(ctx context.Context, id uuid.UUID, in DiagnosisInput) (*Diagnosis, error) {
	date, err := in.validate()
	if err != nil {
		return nil, err
	}

	d, err := s.records.GetDiagnosis(ctx, id)
	if err != nil {
		return nil, err
	}

	d.DiagnosisName = in.DiagnosisName
	d.DiagnosisDate = date
	d.Severity = in.Severity
	d.Description = in.Description
	d.ICDCode = in.ICDCode
	d.Status = in.Status
	if d.Status == "" {
		d.Status = "active"
	}

	if err := s.records.UpdateDiagnosis(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) DeleteDiagnosis(ctx context.Context, id uuid.UUID) error {
	return s.records.DeleteDiagnosis(ctx, id)
}

func (s *Service) ListDiagnoses(ctx context.Context, f DiagnosisFilter, limit, offset int) ([]*DiagnosisListItem, int, error) {
	items, total, err := s.records.ListDiagnoses(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*DiagnosisListItem{}
	}
	return items, total, nil
}

func (s *Service) DiagnosisCounters(ctx context.Context, f DiagnosisFilter) (DiagnosisCounters, error) {
	return s.records.DiagnosisCounters(ctx, f)
}

// -- Allergies --

type AllergyInput struct {
	Allergen       string `json:"allergen"`
	Reaction       string `json:"reaction"`
	Severity       string `json:"severity"`
	IdentifiedDate string `json:"identified_date"`
	Notes          string `json:"notes"`
}

func (in AllergyInput) validate() (time.Time, error) {
	fields := map[string]string{}
	if in.Allergen == "" {
		fields["allergen"] = "allergen is required"
	}
	if in.Reaction == "" {
		fields["reaction"] = "reaction is required"
	}
	if !AllergySeverities[in.Severity] {
		fields["severity"] = "severity must be mild, moderate, severe or life_threatening"
	}

	var date time.Time
	if in.IdentifiedDate == "" {
		fields["identified_date"] = "identified date is required"
	} else {
		var err error
		date, err = time.Parse("2006-01-02", in.IdentifiedDate)
		if err != nil {
			fields["identified_date"] = "identified date must be YYYY-MM-DD"
		}
	}

	if len(fields) > 0 {
		return time.Time{}, &apperr.Validation{Fields: fields}
	}
	return date, nil
}

// AddAllergy attaches an allergy to an existing history.
func (s *Service) AddAllergy(ctx context.Context, historyID uuid.UUID, in AllergyInput) (*Allergy, error) {
	date, err := in.validate()
	if err != nil {
		return nil, err
	}
	if _, err := s.records.GetHistory(ctx, historyID); err != nil {
		return nil, err
	}

	a := &Allergy{
		MedicalHistoryID: historyID,
		Allergen:         in.Allergen,
		Reaction:         in.Reaction,
		Severity:         in.Severity,
		IdentifiedDate:   date,
		Notes:            in.Notes,
	}
	if err := s.records.CreateAllergy(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateAllergyForPatient records an allergy directly against a patient. The
// allergy is attached to the patient's most recent history; when the patient
// has none, a placeholder history is created to hold it. Both steps run in
// one transaction so a failed insert never leaves the placeholder behind.
func (s *Service) CreateAllergyForPatient(ctx context.Context, actor auth.Actor, patientID uuid.UUID, in AllergyInput) (*Allergy, error) {
	date, err := in.validate()
	if err != nil {
		return nil, err
	}
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	a := &Allergy{
		Allergen:       in.Allergen,
		Reaction:       in.Reaction,
		Severity:       in.Severity,
		IdentifiedDate: date,
		Notes:          in.Notes,
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		h, err := s.records.MostRecentHistory(ctx, patientID)
		if apperr.IsNotFound(err) {
			h = &MedicalHistory{
				PatientID:      patientID,
				DateRecorded:   time.Now().UTC(),
				ChiefComplaint: allergyPlaceholderComplaint,
				Notes:          allergyPlaceholderNotes,
			}
			if actor.ID != uuid.Nil {
				id := actor.ID
				h.RecordedBy = &id
			}
			if err := s.records.CreateHistory(ctx, h); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		a.MedicalHistoryID = h.ID
		return s.records.CreateAllergy(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) GetAllergy(ctx context.Context, id uuid.UUID) (*Allergy, error) {
	return s.records.GetAllergy(ctx, id)
}

// UpdateAllergy applies the edit form. The allergy stays attached to the
// history it was created under, placeholder or not.
func (s *Service) UpdateAllergy(ctx context.Context, id uuid.UUID, in AllergyInput) (*Allergy, error) {
	date, err := in.validate()
	if err != nil {
		return nil, err
	}

	a, err := s.records.GetAllergy(ctx, id)
	if err != nil {
		return nil, err
	}

	a.Allergen = in.Allergen
	a.Reaction = in.Reaction
	a.Severity = in.Severity
	a.IdentifiedDate = date
	a.Notes = in.Notes

	if err := s.records.UpdateAllergy(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) DeleteAllergy(ctx context.Context, id uuid.UUID) error {
	return s.records.DeleteAllergy(ctx, id)
}

func (s *Service) ListAllergies(ctx context.Context, f AllergyFilter, limit, offset int) ([]*AllergyListItem, int, error) {
	items, total, err := s.records.ListAllergies(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*AllergyListItem{}
	}
	return items, total, nil
}

// -- Medications --

type MedicationInput struct {
	MedicationName string `json:"medication_name"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	Route          string `json:"route"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	Purpose        string `json:"purpose"`
	SideEffects    string `json:"side_effects"`
	IsActive       *bool  `json:"is_active"`
}

func (in MedicationInput) validate() (start time.Time, end *time.Time, err error) {
	fields := map[string]string{}
	if in.MedicationName == "" {
		fields["medication_name"] = "medication name is required"
	}
	if in.Dosage == "" {
		fields["dosage"] = "dosage is required"
	}
	if in.Frequency == "" {
		fields["frequency"] = "frequency is required"
	}
	if in.Purpose == "" {
		fields["purpose"] = "purpose is required"
	}

	if in.StartDate == "" {
		fields["start_date"] = "start date is required"
	} else {
		start, err = time.Parse("2006-01-02", in.StartDate)
		if err != nil {
			fields["start_date"] = "start date must be YYYY-MM-DD"
		}
	}
	if in.EndDate != "" {
		t, err := time.Parse("2006-01-02", in.EndDate)
		if err != nil {
			fields["end_date"] = "end date must be YYYY-MM-DD"
		} else {
			end = &t
		}
	}

	if len(fields) > 0 {
		return time.Time{}, nil, &apperr.Validation{Fields: fields}
	}
	return start, end, nil
}

// AddMedication attaches a prescription to an existing history, stamped with
// the prescribing user. Route defaults to oral and new prescriptions start
// active unless the form says otherwise.
func (s *Service) AddMedication(ctx context.Context, actor auth.Actor, historyID uuid.UUID, in MedicationInput) (*Medication, error) {
	start, end, err := in.validate()
	if err != nil {
		return nil, err
	}
	if _, err := s.records.GetHistory(ctx, historyID); err != nil {
		return nil, err
	}

	m := &Medication{
		MedicalHistoryID: historyID,
		MedicationName:   in.MedicationName,
		Dosage:           in.Dosage,
		Frequency:        in.Frequency,
		Route:            in.Route,
		StartDate:        start,
		EndDate:          end,
		Purpose:          in.Purpose,
		SideEffects:      in.SideEffects,
		IsActive:         true,
	}
	if m.Route == "" {
		m.Route = "oral"
	}
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
	if actor.ID != uuid.Nil {
		id := actor.ID
		m.PrescribedBy = &id
	}

	if err := s.records.CreateMedication(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) GetMedication(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return s.records.GetMedication(ctx, id)
}

// UpdateMedication applies the edit form. The parent history and prescriber
// stamp are never reassigned.
func (s *Service) UpdateMedication(ctx context.Context, id uuid.UUID, in MedicationInput) (*Medication, error) {
	start, end, err := in.validate()
	if err != nil {
		return nil, err
	}

	m, err := s.records.GetMedication(ctx, id)
	if err != nil {
		return nil, err
	}

	m.MedicationName = in.MedicationName
	m.Dosage = in.Dosage
	m.Frequency = in.Frequency
	if in.Route != "" {
		m.Route = in.Route
	}
	m.StartDate = start
	m.EndDate = end
	m.Purpose = in.Purpose
	m.SideEffects = in.SideEffects
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}

	if err := s.records.UpdateMedication(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteMedication(ctx context.Context, id uuid.UUID) error {
	return s.records.DeleteMedication(ctx, id)
}

func (s *Service) ListMedications(ctx context.Context, f MedicationFilter, limit, offset int) ([]*MedicationListItem, int, error) {
	items, total, err := s.records.ListMedications(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*MedicationListItem{}
	}
	return items, total, nil
}

func (s *Service) MedicationCounters(ctx context.Context, f MedicationFilter) (MedicationCounters, error) {
	return s.records.MedicationCounters(ctx, f)
}

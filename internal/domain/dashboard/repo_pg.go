package dashboard

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/domain/clinical"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *repoPG) OverviewCounts(ctx context.Context) (OverviewCounts, error) {
	var c OverviewCounts
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM medical_histories)`,
	).Scan(&c.Patients, &c.Records)
	return c, err
}

func (r *repoPG) AdminCounts(ctx context.Context) (AdminCounts, error) {
	var c AdminCounts
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM allergies),
			(SELECT COUNT(*) FROM diagnoses),
			(SELECT COUNT(*) FROM medications)`,
	).Scan(&c.Patients, &c.Allergies, &c.Diagnoses, &c.Medications)
	return c, err
}

func (r *repoPG) RecentPatients(ctx context.Context, limit int) ([]*patient.Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, first_name, last_name, date_of_birth, gender, blood_group,
			phone, email, address, emergency_contact_name, emergency_contact_phone,
			photo_id, registered_by, created_at, updated_at
		FROM patients
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []*patient.Patient
	for rows.Next() {
		var p patient.Patient
		if err := rows.Scan(
			&p.ID, &p.PatientID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender, &p.BloodGroup,
			&p.Phone, &p.Email, &p.Address, &p.EmergencyContactName, &p.EmergencyContactPhone,
			&p.PhotoID, &p.RegisteredBy, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		patients = append(patients, &p)
	}
	return patients, rows.Err()
}

// CriticalAllergies lists the most recently identified allergies whose
// severity calls for attention on the admin dashboard.
func (r *repoPG) CriticalAllergies(ctx context.Context, limit int) ([]*clinical.AllergyListItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT a.id, a.medical_history_id, a.allergen, a.reaction, a.severity, a.identified_date, a.notes,
			p.first_name || ' ' || p.last_name, p.patient_id
		FROM allergies a
		JOIN medical_histories h ON h.id = a.medical_history_id
		JOIN patients p ON p.id = h.patient_id
		WHERE a.severity IN ('severe', 'life_threatening')
		ORDER BY a.identified_date DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*clinical.AllergyListItem
	for rows.Next() {
		var it clinical.AllergyListItem
		if err := rows.Scan(&it.ID, &it.MedicalHistoryID, &it.Allergen, &it.Reaction,
			&it.Severity, &it.IdentifiedDate, &it.Notes,
			&it.PatientName, &it.PatientPublicID); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (r *repoPG) RecentDiagnoses(ctx context.Context, limit int) ([]*clinical.DiagnosisListItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT d.id, d.medical_history_id, d.diagnosis_name, d.diagnosis_date,
			d.severity, d.description, d.icd_code, d.status,
			p.first_name || ' ' || p.last_name, p.patient_id
		FROM diagnoses d
		JOIN medical_histories h ON h.id = d.medical_history_id
		JOIN patients p ON p.id = h.patient_id
		ORDER BY d.diagnosis_date DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*clinical.DiagnosisListItem
	for rows.Next() {
		var it clinical.DiagnosisListItem
		if err := rows.Scan(&it.ID, &it.MedicalHistoryID, &it.DiagnosisName, &it.DiagnosisDate,
			&it.Severity, &it.Description, &it.ICDCode, &it.Status,
			&it.PatientName, &it.PatientPublicID); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

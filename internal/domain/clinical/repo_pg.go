package clinical

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
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

// -- Histories --

const historyCols = `id, patient_id, date_recorded, recorded_by, chief_complaint,
	vital_signs, physical_examination, notes`

func (r *repoPG) CreateHistory(ctx context.Context, h *MedicalHistory) error {
	h.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_histories (
			id, patient_id, date_recorded, recorded_by, chief_complaint,
			vital_signs, physical_examination, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		h.ID, h.PatientID, h.DateRecorded, h.RecordedBy, h.ChiefComplaint,
		h.VitalSigns, h.PhysicalExamination, h.Notes,
	)
	return err
}

func (r *repoPG) GetHistory(ctx context.Context, id uuid.UUID) (*MedicalHistory, error) {
	h, err := scanHistory(r.conn(ctx).QueryRow(ctx,
		`SELECT `+historyCols+` FROM medical_histories WHERE id = $1`, id))
	if err != nil {
		return nil, apperr.NotFoundIfNoRows(err)
	}
	return h, nil
}

func (r *repoPG) MostRecentHistory(ctx context.Context, patientID uuid.UUID) (*MedicalHistory, error) {
	h, err := scanHistory(r.conn(ctx).QueryRow(ctx, `
		SELECT `+historyCols+` FROM medical_histories
		WHERE patient_id = $1
		ORDER BY date_recorded DESC
		LIMIT 1`, patientID))
	if err != nil {
		return nil, apperr.NotFoundIfNoRows(err)
	}
	return h, nil
}

func (r *repoPG) ListHistories(ctx context.Context, patientID uuid.UUID) ([]*MedicalHistory, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+historyCols+` FROM medical_histories
		WHERE patient_id = $1
		ORDER BY date_recorded DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var histories []*MedicalHistory
	for rows.Next() {
		var h MedicalHistory
		if err := rows.Scan(&h.ID, &h.PatientID, &h.DateRecorded, &h.RecordedBy, &h.ChiefComplaint,
			&h.VitalSigns, &h.PhysicalExamination, &h.Notes); err != nil {
			return nil, err
		}
		histories = append(histories, &h)
	}
	return histories, rows.Err()
}

func scanHistory(row pgx.Row) (*MedicalHistory, error) {
	var h MedicalHistory
	err := row.Scan(&h.ID, &h.PatientID, &h.DateRecorded, &h.RecordedBy, &h.ChiefComplaint,
		&h.VitalSigns, &h.PhysicalExamination, &h.Notes)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// -- Diagnoses --

const diagnosisCols = `id, medical_history_id, diagnosis_name, diagnosis_date,
	severity, description, icd_code, status`

func (r *repoPG) CreateDiagnosis(ctx context.Context, d *Diagnosis) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO diagnoses (
			id, medical_history_id, diagnosis_name, diagnosis_date,
			severity, description, icd_code, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.MedicalHistoryID, d.DiagnosisName, d.DiagnosisDate,
		d.Severity, d.Description, d.ICDCode, d.Status,
	)
	return err
}

func (r *repoPG) GetDiagnosis(ctx context.Context, id uuid.UUID) (*Diagnosis, error) {
	var d Diagnosis
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+diagnosisCols+` FROM diagnoses WHERE id = $1`, id).Scan(
		&d.ID, &d.MedicalHistoryID, &d.DiagnosisName, &d.DiagnosisDate,
		&d.Severity, &d.Description, &d.ICDCode, &d.Status)
	if err != nil {
		return nil, apperr.NotFoundIfNoRows(err)
	}
	return &d, nil
}

// UpdateDiagnosis rewrites the record's own fields; medical_history_id stays
// bound to the parent assigned at creation.
func (r *repoPG) UpdateDiagnosis(ctx context.Context, d *Diagnosis) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE diagnoses SET
			diagnosis_name=$2, diagnosis_date=$3, severity=$4,
			description=$5, icd_code=$6, status=$7
		WHERE id = $1`,
		d.ID, d.DiagnosisName, d.DiagnosisDate, d.Severity,
		d.Description, d.ICDCode, d.Status,
	)
	return err
}

func (r *repoPG) DeleteDiagnosis(ctx context.Context, id uuid.UUID) error {
	return r.deleteRow(ctx, "diagnoses", id)
}

func (r *repoPG) DiagnosesByHistory(ctx context.Context, historyID uuid.UUID) ([]*Diagnosis, error) {
	return r.queryDiagnoses(ctx, `
		SELECT `+diagnosisCols+` FROM diagnoses
		WHERE medical_history_id = $1
		ORDER BY diagnosis_date DESC`, historyID)
}

func (r *repoPG) DiagnosesByPatient(ctx context.Context, patientID uuid.UUID) ([]*Diagnosis, error) {
	return r.queryDiagnoses(ctx, `
		SELECT d.id, d.medical_history_id, d.diagnosis_name, d.diagnosis_date,
			d.severity, d.description, d.icd_code, d.status
		FROM diagnoses d
		JOIN medical_histories h ON h.id = d.medical_history_id
		WHERE h.patient_id = $1
		ORDER BY d.diagnosis_date DESC`, patientID)
}

func (r *repoPG) queryDiagnoses(ctx context.Context, sql string, args ...interface{}) ([]*Diagnosis, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var diagnoses []*Diagnosis
	for rows.Next() {
		var d Diagnosis
		if err := rows.Scan(&d.ID, &d.MedicalHistoryID, &d.DiagnosisName, &d.DiagnosisDate,
			&d.Severity, &d.Description, &d.ICDCode, &d.Status); err != nil {
			return nil, err
		}
		diagnoses = append(diagnoses, &d)
	}
	return diagnoses, rows.Err()
}

const diagnosisListCols = `d.id, d.medical_history_id, d.diagnosis_name, d.diagnosis_date,
	d.severity, d.description, d.icd_code, d.status,
	p.first_name || ' ' || p.last_name, p.patient_id`

func diagnosisQuery(f DiagnosisFilter) *db.Query {
	q := db.NewQuery("diagnoses d", diagnosisListCols)
	q.Join("JOIN medical_histories h ON h.id = d.medical_history_id")
	q.Join("JOIN patients p ON p.id = h.patient_id")
	if f.Query != "" {
		q.Contains(f.Query, "d.diagnosis_name", "d.description", "d.icd_code", "p.first_name", "p.last_name")
	}
	if f.Severity != nil {
		q.Equals("d.severity", *f.Severity)
	}
	q.OrderBy("d.diagnosis_date DESC")
	return q
}

func (r *repoPG) ListDiagnoses(ctx context.Context, f DiagnosisFilter, limit, offset int) ([]*DiagnosisListItem, int, error) {
	q := diagnosisQuery(f)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(limit, offset), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*DiagnosisListItem
	for rows.Next() {
		var it DiagnosisListItem
		if err := rows.Scan(&it.ID, &it.MedicalHistoryID, &it.DiagnosisName, &it.DiagnosisDate,
			&it.Severity, &it.Description, &it.ICDCode, &it.Status,
			&it.PatientName, &it.PatientPublicID); err != nil {
			return nil, 0, err
		}
		items = append(items, &it)
	}
	return items, total, rows.Err()
}

func (r *repoPG) DiagnosisCounters(ctx context.Context, f DiagnosisFilter) (DiagnosisCounters, error) {
	q := diagnosisQuery(f)

	var c DiagnosisCounters
	err := r.conn(ctx).QueryRow(ctx, q.AggregateSQL(`COUNT(*),
		COUNT(DISTINCT h.patient_id),
		COUNT(*) FILTER (WHERE d.diagnosis_date >= date_trunc('month', CURRENT_DATE))`),
		q.CountArgs()...).Scan(&c.Total, &c.DistinctPatients, &c.ThisMonth)
	return c, err
}

// -- Allergies --

const allergyCols = `id, medical_history_id, allergen, reaction, severity, identified_date, notes`

func (r *repoPG) CreateAllergy(ctx context.Context, a *Allergy) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO allergies (
			id, medical_history_id, allergen, reaction, severity, identified_date, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.MedicalHistoryID, a.Allergen, a.Reaction, a.Severity, a.IdentifiedDate, a.Notes,
	)
	return err
}

func (r *repoPG) GetAllergy(ctx context.Context, id uuid.UUID) (*Allergy, error) {
	var a Allergy
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+allergyCols+` FROM allergies WHERE id = $1`, id).Scan(
		&a.ID, &a.MedicalHistoryID, &a.Allergen, &a.Reaction, &a.Severity, &a.IdentifiedDate, &a.Notes)
	if err != nil {
		return nil, apperr.NotFoundIfNoRows(err)
	}
	return &a, nil
}

// UpdateAllergy rewrites the record's own fields; the parent history binding
// is fixed at creation.
func (r *repoPG) UpdateAllergy(ctx context.Context, a *Allergy) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE allergies SET
			allergen=$2, reaction=$3, severity=$4, identified_date=$5, notes=$6
		WHERE id = $1`,
		a.ID, a.Allergen, a.Reaction, a.Severity, a.IdentifiedDate, a.Notes,
	)
	return err
}

func (r *repoPG) DeleteAllergy(ctx context.Context, id uuid.UUID) error {
	return r.deleteRow(ctx, "allergies", id)
}

func (r *repoPG) AllergiesByHistory(ctx context.Context, historyID uuid.UUID) ([]*Allergy, error) {
	return r.queryAllergies(ctx, `
		SELECT `+allergyCols+` FROM allergies
		WHERE medical_history_id = $1
		ORDER BY identified_date DESC`, historyID)
}

func (r *repoPG) AllergiesByPatient(ctx context.Context, patientID uuid.UUID) ([]*Allergy, error) {
	return r.queryAllergies(ctx, `
		SELECT a.id, a.medical_history_id, a.allergen, a.reaction, a.severity, a.identified_date, a.notes
		FROM allergies a
		JOIN medical_histories h ON h.id = a.medical_history_id
		WHERE h.patient_id = $1
		ORDER BY a.identified_date DESC`, patientID)
}

func (r *repoPG) queryAllergies(ctx context.Context, sql string, args ...interface{}) ([]*Allergy, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allergies []*Allergy
	for rows.Next() {
		var a Allergy
		if err := rows.Scan(&a.ID, &a.MedicalHistoryID, &a.Allergen, &a.Reaction,
			&a.Severity, &a.IdentifiedDate, &a.Notes); err != nil {
			return nil, err
		}
		allergies = append(allergies, &a)
	}
	return allergies, rows.Err()
}

const allergyListCols = `a.id, a.medical_history_id, a.allergen, a.reaction,
	a.severity, a.identified_date, a.notes,
	p.first_name || ' ' || p.last_name, p.patient_id`

func (r *repoPG) ListAllergies(ctx context.Context, f AllergyFilter, limit, offset int) ([]*AllergyListItem, int, error) {
	q := db.NewQuery("allergies a", allergyListCols)
	q.Join("JOIN medical_histories h ON h.id = a.medical_history_id")
	q.Join("JOIN patients p ON p.id = h.patient_id")
	if f.Query != "" {
		q.Contains(f.Query, "a.allergen", "a.reaction", "p.first_name", "p.last_name")
	}
	if f.Severity != nil {
		q.Equals("a.severity", *f.Severity)
	}
	q.OrderBy("a.identified_date DESC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(limit, offset), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*AllergyListItem
	for rows.Next() {
		var it AllergyListItem
		if err := rows.Scan(&it.ID, &it.MedicalHistoryID, &it.Allergen, &it.Reaction,
			&it.Severity, &it.IdentifiedDate, &it.Notes,
			&it.PatientName, &it.PatientPublicID); err != nil {
			return nil, 0, err
		}
		items = append(items, &it)
	}
	return items, total, rows.Err()
}

// -- Medications --

const medicationCols = `id, medical_history_id, medication_name, dosage, frequency, route,
	start_date, end_date, purpose, side_effects, is_active, prescribed_by`

func (r *repoPG) CreateMedication(ctx context.Context, m *Medication) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medications (
			id, medical_history_id, medication_name, dosage, frequency, route,
			start_date, end_date, purpose, side_effects, is_active, prescribed_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		m.ID, m.MedicalHistoryID, m.MedicationName, m.Dosage, m.Frequency, m.Route,
		m.StartDate, m.EndDate, m.Purpose, m.SideEffects, m.IsActive, m.PrescribedBy,
	)
	return err
}

func (r *repoPG) GetMedication(ctx context.Context, id uuid.UUID) (*Medication, error) {
	var m Medication
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+medicationCols+` FROM medications WHERE id = $1`, id).Scan(
		&m.ID, &m.MedicalHistoryID, &m.MedicationName, &m.Dosage, &m.Frequency, &m.Route,
		&m.StartDate, &m.EndDate, &m.Purpose, &m.SideEffects, &m.IsActive, &m.PrescribedBy)
	if err != nil {
		return nil, apperr.NotFoundIfNoRows(err)
	}
	return &m, nil
}

// UpdateMedication rewrites the record's own fields; the parent history and
// the prescriber stamp are fixed at creation.
func (r *repoPG) UpdateMedication(ctx context.Context, m *Medication) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medications SET
			medication_name=$2, dosage=$3, frequency=$4, route=$5,
			start_date=$6, end_date=$7, purpose=$8, side_effects=$9, is_active=$10
		WHERE id = $1`,
		m.ID, m.MedicationName, m.Dosage, m.Frequency, m.Route,
		m.StartDate, m.EndDate, m.Purpose, m.SideEffects, m.IsActive,
	)
	return err
}

func (r *repoPG) DeleteMedication(ctx context.Context, id uuid.UUID) error {
	return r.deleteRow(ctx, "medications", id)
}

func (r *repoPG) MedicationsByHistory(ctx context.Context, historyID uuid.UUID) ([]*Medication, error) {
	return r.queryMedications(ctx, `
		SELECT `+medicationCols+` FROM medications
		WHERE medical_history_id = $1
		ORDER BY start_date DESC`, historyID)
}

func (r *repoPG) ActiveMedicationsByPatient(ctx context.Context, patientID uuid.UUID) ([]*Medication, error) {
	return r.queryMedications(ctx, `
		SELECT m.id, m.medical_history_id, m.medication_name, m.dosage, m.frequency, m.route,
			m.start_date, m.end_date, m.purpose, m.side_effects, m.is_active, m.prescribed_by
		FROM medications m
		JOIN medical_histories h ON h.id = m.medical_history_id
		WHERE h.patient_id = $1 AND m.is_active
		ORDER BY m.start_date DESC`, patientID)
}

func (r *repoPG) queryMedications(ctx context.Context, sql string, args ...interface{}) ([]*Medication, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var medications []*Medication
	for rows.Next() {
		var m Medication
		if err := rows.Scan(&m.ID, &m.MedicalHistoryID, &m.MedicationName, &m.Dosage, &m.Frequency, &m.Route,
			&m.StartDate, &m.EndDate, &m.Purpose, &m.SideEffects, &m.IsActive, &m.PrescribedBy); err != nil {
			return nil, err
		}
		medications = append(medications, &m)
	}
	return medications, rows.Err()
}

const medicationListCols = `m.id, m.medical_history_id, m.medication_name, m.dosage, m.frequency, m.route,
	m.start_date, m.end_date, m.purpose, m.side_effects, m.is_active, m.prescribed_by,
	p.first_name || ' ' || p.last_name, p.patient_id`

func medicationQuery(f MedicationFilter) *db.Query {
	q := db.NewQuery("medications m", medicationListCols)
	q.Join("JOIN medical_histories h ON h.id = m.medical_history_id")
	q.Join("JOIN patients p ON p.id = h.patient_id")
	q.Join("LEFT JOIN users u ON u.id = m.prescribed_by")
	if f.Query != "" {
		q.Contains(f.Query, "m.medication_name", "m.purpose",
			"p.first_name", "p.last_name", "u.first_name", "u.last_name")
	}
	if f.IsActive != nil {
		q.Equals("m.is_active", *f.IsActive)
	}
	q.OrderBy("m.start_date DESC")
	return q
}

func (r *repoPG) ListMedications(ctx context.Context, f MedicationFilter, limit, offset int) ([]*MedicationListItem, int, error) {
	q := medicationQuery(f)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(limit, offset), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*MedicationListItem
	for rows.Next() {
		var it MedicationListItem
		if err := rows.Scan(&it.ID, &it.MedicalHistoryID, &it.MedicationName, &it.Dosage, &it.Frequency, &it.Route,
			&it.StartDate, &it.EndDate, &it.Purpose, &it.SideEffects, &it.IsActive, &it.PrescribedBy,
			&it.PatientName, &it.PatientPublicID); err != nil {
			return nil, 0, err
		}
		items = append(items, &it)
	}
	return items, total, rows.Err()
}

func (r *repoPG) MedicationCounters(ctx context.Context, f MedicationFilter) (MedicationCounters, error) {
	q := medicationQuery(f)

	var c MedicationCounters
	err := r.conn(ctx).QueryRow(ctx, q.AggregateSQL(`COUNT(*),
		COUNT(*) FILTER (WHERE m.is_active),
		COUNT(DISTINCT h.patient_id)`),
		q.CountArgs()...).Scan(&c.Total, &c.Active, &c.DistinctPatients)
	return c, err
}

func (r *repoPG) deleteRow(ctx context.Context, table string, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

package db

import (
	"testing"
)

func TestQuery_NoFilters(t *testing.T) {
	q := NewQuery("patients", "id, first_name")
	q.OrderBy("created_at DESC")

	wantCount := "SELECT COUNT(*) FROM patients WHERE 1=1"
	if got := q.CountSQL(); got != wantCount {
		t.Errorf("CountSQL = %q, want %q", got, wantCount)
	}

	wantData := "SELECT id, first_name FROM patients WHERE 1=1 ORDER BY created_at DESC LIMIT $1 OFFSET $2"
	if got := q.DataSQL(20, 0); got != wantData {
		t.Errorf("DataSQL = %q, want %q", got, wantData)
	}

	args := q.DataArgs(20, 0)
	if len(args) != 2 || args[0] != 20 || args[1] != 0 {
		t.Errorf("unexpected data args: %v", args)
	}
}

func TestQuery_ContainsSharesOneArg(t *testing.T) {
	q := NewQuery("patients", "id")
	q.Contains("jane", "first_name", "last_name", "patient_id")

	want := "SELECT COUNT(*) FROM patients WHERE 1=1 AND (first_name ILIKE $1 OR last_name ILIKE $1 OR patient_id ILIKE $1)"
	if got := q.CountSQL(); got != want {
		t.Errorf("CountSQL = %q, want %q", got, want)
	}

	args := q.CountArgs()
	if len(args) != 1 || args[0] != "%jane%" {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestQuery_EqualsAfterContains(t *testing.T) {
	q := NewQuery("patients", "id")
	q.Contains("doe", "first_name", "last_name")
	q.Equals("gender", "F")

	want := "SELECT COUNT(*) FROM patients WHERE 1=1 AND (first_name ILIKE $1 OR last_name ILIKE $1) AND gender = $2"
	if got := q.CountSQL(); got != want {
		t.Errorf("CountSQL = %q, want %q", got, want)
	}
	if len(q.CountArgs()) != 2 {
		t.Errorf("expected 2 args, got %v", q.CountArgs())
	}

	// LIMIT/OFFSET placeholders continue after the filter args.
	data := q.DataSQL(20, 40)
	wantSuffix := "LIMIT $3 OFFSET $4"
	if got := data[len(data)-len(wantSuffix):]; got != wantSuffix {
		t.Errorf("DataSQL suffix = %q, want %q", got, wantSuffix)
	}
}

func TestQuery_JoinAndAggregate(t *testing.T) {
	q := NewQuery("diagnoses d", "d.id")
	q.Join("JOIN medical_histories h ON h.id = d.medical_history_id")
	q.Equals("d.severity", "severe")

	want := "SELECT COUNT(DISTINCT h.patient_id) FROM diagnoses d JOIN medical_histories h ON h.id = d.medical_history_id WHERE 1=1 AND d.severity = $1"
	if got := q.AggregateSQL("COUNT(DISTINCT h.patient_id)"); got != want {
		t.Errorf("AggregateSQL = %q, want %q", got, want)
	}
}

package patient

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	patients map[uuid.UUID]*Patient

	// collideNext forces that many patient_id collisions before an insert
	// succeeds.
	collideNext int
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	if m.collideNext > 0 {
		m.collideNext--
		return &pgconn.PgError{Code: "23505", ConstraintName: "patients_patient_id_key"}
	}
	for _, existing := range m.patients {
		if existing.PatientID == p.PatientID {
			return &pgconn.PgError{Code: "23505", ConstraintName: "patients_patient_id_key"}
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetByPatientID(_ context.Context, patientID string) (*Patient, error) {
	for _, p := range m.patients {
		if p.PatientID == patientID {
			return p, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return apperr.ErrNotFound
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.patients[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) matches(p *Patient, f Filter) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		hay := strings.ToLower(p.FirstName + " " + p.LastName + " " + p.PatientID + " " + p.Email + " " + p.Phone)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	if f.Gender != nil && p.Gender != *f.Gender {
		return false
	}
	if f.BloodGroup != nil && p.BloodGroup != *f.BloodGroup {
		return false
	}
	return true
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Patient, int, error) {
	var matched []*Patient
	for _, p := range m.patients {
		if m.matches(p, f) {
			matched = append(matched, p)
		}
	}
	total := len(matched)
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockRepo) QuickSearch(_ context.Context, term string, limit int) ([]*Patient, error) {
	results, _, err := m.List(context.Background(), Filter{Query: term}, limit, 0)
	return results, err
}

func validInput() Input {
	return Input{
		FirstName:             "Jane",
		LastName:              "Doe",
		DateOfBirth:           "1990-01-01",
		Gender:                GenderFemale,
		Phone:                 "555-1234",
		Address:               "1 Main St",
		EmergencyContactName:  "John Doe",
		EmergencyContactPhone: "555-5678",
	}
}

var patientIDFormat = regexp.MustCompile(`^PAT[0-9A-F]{8}$`)

// -- Tests --

func TestCreate_AssignsPatientID(t *testing.T) {
	svc := NewService(newMockRepo())
	actor := auth.Actor{ID: uuid.New(), Username: "drsmith", Role: auth.RoleDoctor, Authenticated: true}

	p, err := svc.Create(context.Background(), actor, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !patientIDFormat.MatchString(p.PatientID) {
		t.Errorf("patient_id %q does not match PAT + 8 uppercase hex", p.PatientID)
	}
	if p.RegisteredBy == nil || *p.RegisteredBy != actor.ID {
		t.Error("registered_by not stamped with the acting user")
	}
}

func TestCreate_RetriesOnCollision(t *testing.T) {
	repo := newMockRepo()
	repo.collideNext = 3
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), auth.Actor{}, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !patientIDFormat.MatchString(p.PatientID) {
		t.Errorf("patient_id = %q", p.PatientID)
	}
}

func TestCreate_GivesUpAfterMaxAttempts(t *testing.T) {
	repo := newMockRepo()
	repo.collideNext = patientIDAttempts
	svc := NewService(repo)

	if _, err := svc.Create(context.Background(), auth.Actor{}, validInput()); err == nil {
		t.Error("expected failure when every attempt collides")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	in := validInput()
	in.FirstName = ""
	in.Gender = "X"
	in.DateOfBirth = "01/01/1990"

	_, err := svc.Create(context.Background(), auth.Actor{}, in)
	v, ok := apperr.AsValidation(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"first_name", "gender", "date_of_birth"} {
		if _, present := v.Fields[field]; !present {
			t.Errorf("missing field error for %q", field)
		}
	}
}

func TestUpdate_NeverChangesPatientID(t *testing.T) {
	svc := NewService(newMockRepo())

	p, err := svc.Create(context.Background(), auth.Actor{}, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	originalID := p.PatientID

	in := validInput()
	in.FirstName = "Janet"
	updated, err := svc.Update(context.Background(), p.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.PatientID != originalID {
		t.Errorf("patient_id changed from %q to %q", originalID, updated.PatientID)
	}
	if updated.FirstName != "Janet" {
		t.Errorf("first_name = %q", updated.FirstName)
	}
}

func TestList_Filters(t *testing.T) {
	svc := NewService(newMockRepo())

	jane := validInput()
	if _, err := svc.Create(context.Background(), auth.Actor{}, jane); err != nil {
		t.Fatalf("create: %v", err)
	}

	bob := validInput()
	bob.FirstName = "Bob"
	bob.Gender = GenderMale
	bob.BloodGroup = "O+"
	if _, err := svc.Create(context.Background(), auth.Actor{}, bob); err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("free text", func(t *testing.T) {
		results, total, err := svc.List(context.Background(), Filter{Query: "Jane"}, 20, 0)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 1 || len(results) != 1 || results[0].FirstName != "Jane" {
			t.Errorf("got %d results, total %d", len(results), total)
		}
	})

	t.Run("gender filter", func(t *testing.T) {
		male := GenderMale
		_, total, err := svc.List(context.Background(), Filter{Gender: &male}, 20, 0)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 1 {
			t.Errorf("total = %d", total)
		}
	})

	t.Run("blood group filter", func(t *testing.T) {
		bg := "O+"
		_, total, err := svc.List(context.Background(), Filter{BloodGroup: &bg}, 20, 0)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 1 {
			t.Errorf("total = %d", total)
		}
	})
}

func TestQuickSearch_MinimumLength(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, err := svc.Create(context.Background(), auth.Actor{}, validInput()); err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, q := range []string{"", "J", " J "} {
		results, err := svc.QuickSearch(context.Background(), q)
		if err != nil {
			t.Fatalf("quick search %q: %v", q, err)
		}
		if len(results) != 0 {
			t.Errorf("query %q: expected empty result, got %d", q, len(results))
		}
	}
}

func TestQuickSearch_MinimumLengthCountsRunes(t *testing.T) {
	svc := NewService(newMockRepo())

	in := validInput()
	in.FirstName = "Émile"
	if _, err := svc.Create(context.Background(), auth.Actor{}, in); err != nil {
		t.Fatalf("create: %v", err)
	}

	// "É" is two bytes but a single character; it must fall under the
	// two-character minimum.
	results, err := svc.QuickSearch(context.Background(), "É")
	if err != nil {
		t.Fatalf("quick search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("single-character query matched %d results", len(results))
	}

	results, err = svc.QuickSearch(context.Background(), "Ém")
	if err != nil {
		t.Fatalf("quick search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("two-character query matched %d results", len(results))
	}
}

func TestQuickSearch_ResultShape(t *testing.T) {
	svc := NewService(newMockRepo())
	p, err := svc.Create(context.Background(), auth.Actor{}, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	results, err := svc.QuickSearch(context.Background(), "Jane")
	if err != nil {
		t.Fatalf("quick search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}

	r := results[0]
	if r.ID != p.ID || r.PatientID != p.PatientID {
		t.Errorf("result = %+v", r)
	}
	if r.Name != "Jane Doe" {
		t.Errorf("name = %q", r.Name)
	}
	if r.Text != "Jane Doe ("+p.PatientID+")" {
		t.Errorf("text = %q", r.Text)
	}
}

func TestNewPatientID_Format(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewPatientID()
		if !patientIDFormat.MatchString(id) {
			t.Fatalf("generated id %q does not match format", id)
		}
		seen[id] = true
	}
	if len(seen) < 95 {
		t.Errorf("only %d distinct ids out of 100", len(seen))
	}
}

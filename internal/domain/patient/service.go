package patient

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

// quickSearchMin is the minimum query length for the quick-search endpoint;
// shorter queries return no results at all.
const quickSearchMin = 2

const quickSearchLimit = 10

// patientIDAttempts bounds the insert retries on a patient_id collision.
const patientIDAttempts = 5

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

// Input carries the patient registration/edit form. Dates use YYYY-MM-DD.
type Input struct {
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	DateOfBirth           string `json:"date_of_birth"`
	Gender                string `json:"gender"`
	BloodGroup            string `json:"blood_group"`
	Phone                 string `json:"phone"`
	Email                 string `json:"email"`
	Address               string `json:"address"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
}

func (in Input) validate() (time.Time, error) {
	fields := map[string]string{}
	if in.FirstName == "" {
		fields["first_name"] = "first name is required"
	}
	if in.LastName == "" {
		fields["last_name"] = "last name is required"
	}
	if in.Gender != GenderMale && in.Gender != GenderFemale && in.Gender != GenderOther {
		fields["gender"] = "gender must be M, F or O"
	}
	if in.BloodGroup != "" && !BloodGroups[in.BloodGroup] {
		fields["blood_group"] = "unknown blood group"
	}
	if in.Phone == "" {
		fields["phone"] = "phone is required"
	}
	if in.Address == "" {
		fields["address"] = "address is required"
	}
	if in.EmergencyContactName == "" {
		fields["emergency_contact_name"] = "emergency contact name is required"
	}
	if in.EmergencyContactPhone == "" {
		fields["emergency_contact_phone"] = "emergency contact phone is required"
	}

	var dob time.Time
	if in.DateOfBirth == "" {
		fields["date_of_birth"] = "date of birth is required"
	} else {
		var err error
		dob, err = time.Parse("2006-01-02", in.DateOfBirth)
		if err != nil {
			fields["date_of_birth"] = "date of birth must be YYYY-MM-DD"
		}
	}

	if len(fields) > 0 {
		return time.Time{}, &apperr.Validation{Fields: fields}
	}
	return dob, nil
}

// Create registers a new patient for the acting user. The public patient_id
// is generated server side; on the rare collision the insert is retried with
// a fresh id rather than surfacing the conflict.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in Input) (*Patient, error) {
	dob, err := in.validate()
	if err != nil {
		return nil, err
	}

	p := &Patient{
		FirstName:             in.FirstName,
		LastName:              in.LastName,
		DateOfBirth:           dob,
		Gender:                in.Gender,
		BloodGroup:            in.BloodGroup,
		Phone:                 in.Phone,
		Email:                 in.Email,
		Address:               in.Address,
		EmergencyContactName:  in.EmergencyContactName,
		EmergencyContactPhone: in.EmergencyContactPhone,
	}
	if actor.ID != uuid.Nil {
		id := actor.ID
		p.RegisteredBy = &id
	}

	for attempt := 0; attempt < patientIDAttempts; attempt++ {
		p.PatientID = NewPatientID()
		err := s.patients.Create(ctx, p)
		if err == nil {
			return p, nil
		}
		if apperr.IsUniqueViolation(err, "patients_patient_id_key") {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("could not allocate a unique patient id after %d attempts", patientIDAttempts)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

// Update applies the edit form to an existing patient. patient_id is kept
// exactly as assigned at creation.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Patient, error) {
	dob, err := in.validate()
	if err != nil {
		return nil, err
	}

	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.FirstName = in.FirstName
	p.LastName = in.LastName
	p.DateOfBirth = dob
	p.Gender = in.Gender
	p.BloodGroup = in.BloodGroup
	p.Phone = in.Phone
	p.Email = in.Email
	p.Address = in.Address
	p.EmergencyContactName = in.EmergencyContactName
	p.EmergencyContactPhone = in.EmergencyContactPhone

	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, f, limit, offset)
}

// AttachPhoto records the stored photo id on the patient.
func (s *Service) AttachPhoto(ctx context.Context, id uuid.UUID, photoID string) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.PhotoID = &photoID
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// QuickSearch backs the incremental patient picker. Queries under two
// characters return an empty result set regardless of store contents.
func (s *Service) QuickSearch(ctx context.Context, term string) ([]SearchResult, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < quickSearchMin {
		return []SearchResult{}, nil
	}

	patients, err := s.patients.QuickSearch(ctx, term, quickSearchLimit)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(patients))
	for _, p := range patients {
		results = append(results, SearchResult{
			ID:        p.ID,
			Text:      fmt.Sprintf("%s (%s)", p.FullName(), p.PatientID),
			PatientID: p.PatientID,
			Name:      p.FullName(),
		})
	}
	return results, nil
}

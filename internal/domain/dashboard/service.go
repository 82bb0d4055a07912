package dashboard

import (
	"context"

	"github.com/hms/hms/internal/domain/clinical"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/auth"
)

// RoleCounter provides the staff headcounts shown on the general
// dashboard. The identity service satisfies it.
type RoleCounter interface {
	CountByRole(ctx context.Context, role string) (int, error)
}

type Service struct {
	repo  Repository
	users RoleCounter
}

func NewService(repo Repository, users RoleCounter) *Service {
	return &Service{repo: repo, users: users}
}

// Overview assembles the general staff dashboard.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	counts, err := s.repo.OverviewCounts(ctx)
	if err != nil {
		return nil, err
	}
	doctors, err := s.users.CountByRole(ctx, auth.RoleDoctor)
	if err != nil {
		return nil, err
	}
	nurses, err := s.users.CountByRole(ctx, auth.RoleNurse)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.RecentPatients(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []*patient.Patient{}
	}

	return &Overview{
		TotalPatients:  counts.Patients,
		TotalDoctors:   doctors,
		TotalNurses:    nurses,
		TotalRecords:   counts.Records,
		RecentPatients: recent,
	}, nil
}

// AdminOverview assembles the clinical admin dashboard.
func (s *Service) AdminOverview(ctx context.Context) (*AdminOverview, error) {
	counts, err := s.repo.AdminCounts(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.RecentPatients(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	critical, err := s.repo.CriticalAllergies(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	diagnoses, err := s.repo.RecentDiagnoses(ctx, recentLimit)
	if err != nil {
		return nil, err
	}

	out := &AdminOverview{
		TotalPatients:     counts.Patients,
		TotalAllergies:    counts.Allergies,
		TotalDiagnoses:    counts.Diagnoses,
		TotalMedications:  counts.Medications,
		RecentPatients:    recent,
		CriticalAllergies: critical,
		RecentDiagnoses:   diagnoses,
	}
	if out.RecentPatients == nil {
		out.RecentPatients = []*patient.Patient{}
	}
	if out.CriticalAllergies == nil {
		out.CriticalAllergies = []*clinical.AllergyListItem{}
	}
	if out.RecentDiagnoses == nil {
		out.RecentDiagnoses = []*clinical.DiagnosisListItem{}
	}
	return out, nil
}

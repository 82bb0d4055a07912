package dashboard

import (
	"context"

	"github.com/hms/hms/internal/domain/clinical"
	"github.com/hms/hms/internal/domain/patient"
)

// Repository reads the dashboard aggregates. Everything here is derived
// data; the dashboards never write.
type Repository interface {
	OverviewCounts(ctx context.Context) (OverviewCounts, error)
	AdminCounts(ctx context.Context) (AdminCounts, error)
	RecentPatients(ctx context.Context, limit int) ([]*patient.Patient, error)
	CriticalAllergies(ctx context.Context, limit int) ([]*clinical.AllergyListItem, error)
	RecentDiagnoses(ctx context.Context, limit int) ([]*clinical.DiagnosisListItem, error)
}

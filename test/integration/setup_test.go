// Package integration holds tests that run against a live Postgres. They
// are skipped unless DATABASE_URL points at a database the suite may write
// to; migrations are applied once per run.
package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/domain/clinical"
	"github.com/hms/hms/internal/domain/identity"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping live database tests")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, url, 4, 1)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	migrateOnce.Do(func() {
		_, migrateErr = db.NewMigrator(pool, migrationsDir()).Up(ctx)
	})
	if migrateErr != nil {
		t.Fatalf("apply migrations: %v", migrateErr)
	}
	return pool
}

// migrationsDir locates the migrations directory relative to this file.
func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

func createTestUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool) *identity.User {
	t.Helper()
	u := &identity.User{
		Username:     "dr_" + uuid.New().String()[:8],
		FirstName:    "Gregory",
		LastName:     "House",
		Role:         auth.RoleDoctor,
		PasswordHash: "x",
	}
	if err := identity.NewRepo(pool).Create(ctx, u); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return u
}

func createTestPatient(t *testing.T, ctx context.Context, pool *pgxpool.Pool, registeredBy uuid.UUID) *patient.Patient {
	t.Helper()
	by := registeredBy
	p := &patient.Patient{
		PatientID:             patient.NewPatientID(),
		FirstName:             "Jane",
		LastName:              "Doe",
		DateOfBirth:           time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:                patient.GenderFemale,
		Phone:                 "555-1234",
		Address:               "1 Main St",
		EmergencyContactName:  "John Doe",
		EmergencyContactPhone: "555-5678",
		RegisteredBy:          &by,
	}
	if err := patient.NewRepo(pool).Create(ctx, p); err != nil {
		t.Fatalf("create test patient: %v", err)
	}
	return p
}

func createTestHistory(t *testing.T, ctx context.Context, pool *pgxpool.Pool, patientID uuid.UUID, recordedBy *uuid.UUID) *clinical.MedicalHistory {
	t.Helper()
	h := &clinical.MedicalHistory{
		PatientID:      patientID,
		DateRecorded:   time.Now().UTC(),
		RecordedBy:     recordedBy,
		ChiefComplaint: "Fever and cough",
	}
	if err := clinical.NewRepo(pool).CreateHistory(ctx, h); err != nil {
		t.Fatalf("create test history: %v", err)
	}
	return h
}

func deleteUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) {
	t.Helper()
	if _, err := pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		t.Logf("warning: delete test user: %v", err)
	}
}

func countRows(t *testing.T, ctx context.Context, pool *pgxpool.Pool, table string, id uuid.UUID) int {
	t.Helper()
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = $1`, table)
	if err := pool.QueryRow(ctx, query, id).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

package integration

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	dcm "github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/radcase/radcase/internal/domain/cases"
	"github.com/radcase/radcase/internal/platform/db"
)

// testDB holds the shared database infrastructure for integration tests.
type testDB struct {
	Pool          *pgxpool.Pool
	ConnStr       string
	MigrationsDir string
}

// globalDB is the package-level test database, initialized once in TestMain.
var globalDB *testDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	tdb, cleanup, err := setupPostgresContainer(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup postgres container: %v\n", err)
		os.Exit(1)
	}

	globalDB = tdb
	code := m.Run()
	cleanup()
	os.Exit(code)
}

// setupPostgresContainer starts a Postgres 16 container, connects a pool to it
// and applies all migrations.
func setupPostgresContainer(ctx context.Context) (*testDB, func(), error) {
	migrationsDir := findMigrationsDir()

	connStr, cleanup, err := startWithTestcontainers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("start postgres container: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		cleanup()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	migrator := db.NewMigrator(pool, migrationsDir)
	if _, err := migrator.Up(ctx); err != nil {
		pool.Close()
		cleanup()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &testDB{
			Pool:          pool,
			ConnStr:       connStr,
			MigrationsDir: migrationsDir,
		}, func() {
			pool.Close()
			cleanup()
		}, nil
}

// findMigrationsDir locates the migrations directory relative to this test file.
func findMigrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	// test/integration -> repo root
	root := filepath.Join(dir, "..", "..")
	return filepath.Join(root, "migrations")
}

// createTestCase inserts a case through the repo and returns it.
func createTestCase(t *testing.T, ctx context.Context, title string) *cases.Case {
	t.Helper()
	repo := cases.NewRepo(globalDB.Pool)
	cs := &cases.Case{
		Title:        title,
		Description:  "Integration test case",
		Modality:     "ct",
		Subspecialty: "neuro",
		Difficulty:   "medium",
	}
	if err := repo.Create(ctx, cs); err != nil {
		t.Fatalf("create test case: %v", err)
	}
	return cs
}

// makeDicomFile produces an in-memory DICOM file with the given identifiers.
func makeDicomFile(t *testing.T, sopUID, seriesUID string) []byte {
	t.Helper()
	elements := []*dcm.Element{
		newElement(t, tag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"}),
		newElement(t, tag.SOPClassUID, []string{"1.2.840.10008.5.1.4.1.1.4"}),
		newElement(t, tag.SOPInstanceUID, []string{sopUID}),
		newElement(t, tag.SeriesInstanceUID, []string{seriesUID}),
		newElement(t, tag.SeriesNumber, []string{"1"}),
		newElement(t, tag.SeriesDescription, []string{"Axial T1"}),
		newElement(t, tag.Modality, []string{"MR"}),
		newElement(t, tag.PatientName, []string{"Doe^Jane"}),
		newElement(t, tag.PatientID, []string{"PID123456"}),
		newElement(t, tag.StudyDate, []string{"20240115"}),
	}
	var buf bytes.Buffer
	if err := dcm.Write(&buf, dcm.Dataset{Elements: elements}, dcm.SkipVRVerification()); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return buf.Bytes()
}

func newElement(t *testing.T, tg tag.Tag, data interface{}) *dcm.Element {
	t.Helper()
	e, err := dcm.NewElement(tg, data)
	if err != nil {
		t.Fatalf("new element: %v", err)
	}
	return e
}

// uniqueUID generates a unique DICOM UID suffix for test isolation.
func uniqueUID(prefix string) string {
	return fmt.Sprintf("%s.%d", prefix, uuid.New().ID())
}

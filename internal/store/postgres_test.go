package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/agrosoluce/agrosoluce/internal/assessment"
	"github.com/agrosoluce/agrosoluce/internal/directory"
	"github.com/agrosoluce/agrosoluce/internal/matching"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresStore(db, nil), mock
}

func sampleMatches() []matching.MatchResult {
	return []matching.MatchResult{
		{
			Cooperative: &directory.Cooperative{ID: "coop-1", Name: "Coop One", Country: "CI"},
			MatchScore:  95,
			Reasons:     []string{"Located in target country"},
		},
		{Cooperative: nil, MatchScore: 10},
		{
			Cooperative: &directory.Cooperative{ID: "coop-2", Name: "Coop Two"},
			MatchScore:  25,
		},
	}
}

func TestPostgresEnsureSchema(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS buyer_request_matches").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS assessments").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS assessments_cooperative_id_idx").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPostgresSaveMatchesReplacesShortlist(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM buyer_request_matches WHERE buyer_request_id").
		WithArgs("req-1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("INSERT INTO buyer_request_matches").
		WithArgs("req-1", "coop-1", "Coop One", 95, []byte(`["Located in target country"]`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO buyer_request_matches").
		WithArgs("req-1", "coop-2", "Coop Two", 25, []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := s.SaveMatches(context.Background(), "req-1", sampleMatches()); err != nil {
		t.Fatalf("SaveMatches: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPostgresSaveMatchesRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM buyer_request_matches").WithArgs("req-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO buyer_request_matches").WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	if err := s.SaveMatches(context.Background(), "req-1", sampleMatches()); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPostgresSaveMatchesEmptyShortlistClearsRequest(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM buyer_request_matches").WithArgs("req-1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	if err := s.SaveMatches(context.Background(), "req-1", nil); err != nil {
		t.Fatalf("SaveMatches: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPostgresSaveMatchesRequiresRequestID(t *testing.T) {
	s, mock := newMockStore(t)

	if err := s.SaveMatches(context.Background(), " ", sampleMatches()); err == nil {
		t.Fatal("expected error for empty request id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPostgresSaveAssessment(t *testing.T) {
	s, mock := newMockStore(t)

	completed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	record := &assessment.Record{
		ID:          "5f0c6f5e-8a0b-4c52-9b8e-3f4c1f6e2a10",
		SessionID:   "session-1",
		Results:     assessment.Results{OverallScore: 65},
		CompletedAt: completed,
	}

	mock.ExpectExec("INSERT INTO assessments").
		WithArgs(record.ID, "session-1", nil, 65.0, sqlmock.AnyArg(), completed).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.SaveAssessment(context.Background(), record); err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestOpenPostgres(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	original := openDB
	var gotDriver string
	openDB = func(driver, dsn string) (*sql.DB, error) {
		gotDriver = driver
		return db, nil
	}
	t.Cleanup(func() { openDB = original })

	mock.ExpectPing()
	mock.ExpectClose()

	s, err := OpenPostgres(context.Background(), "postgres://localhost/agrosoluce", nil)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	if gotDriver != "pgx" {
		t.Fatalf("expected pgx driver, got %q", gotDriver)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}

	if _, err := OpenPostgres(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty url")
	}
}

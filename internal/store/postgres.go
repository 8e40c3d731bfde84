package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	"go.uber.org/zap"

	"github.com/agrosoluce/agrosoluce/internal/assessment"
	"github.com/agrosoluce/agrosoluce/internal/matching"
)

//go:embed schema.sql
var schema string

const pingTimeout = 5 * time.Second

var openDB = sql.Open

// PostgresStore keeps shortlists in buyer_request_matches and completed
// assessments in assessments.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenPostgres connects through the pgx database/sql driver and verifies
// connectivity.
func OpenPostgres(ctx context.Context, databaseURL string, logger *zap.Logger) (*PostgresStore, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("database url is empty")
	}

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return NewPostgresStore(db, logger), nil
}

func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{db: db, logger: logger}
}

// EnsureSchema creates the tables if they are missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func schemaStatements() []string {
	var statements []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// SaveMatches replaces the shortlist stored for the request in a single
// transaction. Rows of earlier runs are removed before the new ones are written.
func (s *PostgresStore) SaveMatches(ctx context.Context, requestID string, matches []matching.MatchResult) error {
	const clearQuery = `DELETE FROM buyer_request_matches WHERE buyer_request_id = $1`
	const query = `
INSERT INTO buyer_request_matches (buyer_request_id, cooperative_id, cooperative_name, match_score, reasons)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (buyer_request_id, cooperative_id) DO UPDATE SET
	cooperative_name = EXCLUDED.cooperative_name,
	match_score = EXCLUDED.match_score,
	reasons = EXCLUDED.reasons,
	updated_at = now()`

	rows, err := toRows(requestID, matches)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, clearQuery, requestID); err != nil {
		return fmt.Errorf("clear shortlist %s: %w", requestID, err)
	}

	for _, row := range rows {
		reasons, err := json.Marshal(row.Reasons)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, row.BuyerRequestID, row.CooperativeID, row.Name, row.MatchScore, reasons); err != nil {
			return fmt.Errorf("upsert match %s: %w", row.CooperativeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("matches saved",
		zap.String("request_id", requestID),
		zap.Int("count", len(rows)),
	)
	return nil
}

func (s *PostgresStore) SaveAssessment(ctx context.Context, record *assessment.Record) error {
	const query = `
INSERT INTO assessments (id, session_id, cooperative_id, overall_score, results, completed_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	if record == nil {
		return errors.New("assessment record is required")
	}

	results, err := json.Marshal(record.Results)
	if err != nil {
		return err
	}

	var cooperativeID any
	if record.CooperativeID != "" {
		cooperativeID = record.CooperativeID
	}

	if _, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.SessionID,
		cooperativeID,
		record.Results.OverallScore,
		results,
		record.CompletedAt,
	); err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}

	s.logger.Info("assessment saved",
		zap.String("session_id", record.SessionID),
		zap.Float64("overall_score", record.Results.OverallScore),
	)
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

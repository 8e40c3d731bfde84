package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agrosoluce/agrosoluce/internal/assessment"
	"github.com/agrosoluce/agrosoluce/internal/matching"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// Store persists shortlisted matches and completed assessments.
type Store interface {
	SaveMatches(ctx context.Context, requestID string, matches []matching.MatchResult) error
	SaveAssessment(ctx context.Context, record *assessment.Record) error
	Close() error
}

type Config struct {
	Driver      string
	Path        string
	DatabaseURL string
}

// New opens the store selected by cfg.Driver. An empty driver selects the file store.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverFile:
		return NewFileStore(cfg.Path, logger)
	case DriverPostgres:
		s, err := OpenPostgres(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// matchRow is the persisted form of a single match.
type matchRow struct {
	BuyerRequestID string   `json:"buyerRequestId"`
	CooperativeID  string   `json:"cooperativeId"`
	Name           string   `json:"name"`
	Country        string   `json:"country,omitempty"`
	MatchScore     int      `json:"matchScore"`
	Reasons        []string `json:"reasons"`
}

func toRows(requestID string, matches []matching.MatchResult) ([]matchRow, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, errors.New("buyer request id is required")
	}

	rows := make([]matchRow, 0, len(matches))
	for _, m := range matches {
		if m.Cooperative == nil {
			continue
		}
		reasons := m.Reasons
		if reasons == nil {
			reasons = []string{}
		}
		rows = append(rows, matchRow{
			BuyerRequestID: requestID,
			CooperativeID:  m.Cooperative.ID,
			Name:           m.Cooperative.Name,
			Country:        m.Cooperative.Country,
			MatchScore:     m.MatchScore,
			Reasons:        reasons,
		})
	}
	return rows, nil
}

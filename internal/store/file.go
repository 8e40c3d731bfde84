package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agrosoluce/agrosoluce/internal/assessment"
	"github.com/agrosoluce/agrosoluce/internal/matching"
)

const defaultDir = "agrosoluce-data"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileStore writes one indented JSON document per saved shortlist or assessment.
type FileStore struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

type matchesDocument struct {
	BuyerRequestID string     `json:"buyerRequestId"`
	SavedAt        time.Time  `json:"savedAt"`
	Matches        []matchRow `json:"matches"`
}

func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if dir = strings.TrimSpace(dir); dir == "" {
		dir = defaultDir
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	return &FileStore{dir: dir, logger: logger, now: time.Now}, nil
}

func (s *FileStore) Dir() string {
	return s.dir
}

// SaveMatches replaces the shortlist stored for the request.
func (s *FileStore) SaveMatches(_ context.Context, requestID string, matches []matching.MatchResult) error {
	rows, err := toRows(requestID, matches)
	if err != nil {
		return err
	}

	path := s.path("matches", requestID)
	doc := matchesDocument{
		BuyerRequestID: requestID,
		SavedAt:        s.now().UTC(),
		Matches:        rows,
	}
	if err := writeJSON(path, doc); err != nil {
		return fmt.Errorf("save matches: %w", err)
	}

	s.logger.Info("matches saved", zap.String("path", path), zap.Int("count", len(rows)))
	return nil
}

func (s *FileStore) SaveAssessment(_ context.Context, record *assessment.Record) error {
	if record == nil {
		return errors.New("assessment record is required")
	}

	path := s.path("assessment", record.SessionID)
	if err := writeJSON(path, record); err != nil {
		return fmt.Errorf("save assessment: %w", err)
	}

	s.logger.Info("assessment saved", zap.String("path", path), zap.Float64("overall_score", record.Results.OverallScore))
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(kind, id string) string {
	name := unsafeNameChars.ReplaceAllString(strings.TrimSpace(id), "_")
	return filepath.Join(s.dir, fmt.Sprintf("%s-%s.json", kind, name))
}

func writeJSON(path string, v any) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

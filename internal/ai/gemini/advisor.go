package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/agrosoluce/agrosoluce/internal/ai"
	"github.com/agrosoluce/agrosoluce/internal/assessment"
	"github.com/agrosoluce/agrosoluce/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// Advisor asks Gemini to explain assessment results.
type Advisor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var systemPrompt string

const (
	defaultMaxLogLength = 200
	maxActions          = 5
)

var _ ai.Advisor = (*Advisor)(nil)

func NewAdvisor(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Advisor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Advisor{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

type sectionPayload struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Guidance string  `json:"guidance,omitempty"`
	Score    float64 `json:"score"`
}

type advicePayload struct {
	OverallScore    float64                     `json:"overallScore"`
	Sections        []sectionPayload            `json:"sections"`
	Recommendations []assessment.Recommendation `json:"recommendations"`
}

func (a *Advisor) Advise(ctx context.Context, catalog *assessment.Catalog, results assessment.Results) (*ai.Narrative, error) {
	if a == nil || a.generator == nil {
		return nil, errors.New("gemini advisor is not initialized")
	}
	if len(results.Sections) == 0 {
		return nil, errors.New("assessment results have no sections")
	}

	message, err := buildMessage(catalog, results)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini advise request",
		zap.Float64("overall_score", results.OverallScore),
		zap.Int("message_length", utf8.RuneCountInString(message)),
		zap.String("message_preview", utils.TruncateForLog(message, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, systemPrompt, message)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini advise response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	narrative, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	narrative.Raw = raw
	return narrative, nil
}

func buildMessage(catalog *assessment.Catalog, results assessment.Results) (string, error) {
	guidance := make(map[string]string)
	if catalog != nil {
		for _, section := range catalog.Sections {
			guidance[section.ID] = section.Guidance
		}
	}

	payload := advicePayload{
		OverallScore:    results.OverallScore,
		Recommendations: results.Recommendations,
	}
	for _, section := range results.Sections {
		payload.Sections = append(payload.Sections, sectionPayload{
			ID:       section.SectionID,
			Title:    section.Title,
			Guidance: guidance[section.SectionID],
			Score:    section.Score,
		})
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal assessment payload: %w", err)
	}

	return "Assessment results:\n" + string(data), nil
}

func parseResponse(raw string) (*ai.Narrative, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	narrative := &ai.Narrative{Summary: coerceString(data["summary"])}
	if narrative.Summary == "" {
		return nil, errors.New("gemini response has no summary")
	}

	switch actions := data["actions"].(type) {
	case []any:
		for _, action := range actions {
			if text := coerceString(action); text != "" {
				narrative.Actions = append(narrative.Actions, text)
			}
		}
	case string:
		if text := strings.TrimSpace(actions); text != "" {
			narrative.Actions = append(narrative.Actions, text)
		}
	}

	if len(narrative.Actions) > maxActions {
		narrative.Actions = narrative.Actions[:maxActions]
	}

	return narrative, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

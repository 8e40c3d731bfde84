package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/agrosoluce/agrosoluce/internal/directory"
)

const (
	FieldRequestID     = "request_id"
	FieldCommodity     = "commodity"
	FieldTargetCountry = "target_country"
	FieldCooperativeID = "cooperative_id"
	FieldSessionID     = "session_id"
	FieldCountry       = "country"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches the provided fields to the logger, defaulting to a
// no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// RequestFields describes a buyer request.
func RequestFields(request *directory.BuyerRequest) []zap.Field {
	if request == nil {
		return nil
	}
	return StringFields(
		StringField{Key: FieldRequestID, Value: request.ID},
		StringField{Key: FieldCommodity, Value: request.Commodity},
		StringField{Key: FieldTargetCountry, Value: request.TargetCountry},
	)
}

// CooperativeFields describes a cooperative.
func CooperativeFields(c *directory.Cooperative) []zap.Field {
	if c == nil {
		return nil
	}
	return StringFields(
		StringField{Key: FieldCooperativeID, Value: c.ID},
		StringField{Key: FieldCountry, Value: c.Country},
		StringField{Key: FieldCommodity, Value: c.Commodity},
	)
}

// SessionFields describes an assessment session, optionally bound to a cooperative.
func SessionFields(sessionID, cooperativeID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldSessionID, Value: sessionID},
		StringField{Key: FieldCooperativeID, Value: cooperativeID},
	)
}

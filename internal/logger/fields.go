package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldRole   = "role"
	FieldUserID = "user_id"
	FieldAPIURL = "api_url"
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

// WithFields attaches fields to the logger, falling back to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// SessionFields describes who is talking to which backend. Unknown values are skipped.
func SessionFields(role, userID, apiURL string) []zap.Field {
	return StringFields(
		StringField{Key: FieldRole, Value: role},
		StringField{Key: FieldUserID, Value: userID},
		StringField{Key: FieldAPIURL, Value: apiURL},
	)
}

// WithSession attaches the session fields to the provided logger.
func WithSession(logger *zap.Logger, role, userID, apiURL string) *zap.Logger {
	return WithFields(logger, SessionFields(role, userID, apiURL)...)
}

package logging

import (
	"fmt"

	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/hashicorp/go-retryablehttp"
)

// RetryLogger routes go-retryablehttp's attempt logs to a dataverse.Logger.
type RetryLogger struct {
	logger dataverse.Logger
}

// NewRetryLogger creates a bridge for logger.
func NewRetryLogger(logger dataverse.Logger) *RetryLogger {
	return &RetryLogger{logger: logger}
}

// Error implements retryablehttp.LeveledLogger.
func (r *RetryLogger) Error(msg string, keysAndValues ...interface{}) {
	r.logger.Error(msg, pairs(keysAndValues))
}

// Info implements retryablehttp.LeveledLogger.
func (r *RetryLogger) Info(msg string, keysAndValues ...interface{}) {
	r.logger.Info(msg, pairs(keysAndValues))
}

// Debug implements retryablehttp.LeveledLogger.
func (r *RetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	r.logger.Debug(msg, pairs(keysAndValues))
}

// Warn implements retryablehttp.LeveledLogger.
func (r *RetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	r.logger.Warn(msg, pairs(keysAndValues))
}

// pairs turns alternating keys and values into a field map. A dangling key
// is kept with a nil value.
func pairs(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, (len(keysAndValues)+1)/2)

	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])

		var value interface{}
		if i+1 < len(keysAndValues) {
			value = keysAndValues[i+1]
		}

		fields[key] = value
	}

	return fields
}

var _ retryablehttp.LeveledLogger = (*RetryLogger)(nil)

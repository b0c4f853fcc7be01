// Package logging builds the zap logger used by the CLI and adapts it to the
// dataverse.Logger and go-retryablehttp logger interfaces.
package logging

import (
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fivetwenty-io/dvdoc/internal/constants"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Levels accepted in LOG_LEVEL.
const (
	LevelTrace = "TRACE"
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Encodings accepted in LOG_ENCODING.
const (
	EncodingJSON    = "json"
	EncodingConsole = "console"
)

// Options selects the level, encoding and sink of a logger.
type Options struct {
	Level    string
	Encoding string
	Output   io.Writer
}

// OptionsFromEnv reads LOG_LEVEL and LOG_ENCODING through lookup. Logs go to
// output, normally stderr, so command output on stdout stays machine readable.
func OptionsFromEnv(lookup func(string) (string, bool), output io.Writer) Options {
	level, _ := lookup(constants.EnvLogLevel)
	encoding, _ := lookup(constants.EnvLogEncoding)

	return Options{
		Level:    level,
		Encoding: encoding,
		Output:   output,
	}
}

// New builds a logger. An empty encoding means console.
func New(opts Options) *zap.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	encoderConfig := zapcore.EncoderConfig{
		LevelKey:       "level",
		TimeKey:        "timestamp",
		NameKey:        "logger",
		CallerKey:      zapcore.OmitKey,
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(time.RFC3339),
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var encoder zapcore.Encoder
	if strings.EqualFold(opts.Encoding, EncodingJSON) {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(output), ParseLevel(opts.Level))

	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))
}

// ParseLevel maps a LOG_LEVEL value to a zap level. Unknown values mean
// warn; the CLI is quiet unless asked.
func ParseLevel(level string) zap.AtomicLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case LevelDebug, LevelTrace:
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case LevelInfo:
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case LevelError:
		return zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
}

// Adapter implements dataverse.Logger on top of zap.
type Adapter struct {
	logger *zap.Logger
}

// NewAdapter wraps a zap logger. A nil logger discards everything.
func NewAdapter(logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Adapter{logger: logger}
}

// Debug implements dataverse.Logger.
func (a *Adapter) Debug(msg string, fields map[string]interface{}) {
	a.logger.Debug(msg, zapFields(fields)...)
}

// Info implements dataverse.Logger.
func (a *Adapter) Info(msg string, fields map[string]interface{}) {
	a.logger.Info(msg, zapFields(fields)...)
}

// Warn implements dataverse.Logger.
func (a *Adapter) Warn(msg string, fields map[string]interface{}) {
	a.logger.Warn(msg, zapFields(fields)...)
}

// Error implements dataverse.Logger.
func (a *Adapter) Error(msg string, fields map[string]interface{}) {
	a.logger.Error(msg, zapFields(fields)...)
}

// zapFields converts a field map in key order so output is stable.
func zapFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, key := range keys {
		out = append(out, zap.Any(key, fields[key]))
	}

	return out
}

var _ dataverse.Logger = (*Adapter)(nil)

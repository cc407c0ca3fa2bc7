// Package logging wires zap for the CLI and the HTTP server.
// Commands log to stderr so stdout stays free for reports.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"inventory-valuation/internal/errors"
)

// Logger is shared by commands that are not handed a logger explicitly
var Logger *zap.Logger

// Config is the "logging" block of the tool's config file
type Config struct {
	// Level is debug, info, warn or error; anything else means info
	Level string `json:"level"`

	// Format is console for terminals, json for log collectors
	Format string `json:"format"`

	// Output is stderr, stdout or a file path to append to
	Output string `json:"output"`

	// Development adds stack traces to error entries
	Development bool `json:"development"`
}

// DefaultConfig keeps valuation runs quiet unless something needs attention
func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: "console",
		Output: "stderr",
	}
}

// Initialize replaces Logger with one built from cfg
func Initialize(cfg Config) error {
	var writer io.Writer
	switch cfg.Output {
	case "", "stderr":
		writer = os.Stderr
	case "stdout":
		writer = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return errors.Config("open log file", err).WithContext("path", cfg.Output)
		}
		writer = file
	}

	Logger = New(cfg, writer)
	return nil
}

// New builds a logger for cfg that writes to w. Logger is left alone.
func New(cfg Config, w io.Writer) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	if cfg.Development {
		return zap.New(core, zap.Development(), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}
	return zap.New(core, zap.AddCaller())
}

// Nop silences Logger, for tests that drive commands
func Nop() {
	Logger = zap.NewNop()
}

// Sync flushes buffered entries before the process exits
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// Info logs through Logger
func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

// Error logs through Logger
func Error(msg string, fields ...zap.Field) {
	Logger.Error(msg, fields...)
}

func init() {
	Logger = New(DefaultConfig(), os.Stderr)
}

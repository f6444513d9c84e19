// Package logging builds the zap logger shared by every component.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/lexguard/internal/model"
)

// New creates a logger writing to stderr, so command output on stdout
// stays clean
func New(cfg model.LoggingConfig) (*zap.Logger, error) {
	return NewWithSink(cfg, zapcore.Lock(os.Stderr))
}

// NewWithSink creates a logger writing to sink
func NewWithSink(cfg model.LoggingConfig, sink zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoder, err := newEncoder(cfg.Format)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoder, sink, level)
	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel)).Named("lexguard"), nil
}

// ParseLevel accepts debug, info, warn and error; empty means warn
func ParseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.WarnLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func newEncoder(format string) (zapcore.Encoder, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console":
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderCfg), nil
	case "json":
		return zapcore.NewJSONEncoder(encoderCfg), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (supported: console, json)", format)
	}
}

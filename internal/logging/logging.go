// Package logging wraps zap.
//
// We use the sugared logger and its `Levelw(msg, kv...)` functions
// throughout.
package logging

import (
	"go.uber.org/zap"
)

// Logger is the logger type passed around pkgstash.
type Logger = zap.SugaredLogger

// NewProduction returns a JSON logger at info level.
func NewProduction() (*Logger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// NewDevelopment returns a human-readable logger at debug level.
func NewDevelopment() (*Logger, error) {
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// New picks the development logger when verbose is set and a production
// logger that only reports warnings and above otherwise, so command output
// is not drowned in log lines.
func New(verbose bool) (*Logger, error) {
	if verbose {
		return NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return zap.NewNop().Sugar()
}

// Package zaplog constructs the zap.Logger the CLI and orchestrator share,
// grounded on cmd/nerd/main.go's PersistentPreRunE logger setup
// (zap.NewProductionConfig, debug level gated by a verbose flag).
package zaplog

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-profile zap.Logger. level accepts the standard
// zapcore names ("debug", "info", "warn", "error"); an empty or unknown
// value defaults to info.
func New(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()

	var lvl zapcore.Level
	if err := lvl.Set(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return logger, nil
}

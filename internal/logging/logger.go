// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON production logger, or a console logger in development
// and test. level overrides the default level when non-empty.
func New(appEnv, level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if appEnv == "development" || appEnv == "test" {
		config = zap.NewDevelopmentConfig()
	}

	if strings.TrimSpace(level) != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
		config.Level = zap.NewAtomicLevelAt(parsed)
	}

	return config.Build()
}

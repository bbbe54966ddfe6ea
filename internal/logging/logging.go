// Package logging builds the zap logger used by both binaries.
//
// The logger can be fully described by a JSON config file (the log_config
// path in the main configuration); without one, a sane default writes JSON
// lines to the configured logs directory and warnings to stderr.
package logging

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	apperrors "github.com/paperchat-ai/paperchat/internal/errors"
)

// New builds a logger for the named component.
//
// configPath may be empty. When set, it must contain a JSON-encoded
// zap.Config; a broken file is a startup error, not a silent fallback.
func New(component, configPath, logsDir string) (*zap.Logger, error) {
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeConfigNotFound, "cannot read log config", apperrors.CategorySystem)
		}
		var cfg zap.Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeConfigInvalid, "cannot parse log config", apperrors.CategorySystem)
		}
		logger, err := cfg.Build()
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeConfigInvalid, "cannot build logger", apperrors.CategorySystem)
		}
		return logger.Named(component), nil
	}

	return defaultLogger(component, logsDir)
}

func defaultLogger(component, logsDir string) (*zap.Logger, error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfigInvalid, "cannot create logs dir", apperrors.CategorySystem)
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(logsDir, component+".log")}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfigInvalid, "cannot build logger", apperrors.CategorySystem)
	}
	return logger.Named(component), nil
}

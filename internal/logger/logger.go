// Package logger builds the service's zap loggers.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewNamed returns a logger configured for appEnv and named after the service.
// Development gets a human-readable console logger at debug level; every other
// environment gets JSON output at info level.
func NewNamed(appEnv, name string) (*zap.Logger, error) {
	var cfg zap.Config
	if appEnv == "development" || appEnv == "test" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return log.Named(name).With(zap.String("env", appEnv)), nil
}

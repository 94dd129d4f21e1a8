package movement2osm

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns console logger. Debug level is enabled by verbose
func NewLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// LogProgress returns ProgressFunc which logs every `every` processed lines
func LogProgress(logger *zap.Logger, every int) ProgressFunc {
	if every <= 0 {
		every = 1
	}
	return func(processed int) {
		if processed%every == 0 {
			logger.Info("Processing measurements", zap.Int("lines", processed))
		}
	}
}

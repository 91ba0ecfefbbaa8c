package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New builds a SugaredLogger for the given mode. Production mode emits
// JSON; anything else gets the human-readable development encoder.
func New(mode string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return zapLogger.Sugar(), nil
}

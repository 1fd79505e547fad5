package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "profile-service"

// New builds the process logger. Release mode logs JSON, anything else
// logs human readable console output.
func New(ginMode string) *zap.Logger {
	var config zap.Config
	if ginMode == "release" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		logger = zap.NewExample()
	}
	return logger.With(zap.String("service", serviceName))
}

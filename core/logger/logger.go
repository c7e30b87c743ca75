// Package logger provides structured logging for kayan-roles.
//
// It wraps Uber's zap logger. Log is a no-op logger until InitLogger is
// called, so library packages can log unconditionally.
//
//	logger.InitLogger("debug") // Options: debug, info, warn, error
//
//	logger.Log.Debug("role submission rejected",
//	    zap.String("role", role),
//	)
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log = zap.NewNop()

func InitLogger(level string) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zap.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	Log = l
}

package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. Initialized once in main before any
// module runs; middleware and services nil-check it in tests.
var Log *zap.Logger

// Init builds the global logger. Debug mode uses the development
// encoder, otherwise production JSON.
func Init(debug bool) {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		l, err = cfg.Build()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	Log = l
}

// Sync flushes buffered entries. Called on shutdown.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

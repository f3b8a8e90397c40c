package logger

import (
	"go.uber.org/zap"
)

// Log is the process-wide sugared logger. It defaults to a development
// logger so packages can log before Init runs (and in tests).
var Log = zap.Must(zap.NewDevelopment()).Sugar()

// Init replaces the default logger according to the environment.
func Init(env string) {
	var l *zap.Logger
	if env == "production" {
		l = zap.Must(zap.NewProduction())
	} else {
		l = zap.Must(zap.NewDevelopment())
	}
	Log = l.Sugar()
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = Log.Sync()
}

package vm

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns this module's logger. It uses a no-op logger by
// default; override with SetLogger before creating any isolate.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger overrides the default no-op logger. Call it once, before
// creating any isolate.
func SetLogger(l *zap.Logger) {
	logger = l
	loggerOnce.Do(func() {})
}

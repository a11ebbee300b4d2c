// Package log provides the single package-level logger every component in
// this module writes decode-time diagnostics through. It defaults to a
// no-op logger so library use stays silent until a caller (typically
// cmd/wyrmgo) wires a real one.
package log

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// L returns the active logger, defaulting to zap.NewNop() the first time
// it's called if nobody has set one.
func L() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger installs l as the package-level logger. It takes effect whether
// or not L has already been called, and it marks L's one-time default as
// done, so a later first call to L does not replace l with the no-op logger.
func SetLogger(l *zap.Logger) {
	loggerOnce.Do(func() {})
	logger = l
}

// Str and Int are thin aliases over zap.String/zap.Int so call sites in
// this module don't need their own zap import just to build a field.
func Str(key, value string) zap.Field { return zap.String(key, value) }
func Int(key string, value int) zap.Field { return zap.Int(key, value) }

package layout

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// loggerPtr stores the package logger. Resolve may run on many goroutines, so
// the logger is swapped atomically.
var loggerPtr atomic.Pointer[zap.Logger]

func init() {
	loggerPtr.Store(zap.NewNop())
}

// Logger returns the logger used by the layout package. It is a no-op logger
// unless SetLogger has been called.
func Logger() *zap.Logger {
	return loggerPtr.Load()
}

// SetLogger replaces the package logger. Passing nil restores the silent default.
//
// Parameters:
//   - l: the logger to use
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l)
}

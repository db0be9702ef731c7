package malloc

import (
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var globalLogger = func() *atomic.Pointer[zap.Logger] {
	p := atomic.NewPointer(zap.NewNop())
	return p
}()

// SetLogger installs the logger used for central-heap refills, OS page
// source failures, thread-heap lifecycle events, and invariant violations
// in debug builds. The default is a no-op logger; libraries embedding this
// allocator stay silent unless a caller opts in.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	globalLogger.Store(l)
}

func logger() *zap.Logger {
	return globalLogger.Load()
}

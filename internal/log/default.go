package log

import "sync/atomic"

var current atomic.Pointer[Logger]

// SetDefaultLogger replaces the process-wide logger. nil restores the
// discarding one.
func SetDefaultLogger(l *Logger) {
	current.Store(l)
}

// DefaultLogger returns the process-wide logger.
func DefaultLogger() *Logger {
	if l := current.Load(); l != nil {
		return l
	}
	l := Discard()
	if current.CompareAndSwap(nil, l) {
		return l
	}
	return current.Load()
}

package mov

import "go.uber.org/zap"

// Diagnostics (size mismatches, partial reads, parse errors) are reported
// through a package-level logger. The default logger discards everything.
var logger = zap.NewNop()

// SetLogger replaces the package logger. Passing nil restores the no-op
// logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

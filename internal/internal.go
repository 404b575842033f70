// Package internal contains internal implementation details.
package internal

// NullLogger is a tsnsim.Logger that does not emit logs. It is the silent
// default [tsnsim.NewEngine] substitutes when an [tsnsim.EngineConfig] is
// built without one.
type NullLogger struct{}

// Debug implements tsnsim.Logger
func (nl *NullLogger) Debug(message string) {
	// nothing
}

// Debugf implements tsnsim.Logger
func (nl *NullLogger) Debugf(format string, v ...any) {
	// nothing
}

// Info implements tsnsim.Logger
func (nl *NullLogger) Info(message string) {
	// nothing
}

// Infof implements tsnsim.Logger
func (nl *NullLogger) Infof(format string, v ...any) {
	// nothing
}

// Warn implements tsnsim.Logger
func (nl *NullLogger) Warn(message string) {
	// nothing
}

// Warnf implements tsnsim.Logger
func (nl *NullLogger) Warnf(format string, v ...any) {
	// nothing
}

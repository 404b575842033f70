package tsnsim

//
// Core data model shared by the rest of the package
//

// Logger is the logger we're using. [github.com/apex/log]'s package-level
// Log satisfies this interface directly; [internal.NullLogger] is the
// silent default [NewEngine] substitutes when [EngineConfig.Logger] is nil.
type Logger interface {
	// Debugf formats and emits a debug message.
	Debugf(format string, v ...any)

	// Debug emits a debug message.
	Debug(message string)

	// Infof formats and emits an informational message.
	Infof(format string, v ...any)

	// Info emits an informational message.
	Info(message string)

	// Warnf formats and emits a warning message.
	Warnf(format string, v ...any)

	// Warn emits a warning message.
	Warn(message string)
}

// Address is an opaque node address, compared by equality. There is no
// distinguished broadcast value: a destination is treated as unknown
// (and thus broadcast) whenever a [Switch]'s routing table has no fresh
// entry for it, not because the address equals some sentinel.
type Address string

// InjectedPort is the conventional ingress port an [Injector] uses when it
// calls [Switch.Push] directly, bypassing any [Channel].
const InjectedPort = -1

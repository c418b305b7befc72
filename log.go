package metrics

import "github.com/rs/zerolog"

// pkgLogger is the logger used by this package's internal diagnostics
// (unit conversion warnings and dropped out-of-range samples). It
// defaults to a disabled logger so the package is silent
// and panic-free before a caller wires up logging — the same caution the
// teacher's registerMetric applies to its own panics ("may be uninitialized
// yet").
var pkgLogger = zerolog.Nop()

// SetLogger installs the logger used for this package's internal
// diagnostics. Call it once during process bootstrap, before registering
// metrics from concurrent goroutines.
func SetLogger(l zerolog.Logger) {
	pkgLogger = l
}

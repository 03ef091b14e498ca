// Package debug provides conditional debug logging for cfgv.
//
// Debug logging is enabled by setting the CFGV_DEBUG environment variable:
//
//	CFGV_DEBUG=1 cfgv f1.groups.yaml
//
// or at runtime through the `debug` option flag. When enabled, messages are
// written to stderr with timestamps. When disabled (default), all debug
// functions are no-ops with zero overhead.
package debug

import (
	"log"
	"os"
	"time"
)

var (
	// enabled is true when CFGV_DEBUG env var is set
	enabled bool
	// logger writes to stderr with [CFGV_DEBUG] prefix
	logger *log.Logger
)

func init() {
	if os.Getenv("CFGV_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, "[CFGV_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging (the `debug`
// option flag routes here).
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, "[CFGV_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !enabled || !cond {
		return
	}
	logger.Printf(format, args...)
}

// LogEnterExit logs function entry and exit with timing.
// Usage:
//
//	func myFunc() {
//	    defer debug.LogEnterExit("myFunc")()
//	    // ...
//	}
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	if !enabled {
		return
	}
	logger.Printf("%s: %T = %+v", name, v, v)
}

// internal/recovery/recovery.go
package recovery

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
)

// Prefix leads every fatal report so it matches the CLI's other diagnostics
const Prefix = "sndgrep: FATAL"

// HandlePanic should be deferred at the top of main().
// It reports the panic on stderr and exits with code 1.
func HandlePanic() {
	if r := recover(); r != nil {
		WriteReport(os.Stderr, r, debug.Stack())
		os.Exit(1)
	}
}

// HandlePanicFunc reports the panic, runs cleanup, then exits with code 1.
// Use it where state must be released first (signal handlers, audio devices).
func HandlePanicFunc(cleanup func()) {
	if r := recover(); r != nil {
		WriteReport(os.Stderr, r, debug.Stack())
		if cleanup != nil {
			cleanup()
		}
		os.Exit(1)
	}
}

// WriteReport formats a recovered value and its stack
func WriteReport(w io.Writer, r any, stack []byte) {
	_, _ = fmt.Fprintf(w, "%s: %v\n\nStack trace:\n%s\n", Prefix, r, stack)
}

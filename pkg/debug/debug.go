// Package debug provides conditional debug logging for votemap.
//
// Debug logging is enabled by setting the VOTEMAP_DEBUG environment variable:
//
//	VOTEMAP_DEBUG=1 votemap --data ./data 2>debug.log
//
// Messages go to stderr with timestamps. The TUI owns stdout, so redirect
// stderr when debugging an interactive session. When disabled (default),
// every helper returns immediately.
package debug

import (
	"io"
	"log"
	"os"
	"sync"
	"time"
)

const prefix = "[VOTEMAP_DEBUG] "

var (
	mu      sync.Mutex
	enabled bool
	logger  *log.Logger
	out     io.Writer = os.Stderr
)

func init() {
	if os.Getenv("VOTEMAP_DEBUG") != "" {
		enabled = true
		logger = log.New(out, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// Enabled reports whether debug logging is on.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetEnabled toggles debug logging at runtime.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e && logger == nil {
		logger = log.New(out, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// SetOutput redirects debug output. Tests use it to capture log lines.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	logger = log.New(out, prefix, log.Ltime|log.Lmicroseconds)
}

func printf(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled || logger == nil {
		return
	}
	logger.Printf(format, args...)
}

// Log writes a printf-style debug message.
func Log(format string, args ...any) {
	printf(format, args...)
}

// LogTiming records how long the named step took.
func LogTiming(name string, d time.Duration) {
	printf("%s took %v", name, d)
}

// LogIf logs only when cond holds.
func LogIf(cond bool, format string, args ...any) {
	if !cond {
		return
	}
	printf(format, args...)
}

// LogEnterExit logs entry and exit of name along with the elapsed time.
func LogEnterExit(name string) func() {
	if !Enabled() {
		return func() {}
	}
	printf("-> %s", name)
	start := time.Now()
	return func() {
		printf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value together with its dynamic type.
func Dump(name string, v any) {
	printf("%s: %T = %+v", name, v, v)
}

// Section logs a visual separator.
func Section(name string) {
	printf("=== %s ===", name)
}

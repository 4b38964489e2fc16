// Package logger provides debug tracing and the leveled message sink used by
// preprocessing directives such as //#msg and //#warning.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	enabled   bool
	enabledMu sync.RWMutex
	noColor   bool
	noColorMu sync.RWMutex
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// SetDebug enables or disables debug tracing
func SetDebug(enable bool) {
	enabledMu.Lock()
	defer enabledMu.Unlock()
	enabled = enable
}

// IsEnabled returns whether debug tracing is enabled
func IsEnabled() bool {
	enabledMu.RLock()
	defer enabledMu.RUnlock()
	return enabled
}

// SetNoColor enables or disables colored output
func SetNoColor(disable bool) {
	noColorMu.Lock()
	defer noColorMu.Unlock()
	noColor = disable
}

func useColor() bool {
	noColorMu.RLock()
	defer noColorMu.RUnlock()
	return !noColor
}

// Debug prints a debug message with timestamp
func Debug(format string, args ...interface{}) {
	if !IsEnabled() {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")
	msg := fmt.Sprintf(format, args...)

	if useColor() {
		fmt.Fprintf(os.Stderr, "%s[DEBUG]%s %s%s%s %s\n",
			colorCyan, colorReset, colorGray, timestamp, colorReset, msg)
	} else {
		fmt.Fprintf(os.Stderr, "[DEBUG] %s %s\n", timestamp, msg)
	}
}

// DebugSection prints a section header for debug output
func DebugSection(section string) {
	if !IsEnabled() {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")

	if useColor() {
		fmt.Fprintf(os.Stderr, "%s[DEBUG]%s %s%s%s %s=== %s ===%s\n",
			colorCyan, colorReset, colorGray, timestamp, colorReset,
			colorCyan, section, colorReset)
	} else {
		fmt.Fprintf(os.Stderr, "[DEBUG] %s === %s ===\n", timestamp, section)
	}
}

// DebugValue prints key=value style debug info
func DebugValue(key string, value interface{}) {
	if !IsEnabled() {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")

	if useColor() {
		fmt.Fprintf(os.Stderr, "%s[DEBUG]%s %s%s%s %s%s%s = %v\n",
			colorCyan, colorReset, colorGray, timestamp, colorReset,
			colorCyan, key, colorReset, value)
	} else {
		fmt.Fprintf(os.Stderr, "[DEBUG] %s %s = %v\n", timestamp, key, value)
	}
}

// DebugJSON prints structured data as JSON for debugging
func DebugJSON(key string, v interface{}) {
	if !IsEnabled() {
		return
	}

	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		Debug("Failed to marshal %s to JSON: %v", key, err)
		return
	}
	DebugValue(key, "\n"+string(jsonBytes))
}

// Logger receives the diagnostic text produced by directives.
// Implementations must be safe for concurrent use.
type Logger interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// Console writes directive messages to a pair of writers.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	err   io.Writer
	quiet bool
}

// NewConsole creates a Console writing info and warnings to stdout and errors to stderr.
// When quiet is set only errors are written.
func NewConsole(quiet bool) *Console {
	return NewConsoleWriters(os.Stdout, os.Stderr, quiet)
}

// NewConsoleWriters creates a Console with explicit writers.
func NewConsoleWriters(out, err io.Writer, quiet bool) *Console {
	return &Console{out: out, err: err, quiet: quiet}
}

// Info prints an informational message.
func (c *Console) Info(msg string) {
	if c.quiet {
		return
	}
	c.print(c.out, "INFO", colorGreen, msg)
}

// Warn prints a warning message.
func (c *Console) Warn(msg string) {
	if c.quiet {
		return
	}
	c.print(c.out, "WARN", colorYellow, msg)
}

// Error prints an error message. Errors are printed even in quiet mode.
func (c *Console) Error(msg string) {
	c.print(c.err, "ERROR", colorRed, msg)
}

func (c *Console) print(w io.Writer, level, color, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if useColor() {
		fmt.Fprintf(w, "%s[%s]%s %s\n", color, level, colorReset, msg)
	} else {
		fmt.Fprintf(w, "[%s] %s\n", level, msg)
	}
}

type discard struct{}

func (discard) Info(string)  {}
func (discard) Warn(string)  {}
func (discard) Error(string) {}

// Discard is a Logger that drops every message.
var Discard Logger = discard{}

package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tacogips/cpre/internal/app"
)

// ANSI color codes
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorGray    = "\033[90m"
)

// Output formatting helpers

// printInfo prints an informational message
func printInfo(w io.Writer, msg string) {
	if globalQuiet {
		return
	}
	fmt.Fprintln(w, msg)
}

// printSuccess prints a success message
func printSuccess(w io.Writer, msg string) {
	if globalQuiet {
		return
	}
	if globalNoColor {
		fmt.Fprintf(w, "✓ %s\n", msg)
	} else {
		fmt.Fprintf(w, "%s✓%s %s\n", colorGreen, colorReset, msg)
	}
}

// printWarning prints a warning message
func printWarning(w io.Writer, msg string) {
	if globalQuiet {
		return
	}
	if globalNoColor {
		fmt.Fprintf(w, "⚠ %s\n", msg)
	} else {
		fmt.Fprintf(w, "%s⚠%s %s\n", colorYellow, colorReset, msg)
	}
}

// printErrorMsg prints an error message (different from printError which takes error type)
func printErrorMsg(w io.Writer, msg string) {
	if globalNoColor {
		fmt.Fprintf(w, "✗ %s\n", msg)
	} else {
		fmt.Fprintf(w, "%s✗%s %s\n", colorRed, colorReset, msg)
	}
}

// printVerbose prints a verbose message (only if verbose is enabled)
func printVerbose(w io.Writer, verbose bool, msg string) {
	if !verbose || globalQuiet {
		return
	}
	if globalNoColor {
		fmt.Fprintf(w, "[VERBOSE] %s\n", msg)
	} else {
		fmt.Fprintf(w, "%s[VERBOSE]%s %s\n", colorGray, colorReset, msg)
	}
}

// printProgress prints a progress indicator
func printProgress(w io.Writer, msg string) {
	if globalQuiet {
		return
	}
	if globalNoColor {
		fmt.Fprintf(w, "→ %s\n", msg)
	} else {
		fmt.Fprintf(w, "%s→%s %s\n", colorBlue, colorReset, msg)
	}
}

// printHeader prints a section header
func printHeader(w io.Writer, title string) {
	if globalQuiet {
		return
	}
	if globalNoColor {
		fmt.Fprintf(w, "\n=== %s ===\n", title)
	} else {
		fmt.Fprintf(w, "\n%s=== %s ===%s\n", colorMagenta, title, colorReset)
	}
}

// printDiff prints a unified diff, coloring added and removed lines.
func printDiff(w io.Writer, diff string) {
	if globalQuiet {
		return
	}
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		switch {
		case globalNoColor:
			fmt.Fprint(w, line)
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprint(w, line)
		case strings.HasPrefix(line, "@@"):
			fmt.Fprintf(w, "%s%s%s", colorCyan, line, colorReset)
		case strings.HasPrefix(line, "+"):
			fmt.Fprintf(w, "%s%s%s", colorGreen, line, colorReset)
		case strings.HasPrefix(line, "-"):
			fmt.Fprintf(w, "%s%s%s", colorRed, line, colorReset)
		default:
			fmt.Fprint(w, line)
		}
	}
	if !strings.HasSuffix(diff, "\n") {
		fmt.Fprintln(w)
	}
}

// summaryCounts renders the non-zero status counts of a run, e.g. "3 written, 1 unchanged".
func summaryCounts(result *app.ProcessResult) string {
	statuses := []app.FileStatus{
		app.StatusWritten,
		app.StatusChanged,
		app.StatusUnchanged,
		app.StatusCopied,
		app.StatusExcluded,
		app.StatusDisabled,
		app.StatusFailed,
	}
	var parts []string
	for _, s := range statuses {
		if n := result.Count(s); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	if result.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", result.Skipped))
	}
	if len(parts) == 0 {
		return "no files"
	}
	return strings.Join(parts, ", ")
}

// printSummary prints the one-line result of a process run.
func printSummary(w io.Writer, result *app.ProcessResult) {
	msg := fmt.Sprintf("%d files (%s) in %s", len(result.Files), summaryCounts(result), result.Duration.Round(time.Millisecond))
	switch {
	case len(result.Failures()) > 0:
		printWarning(w, msg)
	case result.DryRun:
		printInfo(w, msg)
	default:
		printSuccess(w, msg)
	}
}

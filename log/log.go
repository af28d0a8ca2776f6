package log

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/briandowns/spinner"
)

// Verbose controls whether debug messages are being printed.
var Verbose bool

// IndentationLevel controls the amount of indentation of log messages.
var IndentationLevel = 0

// Spinner is shown while a long-running external step is in progress.
var Spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))

var errorOccured = false

var logFile *os.File

var ansiCodes = regexp.MustCompile("\033\\[[0-9;]*m")

// ErrorOccured reports whether any errors have occured.
func ErrorOccured() bool {
	return errorOccured
}

// SetFile mirrors all subsequent messages, stripped of color codes, into `file`.
func SetFile(file *os.File) {
	logFile = file
}

func write(message string) {
	fmt.Fprint(os.Stderr, message)
	if logFile != nil {
		fmt.Fprint(logFile, ansiCodes.ReplaceAllString(message, ""))
	}
}

// Log prints an indented and formatted message.
func Log(format string, a ...interface{}) {
	write(strings.Repeat("  ", IndentationLevel) + fmt.Sprintf(format, a...))
}

// Debug prints an indented and formatted debug message if verbose output is selected.
func Debug(format string, a ...interface{}) {
	if Verbose {
		write(strings.Repeat("  ", IndentationLevel) + "\033[36mDebug: \033[0m" + fmt.Sprintf(format, a...))
	}
}

// Success prints an indented and formatted success message.
func Success(format string, a ...interface{}) {
	write(strings.Repeat("  ", IndentationLevel) + "\033[32mSuccess: \033[0m" + fmt.Sprintf(format, a...))
}

// Warning prints an indented and formatted warning.
func Warning(format string, a ...interface{}) {
	write(strings.Repeat("  ", IndentationLevel) + "\033[33mWarning: \033[0m" + fmt.Sprintf(format, a...))
}

// Error prints an indented and formatted error message.
func Error(format string, a ...interface{}) {
	errorOccured = true
	write(strings.Repeat("  ", IndentationLevel) + "\033[31mError: \033[0m" + fmt.Sprintf(format, a...))
}

// Fatal prints an indented and formatted error message and terminates the program.
// A call stack is written to the log file so failed runs leave a diagnostic trace.
func Fatal(format string, a ...interface{}) {
	Error(format, a...)
	if logFile != nil {
		buf := make([]byte, 1<<16)
		n := runtime.Stack(buf, false)
		fmt.Fprintf(logFile, "%s\n", buf[:n])
	}
	fmt.Fprintf(os.Stderr, "\033[31mA fatal error occured. Exiting...\033[0m\n")
	os.Exit(1)
}

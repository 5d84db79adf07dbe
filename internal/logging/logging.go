// Package logging configures the shared logger for the miniquest client.
package logging

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the process-wide logger. Output goes to stderr so it never
// interleaves with the chat display on stdout.
var Logger = log.New(os.Stderr)

func init() {
	Logger.SetTimeFormat("")
	Logger.SetLevel(log.WarnLevel)
}

// Configure applies the log level from the flag, falling back to
// MINIQUEST_LOG_LEVEL and then to warn.
func Configure(level string, verbose bool) {
	if level == "" {
		level = strings.ToLower(os.Getenv("MINIQUEST_LOG_LEVEL"))
	}
	switch level {
	case "debug":
		Logger.SetLevel(log.DebugLevel)
	case "info":
		Logger.SetLevel(log.InfoLevel)
	case "warn":
		Logger.SetLevel(log.WarnLevel)
	case "error":
		Logger.SetLevel(log.ErrorLevel)
	default:
		if verbose {
			Logger.SetLevel(log.InfoLevel)
		}
	}
}

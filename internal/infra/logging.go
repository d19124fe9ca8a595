package infra

import (
	"io"
	"os"
	"strings"

	"github.com/phuslu/log"
)

// SetupLogging configures the package-level logger. Output goes to stderr
// so stdout carries only rendered results. format is "text" or "json".
func SetupLogging(level, format string) {
	SetupLoggingTo(os.Stderr, level, format)
}

// SetupLoggingTo is SetupLogging with an explicit destination.
func SetupLoggingTo(w io.Writer, level, format string) {
	var writer log.Writer
	if strings.EqualFold(format, "json") {
		writer = &log.IOWriter{Writer: w}
	} else {
		writer = &log.ConsoleWriter{Writer: w, ColorOutput: false, QuoteString: true}
	}
	log.DefaultLogger = log.Logger{
		Level:      log.ParseLevel(strings.ToLower(level)),
		TimeFormat: "15:04:05",
		Writer:     writer,
	}
}

// Package logging builds the logrus logger shared by the server, the pipeline
// and the command line tool.
//
// Output always goes to stderr: stdout is reserved for the MCP protocol stream.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// EnvLevel names the environment variable that selects the log level.
const EnvLevel = "SUBPIC_MCP_LOG_LEVEL"

// New returns a logger for the given level name ("debug", "info", "warn",
// "error"). Unknown or empty names fall back to info. Debug output uses the
// text formatter with full timestamps; everything else is JSON.
func New(level string) *logrus.Logger {
	return NewWithOutput(level, os.Stderr)
}

// NewWithOutput is New with an explicit destination, mainly for tests.
func NewWithOutput(level string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if lvl >= logrus.DebugLevel {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return logger
}

// FromEnv reads EnvLevel and returns the matching logger.
func FromEnv() *logrus.Logger {
	return New(os.Getenv(EnvLevel))
}

// Discard returns a logger that drops everything. Handy as a default when a
// caller does not supply one.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// Package logging builds the logrus loggers shared by the looper binaries.
package logging

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// DebugEnv switches every logger created by New to debug level.
const DebugEnv = "LOOPER_DEBUG"

// Debug reports whether DebugEnv is set to a true value.
func Debug() bool {
	debug, err := strconv.ParseBool(os.Getenv(DebugEnv))
	if err != nil {
		return false
	}

	return debug
}

// New returns a text logger at Info level, or Debug when LOOPER_DEBUG is set.
func New() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if Debug() {
		l.SetLevel(logrus.DebugLevel)
	}

	return l
}

// Discard returns a logger that drops everything. Tests use it to keep
// output quiet.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(discard{})
	l.SetLevel(logrus.PanicLevel)

	return l
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

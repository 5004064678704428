package logger

import (
	"io"
)

var global = New("submit")

// SetOutput sets the output for the global logger and its sub-loggers.
func SetOutput(w io.Writer) {
	global.SetOutput(w)
}

// Configure configures the global logger.
func Configure(c Config) {
	global.Configure(c)
}

// NewSubLogger returns a new sub-logger of the global logger.
func NewSubLogger(ns string, args ...interface{}) *Logger {
	return global.NewSubLogger(ns, args...)
}

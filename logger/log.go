// Package logger provides namespaced, structured logging on top of logrus.
package logger

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger handles structured logging.
type Logger struct {
	base *logrus.Logger
	ns   string
	data logrus.Fields
}

// NewLogger returns a new Logger instance.
func NewLogger(ns string, conf Config) *Logger {
	l := &Logger{
		base: logrus.New(),
		ns:   ns,
		data: logrus.Fields{},
	}
	l.base.Out = os.Stderr
	l.Configure(conf)
	return l
}

// New returns a new Logger with the default configuration and the given
// key-value fields attached.
func New(ns string, args ...interface{}) *Logger {
	l := NewLogger(ns, DefaultConfig())
	for k, v := range fields(args...) {
		l.data[k] = v
	}
	return l
}

// SetLevel sets the level of logging.
func (l *Logger) SetLevel(lvl string) {
	switch strings.ToLower(lvl) {
	case "debug":
		l.base.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		l.base.SetLevel(logrus.WarnLevel)
	case "error":
		l.base.SetLevel(logrus.ErrorLevel)
	default:
		l.base.SetLevel(logrus.InfoLevel)
	}
}

// SetFormatter sets the formatter of the logger and its sub-loggers.
func (l *Logger) SetFormatter(f logrus.Formatter) {
	l.base.Formatter = f
}

// SetOutput sets the output of the logger and its sub-loggers.
func (l *Logger) SetOutput(w io.Writer) {
	l.base.Out = w
}

// Discard configures the logger to discard all logs.
func (l *Logger) Discard() {
	l.SetOutput(ioutil.Discard)
}

// Debug logs a debug message.
//
// After the first argument, arguments are key-value pairs which are written as structured logs.
//
//	log.Debug("Some message here", "key1", value1, "key2", value2)
func (l *Logger) Debug(msg string, args ...interface{}) {
	defer recoverLogErr()
	l.entry(args...).Debug(msg)
}

// Info logs an info message.
//
// After the first argument, arguments are key-value pairs which are written as structured logs.
//
//	log.Info("Some message here", "key1", value1, "key2", value2)
func (l *Logger) Info(msg string, args ...interface{}) {
	defer recoverLogErr()
	l.entry(args...).Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	defer recoverLogErr()
	l.entry(args...).Warn(msg)
}

// Error logs an error message.
//
// After the first argument, arguments are key-value pairs which are written as structured logs.
//
//	log.Error("Some message here", "key1", value1, "key2", value2)
//
// Error has a two-argument version that can be used as a shortcut.
//
//	err := runJob()
//	log.Error("Couldn't run job", err)
func (l *Logger) Error(msg string, args ...interface{}) {
	defer recoverLogErr()
	l.entry(args...).Error(msg)
}

// WithFields returns a new Logger instance with the given fields added to all
// log messages. The new logger shares the output, level and formatter.
func (l *Logger) WithFields(args ...interface{}) *Logger {
	defer recoverLogErr()
	data := logrus.Fields{}
	for k, v := range l.data {
		data[k] = v
	}
	for k, v := range fields(args...) {
		data[k] = v
	}
	return &Logger{base: l.base, ns: l.ns, data: data}
}

// NewSubLogger returns a logger with a new namespace which shares the output,
// level and formatter of this logger.
func (l *Logger) NewSubLogger(ns string, args ...interface{}) *Logger {
	s := l.WithFields(args...)
	s.ns = ns
	return s
}

func (l *Logger) entry(args ...interface{}) *logrus.Entry {
	f := logrus.Fields{"ns": l.ns}
	for k, v := range l.data {
		f[k] = v
	}
	for k, v := range fields(args...) {
		f[k] = v
	}
	return l.base.WithFields(f)
}

// recoverLogErr is used to recover from any panics during logging.
// Panics aren't expected of course, but logging should never crash
// a program, so this failsafe tries to prevent those crashes.
func recoverLogErr() {
	if r := recover(); r != nil {
		fmt.Println("Recovered from logging panic", r)
	}
}

// PrintSimpleError prints out an error message with a red "ERROR:" prefix.
func PrintSimpleError(err error) {
	fmt.Fprintf(os.Stderr, "\x1b[%dm%s\x1b[0m %s\n", red, "ERROR:", err.Error())
}

const red = 31

func fields(args ...interface{}) map[string]interface{} {
	f := make(map[string]interface{}, len(args)/2)
	if len(args) == 1 {
		if err, ok := args[0].(error); ok {
			f["error"] = err
		} else {
			f["unknown"] = args[0]
		}
		return f
	}
	for i := 0; i+1 < len(args); i += 2 {
		k, ok := args[i].(string)
		if !ok {
			k = fmt.Sprint(args[i])
		}
		f[k] = args[i+1]
	}
	if len(args)%2 != 0 {
		f["unknown"] = args[len(args)-1]
	}
	return f
}

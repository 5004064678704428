package logger

import (
	"os"
	"time"
)

const defaultTimestampFormat = time.RFC3339

// Config provides configuration for a logger.
type Config struct {
	Level      string           `yaml:"level" json:"level,omitempty"`
	Formatter  string           `yaml:"formatter" json:"formatter,omitempty"`
	OutputFile string           `yaml:"output_file" json:"output_file,omitempty"`
	JSONFormat JSONFormatConfig `yaml:"json_format" json:"json_format,omitempty"`
	TextFormat TextFormatConfig `yaml:"text_format" json:"text_format,omitempty"`
}

// JSONFormatConfig provides configuration for the JSON logger format.
type JSONFormatConfig struct {
	DisableTimestamp bool   `yaml:"disable_timestamp" json:"disable_timestamp,omitempty"`
	TimestampFormat  string `yaml:"timestamp_format" json:"timestamp_format,omitempty"`
}

// TextFormatConfig provides configuration for the text logger format.
type TextFormatConfig struct {
	// Set to true to bypass checking for a TTY before outputting colors.
	ForceColors bool `yaml:"force_colors" json:"force_colors,omitempty"`
	// Force disabling colors.
	DisableColors bool `yaml:"disable_colors" json:"disable_colors,omitempty"`
	// Disable timestamp logging. useful when output is redirected to logging
	// system that already adds timestamps.
	DisableTimestamp bool `yaml:"disable_timestamp" json:"disable_timestamp,omitempty"`
	// Enable logging the full timestamp when a TTY is attached instead of just
	// the time passed since beginning of execution.
	FullTimestamp bool `yaml:"full_timestamp" json:"full_timestamp,omitempty"`
	// TimestampFormat to use for display when a full timestamp is printed
	TimestampFormat string `yaml:"timestamp_format" json:"timestamp_format,omitempty"`
	// The fields are sorted by default for a consistent output.
	DisableSorting bool `yaml:"disable_sorting" json:"disable_sorting,omitempty"`
	Indent         string `yaml:"indent" json:"indent,omitempty"`
}

// DefaultConfig returns a Config instance with default values.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Formatter: "text",
		TextFormat: TextFormatConfig{
			FullTimestamp:   true,
			TimestampFormat: defaultTimestampFormat,
		},
	}
}

// DebugConfig returns a Config instance with default values useful for testing/debugging.
func DebugConfig() Config {
	return Config{
		Level:     "debug",
		Formatter: "text",
		TextFormat: TextFormatConfig{
			ForceColors:     true,
			FullTimestamp:   true,
			TimestampFormat: defaultTimestampFormat,
		},
	}
}

// Configure configures the logging level, formatter and output path.
func (l *Logger) Configure(conf Config) {
	l.SetLevel(conf.Level)

	switch conf.Formatter {
	case "json":
		l.SetFormatter(&jsonFormatter{conf: conf.JSONFormat})

	// Default to text
	default:
		l.SetFormatter(&textFormatter{
			conf.TextFormat,
			jsonFormatter{conf: conf.JSONFormat},
		})
	}

	if conf.OutputFile != "" {
		logFile, err := os.OpenFile(
			conf.OutputFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666,
		)
		if err != nil {
			l.Error("Can't open log output", "output", conf.OutputFile)
		} else {
			l.SetOutput(logFile)
		}
	}
}

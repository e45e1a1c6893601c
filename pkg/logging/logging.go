package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// EnvLogLevel is the environment variable for the log level.
	EnvLogLevel = `LOG_LEVEL`

	// EnvLogFile is the environment variable for the optional log file.
	EnvLogFile = `LOG_FILE`
)

// Name is the name of the application the logger is for.
type Name string

// Config is the configuration for the logger.
type Config struct {
	// Name is the application name attached to every record.
	Name Name

	// Level is the minimum level that is logged.
	Level slog.Level

	// File is an optional path that log output is also written to. The file is rotated.
	File string
}

// NewConfig creates a new logging config from the environment.
func NewConfig(name Name) *Config {
	c := &Config{
		Name:  name,
		Level: slog.LevelInfo,
		File:  os.Getenv(EnvLogFile),
	}

	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		if err := c.Level.UnmarshalText([]byte(strings.ToUpper(lvl))); err != nil {
			c.Level = slog.LevelInfo
		}
	}
	return c
}

// CommonLogger creates the logger used throughout the application and sets it as the default logger.
func CommonLogger(c *Config) (*slog.Logger, error) {
	if c == nil {
		return nil, fmt.Errorf("logging config is nil")
	}

	var w io.Writer = os.Stdout
	if c.File != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: c.Level == slog.LevelDebug,
		Level:     c.Level,
	})

	l := slog.New(h).With(slog.String(KeyApp, string(c.Name)))
	slog.SetDefault(l)
	return l, nil
}

package logger

import (
	"os"

	"github.com/alevsk/pipescope/internal/config"
	"github.com/rs/zerolog"
)

// log is the package logger; tests may swap it for a buffered one
var log = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init initializes the logger using the application configuration.
// The debug flag wins over the configured server log level.
func Init(cfg *config.Config) {
	level := zerolog.InfoLevel
	if cfg.Server.LogLevel != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Server.LogLevel); err == nil {
			level = parsed
		}
	}
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}

// Debug logs a debug message if debug mode is enabled
func Debug() *zerolog.Event {
	return log.Debug()
}

// Info logs an info message
func Info() *zerolog.Event {
	return log.Info()
}

// Warn logs a warning message
func Warn() *zerolog.Event {
	return log.Warn()
}

// Error logs an error message
func Error() *zerolog.Event {
	return log.Error()
}

// Fatal logs a fatal message and exits with status code 1
func Fatal() *zerolog.Event {
	return log.Fatal()
}

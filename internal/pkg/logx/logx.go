/*
Package logx wraps zerolog with the process-wide logger used by drawify.

Development builds log human-readable console output at debug level;
everything else logs JSON at info level. The package helpers take a
message followed by key/value pairs.
*/
package logx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitGlobalLogger configures the global logger. Call it once at startup.
func InitGlobalLogger(isDevelopment bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if isDevelopment {
		logger = logger.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	log.Logger = logger.With().Caller().Logger()
}

// Logger returns the global logger.
func Logger() *zerolog.Logger {
	return &log.Logger
}

// Component returns a child of the global logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// evenFields drops a malformed field list instead of letting zerolog panic on it.
func evenFields(level string, fields []any) []any {
	if len(fields)%2 == 0 {
		return fields
	}

	Logger().Warn().
		Int("fields_count", len(fields)).
		Str("log_level", level).
		Msg("logx call with odd number of fields, fields dropped")
	return nil
}

func Debug(msg string, fields ...any) {
	Logger().Debug().Fields(evenFields("debug", fields)).CallerSkipFrame(1).Msg(msg)
}

func Info(msg string, fields ...any) {
	Logger().Info().Fields(evenFields("info", fields)).CallerSkipFrame(1).Msg(msg)
}

func Warn(msg string, fields ...any) {
	Logger().Warn().Fields(evenFields("warn", fields)).CallerSkipFrame(1).Msg(msg)
}

// Error logs err with msg at error level.
func Error(err error, msg string, fields ...any) {
	Logger().Error().Err(err).Fields(evenFields("error", fields)).CallerSkipFrame(1).Msg(msg)
}

// Fatal logs at fatal level and exits the process.
func Fatal(err error, msg string, fields ...any) {
	Logger().Fatal().Err(err).Fields(evenFields("fatal", fields)).CallerSkipFrame(1).Msg(msg)
}

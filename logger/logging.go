package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	enabled = true // flip to false to nuke logs
	logger  = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
)

func EnableLogging(b bool) {
	enabled = b
}

// SetOutput swaps the sink. Plain writers get JSON lines, which is what the
// server uses when stdout is not a terminal.
func SetOutput(w io.Writer) {
	logger = logger.Output(w)
}

// SetLevel accepts zerolog level names ("debug", "info", "warn", "error").
// Unknown names leave the level unchanged and return the parse error.
func SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	logger = logger.Level(lvl)
	return nil
}

func Debug(msg string, v ...interface{}) {
	if !enabled {
		return
	}
	logger.Debug().Msgf(msg, v...)
}

func Info(msg string, v ...interface{}) {
	if !enabled {
		return
	}

	logger.Info().Msgf(msg, v...)

}

func Warn(msg string, v ...interface{}) {
	if !enabled {
		return
	}
	logger.Warn().Msgf(msg, v...)
}

func Error(msg string, v ...interface{}) {
	if !enabled {
		return
	}
	logger.Error().Msgf(msg, v...)
}

// Fatal logs regardless of EnableLogging and exits the process.
func Fatal(msg string, v ...interface{}) {
	logger.Fatal().Msgf(msg, v...)
}

package tickloom

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the logging interface accepted throughout tickloom. A Logger
// must be safe for single-threaded, reentrant use from the driver; nothing
// in the core calls a Logger from more than one goroutine.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards all log output. It is the default for simulated
// cluster runs, so deterministic test output stays quiet unless a test asks
// for a logger explicitly.
var NopLogger Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	z zerolog.Logger
}

// NewZerologLogger wraps z as a Logger.
func NewZerologLogger(z zerolog.Logger) Logger {
	return &zerologLogger{z: z}
}

// DefaultLogger writes leveled, structured output to stderr via zerolog.
var DefaultLogger Logger = NewZerologLogger(zerolog.New(os.Stderr).With().Timestamp().Logger())

func (l *zerologLogger) Debugf(format string, args ...any) {
	l.z.Debug().Msgf(format, args...)
}

func (l *zerologLogger) Infof(format string, args ...any) {
	l.z.Info().Msgf(format, args...)
}

func (l *zerologLogger) Warnf(format string, args ...any) {
	l.z.Warn().Msgf(format, args...)
}

func (l *zerologLogger) Errorf(format string, args ...any) {
	l.z.Error().Msgf(format, args...)
}

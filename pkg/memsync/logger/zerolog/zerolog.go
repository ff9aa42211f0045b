package zerolog

import (
	"github.com/rs/zerolog"

	"github.com/Kashif-509/Ulitmatemember-to-Acess/pkg/memsync"
)

// Logger implements memsync.Logger using zerolog.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates a new zerolog logger adapter.
func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) Debug(msg string, fields ...memsync.Field) {
	l.log(l.logger.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...memsync.Field) {
	l.log(l.logger.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...memsync.Field) {
	l.log(l.logger.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...memsync.Field) {
	l.log(l.logger.Error(), msg, fields)
}

// Success has no zerolog equivalent; it maps to Info with an outcome marker.
func (l *Logger) Success(msg string, fields ...memsync.Field) {
	l.log(l.logger.Info().Str("outcome", "success"), msg, fields)
}

func (l *Logger) log(event *zerolog.Event, msg string, fields []memsync.Field) {
	if event == nil {
		return
	}
	for _, f := range fields {
		event = event.Interface(f.Key, f.Value)
	}
	event.Msg(msg)
}

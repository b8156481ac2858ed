package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogrusAdapter is the Logger the CLI hands to the store, migrator and backup
// manager. Derived loggers share the underlying logrus.Logger and carry their
// own entry.
type LogrusAdapter struct {
	logger *logrus.Logger
	entry  *logrus.Entry
}

// NewLogrusAdapter builds a stderr logger. level is a logrus level name in any
// case (unknown names mean info); format "json" selects JSON lines, anything
// else the text formatter.
func NewLogrusAdapter(level, format string) Logger {
	return NewLogrusAdapterTo(nil, level, format)
}

// NewLogrusAdapterTo is NewLogrusAdapter writing to out instead of stderr.
func NewLogrusAdapterTo(out io.Writer, level, format string) Logger {
	l := logrus.New()
	if out != nil {
		l.SetOutput(out)
	}

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		l.Warnf("Invalid log level '%s', using 'info'", level)
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	var formatter logrus.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if strings.EqualFold(format, "json") {
		formatter = &logrus.JSONFormatter{}
	}
	l.SetFormatter(formatter)

	return wrap(l)
}

// NewLogrusAdapterFromLogger wraps the logrus.Logger the cobra commands
// share. A nil logger gets a fresh one.
func NewLogrusAdapterFromLogger(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.New()
	}
	return wrap(l)
}

func wrap(l *logrus.Logger) *LogrusAdapter {
	return &LogrusAdapter{logger: l, entry: logrus.NewEntry(l)}
}

func (a *LogrusAdapter) Debug(msg string, fields ...Field) { a.log(logrus.DebugLevel, msg, fields) }
func (a *LogrusAdapter) Info(msg string, fields ...Field) { a.log(logrus.InfoLevel, msg, fields) }
func (a *LogrusAdapter) Warn(msg string, fields ...Field) { a.log(logrus.WarnLevel, msg, fields) }
func (a *LogrusAdapter) Error(msg string, fields ...Field) { a.log(logrus.ErrorLevel, msg, fields) }

func (a *LogrusAdapter) log(lvl logrus.Level, msg string, fields []Field) {
	if len(fields) == 0 {
		a.entry.Log(lvl, msg)
		return
	}
	a.entry.WithFields(logrusFields(fields)).Log(lvl, msg)
}

// The With methods leave the receiver untouched.

func (a *LogrusAdapter) WithError(err error) Logger {
	return a.derive(a.entry.WithError(err))
}

func (a *LogrusAdapter) WithField(key string, value interface{}) Logger {
	return a.derive(a.entry.WithField(key, value))
}

func (a *LogrusAdapter) WithFields(fields ...Field) Logger {
	return a.derive(a.entry.WithFields(logrusFields(fields)))
}

func (a *LogrusAdapter) derive(e *logrus.Entry) Logger {
	return &LogrusAdapter{logger: a.logger, entry: e}
}

// logrusFields maps fields onto logrus.Fields; a repeated key keeps the last value.
func logrusFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}

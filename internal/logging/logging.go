package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Level is the severity of a log entry. Levels below the logger's
// configured minimum are filtered before any formatting or I/O happens.
type Level int8

const (
	Trace Level = iota
	Debug
	Information
	Warning
	Error
	Critical
)

// Fields attaches structured correlation data to an entry.
type Fields = logrus.Fields

func (l Level) String() string {
	switch l {
	case Trace:
		return "trace"
	case Debug:
		return "debug"
	case Information:
		return "information"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Critical:
		return "critical"
	default:
		return fmt.Sprintf("level(%d)", int8(l))
	}
}

// ParseLevel converts a configuration string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return Trace, nil
	case "debug":
		return Debug, nil
	case "information", "info":
		return Information, nil
	case "warning", "warn":
		return Warning, nil
	case "error":
		return Error, nil
	case "critical":
		return Critical, nil
	}
	return Information, fmt.Errorf("unknown log level %q", s)
}

// logrusLevel maps our levels onto logrus severities. Critical rides on
// logrus' Fatal severity; entries are emitted via Logger.Log so the
// process never exits.
func (l Level) logrusLevel() logrus.Level {
	switch l {
	case Trace:
		return logrus.TraceLevel
	case Debug:
		return logrus.DebugLevel
	case Information:
		return logrus.InfoLevel
	case Warning:
		return logrus.WarnLevel
	case Error:
		return logrus.ErrorLevel
	default:
		return logrus.FatalLevel
	}
}

// Logger is the process-wide structured logging sink. It is constructed
// once at startup and injected into every consumer; it holds no
// per-request state. Entries are JSON lines with ts/level/msg plus any
// fields, and concurrent callers never interleave within one entry.
type Logger struct {
	l *logrus.Logger
}

// New builds a Logger writing JSON entries at or above min to out.
func New(out io.Writer, min Level) *Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(min.logrusLevel())
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	return &Logger{l: l}
}

// Enabled reports whether entries at level would reach the sink.
func (lg *Logger) Enabled(level Level) bool {
	return lg.l.IsLevelEnabled(level.logrusLevel())
}

// Log emits a single entry at the given level. Below-minimum levels are
// a no-op.
func (lg *Logger) Log(level Level, msg string) {
	lg.l.Log(level.logrusLevel(), msg)
}

// Logf emits a single formatted entry at the given level.
func (lg *Logger) Logf(level Level, format string, args ...any) {
	lg.l.Logf(level.logrusLevel(), format, args...)
}

// WithFields returns an entry carrying structured correlation data.
// The returned entry filters by the same configured minimum level.
func (lg *Logger) WithFields(fields Fields) *logrus.Entry {
	return lg.l.WithFields(fields)
}

// WithError is shorthand for attaching an error field.
func (lg *Logger) WithError(err error) *logrus.Entry {
	return lg.l.WithError(err)
}

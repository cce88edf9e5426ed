package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a level name to a Level, defaulting to info.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// BasicLogger prints key=value log lines to a writer.
type BasicLogger struct {
	mu     *sync.Mutex
	out    io.Writer
	level  Level
	fields []Field
	now    func() time.Time
}

var _ Logger = (*BasicLogger)(nil)

// New returns a basic logger writing to stdout at the given level.
func New(level Level) *BasicLogger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter returns a basic logger writing to out.
func NewWithWriter(out io.Writer, level Level) *BasicLogger {
	if out == nil {
		out = os.Stdout
	}
	return &BasicLogger{
		mu:    &sync.Mutex{},
		out:   out,
		level: level,
		now:   time.Now,
	}
}

// Default returns the default basic logger implementation.
func Default() Logger {
	return New(LevelInfo)
}

func (l *BasicLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	next := *l
	next.fields = append(append([]Field(nil), l.fields...), fields...)
	return &next
}

func (l *BasicLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }
func (l *BasicLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *BasicLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *BasicLogger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

func (l *BasicLogger) log(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}
	var b strings.Builder
	b.WriteString(l.now().UTC().Format(time.RFC3339))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)
	for _, f := range append(append([]Field(nil), l.fields...), fields...) {
		b.WriteByte(' ')
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(fmt.Sprint(f.Value))
	}
	b.WriteByte('\n')
	l.mu.Lock()
	_, _ = io.WriteString(l.out, b.String())
	l.mu.Unlock()
}

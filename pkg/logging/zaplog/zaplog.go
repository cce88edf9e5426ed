package zaplog

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
)

// Logger adapts a *zap.Logger to logger.Logger.
type Logger struct {
	z *zap.Logger
}

var _ logger.Logger = (*Logger)(nil)

// Wrap adapts an existing zap logger.
func Wrap(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{z: z}
}

// New builds a zap logger. format is "json" or "console"; level accepts the
// usual zap level names.
func New(level, format string) (*Logger, error) {
	var cfg zap.Config
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(strings.ToLower(level)))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{z: z}, nil
}

// Zap exposes the underlying logger.
func (l *Logger) Zap() *zap.Logger { return l.z }

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.z.Sync() }

func (l *Logger) With(fields ...logger.Field) logger.Logger {
	if len(fields) == 0 {
		return l
	}
	return &Logger{z: l.z.With(toZap(fields)...)}
}

func (l *Logger) Debug(msg string, fields ...logger.Field) { l.z.Debug(msg, toZap(fields)...) }
func (l *Logger) Info(msg string, fields ...logger.Field)  { l.z.Info(msg, toZap(fields)...) }
func (l *Logger) Warn(msg string, fields ...logger.Field)  { l.z.Warn(msg, toZap(fields)...) }
func (l *Logger) Error(msg string, fields ...logger.Field) { l.z.Error(msg, toZap(fields)...) }

func toZap(fields []logger.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			out = append(out, zap.NamedError(f.Key, err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

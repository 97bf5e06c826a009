package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.Logger. The index clients report failed requests and
// batch progress through it.
type Logger struct {
	// Zap is the underlying logger, for callers that need zap directly.
	Zap *zap.Logger

	// tracingEnabled makes the *WithContext methods add trace_id and span_id.
	tracingEnabled bool
}

// NewLoggerClient returns a JSON logger writing to stderr.
//
// Entries carry an ISO8601 "timestamp", a capitalized level, the caller, the
// process id and cfg.ServiceName. Durations are encoded in milliseconds.
// Stack traces are attached from error level up.
//
// Example:
//
//	log := logger.NewLoggerClient(logger.Config{
//	    Level:       logger.Info,
//	    ServiceName: "search-api",
//	})
//	log.Info("Index client ready", nil, nil)
func NewLoggerClient(cfg Config) *Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(ParseLevel(cfg.Level)),
	)
	l := newLogger(core, cfg,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	)
	l.Zap = l.Zap.With(zap.Int("pid", os.Getpid()))
	return l
}

// NewNopLogger returns a Logger that discards everything. Clients fall back to
// it when no logger is configured.
func NewNopLogger() *Logger {
	return &Logger{Zap: zap.NewNop()}
}

// NewWithCore wraps an existing zapcore.Core, keeping the tracing setting of cfg.
func NewWithCore(core zapcore.Core, cfg Config) *Logger {
	return newLogger(core, cfg)
}

// ParseLevel maps a Config.Level name to a zap level. Unknown names select
// info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case Debug:
		return zapcore.DebugLevel
	case Warning, "warn":
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newLogger(core zapcore.Core, cfg Config, opts ...zap.Option) *Logger {
	return &Logger{
		Zap:            zap.New(core, opts...).With(zap.String("service", cfg.ServiceName)),
		tracingEnabled: cfg.EnableTracing,
	}
}

func encoderConfig() zapcore.EncoderConfig {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.EncodeCaller = zapcore.FullCallerEncoder
	enc.EncodeDuration = zapcore.MillisDurationEncoder
	return enc
}

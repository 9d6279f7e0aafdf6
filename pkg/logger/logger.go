package logger

import (
    "fmt"
    "os"
    "path/filepath"
    "time"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
    "gopkg.in/natefinch/lumberjack.v2"
)

// Field type
type Field = zapcore.Field

// Logger is the logging interface used across the engine.
type Logger interface {
    Debug(msg string, fields ...Field)
    Info(msg string, fields ...Field)
    Warn(msg string, fields ...Field)
    Error(msg string, fields ...Field)
    Fatal(msg string, fields ...Field)
    With(fields ...Field) Logger
    Named(name string) Logger
    Sync() error
}

// Config defines logger configuration.
type Config struct {
    Level       string   `json:"level" yaml:"level"`
    Encoding    string   `json:"encoding" yaml:"encoding"`
    OutputPaths []string `json:"outputPaths" yaml:"outputPaths"`
    MaxSize     int      `json:"maxSize" yaml:"maxSize"` // MB
    MaxBackups  int      `json:"maxBackups" yaml:"maxBackups"`
    MaxAge      int      `json:"maxAge" yaml:"maxAge"` // days
    Compress    bool     `json:"compress" yaml:"compress"`
}

// Option defines a logger option function.
type Option func(*Config)

// WithLevel sets the logger level.
func WithLevel(level string) Option {
    return func(c *Config) { c.Level = level }
}

// WithEncoding sets the logger encoding.
func WithEncoding(encoding string) Option {
    return func(c *Config) { c.Encoding = encoding }
}

// WithOutputPaths sets the logger output paths.
func WithOutputPaths(paths []string) Option {
    return func(c *Config) { c.OutputPaths = paths }
}

type logger struct {
    zap *zap.Logger
}

// NewLogger creates a new logger instance.
func NewLogger(opts ...Option) (Logger, error) {
    cfg := &Config{
        Level:       "info",
        Encoding:    "json",
        OutputPaths: []string{"stdout"},
        MaxSize:     100,
        MaxBackups:  3,
        MaxAge:      7,
        Compress:    true,
    }
    for _, opt := range opts {
        opt(cfg)
    }

    level := zap.NewAtomicLevel()
    if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
        return nil, fmt.Errorf("can't parse log level: %w", err)
    }

    encoderConfig := zapcore.EncoderConfig{
        TimeKey:        "timestamp",
        LevelKey:       "level",
        NameKey:        "logger",
        CallerKey:      "caller",
        FunctionKey:    zapcore.OmitKey,
        MessageKey:     "message",
        StacktraceKey:  "stacktrace",
        LineEnding:     zapcore.DefaultLineEnding,
        EncodeLevel:    zapcore.LowercaseLevelEncoder,
        EncodeTime:     zapcore.ISO8601TimeEncoder,
        EncodeDuration: zapcore.SecondsDurationEncoder,
        EncodeCaller:   zapcore.ShortCallerEncoder,
    }

    var cores []zapcore.Core
    for _, path := range cfg.OutputPaths {
        var writer zapcore.WriteSyncer
        switch path {
        case "stdout":
            writer = zapcore.AddSync(os.Stdout)
        case "stderr":
            writer = zapcore.AddSync(os.Stderr)
        default:
            if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
                return nil, fmt.Errorf("can't create log directory: %w", err)
            }
            writer = zapcore.AddSync(&lumberjack.Logger{
                Filename:   path,
                MaxSize:    cfg.MaxSize,
                MaxBackups: cfg.MaxBackups,
                MaxAge:     cfg.MaxAge,
                Compress:   cfg.Compress,
            })
        }

        var encoder zapcore.Encoder
        if cfg.Encoding == "json" {
            encoder = zapcore.NewJSONEncoder(encoderConfig)
        } else {
            encoder = zapcore.NewConsoleEncoder(encoderConfig)
        }
        cores = append(cores, zapcore.NewCore(encoder, writer, level))
    }

    zapLogger := zap.New(
        zapcore.NewTee(cores...),
        zap.AddCaller(),
        zap.AddCallerSkip(1),
    )
    return &logger{zap: zapLogger}, nil
}

// Field constructors.
func String(key string, val string) Field          { return zap.String(key, val) }
func Int(key string, val int) Field                { return zap.Int(key, val) }
func Int64(key string, val int64) Field            { return zap.Int64(key, val) }
func Float64(key string, val float64) Field        { return zap.Float64(key, val) }
func Bool(key string, val bool) Field              { return zap.Bool(key, val) }
func Any(key string, val interface{}) Field        { return zap.Any(key, val) }
func Error(err error) Field                        { return zap.Error(err) }
func Time(key string, val time.Time) Field         { return zap.Time(key, val) }
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }

func (l *logger) Debug(msg string, fields ...Field) { l.zap.Debug(msg, fields...) }
func (l *logger) Info(msg string, fields ...Field)  { l.zap.Info(msg, fields...) }
func (l *logger) Warn(msg string, fields ...Field)  { l.zap.Warn(msg, fields...) }
func (l *logger) Error(msg string, fields ...Field) { l.zap.Error(msg, fields...) }
func (l *logger) Fatal(msg string, fields ...Field) { l.zap.Fatal(msg, fields...) }

func (l *logger) With(fields ...Field) Logger {
    return &logger{zap: l.zap.With(fields...)}
}

func (l *logger) Named(name string) Logger {
    return &logger{zap: l.zap.Named(name)}
}

func (l *logger) Sync() error { return l.zap.Sync() }

// Nop returns a logger that discards everything. Used in tests.
func Nop() Logger {
    return &logger{zap: zap.NewNop()}
}

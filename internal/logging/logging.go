// Package logging builds the zap loggers used across navsim.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// NewLoggerConfig returns the console config shared by the CLI: colored levels, ISO8601
// timestamps and no stacktraces.
func NewLoggerConfig() zap.Config {
	return zap.Config{
		Level:    zap.NewAtomicLevelAt(zap.InfoLevel),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}

// NewLogger returns a named logger writing Info+ to stderr, or Debug+ when debug is set.
func NewLogger(name string, debug bool) (*zap.SugaredLogger, error) {
	cfg := NewLoggerConfig()
	if debug {
		cfg.Level.SetLevel(zap.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Named(name).Sugar(), nil
}

// NewTestLogger returns a logger that writes through the test's log.
func NewTestLogger(tb zaptest.TestingT) *zap.SugaredLogger {
	return zaptest.NewLogger(tb).Sugar()
}

// NewObservedTestLogger is like NewTestLogger but also keeps every entry in memory.
func NewObservedTestLogger(tb zaptest.TestingT) (*zap.SugaredLogger, *observer.ObservedLogs) {
	observerCore, logs := observer.New(zapcore.DebugLevel)
	core := zapcore.NewTee(zaptest.NewLogger(tb).Core(), observerCore)
	return zap.New(core).Sugar(), logs
}

// Package logger provides a convenience function to constructing a logger
// for use. This is required not just for applications but for testing.
package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation describes an optional log file that is rotated by size.
type Rotation struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New constructs a Sugared Logger that writes to stdout and
// provides human readable timestamps.
func New(service string) (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stdout"}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	config.InitialFields = map[string]any{
		"service": service,
	}

	log, err := config.Build()
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}

// NewWithRotation constructs a Sugared Logger that writes to stdout and,
// when a file is configured, to a size rotated log file as well.
func NewWithRotation(service string, rotation Rotation) (*zap.SugaredLogger, error) {
	if rotation.File == "" {
		return New(service)
	}

	if err := os.MkdirAll(filepath.Dir(rotation.File), 0700); err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	file := zapcore.AddSync(&lumberjack.Logger{
		Filename:   rotation.File,
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
		Compress:   true,
	})

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(encoder, file, level),
	)

	log := zap.New(core).With(zap.String("service", service))

	return log.Sugar(), nil
}

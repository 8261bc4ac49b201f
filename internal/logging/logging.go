// Package logging builds the zap logger used across stash.
//
// The TUI owns the terminal, so logs go to a file. JSON is the default
// encoding; the in-app log pane decodes it through logtail.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	OutputPath string // file path, "stdout" or "stderr"; empty disables logging
}

// Logger pairs a zap logger with its adjustable level.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop(), level: zap.NewAtomicLevel()}
}

// New builds a logger from cfg.
func New(cfg Config) (*Logger, error) {
	if strings.TrimSpace(cfg.OutputPath) == "" {
		return Nop(), nil
	}

	var zcfg zap.Config
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.Sampling = nil
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))
	zcfg.Level = level

	out := cfg.OutputPath
	if out != "stdout" && out != "stderr" {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	zcfg.OutputPaths = []string{out}
	zcfg.ErrorOutputPaths = []string{out}

	logger, err := zcfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Logger{Logger: logger, level: level}, nil
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// SetLevel changes the level at runtime. Unknown names are ignored.
func (l *Logger) SetLevel(name string) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return
	}
	l.level.SetLevel(level)
}

// Level reports the current level.
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

// Close flushes buffered entries. Sync errors on terminals are ignored.
func (l *Logger) Close() error {
	if err := l.Sync(); err != nil && !isTerminalSyncError(err) {
		return err
	}
	return nil
}

func isTerminalSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") || strings.Contains(msg, "inappropriate ioctl")
}

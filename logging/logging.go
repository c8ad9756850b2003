package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB  = 10
	maxLogBackups = 5
	maxLogAgeDays = 14
)

// The process-wide logger. Packages grab it in init(), before main has had a
// chance to configure it, so it is created eagerly and mutated in place.
var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// InitLogger sets the level of the process logger.
func InitLogger(level logrus.Level) {
	logger.SetLevel(level)
}

// Options controls where and how log lines are written.
type Options struct {
	Level  string
	Format string
	File   string
}

// Setup applies opts to the process logger. When File is set, output goes to
// both stderr and a size-rotated file.
func Setup(opts Options) error {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}
	InitLogger(level)
	logger.SetFormatter(newFormatter(opts.Format))

	path := strings.TrimSpace(opts.File)
	if path == "" {
		logger.SetOutput(os.Stderr)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}))
	return nil
}

// ParseLevel maps a config string onto a logrus level. An empty string means info.
func ParseLevel(level string) (logrus.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return logrus.InfoLevel, nil
	}
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

func newFormatter(format string) logrus.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return &logrus.JSONFormatter{}
	default:
		return &logrus.TextFormatter{FullTimestamp: true}
	}
}

// GetLogger returns the process logger.
func GetLogger() *logrus.Logger {
	return logger
}

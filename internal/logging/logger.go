package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileMaxSizeMB  = 10
	logFileMaxBackups = 5
	logFileMaxAgeDays = 30
)

// Options selects the log sinks.
type Options struct {
	Environment string
	Level       string
	// File, when set, receives a JSON copy of every record with size-based rotation.
	File string
}

func New(opts Options) (zerolog.Logger, error) {
	parsedLevel, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Logger{}, err
	}

	var writer io.Writer = os.Stdout
	if strings.EqualFold(strings.TrimSpace(opts.Environment), "local") {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	if file := strings.TrimSpace(opts.File); file != "" {
		writer = zerolog.MultiLevelWriter(writer, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
			MaxAge:     logFileMaxAgeDays,
		})
	}

	logger := zerolog.New(writer).
		Level(parsedLevel).
		With().
		Timestamp().
		Str("service", "mts").
		Logger()

	return logger, nil
}

// ParseLevel accepts zerolog level names plus WARNING.
func ParseLevel(raw string) (zerolog.Level, error) {
	level := strings.ToLower(strings.TrimSpace(raw))
	if level == "warning" {
		level = "warn"
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse MTS_LOG_LEVEL=%q: %w", raw, err)
	}
	return parsed, nil
}

// Package logging builds the structured logger used across wd-launcher.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/acarl005/stripansi"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls logger construction.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // console, json
	Dir    string // if set, logs are also written to <dir>/wd-launcher.log
}

// New creates the launcher logger. Console output keeps colors; the rotating
// file sink receives the same entries with ANSI escapes stripped, since hook
// and worker error messages frequently carry color codes from child tooling.
func New(cfg Config) (*zap.SugaredLogger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	var consoleEncoder zapcore.Encoder
	if cfg.Format == "json" {
		consoleEncoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		consoleConfig := encoderConfig
		consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleEncoder = zapcore.NewConsoleEncoder(consoleConfig)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level),
	}

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %q: %w", cfg.Dir, err)
		}
		fileConfig := encoderConfig
		fileConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		writer := &ansiStrippingSyncer{WriteSyncer: zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, "wd-launcher.log"),
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
		})}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(fileConfig), writer, level))
	}

	return zap.New(zapcore.NewTee(cores...)).Sugar(), nil
}

func parseLevel(s string) (zapcore.Level, error) {
	switch s {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// ansiStrippingSyncer removes ANSI escape sequences before writing to the
// underlying sink.
type ansiStrippingSyncer struct {
	zapcore.WriteSyncer
}

func (w *ansiStrippingSyncer) Write(p []byte) (int, error) {
	stripped := stripansi.Strip(string(p))
	if _, err := w.WriteSyncer.Write([]byte(stripped)); err != nil {
		return 0, err
	}
	// Report the original length so zap does not treat the shortened
	// write as an error.
	return len(p), nil
}

package server

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a JSON logger, or a console logger when pretty is set.
// Entries at error level and above go to stderr, the rest to stdout.
func NewLogger(level string, pretty bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return newZapLogger(zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr), pretty, lvl), nil
}

func newZapLogger(out, errOut zapcore.WriteSyncer, pretty bool, level zapcore.LevelEnabler) *zap.Logger {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeDuration = zapcore.SecondsDurationEncoder
	ec.TimeKey = "time"

	var encoder zapcore.Encoder
	if pretty {
		ec.ConsoleSeparator = " "
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05 PM")
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(ec)
	} else {
		ec.EncodeTime = zapcore.EpochMillisTimeEncoder
		encoder = zapcore.NewJSONEncoder(ec)
	}

	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return level.Enabled(l) && l < zapcore.ErrorLevel
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return level.Enabled(l) && l >= zapcore.ErrorLevel
	})
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, out, low),
		zapcore.NewCore(encoder.Clone(), errOut, high),
	)
	logger := zap.New(core, zap.AddStacktrace(zap.ErrorLevel), zap.ErrorOutput(errOut))

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return logger.With(zap.String("hostname", host), zap.Int("pid", os.Getpid()))
}

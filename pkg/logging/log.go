// Package logging owns the process-wide zap logger. Diagnostics go to
// stderr so they never interleave with reporter output on stdout.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

var (
	level   = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	logger  *zap.Logger
	sugared *zap.SugaredLogger
)

func init() {
	rebuild(false)
}

// SetLevel adjusts the level of the loggers.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// Console switches to a human-oriented encoder: colored levels and
// wall-clock timestamps instead of structured JSON.
func Console() {
	rebuild(true)
}

func rebuild(console bool) {
	cfg := zap.NewProductionEncoderConfig()

	var enc zapcore.Encoder
	if console {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		enc = zapcore.NewConsoleEncoder(cfg)
	} else {
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(os.Stderr)), level)
	logger = zap.New(core)
	sugared = logger.Sugar()
}

// IsTerminal reports whether stdout is attached to a TTY.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// L returns the global raw logger.
func L() *zap.Logger {
	return logger
}

// S returns the global sugared logger.
func S() *zap.SugaredLogger {
	return sugared
}

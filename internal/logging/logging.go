// Package logging builds the zap loggers used across cone-finder.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelEnv names the environment variable that selects the log level.
const LevelEnv = "CONE_FINDER_LOG_LEVEL"

// NewLoggerConfig returns the console configuration: ISO8601 timestamps,
// capitalized levels, no stacktraces. Output goes to stderr so stdout stays
// free for reports and the tool server protocol.
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
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}

// ParseLevel maps a level name to a zap level. Unknown names mean info.
func ParseLevel(name string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// New builds a named logger. debug forces debug level; otherwise the level
// comes from CONE_FINDER_LOG_LEVEL and defaults to info.
func New(name string, debug bool) (*zap.SugaredLogger, error) {
	cfg := NewLoggerConfig()
	level := ParseLevel(os.Getenv(LevelEnv))
	if debug {
		level = zapcore.DebugLevel
	}
	cfg.Level.SetLevel(level)

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named(name).Sugar(), nil
}

// Package logger provides a global logger for the application
package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

// levelForEnvironment maps ENVIRONMENT onto the default zerolog level.
func levelForEnvironment(environment string) (zerolog.Level, bool) {
	switch environment {
	case "dev", "test":
		return zerolog.TraceLevel, true
	case "prod":
		return zerolog.InfoLevel, true
	default:
		return zerolog.InfoLevel, false
	}
}

func initLogger() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()

	environment := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if environment == "" {
		environment = "prod"
	}

	logLevel, known := levelForEnvironment(environment)
	if known {
		log.Debug().Str("environment", environment).Msg("environment detected")
	} else {
		log.Warn().Str("environment", environment).Msg("Unknown environment - defaulting to production log level (info and above)")
	}
	zerolog.SetGlobalLevel(logLevel)
	Logger = newZap(logLevel)
}

// Init initializes the logger with the configuration from the environment.
// It sets up the global zerolog logger with console output and the zap
// logger returned by Sugar.
//
//	logger.Init() <- inside whichever main() function in your entrypoint
//
// Command line flags may then narrow the level with SetLevel.
func Init() {
	initLogger()
}

// SetLevel overrides the global level, e.g. from a --debug flag.
func SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	Logger = newZap(lvl)
	log.Debug().Str("level", lvl.String()).Msg("log level overridden")
	return nil
}

func newZap(level zerolog.Level) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	cfg.OutputPaths = []string{"stderr"}
	l, err := cfg.Build()
	if err != nil {
		log.Error().Err(err).Msg("failed to build zap logger, falling back to no-op")
		return zap.NewNop()
	}
	return l
}

func zapLevel(level zerolog.Level) zapcore.Level {
	switch level {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return zapcore.DebugLevel
	case zerolog.InfoLevel:
		return zapcore.InfoLevel
	case zerolog.WarnLevel:
		return zapcore.WarnLevel
	case zerolog.ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel
	}
}

// L returns the zap logger, or a no-op logger before Init.
func L() *zap.Logger {
	if Logger == nil {
		return zap.NewNop()
	}
	return Logger
}

// Sugar returns a sugared logger for easier use
func Sugar() *zap.SugaredLogger {
	return L().Sugar()
}

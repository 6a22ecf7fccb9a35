// File: internal/observability/logger.go
package observability

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/xkilldash9x/socialbot/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	globalLogger atomic.Pointer[zap.Logger]
	once         sync.Once
)

const (
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorWhite   = "\x1b[37m"
	colorReset   = "\x1b[0m"
)

var palette = map[string]string{
	"black":   "\x1b[30m",
	"red":     colorRed,
	"green":   colorGreen,
	"yellow":  colorYellow,
	"blue":    colorBlue,
	"magenta": colorMagenta,
	"cyan":    colorCyan,
	"white":   colorWhite,
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Initialize installs the global logger. Only the first call has an effect;
// later calls keep the logger the first one built.
func Initialize(cfg config.LoggerConfig, console zapcore.WriteSyncer) {
	once.Do(func() {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			level = zapcore.InfoLevel
		}
		enabler := zap.NewAtomicLevelAt(level)

		cores := []zapcore.Core{zapcore.NewCore(consoleOrJSONEncoder(cfg), console, enabler)}
		if cfg.LogFile != "" {
			cores = append(cores, rotatingFileCore(cfg, enabler))
		}

		opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
		if cfg.AddSource {
			opts = append(opts, zap.AddCaller())
		}
		logger := zap.New(zapcore.NewTee(cores...), opts...).Named(cfg.ServiceName)

		globalLogger.Store(logger)
		zap.ReplaceGlobals(logger)
		zap.RedirectStdLog(logger)
	})
}

// InitializeLogger logs to Stderr, leaving Stdout to command output such as
// the JSON outcome of goto.
func InitializeLogger(cfg config.LoggerConfig) {
	Initialize(cfg, zapcore.Lock(os.Stderr))
}

// ResetForTest forgets the global logger. Tests only.
func ResetForTest() {
	globalLogger.Store(nil)
	once = sync.Once{}
}

// rotatingFileCore writes JSON lines to cfg.LogFile through lumberjack.
func rotatingFileCore(cfg config.LoggerConfig, enabler zapcore.LevelEnabler) zapcore.Core {
	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})
	return zapcore.NewCore(zapcore.NewJSONEncoder(baseEncoderConfig()), sink, enabler)
}

func baseEncoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return ec
}

// consoleOrJSONEncoder returns a single-line colorized encoder for the
// "console" format and JSON for anything else.
func consoleOrJSONEncoder(cfg config.LoggerConfig) zapcore.Encoder {
	ec := baseEncoderConfig()
	if cfg.Format != "console" {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = levelColorizer(cfg.Colors)
	// "socialbot.dispatch." sets the component apart from the message.
	ec.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(name + ".")
	}
	return zapcore.NewConsoleEncoder(ec)
}

// levelColorizer wraps each capitalized level in the ANSI color configured for
// it. Levels without a known color are printed plain.
func levelColorizer(colors config.ColorConfig) zapcore.LevelEncoder {
	byLevel := map[zapcore.Level]string{
		zapcore.DebugLevel:  palette[colors.Debug],
		zapcore.InfoLevel:   palette[colors.Info],
		zapcore.WarnLevel:   palette[colors.Warn],
		zapcore.ErrorLevel:  palette[colors.Error],
		zapcore.DPanicLevel: palette[colors.DPanic],
		zapcore.PanicLevel:  palette[colors.Panic],
		zapcore.FatalLevel:  palette[colors.Fatal],
	}
	return func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		if color := byLevel[level]; color != "" {
			enc.AppendString(color + level.CapitalString() + colorReset)
			return
		}
		enc.AppendString(level.CapitalString())
	}
}

// GetLogger returns the global logger, or a development logger named
// "fallback" when Initialize has not run yet.
func GetLogger() *zap.Logger {
	if logger := globalLogger.Load(); logger != nil {
		return logger
	}
	fallback, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	fallback = fallback.Named("fallback")
	fallback.Warn("Global logger requested before initialization; using fallback.")
	return fallback
}

// Sync flushes buffered entries. Terminals and pipes reject fsync on most
// platforms; those errors are dropped.
func Sync() {
	logger := globalLogger.Load()
	if logger == nil {
		return
	}
	if err := logger.Sync(); err != nil && !isUnsyncableSink(err) {
		fmt.Fprintln(os.Stderr, "Error: failed to sync logger:", err)
	}
}

func isUnsyncableSink(err error) bool {
	return errors.Is(err, syscall.EINVAL) ||
		errors.Is(err, syscall.ENOTTY) ||
		errors.Is(err, syscall.ENOTSUP) ||
		errors.Is(err, syscall.EBADF)
}

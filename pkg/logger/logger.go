// Package logger builds the process-wide zap logger. It is created once in main
// and handed to every component that logs; nothing in the repo reads a global logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/lab_portal/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger writing to stdout, or to a size-rotated file when cfg.File is set.
// The returned writer is the sink in use so that hertz's access log can share it.
func New(cfg config.LogConfig) (*zap.Logger, io.Writer, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}

	var sink io.Writer = os.Stdout
	if cfg.File != "" {
		sink = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(sink), level)
	return zap.New(core, zap.AddCaller()), sink, nil
}

// BindHertz points hertz's hlog at the same sink and level as the zap logger.
func BindHertz(sink io.Writer, level string) {
	hlog.SetOutput(sink)
	hlog.SetLevel(hertzLevel(level))
}

func hertzLevel(level string) hlog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return hlog.LevelDebug
	case "warn", "warning":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	default:
		return hlog.LevelInfo
	}
}

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otellogrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

// Setup configures the standard logrus logger. Log files are rotated. When
// withTelemetry is set, records at info and above are attached to the active span.
func Setup(cfg eventmodels.LogConfigYAML, withTelemetry bool) error {
	level := log.InfoLevel
	if cfg.Level != "" {
		var err error
		if level, err = log.ParseLevel(cfg.Level); err != nil {
			return fmt.Errorf("logger.Setup: invalid log level %q: %w", cfg.Level, err)
		}
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339})
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	default:
		return fmt.Errorf("logger.Setup: unknown log format %q", cfg.Format)
	}

	output, err := newOutput(cfg)
	if err != nil {
		return err
	}
	log.SetOutput(output)

	if withTelemetry {
		log.AddHook(otellogrus.NewHook(otellogrus.WithLevels(
			log.PanicLevel,
			log.FatalLevel,
			log.ErrorLevel,
			log.WarnLevel,
			log.InfoLevel,
		)))
	}

	return nil
}

func newOutput(cfg eventmodels.LogConfigYAML) (io.Writer, error) {
	if cfg.File == "" {
		return os.Stdout, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, fmt.Errorf("logger.Setup: failed to create log directory: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	return io.MultiWriter(os.Stdout, file), nil
}

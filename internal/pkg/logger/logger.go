package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	EncodingConsole = "console"
	EncodingJSON    = "json"
)

type Config struct {
	Encoding  string `envconfig:"ENCODING" default:"console"`
	Level     string `envconfig:"LEVEL" default:"info"`
	AddSource bool   `envconfig:"ADD_SOURCE" default:"true"`
}

func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch strings.ToLower(c.Encoding) {
	case "", EncodingConsole, EncodingJSON:
	default:
		return fmt.Errorf("invalid logger config: encoding %s is not supported", c.Encoding)
	}
	if _, err := parseLevel(c.Level); err != nil {
		return err
	}
	return nil
}

// New json пишет в stdout, console в stderr. Невалидный конфиг - паника, Validate вызывается раньше
func New(app string, cfg *Config) *slog.Logger {
	return newLogger(app, cfg, os.Stdout, os.Stderr)
}

func newLogger(app string, cfg *Config, stdout, stderr io.Writer) *slog.Logger {
	if cfg == nil {
		cfg = &Config{AddSource: true}
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	level, _ := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Encoding, EncodingJSON) {
		handler = slog.NewJSONHandler(stdout, opts)
	} else {
		handler = slog.NewTextHandler(stderr, opts)
	}

	return slog.New(handler).With("app", app)
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid logger config: level %s is not supported", level)
	}
}

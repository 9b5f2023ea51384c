// This package defines a common config struct which can be used by any subsystem within go-bittorrent.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Debug          bool
	RootDir        string
	LoggingPrefix  string
	StrictKeyOrder bool
	writer         io.Writer
	console        io.Writer
}

func (c Config) Logger(source string) *zap.SugaredLogger {
	var p string
	if source == "" {
		p = c.LoggingPrefix
	} else {
		p = fmt.Sprintf("%s:%s", c.LoggingPrefix, source)
	}

	level := zapcore.InfoLevel
	if c.Debug {
		level = zapcore.DebugLevel
	}
	opts := []zap.Option{
		zap.Fields(zap.String("source", p)),
	}

	de := zap.NewDevelopmentEncoderConfig()
	fileEncoder := zapcore.NewJSONEncoder(de)
	consoleEncoder := zapcore.NewConsoleEncoder(de)
	core := zapcore.NewTee(
		zapcore.NewCore(fileEncoder, zapcore.AddSync(c.writer), level),
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(c.console), level),
	)
	logger := zap.New(core, opts...)
	sugar := logger.Sugar()
	return sugar
}

type Option func(*Config)

func WithDebug(d bool) Option {
	return func(c *Config) {
		c.Debug = d
	}
}

// Directory that receives the rotated out.log.
func WithRootDir(d string) Option {
	return func(c *Config) {
		c.RootDir = d
	}
}

func WithLoggingPrefix(p string) Option {
	return func(c *Config) {
		c.LoggingPrefix = p
	}
}

// WithStrictKeyOrder makes metadata parsing reject dictionaries whose keys are not sorted.
func WithStrictKeyOrder(s bool) Option {
	return func(c *Config) {
		c.StrictKeyOrder = s
	}
}

// WithLogWriter replaces the log file with w. Console output is unaffected.
func WithLogWriter(w io.Writer) Option {
	return func(c *Config) {
		c.writer = w
	}
}

// WithConsole replaces the console log destination, stderr by default, so stdout stays clean for command
// output.
func WithConsole(w io.Writer) Option {
	return func(c *Config) {
		c.console = w
	}
}

func NewConfig(opts ...Option) *Config {
	c := &Config{
		Debug:          os.Getenv("DEBUG") == "1",
		LoggingPrefix:  "bittorrent",
		RootDir:        ".",
		StrictKeyOrder: false,

		writer:  nil,
		console: os.Stderr,
	}
	for _, o := range opts {
		o(c)
	}

	if c.writer == nil {
		c.writer = &lumberjack.Logger{
			Filename:   filepath.Join(c.RootDir, "out.log"),
			MaxSize:    500, // megabytes
			MaxBackups: 3,
			MaxAge:     28,   // days
			Compress:   true, // disabled by default
		}
	}
	return c
}

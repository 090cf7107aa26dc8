package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"shiftpay/internal/config"
)

var (
	globalMu   sync.Mutex
	fileWriter io.WriteCloser
)

// Init builds the application logger from cfg, installs it as the global
// zerolog logger and returns it. verbose forces debug level.
func Init(cfg config.LoggingConfig, verbose bool) zerolog.Logger {
	var console io.Writer = os.Stderr
	if !cfg.JSON && isatty.IsTerminal(os.Stderr.Fd()) {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}

	writer := console
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		writer = zerolog.MultiLevelWriter(console, rotating)
		setFileWriter(rotating)
	}

	return InitWithWriter(cfg, verbose, writer)
}

// InitWithWriter is Init with an explicit destination; tests use it to capture output.
func InitWithWriter(cfg config.LoggingConfig, verbose bool, w io.Writer) zerolog.Logger {
	level := ParseLevel(cfg.Level)
	if verbose || DebugEnabled() {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()

	globalMu.Lock()
	log.Logger = logger
	globalMu.Unlock()

	return logger
}

// ParseLevel maps a configured level name to a zerolog level, defaulting to warn.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.WarnLevel
	}
	return level
}

// Close flushes and closes the rotating log file, if one was opened.
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if fileWriter == nil {
		return nil
	}
	err := fileWriter.Close()
	fileWriter = nil
	return err
}

func setFileWriter(w io.WriteCloser) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if fileWriter != nil {
		_ = fileWriter.Close()
	}
	fileWriter = w
}

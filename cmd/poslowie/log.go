package main

import (
	"io"
	"log/slog"

	"github.com/japaniel/poslowie/pkg/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger builds the run's logger: text on stderr, optionally mirrored
// into a size-rotated log file. The returned func closes the file.
func newLogger(cfg config.Config, stderr io.Writer) (*slog.Logger, func()) {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	w := stderr
	closeFn := func() {}
	if cfg.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		}
		w = io.MultiWriter(stderr, file)
		closeFn = func() { _ = file.Close() }
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closeFn
}

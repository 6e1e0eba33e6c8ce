// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls level and optional file rotation.
type Options struct {
	Level      string
	File       string // empty = stderr only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Setup installs the global logger. The returned closer flushes the
// rotating file, if any.
func Setup(opts Options) io.Closer {
	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		fileLog := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		w = io.MultiWriter(os.Stderr, fileLog)
		closer = fileLog
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

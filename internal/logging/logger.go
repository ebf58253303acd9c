// Package logging configures zerolog for CLI and TUI modes.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Mode selects where log output goes.
type Mode string

const (
	// ModeCLI writes human readable lines to stderr.
	ModeCLI Mode = "cli"
	// ModeTUI writes to a file; the alt screen owns the terminal.
	ModeTUI Mode = "tui"
)

const timeFormat = "15:04:05"

// Options configures New.
type Options struct {
	Mode  Mode
	Level string
	File  string
	// Out overrides the CLI writer.
	Out io.Writer
}

// New builds a logger. The returned closer releases the log file, if any.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	if opts.Mode == ModeTUI {
		if opts.File == "" {
			return zerolog.Nop(), nopCloser{}, nil
		}
		if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("open log file: %w", err)
		}
		log := zerolog.New(f).Level(level).With().Timestamp().Logger()
		return log, f, nil
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	log := zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeFormat,
	}).Level(level).With().Timestamp().Logger()
	return log, nopCloser{}, nil
}

// ParseLevel maps a config level name onto zerolog. Empty means warn.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return zerolog.WarnLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.WarnLevel, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

func newLogger(w io.Writer, level, format string, gf GlobalFlags) *log.Logger {
	lvl := parseLogLevel(level)
	switch {
	case gf.Verbose:
		lvl = log.DebugLevel
	case gf.Quiet:
		lvl = log.ErrorLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:     lvl,
		Formatter: parseLogFormatter(format),
		Prefix:    "todo",
	})
}

func parseLogLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}

func parseLogFormatter(s string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

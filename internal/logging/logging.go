package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options selects where and how a logger writes.
type Options struct {
	Level  string    // trace, debug, info, warn, error
	Format string    // console (default) or json
	Out    io.Writer // defaults to os.Stderr
	File   io.Writer // optional second sink, always uncoloured
}

// ParseLevel maps a level name to a zerolog level. Unknown names fall back to
// info and are reported.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "TRACE":
		return zerolog.TraceLevel, nil
	case "DEBUG":
		return zerolog.DebugLevel, nil
	case "", "INFO":
		return zerolog.InfoLevel, nil
	case "WARN", "WARNING":
		return zerolog.WarnLevel, nil
	case "ERROR":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level: %s", name)
	}
}

func New(opts Options) (zerolog.Logger, error) {
	level, err := ParseLevel(opts.Level)

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	var w io.Writer
	switch strings.ToLower(opts.Format) {
	case "json":
		w = out
		if opts.File != nil {
			w = zerolog.MultiLevelWriter(out, opts.File)
		}
	case "", "console":
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		if opts.File != nil {
			w = zerolog.MultiLevelWriter(w, zerolog.ConsoleWriter{
				Out:        opts.File,
				TimeFormat: time.RFC3339,
				NoColor:    true,
			})
		}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format: %s", opts.Format)
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return logger, err
}

// Package logger holds the process-wide zerolog logger.
//
// main calls Init once; everything else either receives a zerolog.Logger
// through its constructor or asks for Component(name).
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the logger built by New and Init.
type Options struct {
	// Level accepts zerolog level names plus "warning". Unknown or empty
	// values fall back to info.
	Level string
	// Pretty switches to the coloured console writer for local development.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service and Version are stamped on every entry when set.
	Service string
	Version string
}

var (
	initOnce sync.Once
	current  atomic.Pointer[zerolog.Logger]
)

// New builds a logger from opts without touching the process-wide one.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	fields := zerolog.New(out).Level(parseLevel(opts.Level)).With().Timestamp()
	if opts.Service != "" {
		fields = fields.Str("service", opts.Service)
	}
	if opts.Version != "" {
		fields = fields.Str("version", opts.Version)
	}
	return fields.Caller().Logger()
}

// Init installs the process-wide logger. Only the first call wins; later
// calls return the logger already installed.
func Init(opts Options) zerolog.Logger {
	initOnce.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		zerolog.SetGlobalLevel(parseLevel(opts.Level))

		l := New(opts)
		current.Store(&l)
	})
	return *current.Load()
}

// Get returns the process-wide logger. It panics before Init.
func Get() zerolog.Logger {
	l := current.Load()
	if l == nil {
		panic("logger: Get() called before Init()")
	}
	return *l
}

// Component returns a child logger tagged with component=name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset clears the process-wide logger. Tests only.
func Reset() {
	initOnce = sync.Once{}
	current.Store(nil)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

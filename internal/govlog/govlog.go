// Package govlog wraps rs/zerolog behind a package-level, mutex-guarded
// global logger, mirroring the pattern in vocdoni-davinci-node/log and
// vocdoni-vocdoni-sequencer/log: a single Init call configures level and
// output once at process start, and every other package calls Logger() or
// the level-named helpers rather than constructing its own zerolog.Logger.
package govlog

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var (
	logger zerolog.Logger
	mu     sync.RWMutex
)

func init() {
	Init(LevelInfo, "stderr")
}

// Init (re)configures the global logger. output is "stdout", "stderr", or
// a file path.
func Init(level, output string) {
	var out *os.File
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			panic(fmt.Sprintf("govlog: cannot open log output %q: %v", output, err))
		}
		out = f
	}

	console := zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02T15:04:05.000Z07:00"}
	l := zerolog.New(console).With().Timestamp().Logger()

	switch level {
	case LevelDebug:
		l = l.Level(zerolog.DebugLevel)
	case LevelInfo:
		l = l.Level(zerolog.InfoLevel)
	case LevelWarn:
		l = l.Level(zerolog.WarnLevel)
	case LevelError:
		l = l.Level(zerolog.ErrorLevel)
	default:
		l = l.Level(zerolog.InfoLevel)
	}

	mu.Lock()
	logger = l
	mu.Unlock()
}

// Logger returns the current global logger.
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

func Debug() *zerolog.Event { return Logger().Debug() }
func Info() *zerolog.Event  { return Logger().Info() }
func Warn() *zerolog.Event  { return Logger().Warn() }
func Error() *zerolog.Event { return Logger().Error() }

// With returns a child logger with the given component field set, for
// packages that want stable structured context on every line (e.g.
// component "ledger" or "tally").
func With(component string) zerolog.Logger {
	return Logger().With().Str("component", component).Logger()
}

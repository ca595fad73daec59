package log

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// "goroutine 123 [running]:" fits comfortably.
	stackBufSize = 32
	// Shortest header that can still carry an ID.
	minStackHeaderLen = 12
	// len("goroutine ").
	goroutinePrefixLen = 10
	consoleTimeFormat  = "15:04:05"
	unknownGoroutineID = "unknown"
)

var (
	Logger    zerolog.Logger
	stackPool = sync.Pool{New: func() interface{} { return make([]byte, stackBufSize) }}
	levelMu   sync.Mutex
)

// goroutineID returns the numeric ID of the calling goroutine as a string.
func goroutineID() string {
	buf, ok := stackPool.Get().([]byte)
	if !ok {
		return unknownGoroutineID
	}
	defer stackPool.Put(buf) //nolint:staticcheck // slices are fine here

	n := runtime.Stack(buf, false)
	if n < minStackHeaderLen {
		return unknownGoroutineID
	}

	end := goroutinePrefixLen
	for end < n && buf[end] >= '0' && buf[end] <= '9' {
		end++
	}
	if end == goroutinePrefixLen {
		return unknownGoroutineID
	}
	return string(buf[goroutinePrefixLen:end])
}

// New builds a logger writing to out at the given level. Every event carries
// a timestamp and the goroutine ID.
func New(out io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger().
		Hook(zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
			e.Str("goid", goroutineID())
		}))
}

func init() {
	install(New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: consoleTimeFormat}, zerolog.InfoLevel))
}

func install(l zerolog.Logger) {
	Logger = l
	log.Logger = l
}

// SetOutput redirects all subsequent log output to out, keeping the current level.
func SetOutput(out io.Writer) {
	levelMu.Lock()
	defer levelMu.Unlock()
	install(New(out, Logger.GetLevel()))
}

// SetLevel parses a level name such as "debug" or "warn" and applies it.
func SetLevel(name string) error {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	levelMu.Lock()
	defer levelMu.Unlock()
	install(Logger.Level(level))
	return nil
}

// SetDebugMode switches the logger to debug level.
func SetDebugMode() {
	_ = SetLevel("debug")
}

func Info() *zerolog.Event {
	return Logger.Info()
}

func Error() *zerolog.Event {
	return Logger.Error()
}

func Warn() *zerolog.Event {
	return Logger.Warn()
}

func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Fatal logs at fatal level and exits the process once the event is sent.
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}

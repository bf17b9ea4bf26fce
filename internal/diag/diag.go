// Package diag is the daemon's diagnostics logging facade.
//
// It is deliberately outside the core's synchronous message-routing path
// (internal/core.Engine.Submit): the core never blocks on diagnostics I/O.
// Like the reference logger this project is grounded on, every log record
// is handed to a single background goroutine over a buffered channel; the
// caller only pays for the channel send, and formatting happens on that
// goroutine. Unlike the reference logger, the sink
// is a zerolog.Logger rather than a raw io.Writer, following the facade
// pattern of quay/zlog: package-level functions named after severities,
// wrapping one shared logger that tests can override with Set.
package diag

import (
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/openwebos/pmlogdaemon/internal/sylevel"
)

type event struct {
	level sylevel.Level
	msg   string
	args  []interface{}
	ack   chan struct{}
}

var (
	mu      sync.Mutex
	log     = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).With().Timestamp().Logger()
	ch      chan event
	wg      sync.WaitGroup
	started bool

	overflowCount  counter
	rotateFailures counter
)

// counter is a diagnostics-only tally, surfaced for tests and operators;
// it never influences control flow (spec §7: ring buffer overflow and
// rotation I/O errors are silent-to-the-pipeline, counted here only).
type counter struct {
	mu sync.Mutex
	n  uint64
}

func (c *counter) inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *counter) value() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func init() {
	start()
}

func start() {
	mu.Lock()
	defer mu.Unlock()
	if started {
		return
	}
	ch = make(chan event, 64)
	wg.Add(1)
	go run()
	started = true
}

func run() {
	defer wg.Done()
	for e := range ch {
		if e.msg != "" {
			emit(e)
		}
		if e.ack != nil {
			close(e.ack)
		}
	}
}

func emit(e event) {
	mu.Lock()
	l := log
	mu.Unlock()

	var ev *zerolog.Event
	switch {
	case e.level.Equal(sylevel.NewLevel(sylevel.LevelDebug)):
		ev = l.Debug()
	case e.level.Equal(sylevel.NewLevel(sylevel.LevelInfo)):
		ev = l.Info()
	case e.level.Equal(sylevel.NewLevel(sylevel.LevelWarning)):
		ev = l.Warn()
	default:
		ev = l.Error()
	}
	ev.Msgf(e.msg, e.args...)
}

// Set overrides the underlying zerolog logger. Intended for tests that
// want to capture diagnostics output; unsafe to call concurrently with
// logging calls.
func Set(l zerolog.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()
}

func send(level sylevel.Level, msg string, args ...interface{}) {
	mu.Lock()
	c := ch
	mu.Unlock()
	if c == nil {
		return
	}
	c <- event{level: level, msg: msg, args: args}
}

// Debug logs a debug-level diagnostic.
func Debug(msg string, args ...interface{}) { send(sylevel.NewLevel(sylevel.LevelDebug), msg, args...) }

// Info logs an info-level diagnostic.
func Info(msg string, args ...interface{}) { send(sylevel.NewLevel(sylevel.LevelInfo), msg, args...) }

// Warn logs a warning-level diagnostic (clamping, skipped sections, ...).
func Warn(msg string, args ...interface{}) { send(sylevel.NewLevel(sylevel.LevelWarning), msg, args...) }

// Error logs an error-level diagnostic (I/O errors, fatal load failures).
func Error(msg string, args ...interface{}) { send(sylevel.NewLevel(sylevel.LevelErr), msg, args...) }

// IncRingBufferOverflow records a dropped-entry event for diagnostics.
func IncRingBufferOverflow() { overflowCount.inc() }

// RingBufferOverflowCount returns the number of ring-buffer entries
// dropped for exceeding the configured budget, process-wide.
func RingBufferOverflowCount() uint64 { return overflowCount.value() }

// IncRotationFailure records a failed rotation attempt for diagnostics.
func IncRotationFailure() { rotateFailures.inc() }

// RotationFailureCount returns the number of rotation attempts that hit
// an I/O error, process-wide.
func RotationFailureCount() uint64 { return rotateFailures.value() }

// Flush blocks until all diagnostics enqueued so far have been written.
// Used by tests and by shutdown to avoid truncated log output.
func Flush() {
	mu.Lock()
	c := ch
	mu.Unlock()
	if c == nil {
		return
	}
	ack := make(chan struct{})
	c <- event{ack: ack}
	<-ack
}

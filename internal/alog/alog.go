// Package alog is the hot-path audit logger: fixed-size records handed to a
// background writer over an SPSC ring. Log never blocks; when the ring is
// full the record is dropped and the drop counter bumped. Process-level
// logging stays on zerolog — this sink exists only for the engine's audit
// trail.
package alog

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/GarrickPinon/hft-engine/internal/core"
	"github.com/GarrickPinon/hft-engine/internal/metrics"
	"github.com/GarrickPinon/hft-engine/internal/ring"
)

// Level of an audit record.
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// WARN is padded so the bracketed level column stays aligned in the file.
var levelNames = [...]string{"DEBUG", "INFO", "WARN ", "ERROR"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "INFO"
}

// maxMessage is the fixed record payload size; longer messages are truncated.
const maxMessage = 128

// DefaultQueueSize is the ring capacity used by production wiring.
const DefaultQueueSize = 4096

// Entry is one fixed-size audit record.
type Entry struct {
	TS    core.Timestamp
	Level Level
	Len   uint8
	Msg   [maxMessage]byte
}

// Logger owns the queue and the background writer. All Log/Logf calls must
// come from a single producer goroutine (the engine thread); the worker is
// the single consumer.
type Logger struct {
	queue   *ring.Buffer[Entry]
	out     io.Writer
	file    *os.File
	running atomic.Bool
	drops   atomic.Int64
	done    chan struct{}
}

// New opens path in append mode and starts the writer goroutine.
func New(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	l, err := NewWithWriter(f, DefaultQueueSize)
	if err != nil {
		f.Close()
		return nil, err
	}
	l.file = f
	return l, nil
}

// NewWithWriter starts a logger draining into w; used by tests and by callers
// that manage their own sink. queueSize must be a power of two.
func NewWithWriter(w io.Writer, queueSize int) (*Logger, error) {
	q, err := ring.New[Entry](queueSize)
	if err != nil {
		return nil, err
	}
	l := &Logger{
		queue: q,
		out:   w,
		done:  make(chan struct{}),
	}
	l.running.Store(true)
	go l.drain()
	return l, nil
}

// Log enqueues a plain message. Returns immediately; drops silently when the
// queue is full or the logger is stopped.
func (l *Logger) Log(level Level, msg string) {
	if !l.running.Load() {
		return
	}
	var e Entry
	e.TS = core.NowNanos()
	e.Level = level
	n := copy(e.Msg[:], msg)
	e.Len = uint8(n)
	if !l.queue.Push(e) {
		l.drops.Add(1)
		metrics.AuditLogDropsTotal.Inc()
	}
}

// Logf formats and enqueues a message, truncated to the fixed record size.
func (l *Logger) Logf(level Level, format string, args ...any) {
	l.Log(level, fmt.Sprintf(format, args...))
}

// Drops reports how many records were discarded on a full queue.
func (l *Logger) Drops() int64 { return l.drops.Load() }

// Stop flags the worker down, waits for the final drain, and closes the file
// if this logger opened one. Records enqueued after Stop are discarded.
func (l *Logger) Stop() {
	if !l.running.CompareAndSwap(true, false) {
		return
	}
	<-l.done
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

func (l *Logger) drain() {
	defer close(l.done)
	var e Entry
	for {
		wrote := false
		for l.queue.Pop(&e) {
			wrote = true
			if err := l.write(&e); err != nil {
				fmt.Fprintf(os.Stderr, "alog: writer failed: %v\n", err)
				return
			}
		}
		if !l.running.Load() {
			// The Pop above is an acquire read, so everything published
			// before Stop has been observed; one last sweep and out.
			for l.queue.Pop(&e) {
				if err := l.write(&e); err != nil {
					fmt.Fprintf(os.Stderr, "alog: writer failed: %v\n", err)
					return
				}
			}
			return
		}
		if !wrote {
			runtime.Gosched()
		}
	}
}

// write formats [YYYY-MM-DD HH:MM:SS.nanos] [LEVEL] msg; nanos is the raw
// sub-second remainder, not zero-padded.
func (l *Logger) write(e *Entry) error {
	sec := e.TS / 1_000_000_000
	nanos := e.TS % 1_000_000_000
	stamp := time.Unix(sec, 0).Format("2006-01-02 15:04:05")
	_, err := fmt.Fprintf(l.out, "[%s.%d] [%s] %s\n", stamp, nanos, e.Level, e.Msg[:e.Len])
	return err
}

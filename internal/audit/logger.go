package audit

import (
	"encoding/json"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Entry is one audit record: either an exchange termination or a
// higher-level therapy operation outcome.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	PodID     string    `json:"podId"`
	Operation string    `json:"operation"`
	Outcome   string    `json:"outcome"`
	ErrorKind string    `json:"errorKind,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Logger writes Entry records as JSON lines to a rotated file.
type Logger struct {
	mu     sync.Mutex
	writer *lumberjack.Logger
}

// Config controls the rotation policy, mirroring lumberjack.Logger's own
// fields directly.
type Config struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig returns a rotation policy for a single pod manager
// process: 10MB per file, 5 backups kept, 30 days retention.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		MaxSizeMB:  10,
		MaxBackups: 5,
		MaxAgeDays: 30,
		Compress:   true,
	}
}

// NewLogger returns a Logger over the rotated audit log at cfg.Path. The
// file is opened (and created if necessary) on the first write.
func NewLogger(cfg Config) *Logger {
	return &Logger{
		writer: &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		},
	}
}

// LogExchange records one performed exchange's outcome.
func (l *Logger) LogExchange(podID, operation string, success bool, errKind, detail string) {
	outcome := "SUCCESS"
	if !success {
		outcome = "FAILURE"
	}
	l.write(Entry{
		Timestamp: time.Now().UTC(),
		PodID:     podID,
		Operation: operation,
		Outcome:   outcome,
		ErrorKind: errKind,
		Detail:    detail,
	})
}

// LogOperation records a therapy operation's terminal outcome, distinct
// from the lower-level per-exchange entries LogExchange produces for
// each request/response round trip within that operation.
func (l *Logger) LogOperation(podID, operation string, err error) {
	if err == nil {
		l.write(Entry{
			Timestamp: time.Now().UTC(),
			PodID:     podID,
			Operation: operation,
			Outcome:   "SUCCESS",
		})
		return
	}
	l.write(Entry{
		Timestamp: time.Now().UTC(),
		PodID:     podID,
		Operation: operation,
		Outcome:   "FAILURE",
		Detail:    err.Error(),
	})
}

func (l *Logger) write(entry Entry) {
	if l == nil || l.writer == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	line, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_, _ = l.writer.Write(append(line, '\n'))
}

// Close flushes and closes the underlying rotated file.
func (l *Logger) Close() error {
	if l == nil || l.writer == nil {
		return nil
	}
	return l.writer.Close()
}

package testhelper

import (
	"fmt"
	"sync"

	"github.com/consensuslabs/festival/backend/internal/logger"
)

// LogEntry represents a log entry with its message and fields
type LogEntry struct {
	Message string
	Fields  map[string]interface{}
}

// sink collects entries for a logger and every logger derived from it.
type sink struct {
	mu           sync.RWMutex
	info         []LogEntry
	errors       []LogEntry
	warn         []LogEntry
	debug        []LogEntry
	debugEnabled bool
}

// TestLogger provides a logger implementation for testing with debug capabilities.
// Loggers returned by WithFields share the parent's entries.
type TestLogger struct {
	sink   *sink
	fields map[string]interface{}
}

var _ logger.Logger = (*TestLogger)(nil)

// NewTestLogger creates a new test logger instance
func NewTestLogger(debugEnabled bool) *TestLogger {
	return &TestLogger{
		sink:   &sink{debugEnabled: debugEnabled},
		fields: map[string]interface{}{},
	}
}

func (t *TestLogger) record(list *[]LogEntry, msg string, fields map[string]interface{}) {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	*list = append(*list, LogEntry{Message: msg, Fields: t.mergeFields(fields)})
}

// LogInfo implements logger.Logger
func (t *TestLogger) LogInfo(msg string, fields map[string]interface{}) {
	t.record(&t.sink.info, msg, fields)
}

// LogError implements logger.Logger
func (t *TestLogger) LogError(err error, msg string) error {
	fields := map[string]interface{}{}
	if err != nil {
		fields["error"] = err.Error()
	}
	t.record(&t.sink.errors, msg, fields)
	return err
}

// LogErrorf implements logger.Logger
func (t *TestLogger) LogErrorf(err error, format string, args ...interface{}) error {
	return t.LogError(err, fmt.Sprintf(format, args...))
}

// LogFatal implements logger.Logger. It never exits.
func (t *TestLogger) LogFatal(err error, context string) {
	fields := map[string]interface{}{"context": context}
	if err != nil {
		fields["error"] = err.Error()
	}
	t.record(&t.sink.errors, "FATAL: "+context, fields)
}

// LogDebug implements logger.Logger
func (t *TestLogger) LogDebug(message string, fields map[string]interface{}) {
	t.sink.mu.RLock()
	enabled := t.sink.debugEnabled
	t.sink.mu.RUnlock()
	if !enabled {
		return
	}
	t.record(&t.sink.debug, message, fields)
}

// LogWarn implements logger.Logger
func (t *TestLogger) LogWarn(message string, fields map[string]interface{}) {
	t.record(&t.sink.warn, message, fields)
}

// WithFields implements logger.Logger
func (t *TestLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return &TestLogger{sink: t.sink, fields: t.mergeFields(fields)}
}

// WithRequestID implements logger.Logger
func (t *TestLogger) WithRequestID(requestID string) logger.Logger {
	return t.WithFields(map[string]interface{}{"requestID": requestID})
}

func (t *TestLogger) snapshot(list []LogEntry) []LogEntry {
	t.sink.mu.RLock()
	defer t.sink.mu.RUnlock()
	return append([]LogEntry(nil), list...)
}

// GetInfoMessages returns all info level messages
func (t *TestLogger) GetInfoMessages() []LogEntry { return t.snapshot(t.sink.info) }

// GetErrorMessages returns all error level messages
func (t *TestLogger) GetErrorMessages() []LogEntry { return t.snapshot(t.sink.errors) }

// GetWarnMessages returns all warning level messages
func (t *TestLogger) GetWarnMessages() []LogEntry { return t.snapshot(t.sink.warn) }

// GetDebugMessages returns all debug level messages
func (t *TestLogger) GetDebugMessages() []LogEntry { return t.snapshot(t.sink.debug) }

// ClearMessages clears all logged messages
func (t *TestLogger) ClearMessages() {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.info, t.sink.errors, t.sink.warn, t.sink.debug = nil, nil, nil, nil
}

// EnableDebug enables debug logging
func (t *TestLogger) EnableDebug() {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.debugEnabled = true
}

// DisableDebug disables debug logging
func (t *TestLogger) DisableDebug() {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.debugEnabled = false
}

// mergeFields merges the logger's base fields with the provided fields
func (t *TestLogger) mergeFields(fields map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(t.fields)+len(fields))
	for k, v := range t.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}

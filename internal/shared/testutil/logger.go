// Package testutil holds test doubles shared across package tests.
package testutil

import (
	"sync"

	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

// MockLogger records log calls so tests can assert on them.
type MockLogger struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	fields  []interface{}
}

// LogEntry records a log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewMockLogger creates a new mock logger.
func NewMockLogger() *MockLogger {
	entries := make([]LogEntry, 0)
	return &MockLogger{mu: &sync.Mutex{}, entries: &entries}
}

func (m *MockLogger) Debug(msg string, args ...any) { m.log("DEBUG", msg, args...) }
func (m *MockLogger) Info(msg string, args ...any)  { m.log("INFO", msg, args...) }
func (m *MockLogger) Warn(msg string, args ...any)  { m.log("WARN", msg, args...) }
func (m *MockLogger) Error(msg string, args ...any) { m.log("ERROR", msg, args...) }
func (m *MockLogger) Fatal(msg string, args ...any) { m.log("FATAL", msg, args...) }

// With returns a logger sharing the same entry list with extra fields.
func (m *MockLogger) With(args ...any) logger.Interface {
	fields := append(append([]interface{}(nil), m.fields...), args...)
	return &MockLogger{mu: m.mu, entries: m.entries, fields: fields}
}

func (m *MockLogger) Named(name string) logger.Interface { return m.With("logger", name) }

func (m *MockLogger) Debugw(msg string, kv ...interface{}) { m.log("DEBUG", msg, kv...) }
func (m *MockLogger) Infow(msg string, kv ...interface{})  { m.log("INFO", msg, kv...) }
func (m *MockLogger) Warnw(msg string, kv ...interface{})  { m.log("WARN", msg, kv...) }
func (m *MockLogger) Errorw(msg string, kv ...interface{}) { m.log("ERROR", msg, kv...) }
func (m *MockLogger) Fatalw(msg string, kv ...interface{}) { m.log("FATAL", msg, kv...) }

func (m *MockLogger) log(level, msg string, fields ...interface{}) {
	entry := LogEntry{
		Level:   level,
		Message: msg,
		Fields:  make(map[string]interface{}),
	}
	all := append(append([]interface{}(nil), m.fields...), fields...)
	for i := 0; i < len(all)-1; i += 2 {
		if key, ok := all[i].(string); ok {
			entry.Fields[key] = all[i+1]
		}
	}

	m.mu.Lock()
	*m.entries = append(*m.entries, entry)
	m.mu.Unlock()
}

// Entries returns all logged entries.
func (m *MockLogger) Entries() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogEntry(nil), (*m.entries)...)
}

// HasMessage reports whether any entry at level carries msg.
func (m *MockLogger) HasMessage(level, msg string) bool {
	for _, e := range m.Entries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

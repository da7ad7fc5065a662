// Package logger provides a thread-safe in-memory activity log. The
// marketplace records every ledger mutation and rejected batch here so the
// dashboard can show a recent-activity feed without scraping process logs.
package logger

import (
	"fmt"
	"sync"
	"time"
)

// Level classifies a message.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Message is a single activity entry.
type Message struct {
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Text      string    `json:"text"`
}

// Logger keeps a bounded ring of recent messages.
type Logger struct {
	mu       sync.RWMutex
	messages []Message
	maxSize  int
}

// New creates a logger that retains the last maxSize messages.
func New(maxSize int) *Logger {
	return &Logger{
		messages: make([]Message, 0, maxSize),
		maxSize:  maxSize,
	}
}

func (l *Logger) log(level Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, Message{
		Timestamp: time.Now(),
		Level:     level,
		Text:      fmt.Sprintf(format, args...),
	})
	if len(l.messages) > l.maxSize {
		l.messages = l.messages[len(l.messages)-l.maxSize:]
	}
}

// Infof records an info-level message.
func (l *Logger) Infof(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

// Warningf records a warning-level message.
func (l *Logger) Warningf(format string, args ...any) {
	l.log(LevelWarning, format, args...)
}

// Errorf records an error-level message.
func (l *Logger) Errorf(format string, args ...any) {
	l.log(LevelError, format, args...)
}

// Recent returns the most recent n messages, newest first.
func (l *Logger) Recent(n int) []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n > len(l.messages) {
		n = len(l.messages)
	}
	out := make([]Message, n)
	for i := 0; i < n; i++ {
		out[i] = l.messages[len(l.messages)-1-i]
	}
	return out
}

// All returns every retained message, newest first.
func (l *Logger) All() []Message {
	l.mu.RLock()
	n := len(l.messages)
	l.mu.RUnlock()
	return l.Recent(n)
}

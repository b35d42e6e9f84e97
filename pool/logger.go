package pool

import (
	"fmt"
	"log"
	"strings"
)

// Logger interface for structured logging.
// Implementations can adapt the pool to any logging backend.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// DefaultLogger writes through the standard log package.
type DefaultLogger struct {
	logger *log.Logger
}

// NewDefaultLogger creates a DefaultLogger. A nil logger uses log.Default().
func NewDefaultLogger(l *log.Logger) *DefaultLogger {
	if l == nil {
		l = log.Default()
	}
	return &DefaultLogger{logger: l}
}

func (l *DefaultLogger) Debug(msg string, fields ...Field) { l.log("DEBUG", msg, fields) }
func (l *DefaultLogger) Info(msg string, fields ...Field)  { l.log("INFO", msg, fields) }
func (l *DefaultLogger) Warn(msg string, fields ...Field)  { l.log("WARN", msg, fields) }
func (l *DefaultLogger) Error(msg string, fields ...Field) { l.log("ERROR", msg, fields) }

func (l *DefaultLogger) log(level, msg string, fields []Field) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, msg)
	if len(fields) > 0 {
		b.WriteString(" {")
		for i, f := range fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %v", f.Key, f.Value)
		}
		b.WriteString("}")
	}
	l.logger.Println(b.String())
}

// NoOpLogger discards everything. It is the default.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...Field) {}
func (NoOpLogger) Info(string, ...Field)  {}
func (NoOpLogger) Warn(string, ...Field)  {}
func (NoOpLogger) Error(string, ...Field) {}

// Package logger provides the CLI's leveled, structured logging. Messages
// go to stderr, formatted as human-readable lines or as JSON objects.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Level is the severity of a log message.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name to a Level, defaulting to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Field is one key/value pair attached to a log message. Fields render in
// the order they are passed.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, value string) Field { return Field{Key: key, Value: value} }

func Int(key string, value int) Field { return Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

func Err(err error) Field { return Field{Key: "error", Value: err.Error()} }

// Config holds the logger configuration.
type Config struct {
	Level     Level
	UseColor  bool
	JSON      bool
	Component string
}

// Logger writes leveled messages according to its Config.
type Logger struct {
	config Config
	out    *log.Logger
}

var defaultLogger *Logger

// Initialize sets up the package-level logger. The convenience functions
// drop messages until it has been called.
func Initialize(config Config) error {
	defaultLogger = &Logger{
		config: config,
		out:    log.New(os.Stderr, "", 0),
	}
	return nil
}

// SetOutput redirects the package-level logger, mainly for tests.
func SetOutput(w io.Writer) {
	if defaultLogger != nil {
		defaultLogger.out.SetOutput(w)
	}
}

// LogEntry is the JSON form of one log message.
type LogEntry struct {
	Time      time.Time              `json:"time"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Component string                 `json:"component,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Log writes one message at the given level.
func (l *Logger) Log(level Level, message string, fields ...Field) {
	if level < l.config.Level {
		return
	}
	if l.config.JSON {
		l.out.Print(l.formatJSON(level, message, fields))
		return
	}
	l.out.Print(l.formatLine(level, message, fields))
}

func (l *Logger) formatJSON(level Level, message string, fields []Field) string {
	entry := LogEntry{
		Time:      time.Now(),
		Level:     level.String(),
		Message:   message,
		Component: l.config.Component,
	}
	if len(fields) > 0 {
		entry.Fields = make(map[string]interface{}, len(fields))
		for _, f := range fields {
			entry.Fields[f.Key] = f.Value
		}
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"level":%q,"message":%q}`, level.String(), message)
	}
	return string(data)
}

func (l *Logger) formatLine(level Level, message string, fields []Field) string {
	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString(" [")
	b.WriteString(l.levelLabel(level))
	b.WriteString("]")
	if l.config.Component != "" {
		b.WriteString(" " + l.config.Component + ":")
	}
	b.WriteString(" " + message)
	for i, f := range fields {
		if i == 0 {
			b.WriteString(" {")
		} else {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", f.Key, f.Value)
	}
	if len(fields) > 0 {
		b.WriteString("}")
	}
	return b.String()
}

func (l *Logger) levelLabel(level Level) string {
	if !l.config.UseColor {
		return level.String()
	}
	var code string
	switch level {
	case DebugLevel:
		code = "36" // cyan
	case InfoLevel:
		code = "32" // green
	case WarnLevel:
		code = "33" // yellow
	case ErrorLevel:
		code = "31" // red
	default:
		return level.String()
	}
	return "\033[" + code + "m" + level.String() + "\033[0m"
}

// Convenience functions on the package-level logger.

func Debug(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(DebugLevel, message, fields...)
	}
}

func Info(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(InfoLevel, message, fields...)
	}
}

func Warn(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(WarnLevel, message, fields...)
	}
}

func Error(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(ErrorLevel, message, fields...)
	}
}

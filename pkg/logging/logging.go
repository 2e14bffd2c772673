// Package logging provides the levelled log sink that is handed to every
// pipeline component. Nothing in beltengine logs through a package-level logger;
// components hold a Sink and fall back to Discard when none is given.
package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARNING"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name, defaulting to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Sink is what components log through.
type Sink interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

var ansiColors = map[Level]string{
	DEBUG: "\x1b[36m",
	INFO:  "\x1b[32m",
	WARN:  "\x1b[33m",
	ERROR: "\x1b[31m",
}

const (
	ansiReset  = "\x1b[0m"
	ansiPurple = "\x1b[35m"
)

// Logger writes "<time> - <LEVEL> - <message>" lines to w.
type Logger struct {
	mu       sync.Mutex
	w        io.Writer
	level    Level
	colorize bool
	now      func() time.Time
}

// New creates a logger that drops messages below level.
func New(w io.Writer, level Level, colorize bool) *Logger {
	return &Logger{w: w, level: level, colorize: colorize, now: time.Now}
}

// SetLevel changes the minimum level that is written.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) logf(level Level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	ts := l.now().Format("2006-01-02 15:04:05,000")
	msg := fmt.Sprintf(format, v...)
	msg = strings.TrimRight(msg, "\n")
	if l.colorize {
		fmt.Fprintf(l.w, "%s%s%s - %s%s%s - %s\n", ansiPurple, ts, ansiReset, ansiColors[level], level, ansiReset, msg)
		return
	}
	fmt.Fprintf(l.w, "%s - %s - %s\n", ts, level, msg)
}

func (l *Logger) Debugf(format string, v ...interface{}) { l.logf(DEBUG, format, v...) }
func (l *Logger) Infof(format string, v ...interface{})  { l.logf(INFO, format, v...) }
func (l *Logger) Warnf(format string, v ...interface{})  { l.logf(WARN, format, v...) }
func (l *Logger) Errorf(format string, v ...interface{}) { l.logf(ERROR, format, v...) }

type discard struct{}

func (discard) Debugf(string, ...interface{}) {}
func (discard) Infof(string, ...interface{})  {}
func (discard) Warnf(string, ...interface{})  {}
func (discard) Errorf(string, ...interface{}) {}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

// OrDiscard returns s, or Discard when s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

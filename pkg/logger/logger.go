package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

const (
	DEBUG int = iota
	INFO
	WARNING
	ERROR
	SILENCE
)

var levelTags = map[int]string{
	DEBUG:   "[DEBUG] ",
	INFO:    "[INFO] ",
	WARNING: "[WARN] ",
	ERROR:   "[ERROR] ",
}

type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)
}

type defaultLogger struct {
	level int
	out   *log.Logger
}

func NewLogger(level int) *defaultLogger {
	return NewLoggerWithWriter(level, os.Stderr)
}

func NewLoggerWithWriter(level int, w io.Writer) *defaultLogger {
	return &defaultLogger{
		level: level,
		out:   log.New(w, "", log.LstdFlags|log.Lmicroseconds),
	}
}

// ParseLevel converts a configured level name to its value. Unknown names
// fall back to INFO.
func ParseLevel(s string) int {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARNING
	case "ERROR":
		return ERROR
	case "SILENCE":
		return SILENCE
	default:
		return INFO
	}
}

func (l *defaultLogger) Debugf(msg string, a ...any) { l.logf(DEBUG, msg, a...) }
func (l *defaultLogger) Infof(msg string, a ...any)  { l.logf(INFO, msg, a...) }
func (l *defaultLogger) Warnf(msg string, a ...any)  { l.logf(WARNING, msg, a...) }
func (l *defaultLogger) Errorf(msg string, a ...any) { l.logf(ERROR, msg, a...) }

func (l *defaultLogger) logf(level int, msg string, a ...any) {
	if level < l.level {
		return
	}

	l.out.Printf(levelTags[level]+msg, a...)
}

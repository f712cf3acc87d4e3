// Package log provides the leveled logger shared by every component.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger is the logging contract components depend on.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

type logger struct {
	mu    sync.Mutex
	w     io.Writer
	debug bool
}

// New returns a Logger writing to stdout. Debug output is discarded.
func New() Logger {
	return &logger{w: os.Stdout}
}

// NewDebug returns a Logger writing to stdout, including debug output.
func NewDebug() Logger {
	return &logger{w: os.Stdout, debug: true}
}

// NewWriter returns a Logger writing to w.
func NewWriter(w io.Writer, debug bool) Logger {
	return &logger{w: w, debug: debug}
}

func (l *logger) printf(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s [%s]\t"+format+"\n", append([]interface{}{time.Now().Format("15:04:05.000"), level}, args...)...)
}

func (l *logger) Infof(format string, args ...interface{}) {
	l.printf("INFO", format, args...)
}

func (l *logger) Errorf(format string, args ...interface{}) {
	l.printf("ERROR", format, args...)
}

func (l *logger) Debugf(format string, args ...interface{}) {
	if l.debug {
		l.printf("DEBUG", format, args...)
	}
}

func (l *logger) Fatalf(format string, args ...interface{}) {
	l.printf("FATAL", format, args...)
	os.Exit(1)
}

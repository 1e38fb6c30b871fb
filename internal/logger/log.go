// Package logger provides the leveled, field-tagged logging abstraction
// used throughout the supervision engine. It favors a small interface
// callers can take a dependency on over a generic structured-logging
// library, so tests can substitute a buffering Printer.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// DateFormat is used by the console printer for timestamps.
const DateFormat = "2006-01-02 15:04:05"

type Logger interface {
	Debug(format string, v ...any)
	Notice(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
	Fatal(format string, v ...any)

	WithFields(fields ...Field) Logger
	SetLevel(level Level)
	Level() Level
}

// Printer renders a single log line. ConsolePrinter and a test-only
// BufferPrinter both implement it.
type Printer interface {
	Print(level Level, msg string, fields Fields)
}

type ConsoleLogger struct {
	level   Level
	exitFn  func(int)
	fields  Fields
	printer Printer
}

// NewConsoleLogger returns a Logger backed by printer, defaulting to DEBUG.
func NewConsoleLogger(printer Printer, exitFn func(int)) Logger {
	return &ConsoleLogger{
		level:   DEBUG,
		fields:  Fields{},
		printer: printer,
		exitFn:  exitFn,
	}
}

func (l *ConsoleLogger) WithFields(fields ...Field) Logger {
	clone := *l
	clone.fields = append(Fields{}, l.fields...)
	clone.fields.Add(fields...)
	return &clone
}

func (l *ConsoleLogger) SetLevel(level Level) { l.level = level }
func (l *ConsoleLogger) Level() Level          { return l.level }

func (l *ConsoleLogger) Debug(format string, v ...any) {
	if l.level <= DEBUG {
		l.printer.Print(DEBUG, fmt.Sprintf(format, v...), l.fields)
	}
}

func (l *ConsoleLogger) Notice(format string, v ...any) {
	if l.level <= NOTICE {
		l.printer.Print(NOTICE, fmt.Sprintf(format, v...), l.fields)
	}
}

func (l *ConsoleLogger) Info(format string, v ...any) {
	if l.level <= INFO {
		l.printer.Print(INFO, fmt.Sprintf(format, v...), l.fields)
	}
}

func (l *ConsoleLogger) Warn(format string, v ...any) {
	if l.level <= WARN {
		l.printer.Print(WARN, fmt.Sprintf(format, v...), l.fields)
	}
}

func (l *ConsoleLogger) Error(format string, v ...any) {
	l.printer.Print(ERROR, fmt.Sprintf(format, v...), l.fields)
}

func (l *ConsoleLogger) Fatal(format string, v ...any) {
	l.printer.Print(FATAL, fmt.Sprintf(format, v...), l.fields)
	l.exitFn(1)
}

// ConsolePrinter writes timestamped, level-tagged lines to an io.Writer,
// colorizing them when the writer is a terminal.
type ConsolePrinter struct {
	mu     sync.Mutex
	out    io.Writer
	color  bool
	nowFn  func() time.Time
}

func NewConsolePrinter(out io.Writer) *ConsolePrinter {
	color := false
	if f, ok := out.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &ConsolePrinter{out: out, color: color, nowFn: time.Now}
}

var levelColor = map[Level]string{
	DEBUG:  "38;5;251",
	NOTICE: "1;36",
	INFO:   "38;5;48",
	WARN:   "33",
	ERROR:  "31",
	FATAL:  "1;31",
}

func (p *ConsolePrinter) Print(level Level, msg string, fields Fields) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ts := p.nowFn().Format(DateFormat)
	line := fmt.Sprintf("%s %-6s %s", ts, level.String(), msg)
	for _, f := range fields {
		line += fmt.Sprintf(" %s=%s", f.Key(), f.String())
	}
	if p.color {
		line = fmt.Sprintf("\x1b[%sm%s\x1b[0m", levelColor[level], line)
	}
	fmt.Fprintln(p.out, line)
}

// Discard is a Logger that drops everything; useful as a zero-value
// default for components constructed without an explicit logger.
func Discard() Logger {
	return NewConsoleLogger(discardPrinter{}, func(int) {})
}

type discardPrinter struct{}

func (discardPrinter) Print(Level, string, Fields) {}

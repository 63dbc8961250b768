// Package telemetry provides the structured logging and error-kind
// vocabulary shared by every component of the schematic-to-netlist core.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	ErrorLevel
	Fatal
)

var levelNames = map[Level]string{
	Debug:      "DEBUG",
	Info:       "INFO",
	Warn:       "WARN",
	ErrorLevel: "ERROR",
	Fatal:      "FATAL",
}

var levelColors = map[Level]string{
	Debug:      "\033[36m",
	Info:       "\033[32m",
	Warn:       "\033[33m",
	ErrorLevel: "\033[31m",
	Fatal:      "\033[35m",
}

const colorReset = "\033[0m"

// Logger is a leveled, component-scoped, structured-field logger.
type Logger struct {
	mu         sync.Mutex
	level      Level
	component  string
	output     io.Writer
	colorize   bool
	showCaller bool
	timeFormat string
}

// Config configures a Logger.
type Config struct {
	Level      Level
	Component  string
	Output     io.Writer
	Colorize   bool
	ShowCaller bool
	TimeFormat string
}

// New creates a Logger from Config, filling in sensible defaults.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = "15:04:05.000"
	}
	return &Logger{
		level:      cfg.Level,
		component:  cfg.Component,
		output:     cfg.Output,
		colorize:   cfg.Colorize,
		showCaller: cfg.ShowCaller,
		timeFormat: cfg.TimeFormat,
	}
}

// Default creates a Logger with reasonable defaults for the given component.
func Default(component string) *Logger {
	return New(Config{
		Level:      Info,
		Component:  component,
		Output:     os.Stdout,
		Colorize:   true,
		TimeFormat: "15:04:05.000",
	})
}

// With returns a logger scoped to a sub-component name, e.g.
// logger.With("mirror") for a log line tagged "dbclient.mirror".
func (l *Logger) With(component string) *Logger {
	sub := component
	if l.component != "" {
		sub = l.component + "." + component
	}
	return &Logger{
		level:      l.level,
		component:  sub,
		output:     l.output,
		colorize:   l.colorize,
		showCaller: l.showCaller,
		timeFormat: l.timeFormat,
	}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(Debug, msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(Info, msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(Warn, msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...Field) {
	l.log(Fatal, msg, fields...)
	os.Exit(1)
}

func (l *Logger) log(level Level, msg string, fields ...Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	var b strings.Builder
	if l.colorize {
		b.WriteString(levelColors[level])
	}
	b.WriteString("[")
	b.WriteString(time.Now().Format(l.timeFormat))
	b.WriteString("] [")
	b.WriteString(fmt.Sprintf("%-5s", levelNames[level]))
	b.WriteString("]")
	if l.component != "" {
		b.WriteString(" [")
		b.WriteString(l.component)
		b.WriteString("]")
	}
	b.WriteString(" ")
	b.WriteString(msg)

	for _, f := range fields {
		b.WriteString(" ")
		b.WriteString(f.Key)
		b.WriteString("=")
		b.WriteString(f.format())
	}

	if l.showCaller {
		if _, file, line, ok := runtime.Caller(2); ok {
			parts := strings.Split(file, "/")
			b.WriteString(fmt.Sprintf(" (%s:%d)", parts[len(parts)-1], line))
		}
	}

	if l.colorize {
		b.WriteString(colorReset)
	}
	b.WriteString("\n")
	l.output.Write([]byte(b.String()))
}

// Field is a structured key-value pair attached to a log line.
type Field struct {
	Key   string
	Value interface{}
}

func (f Field) format() string {
	switch v := f.Value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case error:
		return fmt.Sprintf("%q", v.Error())
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func String(key, value string) Field  { return Field{key, value} }
func Int(key string, value int) Field { return Field{key, value} }
func Int64(key string, value int64) Field {
	return Field{key, value}
}
func Uint64(key string, value uint64) Field     { return Field{key, value} }
func Float64(key string, value float64) Field   { return Field{key, value} }
func Bool(key string, value bool) Field         { return Field{key, value} }
func Err(err error) Field                       { return Field{"error", err} }
func Duration(key string, d time.Duration) Field { return Field{key, d} }
func Any(key string, value interface{}) Field   { return Field{key, value} }

var global = Default("pyttoresque")

// SetGlobal installs a process-wide default logger.
func SetGlobal(l *Logger) { global = l }

func GlobalDebug(msg string, fields ...Field) { global.Debug(msg, fields...) }
func GlobalInfo(msg string, fields ...Field)  { global.Info(msg, fields...) }
func GlobalWarn(msg string, fields ...Field)  { global.Warn(msg, fields...) }
func GlobalError(msg string, fields ...Field) { global.Error(msg, fields...) }

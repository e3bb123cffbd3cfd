// Package log provides structured logging (slog) for jobs running on the
// Magnolia host. Records are written as one JSON line each to a job stream,
// normally stderr.
package log

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
)

// JobLogHandler implements slog.Handler on top of a job stream.
type JobLogHandler struct {
	w      io.Writer
	attrs  []LogAttrWire
	prefix string
	opts   handlerConfig
}

// HandlerOption configures the JobLogHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Leveler
	job       string
	addSource bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file:line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithJob tags every record with the job name.
func WithJob(name string) HandlerOption {
	return func(c *handlerConfig) {
		c.job = name
	}
}

// NewHandler creates a JobLogHandler writing to w.
func NewHandler(w io.Writer, opts ...HandlerOption) *JobLogHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &JobLogHandler{w: w, opts: cfg}
}

// New returns a logger backed by a JobLogHandler.
func New(w io.Writer, opts ...HandlerOption) *slog.Logger {
	return slog.New(NewHandler(w, opts...))
}

// Enabled reports whether the handler handles records at the given level.
func (h *JobLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

// Handle serializes record and writes it as a single line. A record that
// cannot be written is dropped; logging never fails a job.
func (h *JobLogHandler) Handle(_ context.Context, record slog.Record) error {
	msg := LogMessageWire{
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
		Job:       h.opts.job,
	}
	if h.opts.addSource && record.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{record.PC}).Next()
		if frame.File != "" {
			msg.Source = frame.File + ":" + strconv.Itoa(frame.Line)
		}
	}

	msg.Attrs = append(msg.Attrs, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		msg.Attrs = appendAttr(msg.Attrs, h.prefix, attr)
		return true
	})

	line, err := json.Marshal(msg)
	if err != nil {
		line = fmt.Appendf(nil, `{"level":%q,"message":%q}`, msg.Level, msg.Message)
	}
	_, err = h.w.Write(append(line, '\n'))
	return err
}

// WithAttrs returns a new JobLogHandler that includes the given attributes.
func (h *JobLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.attrs = make([]LogAttrWire, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, attr := range attrs {
		next.attrs = appendAttr(next.attrs, h.prefix, attr)
	}
	return &next
}

// WithGroup returns a new JobLogHandler whose later attributes are
// qualified by name.
func (h *JobLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

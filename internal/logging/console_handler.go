package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\x1b[0m"
	colorDim    = "\x1b[2m"
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorBlue   = "\x1b[34m"
)

// consoleHandler renders records as single-line timestamp/level/message output
// with key=value attrs, colorized when the writer is a TTY.
type consoleHandler struct {
	mu     *sync.Mutex
	writer io.Writer
	level  slog.Leveler
	color  bool
	attrs  []slog.Attr
	groups []string
}

func newConsoleHandler(writer io.Writer, level slog.Leveler) *consoleHandler {
	color := false
	if file, ok := writer.(*os.File); ok {
		color = isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
	}
	return &consoleHandler{
		mu:     &sync.Mutex{},
		writer: writer,
		level:  level,
		color:  color,
	}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	b.WriteString(h.dim(record.Time.Format(time.TimeOnly)))
	b.WriteByte(' ')
	b.WriteString(h.levelLabel(record.Level))
	b.WriteByte(' ')
	b.WriteString(record.Message)

	for _, attr := range h.attrs {
		h.appendAttr(&b, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		h.appendAttr(&b, attr)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *consoleHandler) appendAttr(b *strings.Builder, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	key := attr.Key
	if len(h.groups) > 0 {
		key = strings.Join(h.groups, ".") + "." + key
	}
	b.WriteByte(' ')
	b.WriteString(h.dim(key + "="))
	b.WriteString(fmt.Sprintf("%v", attr.Value.Resolve().Any()))
}

func (h *consoleHandler) levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return h.paint(colorRed, "ERROR")
	case level >= slog.LevelWarn:
		return h.paint(colorYellow, "WARN ")
	case level >= slog.LevelInfo:
		return h.paint(colorBlue, "INFO ")
	default:
		return h.paint(colorDim, "DEBUG")
	}
}

func (h *consoleHandler) paint(color, text string) string {
	if !h.color {
		return text
	}
	return color + text + colorReset
}

func (h *consoleHandler) dim(text string) string {
	return h.paint(colorDim, text)
}

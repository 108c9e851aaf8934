package wave

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
)

// ConsoleOptions configures NewConsoleHandler.
type ConsoleOptions struct {
	// Level is the minimum level printed. Defaults to slog.LevelInfo.
	Level slog.Leveler

	// NoColor disables severity colors even when the writer is a terminal.
	NoColor bool

	// TimeFormat overrides the timestamp layout. Defaults to "15:04:05.000".
	TimeFormat string
}

// ConsoleHandler is a slog.Handler printing one line per record:
//
//	15:04:05.000 ERROR [Shader] cannot compile stage stage=vertex
//
// The level is colored by severity when the output supports it.
type ConsoleHandler struct {
	mu     *sync.Mutex
	out    *termenv.Output
	opts   ConsoleOptions
	attrs  []slog.Attr
	groups []string
}

// NewConsoleHandler creates a ConsoleHandler writing to w.
// A nil opts uses the defaults.
func NewConsoleHandler(w io.Writer, opts *ConsoleOptions) *ConsoleHandler {
	var o ConsoleOptions
	if opts != nil {
		o = *opts
	}
	if o.Level == nil {
		o.Level = slog.LevelInfo
	}
	if o.TimeFormat == "" {
		o.TimeFormat = "15:04:05.000"
	}

	var out *termenv.Output
	if o.NoColor {
		out = termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	} else {
		out = termenv.NewOutput(w)
	}
	return &ConsoleHandler{mu: &sync.Mutex{}, out: out, opts: o}
}

// Enabled reports whether the level reaches the configured minimum.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle formats and writes the record.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}
	b.WriteString(t.Format(h.opts.TimeFormat))
	b.WriteByte(' ')
	b.WriteString(h.levelString(r.Level))

	component := ""
	var rest []slog.Attr
	collect := func(a slog.Attr) bool {
		if a.Key == ComponentKey && len(h.groups) == 0 {
			component = a.Value.String()
			return true
		}
		rest = append(rest, a)
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	if component != "" {
		fmt.Fprintf(&b, " [%s]", component)
	}
	b.WriteByte(' ')
	b.WriteString(r.Message)

	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	for _, a := range rest {
		writeAttr(&b, prefix, a)
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

// WithAttrs returns a handler carrying attrs on every record.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &c
}

// WithGroup returns a handler qualifying later attribute keys with name.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.groups = append(append([]string(nil), h.groups...), name)
	return &c
}

func (h *ConsoleHandler) levelString(level slog.Level) string {
	label := fmt.Sprintf("%-5s", level.String())
	var color termenv.Color
	switch {
	case level >= slog.LevelError:
		color = termenv.ANSIRed
	case level >= slog.LevelWarn:
		color = termenv.ANSIYellow
	case level >= slog.LevelInfo:
		color = termenv.ANSIGreen
	default:
		color = termenv.ANSICyan
	}
	return h.out.String(label).Foreground(color).Bold().String()
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, p, ga)
		}
		return
	}
	val := a.Value.String()
	if strings.ContainsAny(val, " \t\n\"") {
		val = fmt.Sprintf("%q", val)
	}
	fmt.Fprintf(b, " %s%s=%s", prefix, a.Key, val)
}

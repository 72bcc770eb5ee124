package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

// payloadKeys are attribute keys that always carry block payloads.
var payloadKeys = map[string]bool{
	"markup":        true,
	"innermarkup":   true,
	"inner_markup":  true,
	"innerhtml":     true,
	"html":          true,
	"content":       true,
	"attributes":    true,
	"attr_and_vals": true,
	"snapshot_json": true,
}

// markupPattern matches values that contain an element tag.
var markupPattern = regexp.MustCompile(`<(/?[a-zA-Z][a-zA-Z0-9-]*)(\s[^<>]*)?/?>`)

// MaxValueLength is the longest string value logged unchanged.
const MaxValueLength = 120

// markupLength is the longest markup value logged unchanged.
const markupLength = 32

// PayloadHandler wraps an slog.Handler and elides block payloads from
// attributes before passing records on.
type PayloadHandler struct {
	handler slog.Handler
}

// NewPayloadHandler wraps handler. A nil handler selects
// slog.Default().Handler().
func NewPayloadHandler(handler slog.Handler) *PayloadHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &PayloadHandler{handler: handler}
}

// Enabled implements slog.Handler.
func (h *PayloadHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *PayloadHandler) Handle(ctx context.Context, r slog.Record) error {
	trimmed := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		trimmed.AddAttrs(h.trimAttr(a))
		return true
	})
	return h.handler.Handle(ctx, trimmed)
}

// WithAttrs implements slog.Handler.
func (h *PayloadHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	trimmed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		trimmed[i] = h.trimAttr(a)
	}
	return &PayloadHandler{handler: h.handler.WithAttrs(trimmed)}
}

// WithGroup implements slog.Handler.
func (h *PayloadHandler) WithGroup(name string) slog.Handler {
	return &PayloadHandler{handler: h.handler.WithGroup(name)}
}

// trimAttr elides or truncates one attribute, recursing into groups.
func (h *PayloadHandler) trimAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		trimmed := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			trimmed[i] = h.trimAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(trimmed...)}
	}

	if payloadKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, elide(a.Value.String()))
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}
	s := a.Value.String()
	if len(s) > markupLength && markupPattern.MatchString(s) {
		return slog.String(a.Key, elide(s))
	}
	if len(s) > MaxValueLength {
		return slog.String(a.Key, truncate(s))
	}
	return a
}

// elide summarizes a payload by its size.
func elide(s string) string {
	return fmt.Sprintf("<elided %d bytes>", len(s))
}

// truncate cuts s to MaxValueLength bytes on a rune boundary.
func truncate(s string) string {
	cut := MaxValueLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s...(+%d bytes)", s[:cut], len(s)-cut)
}

// NewLogger returns a text logger that elides payloads. The level is Debug
// when verbose is set, Warn otherwise.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewPayloadHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewJSONLogger is NewLogger with JSON output.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewPayloadHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}

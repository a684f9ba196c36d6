// Package redact implements the log redaction filter: an ordered list of
// regular expressions applied to every log record before it leaves the
// process, so secrets never reach a downstream sink.
package redact

import (
	"context"
	"log/slog"
	"regexp"
)

const redacted = "***REDACTED***"

// DefaultPatterns covers the secret shapes the gateway is most likely to
// leak: API keys, bearer tokens, and generic "api_key=" assignments.
var DefaultPatterns = []string{
	`(?i)sk-[A-Za-z0-9]{20,}`,
	`(?i)Bearer\s+[A-Za-z0-9._\-]+`,
	`(?i)api[_-]?key\s*[:=]\s*\S+`,
}

// Filter applies an ordered set of compiled regular expressions, replacing
// every match with a fixed redaction marker.
type Filter struct {
	patterns []*regexp.Regexp
}

// New compiles patterns into a Filter. Invalid patterns are skipped rather
// than failing startup — a malformed pattern must not take the server down.
func New(patterns []string) *Filter {
	f := &Filter{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		f.patterns = append(f.patterns, re)
	}
	return f
}

// Redact substitutes every pattern match in text with the redaction marker.
func (f *Filter) Redact(text string) string {
	for _, re := range f.patterns {
		text = re.ReplaceAllString(text, redacted)
	}
	return text
}

// Handler wraps an slog.Handler, redacting the message and every attribute
// value reachable from a record (including nested groups) before delegating
// to the wrapped handler. If a downstream sink is reached through any other
// path, it must reapply the same patterns itself — this handler only
// protects records that flow through it.
type Handler struct {
	next   slog.Handler
	filter *Filter
}

// NewHandler wraps next with redaction using filter.
func NewHandler(next slog.Handler, filter *Filter) *Handler {
	return &Handler{next: next, filter: filter}
}

// Enabled delegates to the wrapped handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle redacts the message and all attributes, then delegates.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	redactedRecord := slog.NewRecord(r.Time, r.Level, h.filter.Redact(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		redactedRecord.AddAttrs(h.redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, redactedRecord)
}

func (h *Handler) redactAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, h.filter.Redact(v.String()))
	case slog.KindGroup:
		attrs := v.Group()
		redactedAttrs := make([]any, 0, len(attrs))
		for _, ga := range attrs {
			redactedAttrs = append(redactedAttrs, h.redactAttr(ga))
		}
		return slog.Group(a.Key, redactedAttrs...)
	default:
		return a
	}
}

// WithAttrs redacts attribute values supplied up front, then delegates.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redactedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redactedAttrs[i] = h.redactAttr(a)
	}
	return &Handler{next: h.next.WithAttrs(redactedAttrs), filter: h.filter}
}

// WithGroup delegates group nesting to the wrapped handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(name), filter: h.filter}
}

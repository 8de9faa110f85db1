package logger

import (
	"context"
	"log/slog"
	"runtime"
	"slices"

	"github.com/getsentry/sentry-go"

	"bloglist/internal/domain/identity"
)

// tagKeys are promoted from attributes to searchable Sentry tags.
var tagKeys = []string{"entry_id", "user_id", "operation"}

// WrapWithSentry returns a logger that also reports error records to Sentry.
func WrapWithSentry(base *slog.Logger) *slog.Logger {
	return WrapWithHub(base, nil)
}

// WrapWithHub is WrapWithSentry bound to hub; nil means the current hub.
func WrapWithHub(base *slog.Logger, hub *sentry.Hub) *slog.Logger {
	if base == nil {
		return nil
	}
	return slog.New(&sentryHandler{next: base.Handler(), hub: hub})
}

// sentryHandler remembers attributes bound with With so they reach Sentry as well.
type sentryHandler struct {
	next   slog.Handler
	hub    *sentry.Hub
	bound  []slog.Attr
	prefix string
}

func (h *sentryHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *sentryHandler) Handle(ctx context.Context, record slog.Record) error {
	err := h.next.Handle(ctx, record)
	if record.Level < slog.LevelError {
		return err
	}

	ev := reportFields{extras: map[string]any{}, tags: map[string]string{}}
	for _, attr := range h.bound {
		ev.add("", attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		ev.add(h.prefix, attr)
		return true
	})
	if record.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{record.PC}).Next()
		ev.extras["source"] = map[string]any{"function": frame.Function, "file": frame.File, "line": frame.Line}
	}

	hub := h.hub
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetExtras(ev.extras)
		scope.SetExtra("message", record.Message)
		scope.SetTags(ev.tags)
		if actor, ok := identity.FromContext(ctx); ok {
			scope.SetUser(sentry.User{ID: actor.UserID.String(), Username: actor.Username})
		}
		if ev.err != nil {
			hub.CaptureException(ev.err)
			return
		}
		hub.CaptureMessage(record.Message)
	})
	return err
}

func (h *sentryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := slices.Clone(h.bound)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		bound = append(bound, a)
	}
	return &sentryHandler{next: h.next.WithAttrs(attrs), hub: h.hub, bound: bound, prefix: h.prefix}
}

func (h *sentryHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &sentryHandler{next: h.next.WithGroup(name), hub: h.hub, bound: h.bound, prefix: h.prefix + name + "."}
}

type reportFields struct {
	extras map[string]any
	tags   map[string]string
	err    error
}

// add flattens groups into dotted keys. The first error value becomes the
// captured exception.
func (f *reportFields) add(prefix string, attr slog.Attr) {
	if attr.Key == "" && attr.Value.Kind() != slog.KindGroup {
		return
	}
	key := prefix + attr.Key
	value := attr.Value.Resolve()

	switch value.Kind() {
	case slog.KindGroup:
		if attr.Key != "" {
			prefix = key + "."
		}
		for _, member := range value.Group() {
			f.add(prefix, member)
		}
		return
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			if f.err == nil {
				f.err = err
			}
			f.extras[key] = err.Error()
			return
		}
	}
	f.extras[key] = value.Any()
	if slices.Contains(tagKeys, key) {
		f.tags[key] = value.String()
	}
}

// Package telemetry configures error reporting to Sentry.
package telemetry

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"bloglist/internal/platform/config"
)

const defaultEnvironment = "production"

// sensitiveHeaders never leave the process; they carry bearer tokens.
var sensitiveHeaders = []string{"Authorization", "Cookie", "Set-Cookie"}

// ClientOptions returns ok=false when no DSN is set.
func ClientOptions(cfg config.SentryConfig, serverName string) (opts sentry.ClientOptions, ok bool) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return sentry.ClientOptions{}, false
	}
	env := strings.TrimSpace(cfg.Environment)
	if env == "" {
		env = defaultEnvironment
	}
	return sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		Release:          strings.TrimSpace(cfg.Release),
		ServerName:       serverName,
		AttachStacktrace: true,
		BeforeSend:       scrubEvent,
	}, true
}

// InitSentry reports whether Sentry was enabled.
func InitSentry(cfg config.SentryConfig, serverName string) (bool, error) {
	opts, ok := ClientOptions(cfg, serverName)
	if !ok {
		return false, nil
	}
	if err := sentry.Init(opts); err != nil {
		return false, fmt.Errorf("init sentry: %w", err)
	}
	return true, nil
}

func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event == nil || event.Request == nil {
		return event
	}
	event.Request.Cookies = ""
	for name := range event.Request.Headers {
		for _, sensitive := range sensitiveHeaders {
			if http.CanonicalHeaderKey(name) == sensitive {
				event.Request.Headers[name] = "[redacted]"
			}
		}
	}
	return event
}

func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}

// Recover reports a panic in flight and lets it continue.
func Recover() {
	sentry.Recover()
}

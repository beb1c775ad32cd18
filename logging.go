package vgrouter

import (
	"log/slog"
	"time"
)

// errAttr returns an "error" attribute, or an empty Attr (dropped by handlers) for nil.
func errAttr(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func navAttr(nav *Navigation) slog.Attr {
	return slog.Group("navigation",
		slog.String("id", nav.ID.String()),
		slog.String("trigger", nav.Trigger.String()),
		slog.String("target", nav.Target.String()),
	)
}

func routeAttr(key string, r ResolvedRoute) slog.Attr {
	if r.Initial() {
		return slog.String(key, "<initial>")
	}
	return slog.String(key, r.Location.String())
}

func durationAttr(d time.Duration) slog.Attr {
	return slog.String("duration", d.String())
}

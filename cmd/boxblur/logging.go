package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang/glog"
)

// glogHandler forwards slog records from the library packages to glog. Debug
// records are only emitted at -v=1 or higher.
type glogHandler struct {
	attrs  []slog.Attr
	prefix string
}

func (h *glogHandler) Enabled(_ context.Context, level slog.Level) bool {
	if level < slog.LevelInfo {
		return bool(glog.V(1))
	}
	return true
}

func (h *glogHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	write := func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s%s=%v", h.prefix, a.Key, a.Value.Any())
		return true
	}
	for _, a := range h.attrs {
		write(a)
	}
	r.Attrs(write)

	const depth = 4
	switch {
	case r.Level >= slog.LevelError:
		glog.ErrorDepth(depth, b.String())
	case r.Level >= slog.LevelWarn:
		glog.WarningDepth(depth, b.String())
	default:
		glog.InfoDepth(depth, b.String())
	}
	return nil
}

func (h *glogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := &glogHandler{prefix: h.prefix}
	out.attrs = append(append(out.attrs, h.attrs...), attrs...)
	return out
}

func (h *glogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &glogHandler{attrs: h.attrs, prefix: h.prefix + name + "."}
}

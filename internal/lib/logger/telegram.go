package logger

import (
	"context"
	"fmt"
	"log/slog"
)

// AlertSender delivers a log line to an out-of-band admin channel.
type AlertSender interface {
	SendMessage(msg string)
}

// SetupTelegramHandler wraps the logger so that records at or above
// level are also pushed to the admin Telegram chat. This is the
// observability channel for failures that are otherwise swallowed,
// such as lost fire-and-forget store writes.
func SetupTelegramHandler(log *slog.Logger, sender AlertSender, level slog.Level) *slog.Logger {
	return slog.New(&telegramHandler{
		next:   log.Handler(),
		sender: sender,
		level:  level,
	})
}

type telegramHandler struct {
	next   slog.Handler
	sender AlertSender
	attrs  []slog.Attr
	level  slog.Level
}

func (h *telegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *telegramHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level && r.Level >= slog.LevelWarn && h.sender != nil {
		text := fmt.Sprintf("[%s] %s", r.Level, r.Message)
		for _, a := range h.attrs {
			text += fmt.Sprintf("\n%s: %s", a.Key, a.Value)
		}
		r.Attrs(func(a slog.Attr) bool {
			text += fmt.Sprintf("\n%s: %s", a.Key, a.Value)
			return true
		})
		go h.sender.SendMessage(text)
	}
	return h.next.Handle(ctx, r)
}

func (h *telegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &telegramHandler{
		next:   h.next.WithAttrs(attrs),
		sender: h.sender,
		attrs:  merged,
		level:  h.level,
	}
}

func (h *telegramHandler) WithGroup(name string) slog.Handler {
	return &telegramHandler{
		next:   h.next.WithGroup(name),
		sender: h.sender,
		attrs:  h.attrs,
		level:  h.level,
	}
}

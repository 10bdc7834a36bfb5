// Package notify delivers user notifications. The service sends one when
// an expense is created; delivery failures never undo the triggering write.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rhuss/despesas/pkg/observability"
)

// Message is a single notification addressed to one recipient.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers messages.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error

	// Name identifies the notifier in logs and metrics.
	Name() string
}

// Config selects and configures a notifier.
type Config struct {
	// Type is "none", "log" or "smtp". Default: "log".
	Type string

	SMTP SMTPConfig
}

// New builds the notifier selected by cfg.Type.
func New(cfg Config) (Notifier, error) {
	switch strings.ToLower(cfg.Type) {
	case "none":
		return Nop{}, nil
	case "", "log":
		return NewLog(slog.Default()), nil
	case "smtp":
		return NewSMTP(cfg.SMTP)
	default:
		return nil, fmt.Errorf("unknown notifier type %q", cfg.Type)
	}
}

// Nop discards every message.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, Message) error { return nil }

// Name returns "none".
func (Nop) Name() string { return "none" }

// Log writes messages to a structured logger instead of delivering them.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a Log notifier. A nil logger uses slog.Default().
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

// Notify logs the message.
func (l *Log) Notify(ctx context.Context, msg Message) error {
	l.logger.LogAttrs(ctx, slog.LevelInfo, "notification",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)
	return nil
}

// Name returns "log".
func (l *Log) Name() string { return "log" }

// Send delivers msg through n and records the outcome. Errors are logged
// and returned; callers decide whether they matter.
func Send(ctx context.Context, n Notifier, msg Message) error {
	if err := n.Notify(ctx, msg); err != nil {
		observability.NotificationsTotal.WithLabelValues(n.Name(), "failed").Inc()
		slog.Warn("notification failed", "notifier", n.Name(), "to", msg.To, "error", err)
		return err
	}
	observability.NotificationsTotal.WithLabelValues(n.Name(), "sent").Inc()
	return nil
}

package mem

import (
	"context"
	"log/slog"

	"bsid.es/despertador"
)

var _ despertador.Notifier = (*NotifyLog)(nil)

// NotifyLog is a Notifier that writes notifications to a structured log.
// It stands in for the platform notification tray.
type NotifyLog struct {
	Log *slog.Logger
}

func NewNotifyLog(log *slog.Logger) *NotifyLog {
	return &NotifyLog{Log: log}
}

func (n *NotifyLog) Show(ctx context.Context, id int64, title, body, payload string) error {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("notification", "id", id, "title", title, "body", body, "payload", payload)
	return nil
}

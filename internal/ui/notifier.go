package ui

import (
	"context"
	"log/slog"

	"fyne.io/fyne/v2"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

// Notifier shows fired triggers as desktop notifications.
type Notifier struct {
	App fyne.App
}

// Notify sends t's title and body. fyne notifications have no sound field,
// so the resolved tone is only logged and the platform default plays, if any.
func (n Notifier) Notify(ctx context.Context, t engine.Trigger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.App.SendNotification(fyne.NewNotification(t.Title, t.Body))
	slog.Debug(config.MsgSoundUnplayed,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyID, t.ReminderID,
		config.LogKeySound, t.Sound)
	return nil
}

package ui

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

// settingsWidgets holds references to UI elements to simplify data retrieval during save.
type settingsWidgets struct {
	langSelect *widget.Select
	checkNotif *widget.Check
	toneSelect *widget.Select
}

// ShowSettingsWindow displays the language and notification settings.
func (app *MedReminderApp) ShowSettingsWindow() {
	if app.Window != nil {
		slog.Debug(config.MsgWinFocus, config.LogKeyComponent, config.CompUISet)
		app.Window.RequestFocus()
		return
	}

	slog.Info(config.MsgWinOpen, config.LogKeyComponent, config.CompUISet)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinSettings))
	app.Window = w

	current, err := engine.LoadSettings(app.Ctx, app.KV)
	if err != nil {
		slog.Warn(config.ErrDecodeSettings, config.LogKeyComponent, config.CompUISet, config.LogKeyError, err)
	}
	sw := app.newSettingsWidgets(current)

	itemLang := widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), sw.langSelect)
	itemLang.HintText = app.GetMsg(config.TKeyHelpLanguage)
	itemTone := widget.NewFormItem(app.GetMsg(config.TKeyLblTone), sw.toneSelect)
	itemTone.HintText = app.GetMsg(config.TKeyHelpTone)

	notifCard := widget.NewCard(app.GetMsg(config.TKeyLblNotif), "",
		container.NewVBox(sw.checkNotif, widget.NewForm(itemTone)))

	btnSave := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), func() {
		if err := app.saveSettings(sw); err != nil {
			dialog.ShowError(err, w)
			return
		}
		w.Close()
	})
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), func() { w.Close() })

	footerLabel := widget.NewLabel(fmt.Sprintf(app.GetMsg(config.TKeyLblFooter), config.Version))
	footerLabel.Alignment = fyne.TextAlignCenter
	footerLabel.TextStyle = fyne.TextStyle{Italic: true}

	content := container.NewPadded(container.NewVBox(
		widget.NewForm(itemLang),
		notifCard,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnSave),
		footerLabel,
	))

	w.SetContent(content)
	w.Resize(fyne.NewSize(config.SettingsWindowWidth, content.MinSize().Height))
	w.SetFixedSize(true)
	w.SetOnClosed(func() { app.Window = nil })
	w.Show()
}

// newSettingsWidgets builds the inputs preset from the stored values.
func (app *MedReminderApp) newSettingsWidgets(current engine.Settings) *settingsWidgets {
	sw := &settingsWidgets{}

	sw.langSelect = widget.NewSelect(app.SupportedLanguages, nil)
	sw.langSelect.SetSelected(app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage))

	sw.checkNotif = widget.NewCheck(app.GetMsg(config.TKeyLblEnableNotif), nil)
	sw.checkNotif.SetChecked(current.NotificationsEnabled)

	sw.toneSelect = widget.NewSelect(config.Tones, nil)
	sw.toneSelect.SetSelected(current.Tone)

	// Tone only matters while notifications are on.
	sw.checkNotif.OnChanged = func(on bool) {
		if on {
			sw.toneSelect.Enable()
		} else {
			sw.toneSelect.Disable()
		}
	}
	sw.checkNotif.OnChanged(current.NotificationsEnabled)

	return sw
}

// saveSettings persists the language to Preferences and the notification
// settings to the reminder store, then refreshes the tray.
func (app *MedReminderApp) saveSettings(sw *settingsWidgets) error {
	slog.Info(config.MsgSettingsSaving, config.LogKeyComponent, config.CompUISet)

	tone := sw.toneSelect.Selected
	if tone == "" {
		tone = config.DefaultTone
	}
	if err := engine.SaveSettings(app.Ctx, app.KV, engine.Settings{
		NotificationsEnabled: sw.checkNotif.Checked,
		Tone:                 tone,
	}); err != nil {
		slog.Error(config.ErrStorage, config.LogKeyComponent, config.CompUISet, config.LogKeyError, err)
		return err
	}

	if sw.langSelect.Selected != "" {
		app.Preferences.SetString(config.PrefLanguage, sw.langSelect.Selected)
	}

	app.UpdateLocalizer()
	app.RefreshTrayMenu()
	app.requestRefresh()

	slog.Info(config.MsgSettingsSaved, config.LogKeyComponent, config.CompUISet)
	return nil
}

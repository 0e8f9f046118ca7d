package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
	"github.com/tartampluch/go-medreminder/internal/notify"
	"github.com/tartampluch/go-medreminder/internal/server"
)

// MedReminderApp holds the tray UI state and drives the reminder engine.
type MedReminderApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	KV         engine.KV
	Store      *engine.Store
	Projector  *engine.Projector
	Dispatcher *notify.Dispatcher // nil stores reminders without scheduling them
	Feed       *server.FeedServer // nil disables the calendar feed
	Clock      engine.Clock

	// RefreshInterval is the period of the agenda worker.
	RefreshInterval time.Duration

	Tray desktop.App
	Menu *fyne.Menu

	TrayStatusItem    *fyne.MenuItem
	TrayAddItem       *fyne.MenuItem
	TrayRemindersItem *fyne.MenuItem
	TrayRefreshItem   *fyne.MenuItem
	TraySettingsItem  *fyne.MenuItem

	SupportedLanguages []string
	refreshChan        chan struct{}

	AgendaMut sync.RWMutex
	Agenda    []engine.AgendaEntry

	remindersWindow fyne.Window
	addWindow       fyne.Window
}

// NewMedReminderApp wires the engine over kv. The dispatcher and feed are optional.
func NewMedReminderApp(a fyne.App, ctx context.Context, kv engine.KV, d *notify.Dispatcher, feed *server.FeedServer) *MedReminderApp {
	a.SetIcon(theme.HistoryIcon())

	store := engine.NewStore(engine.NewBlobRepository(kv))
	return &MedReminderApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		KV:                 kv,
		Store:              store,
		Projector:          &engine.Projector{Store: store},
		Dispatcher:         d,
		Feed:               feed,
		Clock:              engine.RealClock{},
		RefreshInterval:    config.DefaultRefreshInterval,
		SupportedLanguages: config.SupportedLanguages,
		refreshChan:        make(chan struct{}, config.ChannelBufferSize),
	}
}

// Run starts the feed server, the dispatcher and the agenda worker, then blocks in the UI loop.
func (app *MedReminderApp) Run() {
	app.SetupI18n()
	app.watchPreferences()

	if app.Feed != nil {
		go func() {
			if err := app.Feed.Start(app.Ctx); err != nil {
				slog.Error(config.ErrServerStartup,
					config.LogKeyError, err,
					config.LogKeyComponent, config.CompUI)

				app.App.SendNotification(fyne.NewNotification(
					config.TitleStartupError,
					fmt.Sprintf(config.MsgPortBusy, app.Feed.Port)))
			}
		}()
	}

	if app.Dispatcher != nil {
		go app.Dispatcher.Run(app.Ctx)
	}

	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.Tray.SetSystemTrayIcon(app.App.Icon())
		app.setupTrayMenu()
	} else {
		slog.Warn(config.ErrTrayNotSupported,
			config.LogKeyComponent, config.CompUI)
	}

	go app.backgroundWorker()
	app.App.Run()
}

// watchPreferences asks the worker for a refresh whenever a preference changes.
func (app *MedReminderApp) watchPreferences() {
	app.Preferences.AddChangeListener(app.requestRefresh)
}

func (app *MedReminderApp) requestRefresh() {
	select {
	case app.refreshChan <- struct{}{}:
	default:
	}
}

// setupTrayMenu builds the static items and attaches the menu to the tray.
func (app *MedReminderApp) setupTrayMenu() {
	app.TrayStatusItem = fyne.NewMenuItem(config.FallbackTrayLabel, func() {
		app.ShowRemindersWindow()
	})
	app.TrayAddItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuAdd), func() {
		app.ShowAddWindow()
	})
	app.TrayRemindersItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuReminders), func() {
		app.ShowRemindersWindow()
	})
	app.TrayRefreshItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuRefresh), func() {
		go app.performRefresh(true)
	})
	app.TraySettingsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSettings), func() {
		app.ShowSettingsWindow()
	})

	app.Menu = fyne.NewMenu(config.AppName)
	app.rebuildMenu()

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

// rebuildMenu lays out the status line, one item per agenda row, then the actions.
// Each agenda row opens a submenu whose only item removes that dose.
func (app *MedReminderApp) rebuildMenu() {
	if app.Menu == nil {
		return
	}

	app.AgendaMut.RLock()
	agenda := append([]engine.AgendaEntry(nil), app.Agenda...)
	app.AgendaMut.RUnlock()

	items := []*fyne.MenuItem{app.TrayStatusItem, fyne.NewMenuItemSeparator()}
	if len(agenda) == 0 {
		empty := fyne.NewMenuItem(app.GetMsg(config.TKeyAgendaEmpty), nil)
		empty.Disabled = true
		items = append(items, empty)
	}
	for _, e := range agenda {
		entry := e
		row := fyne.NewMenuItem(app.agendaLabel(entry), nil)
		row.ChildMenu = fyne.NewMenu("",
			fyne.NewMenuItem(app.GetMsg(config.TKeyMenuDelete), func() {
				go app.deleteEntry(entry)
			}),
		)
		items = append(items, row)
	}

	items = append(items,
		fyne.NewMenuItemSeparator(),
		app.TrayAddItem,
		app.TrayRemindersItem,
		app.TrayRefreshItem,
		app.TraySettingsItem,
	)
	app.Menu.Items = items
	app.Menu.Refresh()

	slog.Debug(config.MsgTrayRebuilt,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCount, len(agenda))
}

// RefreshTrayMenu updates localized labels in the tray menu.
func (app *MedReminderApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	app.TrayAddItem.Label = app.GetMsg(config.TKeyMenuAdd)
	app.TrayRemindersItem.Label = app.GetMsg(config.TKeyMenuReminders)
	app.TrayRefreshItem.Label = app.GetMsg(config.TKeyMenuRefresh)
	app.TraySettingsItem.Label = app.GetMsg(config.TKeyMenuSettings)
	app.rebuildMenu()
}

// backgroundWorker re-projects the agenda every RefreshInterval and on request.
func (app *MedReminderApp) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	app.performRefresh(false)

	interval := app.RefreshInterval
	if interval <= 0 {
		interval = config.DefaultRefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, interval.String())

	for {
		select {
		case <-app.Ctx.Done():
			log.Info(config.MsgWorkerStop)
			return
		case <-app.refreshChan:
			app.performRefresh(false)
		case <-ticker.C:
			app.performRefresh(false)
		}
	}
}

// performRefresh prunes and projects today's agenda, republishes the calendar
// feed and updates the tray.
func (app *MedReminderApp) performRefresh(manual bool) {
	slog.Info(config.MsgRefreshReq,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyManual, manual)

	entries, err := app.Projector.ProjectNow(app.Ctx, app.Clock)
	if err != nil {
		slog.Error(config.ErrStorage, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		app.updateTrayStatus(-1)
		if manual {
			app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifError)))
		}
		return
	}

	app.AgendaMut.Lock()
	app.Agenda = entries
	app.AgendaMut.Unlock()

	app.publishFeed()

	fyne.Do(app.rebuildMenu)
	app.updateTrayStatus(len(entries))

	if manual {
		msg, err := app.plural(config.TKeyNotifRefresh, len(entries), nil)
		if err != nil {
			msg = fmt.Sprintf(config.FallbackTrayDefault, len(entries))
		}
		app.App.SendNotification(fyne.NewNotification(config.AppName, msg))
	}
}

// publishFeed renders every stored reminder into the served calendar.
func (app *MedReminderApp) publishFeed() {
	if app.Feed == nil {
		return
	}
	records, err := app.Store.List(app.Ctx)
	if err != nil {
		slog.Error(config.ErrStorage, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		return
	}
	data, err := engine.BuildCalendar(records, app.Clock.Now(), app.compiler())
	if err != nil {
		slog.Error(config.ErrICalEncode, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		return
	}
	app.Feed.Update(data)
}

// compiler returns a Compiler carrying the saved tone and the localized formatters.
func (app *MedReminderApp) compiler() *engine.Compiler {
	settings, err := engine.LoadSettings(app.Ctx, app.KV)
	if err != nil {
		slog.Warn(config.ErrDecodeSettings, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
	}
	return &engine.Compiler{
		Tone:        settings.Tone,
		FormatTitle: app.formatTitle,
		FormatBody:  app.formatBody,
	}
}

// AddReminder stores r and registers its weekly triggers with the dispatcher.
// It returns the stored record and the number of triggers accepted.
func (app *MedReminderApp) AddReminder(r engine.ReminderRecord) (engine.ReminderRecord, int, error) {
	added, err := app.Store.Append(app.Ctx, r)
	if err != nil {
		return engine.ReminderRecord{}, 0, err
	}

	var scheduled int
	if app.Dispatcher != nil {
		scheduled, err = app.compiler().Register(app.Ctx, added, app.Dispatcher)
		if err != nil {
			slog.Warn(config.ErrSubmit,
				config.LogKeyComponent, config.CompUI,
				config.LogKeyID, added.ID,
				config.LogKeyError, err)
		}
	}

	msg, lerr := app.plural(config.TKeyNotifAdded, scheduled, map[string]interface{}{"Name": added.MedicineName})
	if lerr != nil {
		msg = config.MsgReminderAdded
	}
	app.App.SendNotification(fyne.NewNotification(config.AppName, msg))

	app.requestRefresh()
	return added, scheduled, nil
}

// deleteEntry removes one dose of today's agenda and withdraws its triggers.
func (app *MedReminderApp) deleteEntry(e engine.AgendaEntry) {
	log := slog.With(config.LogKeyComponent, config.CompUI)

	id, outcome, err := app.Projector.DeleteEntry(app.Ctx, e)
	if err != nil {
		log.Error(config.ErrStorage, config.LogKeyError, err)
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifError)))
		return
	}
	log.Info(config.MsgEntryDeleted,
		config.LogKeyMedicine, e.Record.MedicineName,
		config.LogKeyTime, e.Time(),
		config.LogKeyOutcome, outcome.String())

	if id != "" && app.Dispatcher != nil {
		if _, err := app.Dispatcher.CancelSlot(app.Ctx, id, e.Time()); err != nil {
			log.Warn(config.ErrStorage, config.LogKeyID, id, config.LogKeyError, err)
		}
	}

	if outcome != engine.NotFound {
		msg, lerr := app.localize(&i18n.LocalizeConfig{
			MessageID:    config.TKeyNotifDeleted,
			TemplateData: map[string]interface{}{"Name": e.Record.MedicineName, "Time": e.Time()},
		})
		if lerr != nil {
			msg = config.MsgTimeRemoved
		}
		app.App.SendNotification(fyne.NewNotification(config.AppName, msg))
	}

	app.performRefresh(false)
}

// updateTrayStatus shows how many doses are due today. A negative count means storage failed.
func (app *MedReminderApp) updateTrayStatus(count int) {
	if app.Menu == nil || app.TrayStatusItem == nil {
		return
	}

	var label string
	switch {
	case count < 0:
		label = config.FallbackTrayError
	case count == 0:
		label = app.GetMsg(config.TKeyTrayStatusZero)
		if label == config.TKeyTrayStatusZero {
			label = fmt.Sprintf(config.FallbackTrayDefault, 0)
		}
	default:
		msg, err := app.plural(config.TKeyTrayStatus, count, nil)
		if err != nil || msg == "" {
			msg = fmt.Sprintf(config.FallbackTrayDefault, count)
		}
		label = msg
	}

	fyne.Do(func() {
		app.TrayStatusItem.Label = label
		app.Menu.Refresh()
	})
}

package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

// -----------------------------------------------------------------------------
// Settings Window
// -----------------------------------------------------------------------------

func TestSettings_WidgetsReflectStoredValues(t *testing.T) {
	app, _ := setupTestApp(t)

	sw := app.newSettingsWidgets(engine.Settings{NotificationsEnabled: false, Tone: config.Tone3})
	assert.False(t, sw.checkNotif.Checked)
	assert.Equal(t, config.Tone3, sw.toneSelect.Selected)
	assert.True(t, sw.toneSelect.Disabled(), "Tone is locked while notifications are off")

	sw.checkNotif.SetChecked(true)
	assert.False(t, sw.toneSelect.Disabled())
}

func TestSettings_Save(t *testing.T) {
	app, _ := setupTestApp(t)
	app.setupTrayMenu()

	sw := app.newSettingsWidgets(engine.DefaultSettings())
	sw.langSelect.SetSelected("fr")
	sw.checkNotif.SetChecked(false)
	sw.toneSelect.SetSelected(config.Tone1)

	require.NoError(t, app.saveSettings(sw))

	stored, err := engine.LoadSettings(app.Ctx, app.KV)
	require.NoError(t, err)
	assert.Equal(t, engine.Settings{NotificationsEnabled: false, Tone: config.Tone1}, stored)

	assert.Equal(t, "fr", app.Preferences.String(config.PrefLanguage))
	assert.Equal(t, "Paramètres...", app.TraySettingsItem.Label, "Tray labels follow the new language")
}

func TestSettings_WindowIsSingleton(t *testing.T) {
	app, _ := setupTestApp(t)

	app.ShowSettingsWindow()
	require.NotNil(t, app.Window)
	first := app.Window

	app.ShowSettingsWindow()
	assert.Same(t, first, app.Window)

	first.Close()
	assert.Nil(t, app.Window)
}

// -----------------------------------------------------------------------------
// Add Window
// -----------------------------------------------------------------------------

func TestAddWidgets_Record(t *testing.T) {
	aw := newAddWidgets()
	aw.name.SetText("  Ibuprofen ")
	aw.units.SetText("200")
	aw.unitType.SetSelected(config.UnitMG)
	aw.typ.SetSelected(config.TypeTablet)
	aw.when.SetText("Evening")
	aw.days.SetSelected([]string{"Sunday", "Monday"})
	aw.times.SetText("21:00, ,08:00")
	aw.startDate.SetText("2024-03-01")

	r := aw.record()
	assert.Equal(t, "Ibuprofen", r.MedicineName)
	assert.Equal(t, []engine.DayName{engine.Monday, engine.Sunday}, r.SelectedDays, "Days follow week order")
	assert.Equal(t, []string{"21:00", "08:00"}, r.Times, "Time order is kept and blanks dropped")
	assert.Equal(t, engine.Date("2024-03-01"), r.StartDate)
	assert.True(t, r.EndDate.IsZero())
	assert.Empty(t, r.Color, "No colour picked stores none")

	aw.color.SetSelected("Green")
	assert.Equal(t, "#81C995", aw.record().Color)
}

func TestAddWindow_IsSingleton(t *testing.T) {
	app, _ := setupTestApp(t)

	app.ShowAddWindow()
	require.NotNil(t, app.addWindow)
	first := app.addWindow

	app.ShowAddWindow()
	assert.Same(t, first, app.addWindow)
}

// -----------------------------------------------------------------------------
// Reminders Window
// -----------------------------------------------------------------------------

func TestSortReminders(t *testing.T) {
	records := func() []engine.ReminderRecord {
		return []engine.ReminderRecord{
			{MedicineName: "charlie", Times: []string{"20:00"}, StartDate: "2024-02-01"},
			{MedicineName: "Bob", Times: []string{"bad", "07:30"}, SelectedDays: []engine.DayName{engine.Monday, engine.Friday}},
			{MedicineName: "alice", Times: []string{"12:00"}, StartDate: "2024-01-01", SelectedDays: []engine.DayName{engine.Monday}},
		}
	}
	names := func(rs []engine.ReminderRecord) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.MedicineName
		}
		return out
	}

	tests := []struct {
		name string
		col  int
		asc  bool
		want []string
	}{
		{"Name ascending, case-insensitive", config.ColIDName, true, []string{"alice", "Bob", "charlie"}},
		{"Name descending", config.ColIDName, false, []string{"charlie", "Bob", "alice"}},
		{"Earliest valid time", config.ColIDTimes, true, []string{"Bob", "alice", "charlie"}},
		{"Day count", config.ColIDDays, true, []string{"charlie", "alice", "Bob"}},
		{"Start date, absent first", config.ColIDDates, true, []string{"Bob", "alice", "charlie"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := records()
			sortReminders(rs, tt.col, tt.asc)
			assert.Equal(t, tt.want, names(rs))
		})
	}
}

func TestReminderCell(t *testing.T) {
	r := engine.ReminderRecord{
		MedicineName: "Aspirin",
		SelectedDays: []engine.DayName{engine.Monday, engine.Friday},
		Times:        []string{"08:00", "20:00"},
	}
	assert.Equal(t, "Aspirin", reminderCell(r, config.ColIDName))
	assert.Equal(t, "Monday, Friday", reminderCell(r, config.ColIDDays))
	assert.Equal(t, "08:00, 20:00", reminderCell(r, config.ColIDTimes))
	assert.Equal(t, "", reminderCell(r, config.ColIDDates))

	r.StartDate, r.EndDate = "2024-01-01", "2024-02-01"
	assert.Equal(t, "2024-01-01 → 2024-02-01", reminderCell(r, config.ColIDDates))
}

func TestRemindersWindow_Opens(t *testing.T) {
	app, _ := setupTestApp(t)
	_, _, err := app.AddReminder(aspirin(engine.Monday))
	require.NoError(t, err)

	app.ShowRemindersWindow()
	require.NotNil(t, app.remindersWindow)
	assert.Equal(t, "Reminders", app.remindersWindow.Title())

	app.remindersWindow.Close()
	assert.Nil(t, app.remindersWindow)
}

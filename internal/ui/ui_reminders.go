package ui

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

// ShowRemindersWindow lists every stored reminder in a sortable table.
// If the window is already open it requests focus.
func (app *MedReminderApp) ShowRemindersWindow() {
	if app.remindersWindow != nil {
		app.remindersWindow.RequestFocus()
		return
	}

	records, err := app.Store.List(app.Ctx)
	if err != nil {
		slog.Error(config.ErrStorage, config.LogKeyComponent, config.CompUIList, config.LogKeyError, err)
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifError)))
		return
	}

	app.remindersWindow = app.App.NewWindow(app.GetMsg(config.TKeyWinReminders))
	app.remindersWindow.Resize(fyne.NewSize(config.RemindersWinWidth, config.RemindersWinHeight))

	slog.Info(config.MsgWinOpen,
		config.LogKeyComponent, config.CompUIList,
		config.LogKeyCount, len(records))

	sortCol := config.ColIDName
	sortAsc := true
	sortReminders(records, sortCol, sortAsc)

	table := widget.NewTable(
		func() (int, int) {
			return len(records), config.ColumnCount
		},
		func() fyne.CanvasObject {
			return widget.NewLabel(config.TablePlaceholder)
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			if id.Row >= len(records) {
				return
			}
			o.(*widget.Label).SetText(reminderCell(records[id.Row], id.Col))
		},
	)

	table.ShowHeaderRow = true
	table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton("", func() {})
	}
	table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		btn := o.(*widget.Button)

		text := app.GetMsg(columnKeys[id.Col])
		if id.Col == sortCol {
			if sortAsc {
				text += config.SortIconAsc
			} else {
				text += config.SortIconDesc
			}
		}
		btn.SetText(text)

		btn.OnTapped = func() {
			if sortCol == id.Col {
				sortAsc = !sortAsc
			} else {
				sortCol = id.Col
				sortAsc = true
			}
			sortReminders(records, sortCol, sortAsc)
			slog.Debug(config.MsgTableSorted,
				config.LogKeyComponent, config.CompUIList,
				config.LogKeySortCol, sortCol,
				config.LogKeySortAsc, sortAsc)
			table.Refresh()
		}
	}

	table.SetColumnWidth(config.ColIDName, config.ColWidthName)
	table.SetColumnWidth(config.ColIDDays, config.ColWidthDays)
	table.SetColumnWidth(config.ColIDTimes, config.ColWidthTimes)
	table.SetColumnWidth(config.ColIDDates, config.ColWidthDates)

	app.remindersWindow.SetContent(container.NewBorder(nil, nil, nil, nil, table))
	app.remindersWindow.SetOnClosed(func() {
		app.remindersWindow = nil
	})
	app.remindersWindow.Show()
}

var columnKeys = map[int]string{
	config.ColIDName:  config.TKeyColName,
	config.ColIDDays:  config.TKeyColDays,
	config.ColIDTimes: config.TKeyColTimes,
	config.ColIDDates: config.TKeyColDates,
}

// reminderCell renders one column of a record.
func reminderCell(r engine.ReminderRecord, col int) string {
	switch col {
	case config.ColIDName:
		return r.MedicineName
	case config.ColIDDays:
		days := make([]string, len(r.SelectedDays))
		for i, d := range r.SelectedDays {
			days[i] = string(d)
		}
		return strings.Join(days, config.DisplaySep)
	case config.ColIDTimes:
		return strings.Join(r.Times, config.DisplaySep)
	case config.ColIDDates:
		if r.StartDate.IsZero() && r.EndDate.IsZero() {
			return ""
		}
		return fmt.Sprintf(config.FormatDateRange, r.StartDate, r.EndDate)
	}
	return ""
}

// sortReminders orders records in place by one table column.
// Names compare case-insensitively; the times column sorts on the first parseable time;
// ties keep store order.
func sortReminders(records []engine.ReminderRecord, col int, asc bool) {
	less := func(a, b engine.ReminderRecord) bool {
		switch col {
		case config.ColIDDays:
			return len(a.SelectedDays) < len(b.SelectedDays)
		case config.ColIDTimes:
			return firstMinute(a) < firstMinute(b)
		case config.ColIDDates:
			return a.StartDate < b.StartDate
		default:
			return strings.ToLower(a.MedicineName) < strings.ToLower(b.MedicineName)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if asc {
			return less(records[i], records[j])
		}
		return less(records[j], records[i])
	})
}

// firstMinute is the minute of day of the earliest valid time, or a day past the end when none parse.
func firstMinute(r engine.ReminderRecord) int {
	best := 24 * 60
	for _, raw := range r.Times {
		t, err := engine.ParseTimeOfDay(raw)
		if err != nil {
			continue
		}
		if m := t.Hour*60 + t.Minute; m < best {
			best = m
		}
	}
	return best
}

package ui

import (
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

// addWidgets holds the inputs of the new reminder form.
type addWidgets struct {
	name      *widget.Entry
	typ       *widget.Select
	units     *DoseEntry
	unitType  *widget.Select
	color     *widget.Select
	when      *widget.Entry
	days      *widget.CheckGroup
	times     *widget.Entry
	startDate *widget.Entry
	endDate   *widget.Entry
	desc      *widget.Entry
}

// ShowAddWindow opens the form that creates a reminder.
func (app *MedReminderApp) ShowAddWindow() {
	if app.addWindow != nil {
		app.addWindow.RequestFocus()
		return
	}

	slog.Info(config.MsgWinOpen, config.LogKeyComponent, config.CompUIAdd)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinAdd))
	app.addWindow = w

	aw := newAddWidgets()

	itemTimes := widget.NewFormItem(app.GetMsg(config.TKeyLblTimes), aw.times)
	itemTimes.HintText = app.GetMsg(config.TKeyHelpTimes)
	itemStart := widget.NewFormItem(app.GetMsg(config.TKeyLblStartDate), aw.startDate)
	itemStart.HintText = app.GetMsg(config.TKeyHelpDate)
	itemEnd := widget.NewFormItem(app.GetMsg(config.TKeyLblEndDate), aw.endDate)
	itemEnd.HintText = app.GetMsg(config.TKeyHelpDate)

	form := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyLblMedicine), aw.name),
		widget.NewFormItem(app.GetMsg(config.TKeyLblType), aw.typ),
		widget.NewFormItem(app.GetMsg(config.TKeyLblUnits),
			container.NewBorder(nil, nil, nil, aw.unitType, aw.units)),
		widget.NewFormItem(app.GetMsg(config.TKeyLblColor), aw.color),
		widget.NewFormItem(app.GetMsg(config.TKeyLblWhen), aw.when),
		widget.NewFormItem(app.GetMsg(config.TKeyLblDays), aw.days),
		itemTimes,
		itemStart,
		itemEnd,
		widget.NewFormItem(app.GetMsg(config.TKeyLblDesc), aw.desc),
	)

	btnSave := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), func() {
		if _, _, err := app.AddReminder(aw.record()); err != nil {
			dialog.ShowError(err, w)
			return
		}
		w.Close()
	})
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), func() { w.Close() })

	content := container.NewPadded(container.NewVBox(
		form,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnSave),
	))
	w.SetContent(content)
	w.Resize(fyne.NewSize(config.AddWindowWidth, content.MinSize().Height))
	w.SetOnClosed(func() { app.addWindow = nil })
	w.Show()
}

func newAddWidgets() *addWidgets {
	aw := &addWidgets{
		name:      widget.NewEntry(),
		typ:       widget.NewSelect([]string{config.TypeTablet, config.TypeInjection, config.TypeSyrup}, nil),
		units:     NewDoseEntry(),
		unitType:  widget.NewSelect([]string{config.UnitMG, config.UnitML}, nil),
		when:      widget.NewEntry(),
		times:     widget.NewEntry(),
		startDate: widget.NewEntry(),
		endDate:   widget.NewEntry(),
		desc:      widget.NewMultiLineEntry(),
	}

	colors := make([]string, len(config.ReminderColors))
	for i, c := range config.ReminderColors {
		colors[i] = c.Name
	}
	aw.color = widget.NewSelect(colors, nil)

	week := make([]string, len(engine.Week))
	for i, d := range engine.Week {
		week[i] = string(d)
	}
	aw.days = widget.NewCheckGroup(week, nil)
	aw.days.Horizontal = true

	aw.typ.SetSelected(config.TypeTablet)
	aw.unitType.SetSelected(config.UnitMG)
	aw.times.PlaceHolder = config.PlaceholderTime
	aw.startDate.PlaceHolder = config.PlaceholderDate
	aw.endDate.PlaceHolder = config.PlaceholderDate
	return aw
}

// record reads the form. Days keep week order whatever the click order was.
// Validation is left to the store.
func (aw *addWidgets) record() engine.ReminderRecord {
	r := engine.ReminderRecord{
		MedicineName: strings.TrimSpace(aw.name.Text),
		Type:         aw.typ.Selected,
		Units:        strings.TrimSpace(aw.units.Text),
		UnitType:     aw.unitType.Selected,
		Color:        colorHex(aw.color.Selected),
		When:         strings.TrimSpace(aw.when.Text),
		StartDate:    engine.Date(strings.TrimSpace(aw.startDate.Text)),
		EndDate:      engine.Date(strings.TrimSpace(aw.endDate.Text)),
		Times:        splitTimes(aw.times.Text),
		Description:  strings.TrimSpace(aw.desc.Text),
	}

	checked := make(map[string]bool, len(aw.days.Selected))
	for _, d := range aw.days.Selected {
		checked[d] = true
	}
	for _, d := range engine.Week {
		if checked[string(d)] {
			r.SelectedDays = append(r.SelectedDays, d)
		}
	}
	return r
}

// colorHex maps a colour name to its stored value. No selection stores no colour.
func colorHex(name string) string {
	for _, c := range config.ReminderColors {
		if c.Name == name {
			return c.Hex
		}
	}
	return ""
}

// splitTimes splits the comma-separated times field, dropping blanks.
func splitTimes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, config.ListSeparator) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

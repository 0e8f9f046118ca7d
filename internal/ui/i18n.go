package ui

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// SetupI18n initializes the translation bundle and detects available languages.
func (app *MedReminderApp) SetupI18n() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return
	}

	var detectedLangs []string

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		detectedLangs = append(detectedLangs, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	app.SupportedLanguages = detectedLangs
	app.I18nBundle = bundle
	app.UpdateLocalizer()
}

// UpdateLocalizer refreshes the translator based on the user's language preference.
func (app *MedReminderApp) UpdateLocalizer() {
	if app.I18nBundle == nil {
		return
	}
	lang := app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
	app.Localizer = i18n.NewLocalizer(app.I18nBundle, lang)
}

// GetMsg translates a key, returning the key itself when no translation exists.
func (app *MedReminderApp) GetMsg(key string) string {
	msg, err := app.localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil {
		return key
	}
	return msg
}

// localize runs cfg through the current localizer.
func (app *MedReminderApp) localize(cfg *i18n.LocalizeConfig) (string, error) {
	if app.Localizer == nil {
		return "", errors.New(config.ErrLocNotInit)
	}
	msg, err := app.Localizer.Localize(cfg)
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, cfg.MessageID,
			config.LogKeyError, err,
		)
		return "", err
	}
	return msg, nil
}

// formatTitle is the localized notification title of a record.
func (app *MedReminderApp) formatTitle(r engine.ReminderRecord) string {
	msg, err := app.localize(&i18n.LocalizeConfig{
		MessageID:    config.TKeyNotifTitle,
		TemplateData: map[string]interface{}{"Name": r.MedicineName},
	})
	if err != nil || msg == "" {
		return fmt.Sprintf(config.FallbackTitle, r.MedicineName)
	}
	return msg
}

// formatBody is the localized notification body of a record.
func (app *MedReminderApp) formatBody(r engine.ReminderRecord) string {
	msg, err := app.localize(&i18n.LocalizeConfig{
		MessageID: config.TKeyNotifBody,
		TemplateData: map[string]interface{}{
			"Units":    r.Units,
			"UnitType": r.UnitType,
			"Name":     r.MedicineName,
			"When":     r.When,
		},
	})
	if err != nil || msg == "" {
		return fmt.Sprintf(config.FallbackBody, r.Units, r.UnitType, r.MedicineName, r.When)
	}
	return msg
}

// agendaLabel renders one tray row of today's agenda.
func (app *MedReminderApp) agendaLabel(e engine.AgendaEntry) string {
	r := e.Record
	msg, err := app.localize(&i18n.LocalizeConfig{
		MessageID: config.TKeyFormatAgendaRow,
		TemplateData: map[string]interface{}{
			"Time":     e.Time(),
			"Name":     r.MedicineName,
			"Units":    r.Units,
			"UnitType": r.UnitType,
		},
	})
	if err != nil || msg == "" {
		return fmt.Sprintf(config.FallbackAgendaRow, e.Time(), r.MedicineName, r.Units, r.UnitType)
	}
	return strings.TrimSpace(msg)
}

// plural localizes a message that takes a Count.
func (app *MedReminderApp) plural(key string, count int, data map[string]interface{}) (string, error) {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["Count"] = count
	return app.localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
		PluralCount:  count,
	})
}

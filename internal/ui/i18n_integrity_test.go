package ui_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-medreminder/internal/config"
)

// translationKeys lists every key the UI looks up.
var translationKeys = []string{
	config.TKeyWinSettings,
	config.TKeyWinReminders,
	config.TKeyWinAdd,
	config.TKeyMenuAdd,
	config.TKeyMenuReminders,
	config.TKeyMenuRefresh,
	config.TKeyMenuSettings,
	config.TKeyMenuDelete,
	config.TKeyTrayStatus,
	config.TKeyTrayStatusZero,
	config.TKeyAgendaEmpty,
	config.TKeyNotifTitle,
	config.TKeyNotifBody,
	config.TKeyNotifDeleted,
	config.TKeyNotifError,
	config.TKeyNotifAdded,
	config.TKeyNotifRefresh,
	config.TKeyColName,
	config.TKeyColDays,
	config.TKeyColTimes,
	config.TKeyColDates,
	config.TKeyLblMedicine,
	config.TKeyLblType,
	config.TKeyLblUnits,
	config.TKeyLblWhen,
	config.TKeyLblDays,
	config.TKeyLblTimes,
	config.TKeyHelpTimes,
	config.TKeyLblStartDate,
	config.TKeyLblEndDate,
	config.TKeyHelpDate,
	config.TKeyLblDesc,
	config.TKeyLblColor,
	config.TKeyLblLanguage,
	config.TKeyHelpLanguage,
	config.TKeyLblNotif,
	config.TKeyLblEnableNotif,
	config.TKeyLblTone,
	config.TKeyHelpTone,
	config.TKeyBtnSave,
	config.TKeyBtnCancel,
	config.TKeyLblFooter,
	config.TKeyFormatAgendaRow,
}

func loadLocale(t *testing.T, lang string) map[string]interface{} {
	t.Helper()
	path := filepath.Join("locales", "active."+lang+".json")
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		path = filepath.Join("..", "..", "internal", "ui", "locales", "active."+lang+".json")
		content, err = os.ReadFile(path)
	}
	require.NoError(t, err, "Must load %s", path)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(content, &m), "JSON must be valid")
	return m
}

// TestI18nIntegrity ensures every translation key defined in config exists in each locale file.
func TestI18nIntegrity(t *testing.T) {
	defined := make(map[string]bool, len(translationKeys))
	for _, k := range translationKeys {
		defined[k] = true
	}

	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			m := loadLocale(t, lang)
			for key := range defined {
				_, ok := m[key]
				assert.Truef(t, ok, "Key '%s' is missing in active.%s.json", key, lang)
			}
			for key := range m {
				if strings.HasPrefix(key, "_") {
					continue
				}
				if !defined[key] {
					t.Logf("Warning: key '%s' exists in active.%s.json but is not checked (might be unused)", key, lang)
				}
			}
		})
	}
}

// TestI18nPlurals ensures counted messages carry plural forms.
func TestI18nPlurals(t *testing.T) {
	for _, lang := range config.SupportedLanguages {
		m := loadLocale(t, lang)
		for _, key := range []string{config.TKeyTrayStatus, config.TKeyNotifAdded, config.TKeyNotifRefresh} {
			forms, ok := m[key].(map[string]interface{})
			require.Truef(t, ok, "%s/%s must be a plural object", lang, key)
			assert.Contains(t, forms, "one")
			assert.Contains(t, forms, "other")
		}
	}
}

package engine

import (
	"context"
	"encoding/json"

	"github.com/tartampluch/go-medreminder/internal/config"
)

// Settings is the persisted "settings" key.
type Settings struct {
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	Tone                 string `json:"tone"`
}

// DefaultSettings applies when the key has never been written.
func DefaultSettings() Settings {
	return Settings{NotificationsEnabled: true, Tone: config.DefaultTone}
}

// LoadSettings reads the settings key, falling back to DefaultSettings when absent.
// Fields missing from a stored blob keep their defaults.
func LoadSettings(ctx context.Context, kv KV) (Settings, error) {
	s := DefaultSettings()

	data, ok, err := kv.Get(ctx, config.KeySettings)
	if err != nil {
		return s, storageErr(config.ErrKVRead, err)
	}
	if !ok || len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), storageErr(config.ErrDecodeSettings, err)
	}
	if s.Tone == "" {
		s.Tone = config.DefaultTone
	}
	return s, nil
}

// SaveSettings persists s under the settings key.
func SaveSettings(ctx context.Context, kv KV, s Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return storageErr(config.ErrEncodeSettings, err)
	}
	if err := kv.Set(ctx, config.KeySettings, data); err != nil {
		return storageErr(config.ErrKVWrite, err)
	}
	return nil
}

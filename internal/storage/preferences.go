package storage

import (
	"context"

	"fyne.io/fyne/v2"
	"github.com/tartampluch/go-medreminder/internal/config"
)

// Preferences stores blobs as strings in fyne's per-app preferences.
// It suits small lists on desktops where no data dir is configured.
type Preferences struct {
	prefs fyne.Preferences
}

// NewPreferences wraps p.
func NewPreferences(p fyne.Preferences) *Preferences {
	return &Preferences{prefs: p}
}

// Get reads the blob stored under key. An empty string counts as missing.
func (p *Preferences) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v := p.prefs.String(config.PrefKeyPrefix + key)
	if v == "" {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

// Set writes value under key.
func (p *Preferences) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.prefs.SetString(config.PrefKeyPrefix+key, string(value))
	return nil
}

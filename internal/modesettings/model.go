package modesettings

import (
	"encoding/json"
	"time"
)

// Setting is one persisted key. Value holds the JSON encoding of the setting.
type Setting struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:setting_key" json:"key"`
	Value     string    `gorm:"column:setting_value" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string { return "mode_settings" }

// Settings maps a top-level key to its JSON value.
type Settings map[string]json.RawMessage

const (
	SourceDatabase = "database"
	SourceCache    = "cache"
)

// Result is what every operation returns. Stale is set when the store could not
// be read and the last known good copy was served instead.
type Result struct {
	Settings Settings `json:"settings"`
	Source   string   `json:"source"`
	Stale    bool     `json:"stale,omitempty"`
}

var defaults = map[string]any{
	"defaultTheme":   "system",
	"autoSwitch":     true,
	"lightModeStart": "06:00",
	"darkModeStart":  "18:00",
	"customColors": map[string]string{
		"primary":   "#3b82f6",
		"secondary": "#64748b",
		"accent":    "#f59e0b",
	},
	"accessibility": map[string]any{
		"highContrast":  false,
		"reducedMotion": false,
		"fontSize":      "medium",
	},
}

// Defaults returns a fresh copy of the built-in settings.
func Defaults() Settings {
	out := make(Settings, len(defaults))
	for k, v := range defaults {
		raw, err := json.Marshal(v)
		if err != nil {
			panic(err)
		}
		out[k] = raw
	}
	return out
}

// Merge overlays stored on top of the defaults, key by key.
func Merge(stored Settings) Settings {
	out := Defaults()
	for k, v := range stored {
		out[k] = v
	}
	return out
}

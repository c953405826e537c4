package models

import "fmt"

// Theme selects the UI color scheme.
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

func (t Theme) IsValid() bool {
	switch t {
	case ThemeSystem, ThemeLight, ThemeDark:
		return true
	}
	return false
}

func (t Theme) String() string {
	return string(t)
}

// ParseTheme converts a persisted or user-supplied string into a Theme.
func ParseTheme(s string) (Theme, error) {
	t := Theme(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid theme %q", s)
	}
	return t, nil
}

// Settings is an immutable aggregate of the five scalar filter settings. It
// is produced on demand from a single preference snapshot and never persisted
// as a unit - each field is an independent key.
type Settings struct {
	NameQuery         string  `json:"nameQuery"`
	MinHue            float64 `json:"minHue"`
	MaxHue            float64 `json:"maxHue"`
	ShowOnlyFavorites bool    `json:"showOnlyFavorites"`
	Theme             Theme   `json:"theme"`
}

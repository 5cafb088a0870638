package model

import (
	"strings"

	"github.com/templui/downloadzone/internal/validation"
)

const (
	ThemeModeDark  = "dark"
	ThemeModeLight = "light"
)

type Theme struct {
	Mode        string `json:"mode"`
	AccentColor string `json:"accent_color"`
}

func DefaultTheme() *Theme {
	return &Theme{Mode: ThemeModeDark, AccentColor: "#00FF41"}
}

type ThemeUpdate struct {
	Mode        *string `json:"mode"`
	AccentColor *string `json:"accent_color"`
}

// Apply validates and merges a theme change.
func (t *Theme) Apply(u ThemeUpdate) error {
	if u.Mode != nil {
		mode := strings.TrimSpace(*u.Mode)
		if mode != ThemeModeDark && mode != ThemeModeLight {
			return validation.NewError("mode", "mode must be dark or light")
		}
		t.Mode = mode
	}
	if u.AccentColor != nil {
		color := strings.TrimSpace(*u.AccentColor)
		if err := validation.ValidateHexColor(color); err != nil {
			return validation.Field("accent_color", err)
		}
		t.AccentColor = color
	}
	return nil
}

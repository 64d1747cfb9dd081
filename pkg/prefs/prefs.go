// Package prefs persists display settings that live outside the user account.
package prefs

import (
	"context"
	"fmt"
	"strings"

	"julianmorley.ca/con-plar/storefront/pkg/kv"
)

const (
	ThemeKey = "theme"

	ThemeLight = "light"
	ThemeDark  = "dark"
)

var ErrInvalidTheme = fmt.Errorf("theme must be %q or %q", ThemeLight, ThemeDark)

type Prefs struct {
	Theme string `json:"theme"`
}

func Defaults() Prefs {
	return Prefs{Theme: ThemeLight}
}

// Load reads preferences from storage, falling back to defaults when the value
// is missing, unreadable or unknown.
func Load(ctx context.Context, storage kv.Store) Prefs {
	theme, err := storage.Get(ctx, ThemeKey)
	if err != nil {
		return Defaults()
	}
	theme, ok := parseTheme(theme)
	if !ok {
		return Defaults()
	}
	return Prefs{Theme: theme}
}

func Save(ctx context.Context, storage kv.Store, p Prefs) error {
	theme, ok := parseTheme(p.Theme)
	if !ok {
		return ErrInvalidTheme
	}
	if err := storage.Set(ctx, ThemeKey, theme); err != nil {
		return fmt.Errorf("write theme: %w", err)
	}
	return nil
}

func parseTheme(s string) (string, bool) {
	switch theme := strings.ToLower(strings.TrimSpace(s)); theme {
	case ThemeLight, ThemeDark:
		return theme, true
	default:
		return "", false
	}
}

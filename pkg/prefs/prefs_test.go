package prefs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"julianmorley.ca/con-plar/storefront/pkg/kv"
)

func TestLoad_MissingUsesDefaults(t *testing.T) {
	p := Load(context.Background(), kv.NewMemory())
	assert.Equal(t, ThemeLight, p.Theme)
}

func TestLoad_UnknownThemeUsesDefaults(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	require.NoError(t, storage.Set(ctx, ThemeKey, "Dracula"))

	assert.Equal(t, ThemeLight, Load(ctx, storage).Theme)
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()

	require.NoError(t, Save(ctx, storage, Prefs{Theme: " Dark "}))
	assert.Equal(t, ThemeDark, Load(ctx, storage).Theme)

	raw, err := storage.Get(ctx, ThemeKey)
	require.NoError(t, err)
	assert.Equal(t, "dark", raw)
}

func TestSave_RejectsUnknownTheme(t *testing.T) {
	err := Save(context.Background(), kv.NewMemory(), Prefs{Theme: "solarized"})
	assert.ErrorIs(t, err, ErrInvalidTheme)
}

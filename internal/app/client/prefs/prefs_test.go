package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hemapp/internal/app/client/storage"
)

func TestPrefs_Defaults(t *testing.T) {
	p := New(storage.NewMemoryStorage())

	s, err := p.NotificationSettings()
	require.NoError(t, err)
	assert.Equal(t, DefaultNotificationSettings(), s)

	on, err := p.BrailleMode()
	require.NoError(t, err)
	assert.False(t, on)

	lang, err := p.PreferredLanguage()
	require.NoError(t, err)
	assert.Equal(t, DefaultLanguage, lang)

	voice, err := p.PreferredVoice()
	require.NoError(t, err)
	assert.Empty(t, voice)
}

func TestPrefs_RoundTrip(t *testing.T) {
	store := storage.NewMemoryStorage()
	p := New(store)

	require.NoError(t, p.SetNotificationSettings(NotificationSettings{Enabled: true, WaterReminders: true}))
	require.NoError(t, p.SetBrailleMode(true))
	require.NoError(t, p.SetPreferredLanguage("es"))
	require.NoError(t, p.SetPreferredVoice("Samantha"))

	s, err := p.NotificationSettings()
	require.NoError(t, err)
	assert.Equal(t, NotificationSettings{Enabled: true, WaterReminders: true}, s)

	raw, err := store.Get("brailleMode")
	require.NoError(t, err)
	assert.Equal(t, "true", string(raw))

	raw, err = store.Get("preferred-voice")
	require.NoError(t, err)
	assert.Equal(t, `"Samantha"`, string(raw))

	lang, err := p.PreferredLanguage()
	require.NoError(t, err)
	assert.Equal(t, "es", lang)

	require.NoError(t, p.SetPreferredVoice(""))
	voice, err := p.PreferredVoice()
	require.NoError(t, err)
	assert.Empty(t, voice)

	assert.Error(t, p.SetPreferredLanguage(""))
}

func TestPrefs_Corrupted(t *testing.T) {
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Set("notificationSettings", []byte("{")))

	_, err := New(store).NotificationSettings()
	assert.Error(t, err)
}

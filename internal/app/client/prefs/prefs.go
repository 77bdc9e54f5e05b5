// Package prefs пользовательские настройки клиента поверх локального хранилища.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"

	"hemapp/internal/app/client/storage"
)

// NotificationSettings какие уведомления показывать
type NotificationSettings struct {
	Enabled        bool `json:"enabled"`
	MealReminders  bool `json:"mealReminders"`
	GoalUpdates    bool `json:"goalUpdates"`
	Messages       bool `json:"messages"`
	WaterReminders bool `json:"waterReminders"`
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Enabled:       true,
		MealReminders: true,
		GoalUpdates:   true,
		Messages:      true,
	}
}

const DefaultLanguage = "en"

type Prefs struct {
	store storage.Store
}

func New(store storage.Store) *Prefs {
	return &Prefs{store: store}
}

func (p *Prefs) NotificationSettings() (NotificationSettings, error) {
	s := DefaultNotificationSettings()
	_, err := p.get(storage.NotificationSettingsKey, &s)
	return s, err
}

func (p *Prefs) SetNotificationSettings(s NotificationSettings) error {
	return p.set(storage.NotificationSettingsKey, s)
}

func (p *Prefs) BrailleMode() (bool, error) {
	var on bool
	_, err := p.get(storage.BrailleModeKey, &on)
	return on, err
}

func (p *Prefs) SetBrailleMode(on bool) error {
	return p.set(storage.BrailleModeKey, on)
}

func (p *Prefs) PreferredLanguage() (string, error) {
	lang := DefaultLanguage
	_, err := p.get(storage.PreferredLanguageKey, &lang)
	return lang, err
}

func (p *Prefs) SetPreferredLanguage(lang string) error {
	if lang == "" {
		return errors.New("language must not be empty")
	}
	return p.set(storage.PreferredLanguageKey, lang)
}

// PreferredVoice имя голоса синтеза речи, пустая строка если не выбран
func (p *Prefs) PreferredVoice() (string, error) {
	var voice string
	_, err := p.get(storage.PreferredVoiceKey, &voice)
	return voice, err
}

func (p *Prefs) SetPreferredVoice(voice string) error {
	if voice == "" {
		return p.store.Delete(storage.PreferredVoiceKey)
	}
	return p.set(storage.PreferredVoiceKey, voice)
}

func (p *Prefs) get(key string, out any) (bool, error) {
	data, err := p.store.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (p *Prefs) set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return p.store.Set(key, data)
}

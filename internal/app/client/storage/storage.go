// Package storage локальное хранилище клиента: ключ -> JSON-значение, last-write-wins.
package storage

import (
	"errors"
	"strconv"
)

var ErrNotFound = errors.New("key not found")

// Store персистентное хранилище ключ-значение
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
	Close() error
}

const (
	NotificationSettingsKey = "notificationSettings"
	BrailleModeKey          = "brailleMode"
	PreferredLanguageKey    = "preferredLanguage"
	PreferredVoiceKey       = "preferred-voice"
)

// OfflineKey ключ кэша данных определенного типа
func OfflineKey(dataType string) string {
	return "offline_" + dataType
}

// SyncQueueKey ключ очереди синхронизации пользователя
func SyncQueueKey(userID int) string {
	return "offline_sync_" + strconv.Itoa(userID)
}

// CommunityLastViewedKey ключ времени последнего просмотра ленты сообщества
func CommunityLastViewedKey(userID int) string {
	return "community_last_viewed_" + strconv.Itoa(userID)
}

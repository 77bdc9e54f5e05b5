package messages

import (
	"errors"
	"fmt"
	"time"

	"hemapp/internal/app/client/remote"
	"hemapp/internal/app/client/storage"
)

// CommunityLastViewed время последнего просмотра ленты сообщества. ok=false, если ленту не открывали.
func CommunityLastViewed(store storage.Store, userID int) (time.Time, bool, error) {
	data, err := store.Get(storage.CommunityLastViewedKey(userID))
	if errors.Is(err, storage.ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	t, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse last viewed: %w", err)
	}
	return t, true, nil
}

// MarkCommunityViewed запоминает время просмотра ленты
func MarkCommunityViewed(store storage.Store, userID int, at time.Time) error {
	return store.Set(storage.CommunityLastViewedKey(userID), []byte(at.UTC().Format(time.RFC3339Nano)))
}

// CountNewSince сколько строк создано после since
func CountNewSince(rows []remote.Row, since time.Time) int {
	n := 0
	for _, r := range rows {
		s, _ := r["created_at"].(string)
		t, err := time.Parse(time.RFC3339Nano, s)
		if err == nil && t.After(since) {
			n++
		}
	}
	return n
}

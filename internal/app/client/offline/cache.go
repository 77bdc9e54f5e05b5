package offline

import (
	"encoding/json"
	"errors"
	"fmt"

	"hemapp/internal/app/client/storage"
)

// Cache последние полученные с сервера данные по типу, для показа без сети
type Cache struct {
	store storage.Store
}

func NewCache(store storage.Store) *Cache {
	return &Cache{store: store}
}

func (c *Cache) Save(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache %s: %w", name, err)
	}
	return c.store.Set(storage.OfflineKey(name), data)
}

// Load читает кэш в out. Если кэша нет, возвращает false без ошибки.
func (c *Cache) Load(name string, out any) (bool, error) {
	data, err := c.store.Get(storage.OfflineKey(name))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode cache %s: %w", name, err)
	}
	return true, nil
}

package table

import (
	"context"
	"encoding/json"
)

// Repository хранилище строк пользовательских таблиц
type Repository interface {
	Insert(ctx context.Context, row *Row) error
	Get(ctx context.Context, q Query, id int64) (*Row, error)
	Select(ctx context.Context, q Query) ([]Row, error)
	// Count число строк под q без учета Limit
	Count(ctx context.Context, q Query) (int64, error)
	// Update сливает data с существующим объектом (jsonb ||)
	Update(ctx context.Context, id int64, data json.RawMessage) (*Row, error)
	Delete(ctx context.Context, id int64) error
}

// Publisher получает события изменения строк
type Publisher interface {
	Publish(change Change)
}

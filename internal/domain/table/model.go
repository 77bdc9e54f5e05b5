package table

import (
	"encoding/json"
	"time"
)

// Row строка одной из пользовательских таблиц. Полезная нагрузка хранится в data как JSON-объект.
type Row struct {
	ID        int64           `json:"id"`
	Table     string          `json:"table"`
	UserID    int             `json:"user_id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ChangeType тип изменения строки для realtime-подписчиков
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// Change событие изменения, которое получает realtime-брокер
type Change struct {
	Type      ChangeType `json:"type"`
	Table     string     `json:"table"`
	Record    Row        `json:"record"`
	Timestamp time.Time  `json:"timestamp"`
}

// Query параметры выборки с учетом видимости строк
type Query struct {
	Table     string
	UserID    int
	SharedKey string
	Filters   []Filter
	Ascending bool
	Limit     int
}

// Field возвращает значение ключа верхнего уровня из data в текстовом виде.
// Строки возвращаются без кавычек, как это делает оператор ->> в postgres.
func (r Row) Field(key string) (string, bool) {
	switch key {
	case "id":
		return formatInt(r.ID), true
	case "user_id":
		return formatInt(int64(r.UserID)), true
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r.Data, &fields); err != nil {
		return "", false
	}

	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}

	return string(raw), true
}

// VisibleTo сообщает, может ли пользователь видеть строку
func (r Row) VisibleTo(userID int, sharedKey string) bool {
	if r.UserID == userID {
		return true
	}
	if sharedKey == "" {
		return false
	}

	v, ok := r.Field(sharedKey)
	return ok && v == formatInt(int64(userID))
}

// Record плоское представление строки: ключи data плюс служебные колонки
func (r Row) Record() map[string]any {
	var rec map[string]any
	if err := json.Unmarshal(r.Data, &rec); err != nil || rec == nil {
		rec = make(map[string]any)
	}

	rec["id"] = r.ID
	rec["user_id"] = r.UserID
	rec["created_at"] = r.CreatedAt.UTC().Format(time.RFC3339Nano)
	rec["updated_at"] = r.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return rec
}

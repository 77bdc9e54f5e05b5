package table

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"golang.org/x/exp/slog"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

type Servicer interface {
	Insert(ctx context.Context, userID int, table string, data json.RawMessage) (*Row, error)
	Update(ctx context.Context, userID int, table string, id int64, data json.RawMessage) (*Row, error)
	Select(ctx context.Context, userID int, table string, filters []Filter, limit int, ascending bool) ([]Row, error)
	Count(ctx context.Context, userID int, table string, filters []Filter) (int64, error)
	Upsert(ctx context.Context, userID int, table string, data json.RawMessage, onConflict string) (*Row, error)
	Delete(ctx context.Context, userID int, table string, id int64) error
}

// Service CRUD над таблицами с проверкой владельца и публикацией изменений
type Service struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
}

func NewService(repo Repository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log.With("component", "table_service"),
	}
}

func (s *Service) Insert(ctx context.Context, userID int, table string, data json.RawMessage) (*Row, error) {
	coll, err := writable(table)
	if err != nil {
		return nil, err
	}

	data, err = normalize(data)
	if err != nil {
		return nil, err
	}

	row := &Row{Table: coll.Name, UserID: userID, Data: data}
	if err := s.repo.Insert(ctx, row); err != nil {
		return nil, fmt.Errorf("insert into %s: %w", coll.Name, err)
	}

	s.publish(ChangeInsert, *row)
	return row, nil
}

func (s *Service) Update(ctx context.Context, userID int, table string, id int64, data json.RawMessage) (*Row, error) {
	coll, err := writable(table)
	if err != nil {
		return nil, err
	}

	data, err = normalize(data)
	if err != nil {
		return nil, err
	}

	// получатель сообщения может только отметить его прочитанным
	current, err := s.repo.Get(ctx, scope(coll, userID), id)
	if err != nil {
		return nil, err
	}
	if err := authorizePatch(coll, current, userID, data); err != nil {
		return nil, err
	}

	row, err := s.repo.Update(ctx, id, data)
	if err != nil {
		return nil, fmt.Errorf("update %s/%d: %w", coll.Name, id, err)
	}

	s.publish(ChangeUpdate, *row)
	return row, nil
}

func (s *Service) Select(ctx context.Context, userID int, table string, filters []Filter, limit int, ascending bool) ([]Row, error) {
	coll, err := Lookup(table)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	q := scope(coll, userID)
	q.Filters = filters
	q.Limit = limit
	q.Ascending = ascending

	rows, err := s.repo.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", coll.Name, err)
	}
	return rows, nil
}

// Count считает строки, видимые пользователю, без ограничения выборки
func (s *Service) Count(ctx context.Context, userID int, table string, filters []Filter) (int64, error) {
	coll, err := Lookup(table)
	if err != nil {
		return 0, err
	}

	q := scope(coll, userID)
	q.Filters = filters

	n, err := s.repo.Count(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", coll.Name, err)
	}
	return n, nil
}

// Upsert обновляет строку, найденную по data.id или по ключу конфликта, иначе вставляет новую
func (s *Service) Upsert(ctx context.Context, userID int, table string, data json.RawMessage, onConflict string) (*Row, error) {
	coll, err := writable(table)
	if err != nil {
		return nil, err
	}

	existing, err := s.findConflict(ctx, coll, userID, data, onConflict)
	if err != nil {
		return nil, err
	}

	data, err = normalize(data)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return s.Insert(ctx, userID, table, data)
	}
	if err := authorizePatch(coll, existing, userID, data); err != nil {
		return nil, err
	}

	row, err := s.repo.Update(ctx, existing.ID, data)
	if err != nil {
		return nil, fmt.Errorf("upsert %s/%d: %w", coll.Name, existing.ID, err)
	}

	s.publish(ChangeUpdate, *row)
	return row, nil
}

func (s *Service) Delete(ctx context.Context, userID int, table string, id int64) error {
	coll, err := writable(table)
	if err != nil {
		return err
	}

	row, err := s.repo.Get(ctx, scope(coll, userID), id)
	if err != nil {
		return err
	}
	if row.UserID != userID {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s/%d: %w", coll.Name, id, err)
	}

	s.publish(ChangeDelete, *row)
	return nil
}

func (s *Service) findConflict(ctx context.Context, coll Collection, userID int, data json.RawMessage, onConflict string) (*Row, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, ErrInvalidData
	}

	if raw, ok := fields["id"]; ok {
		id, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: id must be an integer", ErrInvalidData)
		}
		row, err := s.repo.Get(ctx, scope(coll, userID), id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return row, nil
	}

	key := onConflict
	if key == "" {
		key = coll.ConflictKey
	}
	if key == "" {
		return nil, nil
	}

	value := strconv.Itoa(userID)
	if key != "user_id" {
		v, ok := Row{Data: data}.Field(key)
		if !ok {
			return nil, nil
		}
		value = v
	}

	q := Query{
		Table:   coll.Name,
		UserID:  userID,
		Filters: []Filter{{Column: key, Op: OpEq, Value: value}},
		Limit:   1,
	}
	rows, err := s.repo.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("upsert lookup in %s: %w", coll.Name, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *Service) publish(typ ChangeType, row Row) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(Change{
		Type:      typ,
		Table:     row.Table,
		Record:    row,
		Timestamp: time.Now(),
	})
	s.log.Debug("change published", "type", typ, "table", row.Table, "id", row.ID)
}

func writable(table string) (Collection, error) {
	coll, err := Lookup(table)
	if err != nil {
		return Collection{}, err
	}
	if coll.ReadOnly {
		return Collection{}, ErrReadOnlyTable
	}
	return coll, nil
}

// authorizePatch пропускает изменения владельца, а чужую строку разрешает менять
// только по ключам из SharedWritable
func authorizePatch(coll Collection, row *Row, userID int, patch json.RawMessage) error {
	if row.UserID == userID {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return ErrInvalidData
	}
	for key := range fields {
		if !slices.Contains(coll.SharedWritable, key) {
			return fmt.Errorf("%w: %s is not writable by %s", ErrForbidden, key, coll.SharedKey)
		}
	}
	return nil
}

func scope(coll Collection, userID int) Query {
	return Query{Table: coll.Name, UserID: userID, SharedKey: coll.SharedKey}
}

// normalize проверяет, что data — JSON-объект, и убирает служебные ключи
func normalize(data json.RawMessage) (json.RawMessage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidData)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: payload must be a JSON object", ErrInvalidData)
	}

	delete(fields, "id")
	delete(fields, "user_id")
	delete(fields, "created_at")
	delete(fields, "updated_at")

	out, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return out, nil
}

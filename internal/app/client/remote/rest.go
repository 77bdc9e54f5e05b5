package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Row строка таблицы в плоском виде: ключи data плюс id, user_id, created_at, updated_at
type Row map[string]any

// ID числовой идентификатор строки
func (r Row) ID() int64 {
	switch v := r["id"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// SelectOptions параметры выборки
type SelectOptions struct {
	// Filters в формате column=op.value, например receiver_id=eq.42
	Filters   []string
	Ascending bool
	Limit     int
}

func tablePath(table string) string {
	return "/rest/v1/" + url.PathEscape(table)
}

func (c *Client) Select(ctx context.Context, table string, opts SelectOptions) ([]Row, error) {
	q := url.Values{}
	for _, f := range opts.Filters {
		q.Add("filter", f)
	}
	if opts.Ascending {
		q.Set("order", "asc")
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	path := tablePath(table)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var rows []Row
	if err := c.do(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Count число строк под фильтрами без ограничения выборки
func (c *Client) Count(ctx context.Context, table string, filters []string) (int, error) {
	q := url.Values{}
	for _, f := range filters {
		q.Add("filter", f)
	}

	path := tablePath(table) + "/count"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Insert добавляет строку. values сериализуется в JSON-объект.
func (c *Client) Insert(ctx context.Context, table string, values any) (Row, error) {
	var row Row
	if err := c.do(ctx, http.MethodPost, tablePath(table), values, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// Upsert обновляет строку с тем же значением ключа onConflict или создает новую.
// Пустой onConflict означает ключ по умолчанию для таблицы.
func (c *Client) Upsert(ctx context.Context, table, onConflict string, values any) (Row, error) {
	path := tablePath(table)
	if onConflict != "" {
		path += "?on_conflict=" + url.QueryEscape(onConflict)
	}

	var row Row
	if err := c.do(ctx, http.MethodPut, path, values, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// Update сливает patch с data строки
func (c *Client) Update(ctx context.Context, table string, id int64, patch any) (Row, error) {
	var row Row
	path := tablePath(table) + "/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodPatch, path, patch, &row); err != nil {
		return nil, err
	}
	return row, nil
}

func (c *Client) Delete(ctx context.Context, table string, id int64) error {
	path := tablePath(table) + "/" + strconv.FormatInt(id, 10)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

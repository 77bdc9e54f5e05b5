package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hemapp/internal/domain/table"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"
)

const rowColumns = `id, table_name, user_id, data, created_at, updated_at`

type TableRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewTableRepository(pool *pgxpool.Pool, log *slog.Logger) *TableRepository {
	return &TableRepository{
		pool: pool,
		log:  log.With("component", "table_repository"),
	}
}

func (r *TableRepository) Insert(ctx context.Context, row *table.Row) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO table_rows (table_name, user_id, data)
         VALUES ($1, $2, $3)
         RETURNING id, created_at, updated_at`,
		row.Table, row.UserID, row.Data,
	).Scan(&row.ID, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert row into %s: %w", row.Table, err)
	}
	return nil
}

func (r *TableRepository) Get(ctx context.Context, q table.Query, id int64) (*table.Row, error) {
	b := newWhere(q)
	b.add("id = "+b.arg(id))

	row, err := scanRow(r.pool.QueryRow(ctx,
		`SELECT `+rowColumns+` FROM table_rows WHERE `+b.sql()+` LIMIT 1`, b.args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, table.ErrNotFound
		}
		return nil, fmt.Errorf("get row %d: %w", id, err)
	}
	return row, nil
}

func (r *TableRepository) Select(ctx context.Context, q table.Query) ([]table.Row, error) {
	b := newWhere(q)
	for _, f := range q.Filters {
		b.add(b.filter(f))
	}

	order := "DESC"
	if q.Ascending {
		order = "ASC"
	}

	query := `SELECT ` + rowColumns + ` FROM table_rows WHERE ` + b.sql() +
		` ORDER BY created_at ` + order + `, id ` + order
	if q.Limit > 0 {
		query += ` LIMIT ` + b.arg(q.Limit)
	}

	rows, err := r.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", q.Table, err)
	}
	defer rows.Close()

	result := make([]table.Row, 0)
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", q.Table, err)
		}
		result = append(result, *row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", q.Table, err)
	}

	return result, nil
}

func (r *TableRepository) Count(ctx context.Context, q table.Query) (int64, error) {
	b := newWhere(q)
	for _, f := range q.Filters {
		b.add(b.filter(f))
	}

	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM table_rows WHERE `+b.sql(), b.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", q.Table, err)
	}
	return n, nil
}

func (r *TableRepository) Update(ctx context.Context, id int64, data json.RawMessage) (*table.Row, error) {
	row, err := scanRow(r.pool.QueryRow(ctx,
		`UPDATE table_rows SET data = data || $2::jsonb, updated_at = NOW()
         WHERE id = $1
         RETURNING `+rowColumns,
		id, data))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, table.ErrNotFound
		}
		return nil, fmt.Errorf("update row %d: %w", id, err)
	}
	return row, nil
}

func (r *TableRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM table_rows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete row %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return table.ErrNotFound
	}
	return nil
}

func scanRow(s pgx.Row) (*table.Row, error) {
	var row table.Row
	var data []byte
	if err := s.Scan(&row.ID, &row.Table, &row.UserID, &data, &row.CreatedAt, &row.UpdatedAt); err != nil {
		return nil, err
	}
	row.Data = data
	return &row, nil
}

// where собирает условие с позиционными параметрами
type where struct {
	parts []string
	args  []any
}

func newWhere(q table.Query) *where {
	b := &where{}
	b.add("table_name = " + b.arg(q.Table))

	owner := b.arg(q.UserID)
	if q.SharedKey != "" {
		b.add(fmt.Sprintf("(user_id = %s OR data->>%s = %s::text)", owner, b.arg(q.SharedKey), owner))
	} else {
		b.add("user_id = " + owner)
	}
	return b
}

func (b *where) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *where) add(cond string) {
	b.parts = append(b.parts, cond)
}

func (b *where) sql() string {
	return strings.Join(b.parts, " AND ")
}

var sqlOps = map[table.Operator]string{
	table.OpEq:  "=",
	table.OpNeq: "<>",
	table.OpGt:  ">",
	table.OpGte: ">=",
	table.OpLt:  "<",
	table.OpLte: "<=",
}

// filter переводит фильтр в SQL так же, как его трактует Filter.Match
func (b *where) filter(f table.Filter) string {
	op := sqlOps[f.Op]

	if f.IsTimeColumn() {
		return fmt.Sprintf("%s %s %s::timestamptz", f.Column, op, b.arg(f.Value))
	}

	var text string
	switch f.Column {
	case "id", "user_id":
		text = f.Column + "::text"
	default:
		text = "data->>" + b.arg(f.Column)
	}

	if f.Op == table.OpEq || f.Op == table.OpNeq {
		return fmt.Sprintf("%s %s %s", text, op, b.arg(f.Value))
	}

	return fmt.Sprintf(`(CASE WHEN %s ~ '^-?[0-9]+(\.[0-9]+)?$' THEN (%s)::numeric END) %s %s::numeric`,
		text, text, op, b.arg(f.Value))
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"showpro/internal/database"
	apperrors "showpro/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Table is a CRUD store for one master-data table. T carries `db` tags for
// id, created_at, updated_at and every writable column.
type Table[T any] struct {
	db         *database.DB
	name       string
	columns    []string
	order      string
	nameColumn string
}

func NewTable[T any](db *database.DB, name string, columns ...string) *Table[T] {
	return &Table[T]{db: db, name: name, columns: columns, order: "name, id", nameColumn: "name"}
}

// Ordered задает сортировку для таблиц без колонки name; фильтр q отключается
func (t *Table[T]) Ordered(order string) *Table[T] {
	t.order = order
	t.nameColumn = ""
	return t
}

func (t *Table[T]) Columns() []string {
	return t.columns
}

func (t *Table[T]) Name() string {
	return t.name
}

func (t *Table[T]) selectList() string {
	return "id, " + strings.Join(t.columns, ", ") + ", created_at, updated_at"
}

// List возвращает все строки, q фильтрует по имени (ILIKE)
func (t *Table[T]) List(ctx context.Context, q string) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", t.selectList(), t.name)
	var args []any
	if q = strings.TrimSpace(q); q != "" && t.nameColumn != "" {
		query += " WHERE " + t.nameColumn + " ILIKE $1"
		args = append(args, "%"+q+"%")
	}
	query += " ORDER BY " + t.order

	items := []T{}
	if err := t.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.name, err)
	}
	return items, nil
}

// Get возвращает nil, nil если строки нет
func (t *Table[T]) Get(ctx context.Context, id int64) (*T, error) {
	var item T
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", t.selectList(), t.name)
	err := t.db.GetContext(ctx, &item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %d: %w", t.name, id, err)
	}
	return &item, nil
}

func (t *Table[T]) Insert(ctx context.Context, item *T) error {
	return t.insert(ctx, t.db, item)
}

// InsertTx вставляет строку внутри внешней транзакции
func (t *Table[T]) InsertTx(ctx context.Context, tx *sqlx.Tx, item *T) error {
	return t.insert(ctx, tx, item)
}

func (t *Table[T]) insert(ctx context.Context, ext sqlx.ExtContext, item *T) error {
	placeholders := make([]string, len(t.columns))
	for i, col := range t.columns {
		placeholders[i] = ":" + col
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		t.name, strings.Join(t.columns, ", "), strings.Join(placeholders, ", "), t.selectList())

	rows, err := sqlx.NamedQueryContext(ctx, ext, query, item)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", t.name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", t.name, err)
		}
		return fmt.Errorf("insert into %s returned no row", t.name)
	}
	return rows.StructScan(item)
}

// Update перезаписывает все изменяемые колонки. ErrNotFound если строки нет.
func (t *Table[T]) Update(ctx context.Context, id int64, item *T) error {
	sets := make([]string, len(t.columns))
	for i, col := range t.columns {
		sets[i] = col + " = :" + col
	}
	named := fmt.Sprintf("UPDATE %s SET %s, updated_at = NOW()", t.name, strings.Join(sets, ", "))

	query, args, err := t.db.BindNamed(named, item)
	if err != nil {
		return fmt.Errorf("failed to bind update of %s: %w", t.name, err)
	}
	query += fmt.Sprintf(" WHERE id = $%d RETURNING %s", len(args)+1, t.selectList())
	args = append(args, id)

	err = t.db.QueryRowxContext(ctx, query, args...).StructScan(item)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update %s %d: %w", t.name, id, err)
	}
	return nil
}

func (t *Table[T]) Delete(ctx context.Context, id int64) error {
	res, err := t.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.name), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", t.name, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"showpro/internal/database"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ImportRow - строка импорта: номер строки файла и значения по колонкам.
// nil означает DEFAULT колонки.
type ImportRow struct {
	Line   int
	Values map[string]any
}

// RowFailure - строка, которую не удалось вставить
type RowFailure struct {
	Line int
	Err  error
}

// DataRepository reads and writes whole tables for CSV import and export.
// Table and column names must come from the import schema whitelist.
type DataRepository struct {
	db *database.DB
}

func NewDataRepository(db *database.DB) *DataRepository {
	return &DataRepository{db: db}
}

// NameIndex возвращает lower(name) -> id для таблицы справочника
func (r *DataRepository) NameIndex(ctx context.Context, table, column string) (map[string]int64, error) {
	query := fmt.Sprintf("SELECT id, %s FROM %s WHERE %s IS NOT NULL",
		pq.QuoteIdentifier(column), pq.QuoteIdentifier(table), pq.QuoteIdentifier(column))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to index %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	index := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, exists := index[key]; !exists {
			index[key] = id
		}
	}
	return index, rows.Err()
}

// ExportRows выбирает колонки всех строк таблицы, упорядоченных по id
func (r *DataRepository) ExportRows(ctx context.Context, table string, columns []string) ([][]any, error) {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = pq.QuoteIdentifier(col)
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", strings.Join(quoted, ", "), pq.QuoteIdentifier(table))

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to export %s: %w", table, err)
	}
	defer rows.Close()

	var result [][]any
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		result = append(result, values)
	}
	return result, rows.Err()
}

// InsertRows вставляет строки в одной транзакции. Каждый пакет из batchSize
// строк пробуется одним INSERT под точкой сохранения; при ошибке пакет
// повторяется построчно, и неудачные строки попадают в failures.
// Ошибка возвращается только если не удалась сама транзакция.
func (r *DataRepository) InsertRows(ctx context.Context, table string, columns []string, rows []ImportRow, batchSize int) (int, []RowFailure, error) {
	if batchSize <= 0 {
		batchSize = len(rows)
	}

	var inserted int
	var failures []RowFailure
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for start := 0; start < len(rows); start += batchSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			end := min(start+batchSize, len(rows))
			batch := rows[start:end]

			ok, err := insertUnderSavepoint(ctx, tx, "batch", table, columns, batch)
			if err != nil {
				return err
			}
			if ok == nil {
				inserted += len(batch)
				continue
			}

			for _, row := range batch {
				rowErr, err := insertUnderSavepoint(ctx, tx, "row", table, columns, []ImportRow{row})
				if err != nil {
					return err
				}
				if rowErr != nil {
					failures = append(failures, RowFailure{Line: row.Line, Err: rowErr})
					continue
				}
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return inserted, failures, nil
}

// insertUnderSavepoint возвращает ошибку вставки первым значением,
// вторым - ошибку управления транзакцией
func insertUnderSavepoint(ctx context.Context, tx *sqlx.Tx, name, table string, columns []string, rows []ImportRow) (error, error) {
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return nil, fmt.Errorf("failed to create savepoint: %w", err)
	}

	query, args := buildInsert(table, columns, rows)
	if _, insertErr := tx.ExecContext(ctx, query, args...); insertErr != nil {
		if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); err != nil {
			return nil, fmt.Errorf("failed to roll back savepoint: %w", err)
		}
		return insertErr, nil
	}

	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return nil, fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil, nil
}

// buildInsert собирает многострочный INSERT; nil значения становятся DEFAULT
func buildInsert(table string, columns []string, rows []ImportRow) (string, []any) {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = pq.QuoteIdentifier(col)
	}

	var args []any
	tuples := make([]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(columns))
		for j, col := range columns {
			v, ok := row.Values[col]
			if !ok || v == nil {
				cells[j] = "DEFAULT"
				continue
			}
			args = append(args, v)
			cells[j] = fmt.Sprintf("$%d", len(args))
		}
		tuples[i] = "(" + strings.Join(cells, ", ") + ")"
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		pq.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(tuples, ", "))
	return query, args
}

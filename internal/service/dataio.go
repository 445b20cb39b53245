package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"showpro/internal/config"
	"showpro/internal/csvio"
	apperrors "showpro/internal/errors"
	"showpro/internal/logger"
	"showpro/internal/metrics"
	"showpro/internal/models"
	"showpro/internal/repository"
)

// previewRows - сколько строк показывать в предпросмотре импорта
const previewRows = 10

type DataStore interface {
	NameIndex(ctx context.Context, table, column string) (map[string]int64, error)
	ExportRows(ctx context.Context, table string, columns []string) ([][]any, error)
	InsertRows(ctx context.Context, table string, columns []string, rows []repository.ImportRow, batchSize int) (int, []repository.RowFailure, error)
}

// DataService imports and exports whole tables as CSV.
type DataService struct {
	schema *csvio.Schema
	store  DataStore
	limits config.ImportConfig
}

func NewDataService(schema *csvio.Schema, store DataStore, limits config.ImportConfig) *DataService {
	if limits.BatchSize <= 0 {
		limits.BatchSize = 100
	}
	return &DataService{schema: schema, store: store, limits: limits}
}

func (s *DataService) Tables() []string {
	return s.schema.Names()
}

func (s *DataService) table(name string, forImport bool) (*csvio.TableSchema, error) {
	ts, ok := s.schema.Table(name)
	if !ok || (forImport && ts.ExportOnly) {
		return nil, apperrors.Invalid("table", fmt.Sprintf("%q cannot be imported or exported", name))
	}
	return ts, nil
}

func (s *DataService) parse(r io.Reader) (*csvio.Table, error) {
	if s.limits.MaxBytes > 0 {
		r = io.LimitReader(r, s.limits.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if s.limits.MaxBytes > 0 && int64(len(data)) > s.limits.MaxBytes {
		return nil, apperrors.Invalid("file", fmt.Sprintf("must be at most %d bytes", s.limits.MaxBytes))
	}

	table, err := csvio.Parse(strings.NewReader(string(data)), s.limits.MaxRows)
	switch {
	case errors.Is(err, csvio.ErrTooManyRows):
		return nil, apperrors.Invalid("file", fmt.Sprintf("must have at most %d rows", s.limits.MaxRows))
	case err != nil:
		return nil, apperrors.Invalid("file", err.Error())
	}
	return table, nil
}

// Preview разбирает файл и предлагает сопоставление колонок
func (s *DataService) Preview(ctx context.Context, tableName string, r io.Reader) (*models.ImportPreview, error) {
	ts, err := s.table(tableName, true)
	if err != nil {
		return nil, err
	}
	table, err := s.parse(r)
	if err != nil {
		return nil, err
	}

	rows := table.Rows
	if len(rows) > previewRows {
		rows = rows[:previewRows]
	}
	return &models.ImportPreview{
		Table:   tableName,
		Headers: table.Headers,
		Mapping: csvio.SuggestMapping(ts, table.Headers),
		Rows:    rows,
		Total:   len(table.Rows),
	}, nil
}

// Import вставляет строки CSV. Ошибки отдельных строк не прерывают импорт:
// строка пропускается и попадает в Errors.
func (s *DataService) Import(ctx context.Context, tableName string, r io.Reader, overrides csvio.Mapping) (*models.ImportResult, error) {
	ts, err := s.table(tableName, true)
	if err != nil {
		return nil, err
	}
	table, err := s.parse(r)
	if err != nil {
		return nil, err
	}

	mapping := csvio.SuggestMapping(ts, table.Headers).Merge(overrides)
	if err := mapping.Check(ts); err != nil {
		return nil, apperrors.Invalid("mapping", err.Error())
	}

	lookups := make(map[string]map[string]int64)
	for _, lt := range ts.Lookups() {
		index, err := s.store.NameIndex(ctx, lt, "name")
		if err != nil {
			return nil, err
		}
		lookups[lt] = index
	}
	resolve := func(table, name string) (int64, bool) {
		id, ok := lookups[table][strings.ToLower(strings.TrimSpace(name))]
		return id, ok
	}

	var existing map[string]int64
	if ts.Dedupe != "" {
		if existing, err = s.store.NameIndex(ctx, tableName, ts.Dedupe); err != nil {
			return nil, err
		}
	}
	seen := make(map[string]bool)

	result := &models.ImportResult{Table: tableName, Errors: []models.RowError{}}
	rows := make([]repository.ImportRow, 0, len(table.Rows))

	for i := range table.Rows {
		line := i + 1
		values, err := csvio.Coerce(ts, mapping.Apply(table.Record(i)), resolve)
		if err != nil {
			result.Errors = append(result.Errors, models.RowError{Row: line, Reason: err.Error()})
			continue
		}

		if ts.Dedupe != "" && values[ts.Dedupe] != nil {
			key := strings.ToLower(strings.TrimSpace(fmt.Sprint(values[ts.Dedupe])))
			if _, dup := existing[key]; dup || seen[key] {
				result.Errors = append(result.Errors, models.RowError{
					Row:    line,
					Reason: fmt.Sprintf("duplicate %s %q", ts.Dedupe, fmt.Sprint(values[ts.Dedupe])),
				})
				continue
			}
			seen[key] = true
		}

		rows = append(rows, repository.ImportRow{Line: line, Values: values})
	}

	if len(rows) > 0 {
		inserted, failures, err := s.store.InsertRows(ctx, tableName, ts.ColumnNames(), rows, s.limits.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("failed to import %s: %w", tableName, err)
		}
		result.Inserted = inserted
		for _, f := range failures {
			result.Errors = append(result.Errors, models.RowError{Row: f.Line, Reason: f.Err.Error()})
		}
	}

	sort.SliceStable(result.Errors, func(i, j int) bool { return result.Errors[i].Row < result.Errors[j].Row })
	result.Skipped = len(result.Errors)

	metrics.ImportRows.WithLabelValues(tableName, "inserted").Add(float64(result.Inserted))
	metrics.ImportRows.WithLabelValues(tableName, "skipped").Add(float64(result.Skipped))

	logger.WithContext(ctx).Info("CSV import finished",
		"table", tableName,
		"inserted", result.Inserted,
		"skipped", result.Skipped)

	return result, nil
}

// Export пишет всю таблицу в CSV: id и колонки схемы
func (s *DataService) Export(ctx context.Context, tableName string, w io.Writer) error {
	ts, err := s.table(tableName, false)
	if err != nil {
		return err
	}
	columns := ts.ExportColumns()
	rows, err := s.store.ExportRows(ctx, tableName, columns)
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", tableName, err)
	}
	return csvio.Write(w, columns, rows)
}

// CheckExportable проверяет имя таблицы до начала записи ответа
func (s *DataService) CheckExportable(tableName string) error {
	_, err := s.table(tableName, false)
	return err
}

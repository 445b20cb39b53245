// Package csvio reads and writes the CSV files used for bulk import and
// export, and turns raw cells into typed column values.
package csvio

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmpty       = errors.New("csv has no header row")
	ErrTooManyRows = errors.New("csv has too many rows")
)

// Table is a parsed CSV: trimmed headers and rows padded to header width.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Parse reads a CSV with a header row. A UTF-8 BOM is dropped, blank lines
// are skipped, short rows are padded with empty cells and cells beyond the
// header are ignored. maxRows <= 0 means no limit.
func Parse(r io.Reader, maxRows int) (*Table, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && string(bom) == "\xef\xbb\xbf" {
		br.Discard(3)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	table := &Table{Headers: make([]string, len(header))}
	for i, h := range header {
		table.Headers[i] = strings.TrimSpace(h)
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if blank(record) {
			continue
		}
		if maxRows > 0 && len(table.Rows) >= maxRows {
			return nil, fmt.Errorf("%w: limit is %d", ErrTooManyRows, maxRows)
		}

		row := make([]string, len(table.Headers))
		copy(row, record)
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Record returns row i keyed by header.
func (t *Table) Record(i int) map[string]string {
	rec := make(map[string]string, len(t.Headers))
	for j, h := range t.Headers {
		rec[h] = t.Rows[i][j]
	}
	return rec
}

// Write writes a header and rows, formatting values with FormatValue.
func Write(w io.Writer, columns []string, rows [][]any) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = FormatValue(row[i])
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// FormatValue renders a database value as a CSV cell. nil is an empty cell;
// times at midnight UTC are written as dates.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.UTC().Format(time.RFC3339)
	case json.RawMessage:
		return string(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

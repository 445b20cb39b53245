package csvio

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "showpro/internal/errors"
	"showpro/internal/validation"
)

// Resolver maps a display name in table to its id.
type Resolver func(table, name string) (int64, bool)

var dateLayouts = []string{time.DateOnly, "02/01/2006", "2/1/2006", "02.01.2006", time.RFC3339}

// Coerce converts one CSV record (already keyed by column name) into typed
// values. Empty cells become nil so the database default applies. All column
// problems are collected into one ValidationError.
func Coerce(ts *TableSchema, record map[string]string, resolve Resolver) (map[string]any, error) {
	values := make(map[string]any, len(ts.Columns))
	verr := apperrors.NewValidationError()

	for _, col := range ts.Columns {
		raw := strings.TrimSpace(record[col.Name])
		if raw == "" {
			if col.Required {
				verr.Add(col.Name, "is required")
			}
			values[col.Name] = nil
			continue
		}

		v, err := coerceCell(col, raw, resolve)
		if err != nil {
			verr.Add(col.Name, err.Error())
			continue
		}
		if col.Validate != "" {
			if err := validation.Var(col.Name, v, col.Validate); err != nil {
				var ve *apperrors.ValidationError
				if errors.As(err, &ve) {
					verr.Add(col.Name, ve.Fields[col.Name])
				} else {
					verr.Add(col.Name, err.Error())
				}
				continue
			}
		}
		values[col.Name] = v
	}

	if !verr.Empty() {
		return nil, verr
	}
	return values, nil
}

func coerceCell(col Column, raw string, resolve Resolver) (any, error) {
	if col.Lookup != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return id, nil
		}
		if resolve != nil {
			if id, ok := resolve(col.Lookup, raw); ok {
				return id, nil
			}
		}
		return nil, fmt.Errorf("no %s named %q", strings.TrimSuffix(col.Lookup, "s"), raw)
	}

	switch col.Type {
	case TypeInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("must be a whole number")
		}
		return n, nil
	case TypeNumber:
		clean := strings.NewReplacer(",", "", "£", "", "$", "", "€", "").Replace(raw)
		f, err := strconv.ParseFloat(strings.TrimSpace(clean), 64)
		if err != nil {
			return nil, fmt.Errorf("must be a number")
		}
		return f, nil
	case TypeBool:
		return ParseBool(raw)
	case TypeDate:
		d, err := ParseDate(raw)
		if err != nil {
			return nil, err
		}
		return d.Format(time.DateOnly), nil
	case TypeJSON:
		if !json.Valid([]byte(raw)) {
			return nil, fmt.Errorf("must be valid JSON")
		}
		return raw, nil
	default:
		return raw, nil
	}
}

// ParseBool accepts the spellings spreadsheets commonly produce.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "t", "yes", "y", "on", "x":
		return true, nil
	case "0", "false", "f", "no", "n", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("must be yes/no")
}

// ParseDate accepts ISO dates first, then day-first formats.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("must be a date (YYYY-MM-DD)")
}

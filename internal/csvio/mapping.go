package csvio

import (
	"fmt"
	"strings"
)

// Mapping maps a CSV header to a schema column.
type Mapping map[string]string

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(h)
	return strings.Trim(h, "_")
}

// SuggestMapping matches headers to columns by name, then by alias. Headers
// that match nothing are left out; each column is used at most once.
func SuggestMapping(ts *TableSchema, headers []string) Mapping {
	byName := make(map[string]string)
	for _, col := range ts.Columns {
		byName[col.Name] = col.Name
	}
	byAlias := make(map[string]string)
	for _, col := range ts.Columns {
		for _, a := range col.Aliases {
			if _, ok := byAlias[normalizeHeader(a)]; !ok {
				byAlias[normalizeHeader(a)] = col.Name
			}
		}
	}

	m := make(Mapping)
	used := make(map[string]bool)
	// точные совпадения важнее алиасов
	for _, h := range headers {
		if col, ok := byName[normalizeHeader(h)]; ok && !used[col] {
			m[h] = col
			used[col] = true
		}
	}
	for _, h := range headers {
		if _, done := m[h]; done {
			continue
		}
		if col, ok := byAlias[normalizeHeader(h)]; ok && !used[col] {
			m[h] = col
			used[col] = true
		}
	}
	return m
}

// ParseMapping parses "Header=column,Other=column2" overrides.
func ParseMapping(s string) (Mapping, error) {
	m := make(Mapping)
	if strings.TrimSpace(s) == "" {
		return m, nil
	}
	for _, pair := range strings.Split(s, ",") {
		header, col, ok := strings.Cut(pair, "=")
		header, col = strings.TrimSpace(header), strings.TrimSpace(col)
		if !ok || header == "" || col == "" {
			return nil, fmt.Errorf("invalid mapping %q, want header=column", pair)
		}
		m[header] = col
	}
	return m, nil
}

// Merge returns m with overrides applied on top.
func (m Mapping) Merge(overrides Mapping) Mapping {
	out := make(Mapping, len(m)+len(overrides))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range overrides {
		for h, c := range out {
			if c == v && h != k {
				delete(out, h)
			}
		}
		out[k] = v
	}
	return out
}

// Check verifies that every target is a schema column and that required
// columns are covered.
func (m Mapping) Check(ts *TableSchema) error {
	covered := make(map[string]bool)
	for header, col := range m {
		if _, ok := ts.Column(col); !ok {
			return fmt.Errorf("header %q maps to unknown column %s", header, col)
		}
		covered[col] = true
	}
	var missing []string
	for _, col := range ts.Columns {
		if col.Required && !covered[col.Name] {
			missing = append(missing, col.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required columns not mapped: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Apply turns a header-keyed record into a column-keyed one.
func (m Mapping) Apply(record map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for header, col := range m {
		out[col] = record[header]
	}
	return out
}

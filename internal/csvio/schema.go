package csvio

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var defaultSchema []byte

type Type string

const (
	TypeText   Type = "text"
	TypeInt    Type = "int"
	TypeNumber Type = "number"
	TypeBool   Type = "bool"
	TypeDate   Type = "date"
	TypeJSON   Type = "json"
)

type Column struct {
	Name     string   `yaml:"name"`
	Type     Type     `yaml:"type"`
	Required bool     `yaml:"required"`
	Validate string   `yaml:"validate"`
	Lookup   string   `yaml:"lookup"`
	Aliases  []string `yaml:"aliases"`
}

type TableSchema struct {
	Name       string   `yaml:"-"`
	Dedupe     string   `yaml:"dedupe"`
	ExportOnly bool     `yaml:"export_only"`
	Columns    []Column `yaml:"columns"`
}

// Schema maps table names to their import/export columns. Only tables listed
// here can be imported or exported.
type Schema struct {
	Tables map[string]*TableSchema `yaml:"tables"`
}

// DefaultSchema returns the embedded schema.
func DefaultSchema() (*Schema, error) {
	return ParseSchema(defaultSchema)
}

// LoadSchema reads path, or the embedded schema when path is empty.
func LoadSchema(path string) (*Schema, error) {
	if path == "" {
		return DefaultSchema()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import schema: %w", err)
	}
	return ParseSchema(data)
}

func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse import schema: %w", err)
	}
	if err := s.Normalize(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Normalize fills defaults and checks types, lookups and dedupe columns.
func (s *Schema) Normalize() error {
	if len(s.Tables) == 0 {
		return fmt.Errorf("import schema has no tables")
	}
	for name, ts := range s.Tables {
		if ts == nil || len(ts.Columns) == 0 {
			return fmt.Errorf("table %s has no columns", name)
		}
		ts.Name = name
		seen := make(map[string]bool, len(ts.Columns))
		for i := range ts.Columns {
			col := &ts.Columns[i]
			col.Name = strings.TrimSpace(col.Name)
			if col.Name == "" {
				return fmt.Errorf("table %s: column %d has no name", name, i+1)
			}
			if seen[col.Name] {
				return fmt.Errorf("table %s: duplicate column %s", name, col.Name)
			}
			seen[col.Name] = true

			col.Type = Type(strings.ToLower(string(col.Type)))
			switch col.Type {
			case "":
				col.Type = TypeText
			case TypeText, TypeInt, TypeNumber, TypeBool, TypeDate, TypeJSON:
			default:
				return fmt.Errorf("table %s: column %s has unknown type %q", name, col.Name, col.Type)
			}
			if col.Lookup != "" {
				if _, ok := s.Tables[col.Lookup]; !ok {
					return fmt.Errorf("table %s: column %s looks up unknown table %s", name, col.Name, col.Lookup)
				}
			}
		}
		if ts.Dedupe != "" && !seen[ts.Dedupe] {
			return fmt.Errorf("table %s: dedupe column %s is not in the schema", name, ts.Dedupe)
		}
	}
	return nil
}

// Table returns the schema of a whitelisted table.
func (s *Schema) Table(name string) (*TableSchema, bool) {
	ts, ok := s.Tables[name]
	return ts, ok
}

func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (ts *TableSchema) Column(name string) (Column, bool) {
	i := slices.IndexFunc(ts.Columns, func(c Column) bool { return c.Name == name })
	if i < 0 {
		return Column{}, false
	}
	return ts.Columns[i], true
}

func (ts *TableSchema) ColumnNames() []string {
	names := make([]string, len(ts.Columns))
	for i, c := range ts.Columns {
		names[i] = c.Name
	}
	return names
}

// ExportColumns is id followed by the schema columns.
func (ts *TableSchema) ExportColumns() []string {
	return append([]string{"id"}, ts.ColumnNames()...)
}

// Lookups returns the tables referenced by lookup columns.
func (ts *TableSchema) Lookups() []string {
	var tables []string
	for _, c := range ts.Columns {
		if c.Lookup != "" && !slices.Contains(tables, c.Lookup) {
			tables = append(tables, c.Lookup)
		}
	}
	return tables
}

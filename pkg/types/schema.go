// Package types defines the relation-level data model shared by the scan
// planner: column types, schemas, partition values, file entries, and
// bucketing specifications.
package types

import (
	"fmt"
	"strings"
)

// DataType is the closed set of column types a relation can carry.
type DataType int

const (
	TypeUnknown DataType = iota
	TypeBoolean
	TypeInt32
	TypeInt64
	TypeFloat64
	TypeString
	TypeBinary
	TypeTimestamp
	TypeStruct
	TypeArray
	TypeMap
)

// String returns the lowercase name of the data type.
func (t DataType) String() string {
	switch t {
	case TypeBoolean:
		return "boolean"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	case TypeString:
		return "string"
	case TypeBinary:
		return "binary"
	case TypeTimestamp:
		return "timestamp"
	case TypeStruct:
		return "struct"
	case TypeArray:
		return "array"
	case TypeMap:
		return "map"
	default:
		return "unknown"
	}
}

// Atomic reports whether the type is a scalar type. Nested types
// (struct, array, map) are not cache-eligible in the optimized readers.
func (t DataType) Atomic() bool {
	switch t {
	case TypeBoolean, TypeInt32, TypeInt64, TypeFloat64, TypeString, TypeBinary, TypeTimestamp:
		return true
	default:
		return false
	}
}

// ParseDataType parses a type name as stored in the catalog.
func ParseDataType(s string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boolean", "bool":
		return TypeBoolean, nil
	case "int32", "int":
		return TypeInt32, nil
	case "int64", "long", "bigint":
		return TypeInt64, nil
	case "float64", "double":
		return TypeFloat64, nil
	case "string", "text":
		return TypeString, nil
	case "binary", "blob":
		return TypeBinary, nil
	case "timestamp":
		return TypeTimestamp, nil
	case "struct":
		return TypeStruct, nil
	case "array":
		return TypeArray, nil
	case "map":
		return TypeMap, nil
	default:
		return TypeUnknown, fmt.Errorf("types: unknown data type %q", s)
	}
}

// Column is a resolved column identity within one relation.
// Identity is the normalized (lowercased) name; ID is the ordinal position
// in the relation's combined output (data columns then partition columns).
type Column struct {
	// ID is the relation-local ordinal, -1 for unresolved references.
	ID int `json:"id"`

	// Name is the column name in its original case.
	Name string `json:"name"`

	// Type is the column's data type.
	Type DataType `json:"type"`
}

// Key returns the normalized identity key for the column.
func (c Column) Key() string {
	return strings.ToLower(c.Name)
}

// Resolved reports whether the column has been bound to a relation output.
func (c Column) Resolved() bool {
	return c.ID >= 0
}

// Unresolved returns a column reference that has not been bound yet.
func Unresolved(name string) Column {
	return Column{ID: -1, Name: name}
}

// Schema is an ordered list of columns.
type Schema struct {
	Columns []Column `json:"columns"`
}

// NewSchema builds a schema and assigns sequential column IDs.
func NewSchema(cols ...Column) Schema {
	out := make([]Column, len(cols))
	for i, c := range cols {
		c.ID = i
		out[i] = c
	}
	return Schema{Columns: out}
}

// Len returns the number of columns in the schema.
func (s Schema) Len() int {
	return len(s.Columns)
}

// Resolve looks up a column by case-insensitive name.
func (s Schema) Resolve(name string) (Column, bool) {
	key := strings.ToLower(name)
	for _, c := range s.Columns {
		if c.Key() == key {
			return c, true
		}
	}
	return Column{}, false
}

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Concat returns a new schema with the columns of both schemas in order,
// re-assigning sequential IDs so the result is a valid relation output.
func Concat(a, b Schema) Schema {
	cols := make([]Column, 0, len(a.Columns)+len(b.Columns))
	cols = append(cols, a.Columns...)
	cols = append(cols, b.Columns...)
	return NewSchema(cols...)
}

// Project returns a new schema holding the named columns in the given
// order. Lookup is case-insensitive; an unknown name fails.
func (s Schema) Project(names []string) (Schema, error) {
	cols := make([]Column, len(names))
	for i, name := range names {
		col, ok := s.Resolve(name)
		if !ok {
			return Schema{}, fmt.Errorf("types: column %q not found in schema [%s]", name, s)
		}
		cols[i] = col
	}
	return NewSchema(cols...), nil
}

// ColumnSet returns the set of columns in the schema.
func (s Schema) ColumnSet() *ColumnSet {
	set := NewColumnSet()
	for _, c := range s.Columns {
		set.Add(c)
	}
	return set
}

// AllAtomic reports whether every column in the schema has an atomic type.
func (s Schema) AllAtomic() bool {
	for _, c := range s.Columns {
		if !c.Type.Atomic() {
			return false
		}
	}
	return true
}

// String returns a compact "name:type, ..." rendering of the schema.
func (s Schema) String() string {
	var sb strings.Builder
	for i, c := range s.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.Name)
		sb.WriteByte(':')
		sb.WriteString(c.Type.String())
	}
	return sb.String()
}

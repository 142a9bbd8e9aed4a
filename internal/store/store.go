// Package store defines the row-based remote store contract shared by the
// catalog and order packages. Each table is typed; there is no transaction
// primitive spanning tables.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned by SelectOne, Update and Delete when no row matches.
	ErrNotFound = errors.New("row not found")
	// ErrMalformedRow is returned when a row written to or read from the backend fails validation.
	ErrMalformedRow = errors.New("malformed row")
	// ErrDuplicate is returned by Insert when a primary key or unique column is already taken.
	ErrDuplicate = errors.New("duplicate key")
)

// Row is implemented by every record type stored in a table.
type Row interface {
	TableName() string
	PrimaryKey() string
	// Field returns the value of a column for in-memory filtering and ordering.
	Field(column string) (any, bool)
	Validate() error
}

// InsertPreparer is implemented by rows that assign ids and timestamps before insert.
type InsertPreparer interface {
	PrepareInsert(now time.Time)
}

// UpdatePreparer is implemented by rows that track modification time.
type UpdatePreparer interface {
	PrepareUpdate(now time.Time)
}

// Patch is a column -> value set applied by Update.
type Patch map[string]any

// Table is the per-entity remote store contract.
type Table[T Row] interface {
	Select(ctx context.Context, q Query) ([]T, error)
	SelectOne(ctx context.Context, q Query) (T, error)
	Insert(ctx context.Context, rows ...T) ([]T, error)
	Update(ctx context.Context, id string, patch Patch) (T, error)
	Delete(ctx context.Context, id string) error
}

// Operator is a filter comparison.
type Operator int

const (
	OpEq Operator = iota
	OpIn
	OpILike
	OpAny
)

// Filter is one condition of a query. OpAny matches when any of Sub matches.
type Filter struct {
	Column   string
	Operator Operator
	Value    any
	Sub      []Filter
}

// Eq matches rows whose column equals value.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Operator: OpEq, Value: value}
}

// In matches rows whose column is one of values. An empty set matches nothing.
func In(column string, values ...string) Filter {
	return Filter{Column: column, Operator: OpIn, Value: values}
}

// ILike matches rows whose column contains substr, ignoring case.
func ILike(column, substr string) Filter {
	return Filter{Column: column, Operator: OpILike, Value: substr}
}

// Any matches rows satisfying at least one of filters.
func Any(filters ...Filter) Filter {
	return Filter{Operator: OpAny, Sub: filters}
}

// Query selects and orders rows. The zero Query selects everything.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Where starts a query with the given filters.
func Where(filters ...Filter) Query {
	return Query{Filters: filters}
}

// All selects every row.
func All() Query {
	return Query{}
}

// ByID selects the row with the given primary key.
func ByID(id string) Query {
	return Where(Eq("id", id))
}

// Order returns a copy of q sorted by column.
func (q Query) Order(column string, desc bool) Query {
	q.OrderBy = column
	q.Desc = desc
	return q
}

// Validate rejects columns that are not plain identifiers.
func (q Query) Validate() error {
	if q.OrderBy != "" && !isIdentifier(q.OrderBy) {
		return fmt.Errorf("invalid order column %q", q.OrderBy)
	}
	return validateFilters(q.Filters)
}

func validateFilters(filters []Filter) error {
	for _, f := range filters {
		if f.Operator == OpAny {
			if len(f.Sub) == 0 {
				return fmt.Errorf("empty any-filter")
			}
			if err := validateFilters(f.Sub); err != nil {
				return err
			}
			continue
		}
		if !isIdentifier(f.Column) {
			return fmt.Errorf("invalid filter column %q", f.Column)
		}
	}
	return nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != '_' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// Malformed wraps a validation failure of a row bound for or read from table.
func Malformed(table, id string, err error) error {
	return fmt.Errorf("%w: %s %q: %v", ErrMalformedRow, table, id, err)
}

// ValidateRows checks every row and reports the first malformed one.
func ValidateRows[T Row](rows []T) error {
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return Malformed(row.TableName(), row.PrimaryKey(), err)
		}
	}
	return nil
}

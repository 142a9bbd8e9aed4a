package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Operation names a table call, used for fault injection and call counting.
type Operation string

const (
	OperationSelect Operation = "select"
	OperationInsert Operation = "insert"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// MemoryTable is an in-process Table used by STORE_DRIVER=memory and by tests.
// Update works through the row's JSON encoding, so every column must have a
// matching JSON field.
type MemoryTable[T Row] struct {
	mu     sync.Mutex
	rows   []T
	faults map[Operation]error
	calls  map[Operation]int
	unique []string
	now    func() time.Time
}

// NewMemoryTable returns an empty table.
func NewMemoryTable[T Row]() *MemoryTable[T] {
	return &MemoryTable[T]{
		faults: make(map[Operation]error),
		calls:  make(map[Operation]int),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Seed stores rows as-is, skipping insert preparation and validation.
func (t *MemoryTable[T]) Seed(rows ...T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, rows...)
}

// Unique makes Insert reject rows whose value in any of columns is already
// stored, the way a unique index does.
func (t *MemoryTable[T]) Unique(columns ...string) *MemoryTable[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unique = append(t.unique, columns...)
	return t
}

// Rows returns a copy of every stored row in insertion order.
func (t *MemoryTable[T]) Rows() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]T(nil), t.rows...)
}

// FailOn makes every subsequent op return err. A nil err clears the fault.
func (t *MemoryTable[T]) FailOn(op Operation, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err == nil {
		delete(t.faults, op)
		return
	}
	t.faults[op] = err
}

// Calls reports how many times op was invoked.
func (t *MemoryTable[T]) Calls(op Operation) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[op]
}

func (t *MemoryTable[T]) begin(ctx context.Context, op Operation) error {
	t.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.faults[op]
}

func (t *MemoryTable[T]) Select(ctx context.Context, q Query) ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.begin(ctx, OperationSelect); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	out := make([]T, 0)
	for _, row := range t.rows {
		if matchAll(row, q.Filters) {
			out = append(out, row)
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			a, _ := out[i].Field(q.OrderBy)
			b, _ := out[j].Field(q.OrderBy)
			if q.Desc {
				return compare(b, a) < 0
			}
			return compare(a, b) < 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}

	if err := ValidateRows(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *MemoryTable[T]) SelectOne(ctx context.Context, q Query) (T, error) {
	var zero T
	q.Limit = 1
	rows, err := t.Select(ctx, q)
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, ErrNotFound
	}
	return rows[0], nil
}

func (t *MemoryTable[T]) Insert(ctx context.Context, rows ...T) ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.begin(ctx, OperationInsert); err != nil {
		return nil, err
	}

	now := t.now()
	prepared := make([]T, 0, len(rows))
	for i := range rows {
		row := rows[i]
		if p, ok := any(&row).(InsertPreparer); ok {
			p.PrepareInsert(now)
		}
		if err := row.Validate(); err != nil {
			return nil, Malformed(row.TableName(), row.PrimaryKey(), err)
		}
		if err := t.conflict(row, prepared); err != nil {
			return nil, err
		}
		prepared = append(prepared, row)
	}

	t.rows = append(t.rows, prepared...)
	return append([]T(nil), prepared...), nil
}

// conflict checks row against stored rows and the rows earlier in its batch.
func (t *MemoryTable[T]) conflict(row T, batch []T) error {
	for _, others := range [][]T{t.rows, batch} {
		for _, other := range others {
			if other.PrimaryKey() == row.PrimaryKey() {
				return fmt.Errorf("insert into %s: %w %q", row.TableName(), ErrDuplicate, row.PrimaryKey())
			}
			for _, column := range t.unique {
				a, _ := row.Field(column)
				b, _ := other.Field(column)
				if a = deref(a); a != nil && equal(a, deref(b)) {
					return fmt.Errorf("insert into %s: %w on %s", row.TableName(), ErrDuplicate, column)
				}
			}
		}
	}
	return nil
}

func (t *MemoryTable[T]) Update(ctx context.Context, id string, patch Patch) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	if err := t.begin(ctx, OperationUpdate); err != nil {
		return zero, err
	}

	for i, row := range t.rows {
		if row.PrimaryKey() != id {
			continue
		}
		updated, err := applyPatch(row, patch)
		if err != nil {
			return zero, err
		}
		if p, ok := any(&updated).(UpdatePreparer); ok {
			p.PrepareUpdate(t.now())
		}
		if err := updated.Validate(); err != nil {
			return zero, Malformed(updated.TableName(), id, err)
		}
		t.rows[i] = updated
		return updated, nil
	}
	return zero, ErrNotFound
}

func (t *MemoryTable[T]) Delete(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.begin(ctx, OperationDelete); err != nil {
		return err
	}

	for i, row := range t.rows {
		if row.PrimaryKey() == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func applyPatch[T Row](row T, patch Patch) (T, error) {
	var out T

	raw, err := json.Marshal(row)
	if err != nil {
		return out, err
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return out, err
	}
	for column, value := range patch {
		if _, ok := fields[column]; !ok {
			return out, fmt.Errorf("update %s: unknown column %q", row.TableName(), column)
		}
		fields[column] = value
	}
	raw, err = json.Marshal(fields)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("update %s: %w", row.TableName(), err)
	}
	return out, nil
}

func matchAll(row Row, filters []Filter) bool {
	for _, f := range filters {
		if !match(row, f) {
			return false
		}
	}
	return true
}

func match(row Row, f Filter) bool {
	if f.Operator == OpAny {
		for _, sub := range f.Sub {
			if match(row, sub) {
				return true
			}
		}
		return false
	}

	v, ok := row.Field(f.Column)
	if !ok {
		return false
	}
	v = deref(v)

	switch f.Operator {
	case OpEq:
		return equal(v, deref(f.Value))
	case OpIn:
		s, ok := v.(string)
		if !ok {
			return false
		}
		for _, candidate := range f.Value.([]string) {
			if candidate == s {
				return true
			}
		}
		return false
	case OpILike:
		s, ok := v.(string)
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(f.Value.(string)))
	}
	return false
}

func deref(v any) any {
	switch p := v.(type) {
	case *string:
		if p == nil {
			return nil
		}
		return *p
	case *time.Time:
		if p == nil {
			return nil
		}
		return *p
	}
	return v
}

func equal(a, b any) bool {
	if da, ok := a.(decimal.Decimal); ok {
		if db, ok := b.(decimal.Decimal); ok {
			return da.Equal(db)
		}
		return false
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
		return false
	}
	return a == b
}

// compare orders two column values; nil sorts first.
func compare(a, b any) int {
	a, b = deref(a), deref(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case decimal.Decimal:
		if y, ok := b.(decimal.Decimal); ok {
			return x.Cmp(y)
		}
	case int:
		if y, ok := b.(int); ok {
			return x - y
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	return 0
}

// internal/infrastructure/database/postgres/table.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/your-org/storefront-backend/internal/store"
	"gorm.io/gorm"
)

// Table implements store.Table on top of GORM
type Table[T store.Row] struct {
	db *gorm.DB
}

// NewTable creates a GORM-backed table for rows of type T
func NewTable[T store.Row](db *gorm.DB) *Table[T] {
	return &Table[T]{db: db}
}

// Select retrieves every row matching the query
func (t *Table[T]) Select(ctx context.Context, q store.Query) ([]T, error) {
	query, err := t.build(ctx, q)
	if err != nil {
		return nil, err
	}

	var rows []T
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", t.tableName(), err)
	}

	if err := store.ValidateRows(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SelectOne retrieves a single row, returning store.ErrNotFound when none match
func (t *Table[T]) SelectOne(ctx context.Context, q store.Query) (T, error) {
	var row T

	query, err := t.build(ctx, q)
	if err != nil {
		return row, err
	}

	if err := query.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return row, store.ErrNotFound
		}
		return row, fmt.Errorf("failed to select from %s: %w", t.tableName(), err)
	}

	if err := row.Validate(); err != nil {
		return row, store.Malformed(t.tableName(), row.PrimaryKey(), err)
	}
	return row, nil
}

// Insert writes all rows in a single statement
func (t *Table[T]) Insert(ctx context.Context, rows ...T) ([]T, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	batch := make([]T, len(rows))
	for i := range rows {
		batch[i] = rows[i]
		if p, ok := any(&batch[i]).(store.InsertPreparer); ok {
			p.PrepareInsert(now)
		}
		if err := batch[i].Validate(); err != nil {
			return nil, store.Malformed(t.tableName(), batch[i].PrimaryKey(), err)
		}
	}

	if err := t.db.WithContext(ctx).Create(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to insert into %s: %w", t.tableName(), store.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to insert into %s: %w", t.tableName(), err)
	}
	return batch, nil
}

// Update applies a patch to the row with the given id and returns the stored row
func (t *Table[T]) Update(ctx context.Context, id string, patch store.Patch) (T, error) {
	var zero T

	result := t.db.WithContext(ctx).Model(&zero).Where("id = ?", id).Updates(map[string]interface{}(patch))
	if result.Error != nil {
		return zero, fmt.Errorf("failed to update %s: %w", t.tableName(), result.Error)
	}
	if result.RowsAffected == 0 {
		return zero, store.ErrNotFound
	}

	return t.SelectOne(ctx, store.ByID(id))
}

// Delete removes the row with the given id
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	var zero T

	result := t.db.WithContext(ctx).Where("id = ?", id).Delete(&zero)
	if result.Error != nil {
		return fmt.Errorf("failed to delete from %s: %w", t.tableName(), result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *Table[T]) tableName() string {
	var zero T
	return zero.TableName()
}

func (t *Table[T]) build(ctx context.Context, q store.Query) (*gorm.DB, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var zero T
	query := t.db.WithContext(ctx).Model(&zero)

	for _, f := range q.Filters {
		clause, args := buildClause(f)
		query = query.Where(clause, args...)
	}

	if q.OrderBy != "" {
		direction := "ASC"
		if q.Desc {
			direction = "DESC"
		}
		query = query.Order(fmt.Sprintf("%s %s", q.OrderBy, direction))
	}

	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	return query, nil
}

// buildClause renders a filter as a SQL condition with positional arguments.
// Columns are checked by Query.Validate before reaching here.
func buildClause(f store.Filter) (string, []interface{}) {
	switch f.Operator {
	case store.OpIn:
		return fmt.Sprintf("%s IN ?", f.Column), []interface{}{f.Value}
	case store.OpILike:
		pattern := "%" + escapeLike(strings.ToLower(f.Value.(string))) + "%"
		return fmt.Sprintf("LOWER(%s) LIKE ?", f.Column), []interface{}{pattern}
	case store.OpAny:
		parts := make([]string, 0, len(f.Sub))
		var args []interface{}
		for _, sub := range f.Sub {
			clause, subArgs := buildClause(sub)
			parts = append(parts, clause)
			args = append(args, subArgs...)
		}
		return "(" + strings.Join(parts, " OR ") + ")", args
	default:
		return fmt.Sprintf("%s = ?", f.Column), []interface{}{f.Value}
	}
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

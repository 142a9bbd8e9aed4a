package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/storefront-backend/internal/store"
)

func TestBuildClause(t *testing.T) {
	tests := []struct {
		name   string
		filter store.Filter
		clause string
		args   []interface{}
	}{
		{
			name:   "equality",
			filter: store.Eq("category", "beans"),
			clause: "category = ?",
			args:   []interface{}{"beans"},
		},
		{
			name:   "in set",
			filter: store.In("order_id", "a", "b"),
			clause: "order_id IN ?",
			args:   []interface{}{[]string{"a", "b"}},
		},
		{
			name:   "substring escapes wildcards",
			filter: store.ILike("name", "100%_Arabica"),
			clause: "LOWER(name) LIKE ?",
			args:   []interface{}{`%100\%\_arabica%`},
		},
		{
			name:   "any group",
			filter: store.Any(store.ILike("name", "blend"), store.ILike("description", "blend")),
			clause: "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)",
			args:   []interface{}{"%blend%", "%blend%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args := buildClause(tt.filter)
			assert.Equal(t, tt.clause, clause)
			assert.Equal(t, tt.args, args)
		})
	}
}

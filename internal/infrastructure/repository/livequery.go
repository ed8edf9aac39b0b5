package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/frankincense-labs/cx-management/internal/application/livequery"
)

// fieldColumns maps live query field names onto table columns.
var fieldColumns = map[string]string{
	livequery.FieldID:        "id",
	livequery.FieldUserID:    "user_id",
	livequery.FieldTicketID:  "ticket_id",
	livequery.FieldCreatedAt: "created_at",
}

// scopeQuery narrows tx to q. Queries without an order are left unsorted.
func scopeQuery(tx *gorm.DB, q livequery.Query, want livequery.Collection) (*gorm.DB, error) {
	if q.Collection != want {
		return nil, fmt.Errorf("query on %q cannot be served by the %s source", q.Collection, want)
	}
	if q.Filter != nil {
		col, ok := fieldColumns[q.Filter.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported filter field %q", q.Filter.Field)
		}
		tx = tx.Where(col+" = ?", q.Filter.Value)
	}
	if q.OrderBy != "" {
		col, ok := fieldColumns[q.OrderBy]
		if !ok {
			return nil, fmt.Errorf("unsupported order field %q", q.OrderBy)
		}
		dir := "ASC"
		if q.Direction == livequery.Descending {
			dir = "DESC"
		}
		tx = tx.Order(col + " " + dir).Order("id " + dir)
	}
	return tx, nil
}

func notify(ctx context.Context, n livequery.Notifier, change livequery.Change) {
	if n != nil {
		n.Notify(ctx, change)
	}
}

// Package livequery keeps consumers continuously up to date with filtered,
// ordered views of the portal's collections. A subscription delivers the
// full matching set once and again after every change that may affect it.
package livequery

import (
	"fmt"
	"sort"
	"time"
)

// Collection names a logical collection of the backing store.
type Collection string

const (
	CollectionFeedback      Collection = "feedback"
	CollectionTickets       Collection = "tickets"
	CollectionTicketReplies Collection = "ticketReplies"
)

// Logical field names usable in filters and sort keys.
const (
	FieldID        = "id"
	FieldUserID    = "userId"
	FieldTicketID  = "ticketId"
	FieldCreatedAt = "createdAt"
)

type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Equality restricts a query to documents whose field equals value.
type Equality struct {
	Field string
	Value string
}

// Query selects documents of one collection. A query without OrderBy is
// delivered unsorted.
type Query struct {
	Collection Collection
	Filter     *Equality
	OrderBy    string
	Direction  Direction
}

// From starts an unfiltered, unsorted query.
func From(c Collection) Query {
	return Query{Collection: c}
}

// Where returns a copy of q filtered on field == value.
func (q Query) Where(field, value string) Query {
	q.Filter = &Equality{Field: field, Value: value}
	return q
}

// Sorted returns a copy of q ordered by field.
func (q Query) Sorted(field string, dir Direction) Query {
	q.OrderBy = field
	q.Direction = dir
	return q
}

func (q Query) String() string {
	s := string(q.Collection)
	if q.Filter != nil {
		s += fmt.Sprintf("[%s==%s]", q.Filter.Field, q.Filter.Value)
	}
	if q.OrderBy != "" {
		dir := "asc"
		if q.Direction == Descending {
			dir = "desc"
		}
		s += fmt.Sprintf(" order by %s %s", q.OrderBy, dir)
	}
	return s
}

// ChangeKind describes what happened to a document.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeRemoved  ChangeKind = "removed"
)

// Change reports a committed write to one document. Fields carries the
// document's filterable field values so unrelated subscriptions can skip it.
type Change struct {
	Collection Collection        `json:"collection"`
	DocumentID string            `json:"documentId"`
	Kind       ChangeKind        `json:"kind"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// Matches reports whether the change may alter q's result set. A change
// that does not carry the filtered field is assumed to match.
func (q Query) Matches(c Change) bool {
	if c.Collection != q.Collection {
		return false
	}
	if q.Filter == nil {
		return true
	}
	if q.Filter.Field == FieldID {
		return c.DocumentID == q.Filter.Value
	}
	v, ok := c.Fields[q.Filter.Field]
	return !ok || v == q.Filter.Value
}

// Timestamped is implemented by every record the layer delivers.
type Timestamped interface {
	CreatedAt() time.Time
}

// SortNewestFirst orders items by creation time, newest first, in place.
func SortNewestFirst[T Timestamped](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt().After(items[j].CreatedAt())
	})
}

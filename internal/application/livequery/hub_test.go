package livequery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankincense-labs/cx-management/internal/shared/testutil"
)

type note struct {
	id      string
	userID  string
	created time.Time
}

func (n note) CreatedAt() time.Time { return n.created }

type memorySource struct {
	mu    sync.Mutex
	notes []note
	err   error
	calls int
}

func (s *memorySource) Fetch(_ context.Context, q Query) ([]note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]note, 0, len(s.notes))
	for _, n := range s.notes {
		if q.Filter != nil && q.Filter.Field == FieldUserID && n.userID != q.Filter.Value {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *memorySource) add(n note) {
	s.mu.Lock()
	s.notes = append(s.notes, n)
	s.mu.Unlock()
}

func (s *memorySource) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func collect(t *testing.T) (func(Snapshot[note]), <-chan Snapshot[note]) {
	t.Helper()
	ch := make(chan Snapshot[note], 16)
	return func(s Snapshot[note]) { ch <- s }, ch
}

func next(t *testing.T, ch <-chan Snapshot[note]) Snapshot[note] {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot[note]{}
	}
}

func waitForLen(t *testing.T, ch <-chan Snapshot[note], n int) Snapshot[note] {
	t.Helper()
	for {
		s := next(t, ch)
		require.NoError(t, s.Err)
		if len(s.Items) == n {
			return s
		}
	}
}

func changeFor(n note) Change {
	return Change{
		Collection: CollectionFeedback,
		DocumentID: n.id,
		Kind:       ChangeAdded,
		Fields:     map[string]string{FieldUserID: n.userID},
	}
}

func TestWatch_DeliversInitialSetThenUpdates(t *testing.T) {
	hub := NewHub(testutil.NewMockLogger())
	defer hub.Close()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	src := &memorySource{notes: []note{{id: "a", userID: "u1", created: base}}}

	cb, ch := collect(t)
	dispose := Watch[note](hub, From(CollectionFeedback), src, cb)
	defer dispose()

	first := next(t, ch)
	require.NoError(t, first.Err)
	assert.Len(t, first.Items, 1)
	assert.Equal(t, uint64(1), first.Version)

	added := note{id: "b", userID: "u2", created: base.Add(time.Hour)}
	src.add(added)
	hub.Notify(context.Background(), changeFor(added))

	second := waitForLen(t, ch, 2)
	assert.Greater(t, second.Version, first.Version)
}

func TestWatch_FilteredSubscriptionIgnoresOtherOwners(t *testing.T) {
	hub := NewHub(testutil.NewMockLogger())
	defer hub.Close()

	src := &memorySource{}
	q := From(CollectionFeedback).Where(FieldUserID, "u1")

	cb, ch := collect(t)
	dispose := Watch[note](hub, q, src, cb)
	defer dispose()

	assert.Empty(t, next(t, ch).Items)

	other := note{id: "x", userID: "u2", created: time.Now()}
	src.add(other)
	hub.Notify(context.Background(), changeFor(other))

	mine := note{id: "y", userID: "u1", created: time.Now()}
	src.add(mine)
	hub.Notify(context.Background(), changeFor(mine))

	s := waitForLen(t, ch, 1)
	assert.Equal(t, "y", s.Items[0].id)
}

func TestWatch_SourceErrorIsTerminal(t *testing.T) {
	hub := NewHub(testutil.NewMockLogger())
	defer hub.Close()

	src := &memorySource{}
	cb, ch := collect(t)
	Watch[note](hub, From(CollectionFeedback), src, cb)
	next(t, ch)

	boom := errors.New("permission denied")
	src.fail(boom)
	hub.Notify(context.Background(), Change{Collection: CollectionFeedback, DocumentID: "z"})

	s := next(t, ch)
	assert.True(t, s.Terminal())
	assert.ErrorIs(t, s.Err, boom)

	assert.Eventually(t, func() bool { return hub.ActiveSubscriptions() == 0 }, time.Second, 10*time.Millisecond)
}

func TestWatch_DisposeIsIdempotentAndStopsDelivery(t *testing.T) {
	hub := NewHub(testutil.NewMockLogger())
	defer hub.Close()

	src := &memorySource{}
	cb, ch := collect(t)
	dispose := Watch[note](hub, From(CollectionFeedback), src, cb)
	next(t, ch)

	dispose()
	dispose()
	assert.Equal(t, 0, hub.ActiveSubscriptions())

	src.add(note{id: "late", created: time.Now()})
	hub.Notify(context.Background(), Change{Collection: CollectionFeedback, DocumentID: "late"})

	select {
	case s := <-ch:
		t.Fatalf("unexpected delivery after dispose: %+v", s)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatch_IndependentSubscriptionsToSameQuery(t *testing.T) {
	hub := NewHub(testutil.NewMockLogger())
	defer hub.Close()

	src := &memorySource{}
	cb1, ch1 := collect(t)
	cb2, ch2 := collect(t)
	d1 := Watch[note](hub, From(CollectionFeedback), src, cb1)
	d2 := Watch[note](hub, From(CollectionFeedback), src, cb2)
	defer d2()
	next(t, ch1)
	next(t, ch2)

	d1()
	n := note{id: "n", created: time.Now()}
	src.add(n)
	hub.Notify(context.Background(), changeFor(n))

	waitForLen(t, ch2, 1)
	assert.Equal(t, 1, hub.ActiveSubscriptions())
}

func TestWatchNewestFirst_SortsUnorderedQueries(t *testing.T) {
	hub := NewHub(testutil.NewMockLogger())
	defer hub.Close()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &memorySource{notes: []note{
		{id: "old", userID: "u1", created: base},
		{id: "new", userID: "u1", created: base.Add(48 * time.Hour)},
		{id: "mid", userID: "u1", created: base.Add(24 * time.Hour)},
	}}

	cb, ch := collect(t)
	dispose := WatchNewestFirst[note](hub, From(CollectionFeedback).Where(FieldUserID, "u1"), src, cb)
	defer dispose()

	s := next(t, ch)
	require.Len(t, s.Items, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{s.Items[0].id, s.Items[1].id, s.Items[2].id})
}

func TestWatch_AfterCloseDeliversTerminalSnapshot(t *testing.T) {
	hub := NewHub(testutil.NewMockLogger())
	hub.Close()

	cb, ch := collect(t)
	dispose := Watch[note](hub, From(CollectionTickets), &memorySource{}, cb)
	dispose()

	s := next(t, ch)
	assert.ErrorIs(t, s.Err, ErrHubClosed)
}

func TestQuery_Matches(t *testing.T) {
	byOwner := From(CollectionTickets).Where(FieldUserID, "u1")
	byID := From(CollectionTickets).Where(FieldID, "t1")

	tests := []struct {
		name   string
		query  Query
		change Change
		want   bool
	}{
		{"other collection", byOwner, Change{Collection: CollectionFeedback}, false},
		{"owner matches", byOwner, Change{Collection: CollectionTickets, Fields: map[string]string{FieldUserID: "u1"}}, true},
		{"owner differs", byOwner, Change{Collection: CollectionTickets, Fields: map[string]string{FieldUserID: "u2"}}, false},
		{"field unknown", byOwner, Change{Collection: CollectionTickets}, true},
		{"document id", byID, Change{Collection: CollectionTickets, DocumentID: "t1"}, true},
		{"other document", byID, Change{Collection: CollectionTickets, DocumentID: "t2"}, false},
		{"unfiltered", From(CollectionTickets), Change{Collection: CollectionTickets}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.Matches(tt.change))
		})
	}
}

func TestQuery_String(t *testing.T) {
	q := From(CollectionTicketReplies).Where(FieldTicketID, "t1").Sorted(FieldCreatedAt, Ascending)
	assert.Equal(t, "ticketReplies[ticketId==t1] order by createdAt asc", q.String())
}

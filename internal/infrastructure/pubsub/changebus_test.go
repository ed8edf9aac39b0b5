package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankincense-labs/cx-management/internal/application/livequery"
	"github.com/frankincense-labs/cx-management/internal/shared/testutil"
)

type recordingNotifier struct {
	mu      sync.Mutex
	changes []livequery.Change
}

func (n *recordingNotifier) Notify(_ context.Context, c livequery.Change) {
	n.mu.Lock()
	n.changes = append(n.changes, c)
	n.mu.Unlock()
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.changes)
}

func (n *recordingNotifier) last() livequery.Change {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.changes[len(n.changes)-1]
}

func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr
}

func newBus(t *testing.T, mr *miniredis.Miniredis) (*RedisChangeBus, *recordingNotifier) {
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	local := &recordingNotifier{}
	return NewRedisChangeBus(client, local, testutil.NewMockLogger()), local
}

func startBus(t *testing.T, b *RedisChangeBus) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	ready := make(chan struct{})
	go func() {
		defer close(done)
		_ = b.RunWithReady(ctx, ready)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not confirmed")
	}
}

func TestRedisChangeBus_RelaysToOtherInstances(t *testing.T) {
	mr := setupTestRedis(t)
	a, localA := newBus(t, mr)
	b, localB := newBus(t, mr)
	startBus(t, a)
	startBus(t, b)
	require.NotEqual(t, a.InstanceID(), b.InstanceID())

	change := livequery.Change{
		Collection: livequery.CollectionTickets,
		DocumentID: "t-1",
		Kind:       livequery.ChangeModified,
		Fields:     map[string]string{livequery.FieldUserID: "cust-1"},
	}
	a.Notify(context.Background(), change)

	assert.Eventually(t, func() bool { return localB.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, change, localB.last())

	// The origin sees its own change once, from the local path only.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, localA.count())
}

func TestRedisChangeBus_LocalDeliveryWithoutRedis(t *testing.T) {
	mr := setupTestRedis(t)
	bus, local := newBus(t, mr)
	mr.Close()

	bus.Notify(context.Background(), livequery.Change{Collection: livequery.CollectionFeedback, DocumentID: "fb-1", Kind: livequery.ChangeAdded})

	assert.Equal(t, 1, local.count())
}

func TestRedisChangeBus_IgnoresMalformedPayloads(t *testing.T) {
	mr := setupTestRedis(t)
	bus, local := newBus(t, mr)

	bus.handle(context.Background(), "{not json")
	bus.handle(context.Background(), `{"change":{"collection":"feedback","documentId":"x","kind":"added"},"instance_id":"`+bus.InstanceID()+`"}`)
	assert.Equal(t, 0, local.count())

	bus.handle(context.Background(), `{"change":{"collection":"feedback","documentId":"x","kind":"added"},"instance_id":"other"}`)
	assert.Equal(t, 1, local.count())
}

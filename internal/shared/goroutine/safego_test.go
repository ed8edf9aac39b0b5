package goroutine

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/frankincense-labs/cx-management/internal/shared/testutil"
)

func TestGroup_WaitsForAll(t *testing.T) {
	g := NewGroup(testutil.NewMockLogger())
	var n atomic.Int32

	for i := 0; i < 10; i++ {
		g.Go("worker", func() { n.Add(1) })
	}
	g.Wait()

	assert.Equal(t, int32(10), n.Load())
}

func TestGroup_RecoversPanics(t *testing.T) {
	log := testutil.NewMockLogger()
	g := NewGroup(log)

	g.Go("explode", func() { panic("boom") })
	g.Wait()

	entries := log.Entries()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "ERROR", entries[0].Level)
		assert.Equal(t, "goroutine panicked", entries[0].Message)
		assert.Equal(t, "explode", entries[0].Fields["goroutine"])
	}
}

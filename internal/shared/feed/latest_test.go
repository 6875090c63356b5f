package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatest_CoalescesUnreadValues(t *testing.T) {
	f := NewLatest[int](nil)
	require.True(t, f.Publish(1))
	require.True(t, f.Publish(2))
	require.True(t, f.Publish(3))

	got := <-f.C()
	assert.Equal(t, 3, got)
	select {
	case v := <-f.C():
		t.Fatalf("unexpected extra value %d", v)
	default:
	}
}

func TestLatest_CloseIsIdempotentAndRunsHook(t *testing.T) {
	calls := 0
	f := NewLatest[string](func() { calls++ })
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	assert.Equal(t, 1, calls)
	assert.False(t, f.Publish("late"))

	_, ok := <-f.C()
	assert.False(t, ok)
}

func TestLatest_ClosesWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := NewLatest[int](nil)
	f.CloseWhenDone(ctx)
	cancel()

	require.Eventually(t, f.Closed, time.Second, 5*time.Millisecond)
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBoards(t *testing.T) (*Boards, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewBoards(client, time.Minute), mr
}

func TestBoardsRoundTrip(t *testing.T) {
	b, _ := testBoards(t)
	ctx := context.Background()

	_, ok := b.Get(ctx, "all")
	assert.False(t, ok, "cold cache misses")

	b.Set(ctx, "all", []byte(`{"columns":[]}`))

	payload, ok := b.Get(ctx, "all")
	require.True(t, ok)
	assert.Equal(t, `{"columns":[]}`, string(payload))
}

func TestBoardsEvictDropsAllViews(t *testing.T) {
	b, _ := testBoards(t)
	ctx := context.Background()

	b.Set(ctx, "all", []byte("a"))
	b.Set(ctx, "tech:t1", []byte("b"))

	b.Evict(ctx)

	_, ok := b.Get(ctx, "all")
	assert.False(t, ok)
	_, ok = b.Get(ctx, "tech:t1")
	assert.False(t, ok)
}

func TestBoardsTTL(t *testing.T) {
	b, mr := testBoards(t)
	ctx := context.Background()

	b.Set(ctx, "all", []byte("a"))
	mr.FastForward(2 * time.Minute)

	_, ok := b.Get(ctx, "all")
	assert.False(t, ok, "entries expire")
}

func TestNilClientIsAlwaysMiss(t *testing.T) {
	b := NewBoards(nil, time.Minute)
	ctx := context.Background()

	b.Set(ctx, "all", []byte("a"))
	_, ok := b.Get(ctx, "all")
	assert.False(t, ok)
	b.Evict(ctx) // must not panic
}

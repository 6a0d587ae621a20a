package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitahub/parent-portal/internal/testutil"
)

func TestRedirectStore_SetAndPop(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewRedirectStore(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "client-1", "/messages/42"))

	path, err := store.Pop(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, "/messages/42", path)

	// The slot is single-use: a second pop returns the default.
	path, err = store.Pop(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, "/", path)
}

func TestRedirectStore_PopEmptySlot(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewRedirectStore(client)

	path, err := store.Pop(context.Background(), "never-set")
	require.NoError(t, err)
	assert.Equal(t, "/", path)
}

func TestRedirectStore_EmptyClientID(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewRedirectStore(client)
	ctx := context.Background()

	assert.Error(t, store.Set(ctx, "", "/somewhere"))

	path, err := store.Pop(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "/", path)
}

func TestRedirectStore_SlotsAreIsolatedPerClient(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewRedirectStore(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "client-a", "/billing"))
	require.NoError(t, store.Set(ctx, "client-b", "/incidents"))

	path, err := store.Pop(ctx, "client-a")
	require.NoError(t, err)
	assert.Equal(t, "/billing", path)

	path, err = store.Pop(ctx, "client-b")
	require.NoError(t, err)
	assert.Equal(t, "/incidents", path)
}

func TestRedirectStore_TTLExpiry(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewRedirectStoreWithOptions(client, "redirect:", 50*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "client-1", "/documents"))
	time.Sleep(100 * time.Millisecond)

	path, err := store.Pop(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, "/", path)
}

//go:build integration

package ledger_test

import (
	"context"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Hzrr97/open-weather-router-api/internal/ledger"
)

func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func newTestStore(t *testing.T, client *goredis.Client) *ledger.Store {
	t.Helper()
	store := ledger.New(client)
	t.Cleanup(func() {
		_ = store.Reset(context.Background())
	})
	return store
}

func TestStore_IncrementUsage(t *testing.T) {
	client := newTestClient(t)
	store := newTestStore(t, client)
	ctx := context.Background()
	day := ledger.DayKey("2026-08-06")

	v, err := store.IncrementUsage(ctx, "key_0", day)
	require.NoError(t, err)
	require.Equal(t, int64(1), v)

	v, err = store.IncrementUsage(ctx, "key_0", day)
	require.NoError(t, err)
	require.Equal(t, int64(2), v)

	got, err := store.GetUsage(ctx, "key_0", day)
	require.NoError(t, err)
	require.Equal(t, int64(2), got)
}

func TestStore_GetUsageAbsentIsZero(t *testing.T) {
	client := newTestClient(t)
	store := newTestStore(t, client)
	ctx := context.Background()

	v, err := store.GetUsage(ctx, "key_absent", ledger.DayKey("2026-08-06"))
	require.NoError(t, err)
	require.Equal(t, int64(0), v)
}

func TestStore_ListAvailable(t *testing.T) {
	client := newTestClient(t)
	store := newTestStore(t, client)
	ctx := context.Background()
	day := ledger.DayKey("2026-08-06")

	_, err := store.IncrementUsage(ctx, "key_0", day)
	require.NoError(t, err)
	_, err = store.IncrementError(ctx, "key_1", day)
	require.NoError(t, err)

	rows, err := store.ListAvailable(ctx, []string{"key_0", "key_1", "key_2"}, day)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, ledger.CredentialUsage{CredentialID: "key_0", Usage: 1, Errors: 0}, rows[0])
	require.Equal(t, ledger.CredentialUsage{CredentialID: "key_1", Usage: 0, Errors: 1}, rows[1])
	require.Equal(t, ledger.CredentialUsage{CredentialID: "key_2", Usage: 0, Errors: 0}, rows[2])
}

func TestStore_DayKeyIsolation(t *testing.T) {
	client := newTestClient(t)
	store := newTestStore(t, client)
	ctx := context.Background()

	_, err := store.IncrementUsage(ctx, "key_0", ledger.DayKey("2026-08-05"))
	require.NoError(t, err)

	v, err := store.GetUsage(ctx, "key_0", ledger.DayKey("2026-08-06"))
	require.NoError(t, err)
	require.Equal(t, int64(0), v, "a new DayKey must start at zero regardless of the previous day's counters")
}

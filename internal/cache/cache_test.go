package cache

import (
	"context"
	"testing"
	"time"
)

func TestRistretto_SetThenGet(t *testing.T) {
	t.Parallel()
	c, err := NewRistretto(50*time.Millisecond, 100)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "fp1", []byte(`{"ok":true}`))
	c.cache.Wait()

	got, ok := c.Get(ctx, "fp1")
	if !ok {
		t.Fatal("expected cache hit after Set")
	}
	if string(got) != `{"ok":true}` {
		t.Fatalf("got %q", got)
	}
}

func TestRistretto_MissAfterTTL(t *testing.T) {
	t.Parallel()
	c, err := NewRistretto(10*time.Millisecond, 100)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "fp1", []byte("body"))
	c.cache.Wait()

	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get(ctx, "fp1"); ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestRistretto_Clear(t *testing.T) {
	t.Parallel()
	c, err := NewRistretto(time.Minute, 100)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "fp1", []byte("a"))
	c.Set(ctx, "fp2", []byte("b"))
	c.cache.Wait()

	n := c.Clear(ctx)
	if n == 0 {
		t.Fatal("expected Clear to report at least one evicted entry")
	}
	if _, ok := c.Get(ctx, "fp1"); ok {
		t.Fatal("expected miss after Clear")
	}
}

func TestNoop_AlwaysMisses(t *testing.T) {
	t.Parallel()
	c := NewNoop()
	ctx := context.Background()

	c.Set(ctx, "fp1", []byte("body"))
	if _, ok := c.Get(ctx, "fp1"); ok {
		t.Fatal("Noop cache must never report a hit")
	}
	if c.Size() != 0 {
		t.Fatal("Noop cache size must always be 0")
	}
}

func TestDynamic_SwapRedirectsSubsequentCalls(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	first := NewNoop()
	d := NewDynamic(first)
	d.Set(ctx, "fp1", []byte("body"))
	if _, ok := d.Get(ctx, "fp1"); ok {
		t.Fatal("expected a miss while backed by Noop")
	}

	second, err := NewRistretto(time.Minute, 100)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	old := d.Swap(second)
	if old != first {
		t.Fatal("Swap must return the previous backend")
	}

	d.Set(ctx, "fp1", []byte("body"))
	second.cache.Wait()
	if _, ok := d.Get(ctx, "fp1"); !ok {
		t.Fatal("expected a hit once Dynamic is backed by the swapped-in Ristretto cache")
	}
}

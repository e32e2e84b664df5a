package ledger

import (
	"context"
	"sync"
	"testing"
)

func TestMemory_IncrementUsage(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	ctx := context.Background()
	day := DayKey("2026-08-06")

	v, err := m.IncrementUsage(ctx, "key_0", day)
	if err != nil || v != 1 {
		t.Fatalf("got (%d, %v), want (1, nil)", v, err)
	}

	v, err = m.IncrementUsage(ctx, "key_0", day)
	if err != nil || v != 2 {
		t.Fatalf("got (%d, %v), want (2, nil)", v, err)
	}
}

func TestMemory_GetUsageAbsentIsZero(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	v, err := m.GetUsage(context.Background(), "key_0", DayKey("2026-08-06"))
	if err != nil || v != 0 {
		t.Fatalf("got (%d, %v), want (0, nil)", v, err)
	}
}

func TestMemory_ListAvailablePreservesOrder(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	ctx := context.Background()
	day := DayKey("2026-08-06")

	if _, err := m.IncrementUsage(ctx, "key_1", day); err != nil {
		t.Fatal(err)
	}

	rows, err := m.ListAvailable(ctx, []string{"key_0", "key_1"}, day)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].CredentialID != "key_0" || rows[1].CredentialID != "key_1" {
		t.Fatalf("ListAvailable did not preserve input order: %+v", rows)
	}
	if rows[0].Usage != 0 || rows[1].Usage != 1 {
		t.Fatalf("unexpected usage values: %+v", rows)
	}
}

func TestMemory_DayKeyIsolation(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.IncrementUsage(ctx, "key_0", DayKey("2026-08-05")); err != nil {
		t.Fatal(err)
	}

	v, err := m.GetUsage(ctx, "key_0", DayKey("2026-08-06"))
	if err != nil || v != 0 {
		t.Fatalf("got (%d, %v), want (0, nil): a new DayKey must not see the previous day's usage", v, err)
	}
}

func TestMemory_Reset(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	ctx := context.Background()
	day := DayKey("2026-08-06")

	if _, err := m.IncrementUsage(ctx, "key_0", day); err != nil {
		t.Fatal(err)
	}
	if err := m.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	v, err := m.GetUsage(ctx, "key_0", day)
	if err != nil || v != 0 {
		t.Fatalf("got (%d, %v), want (0, nil) after Reset", v, err)
	}
}

func TestMemory_ConcurrentIncrement(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	ctx := context.Background()
	day := DayKey("2026-08-06")

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := m.IncrementUsage(ctx, "key_0", day); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	v, err := m.GetUsage(ctx, "key_0", day)
	if err != nil || v != n {
		t.Fatalf("got (%d, %v), want (%d, nil)", v, err, n)
	}
}

package credential

import "testing"

func TestBuildPool_AssignsSequentialIDsAndPriority(t *testing.T) {
	t.Parallel()

	pool := BuildPool([]string{"secretA", "secretB", "secretC"})
	if len(pool) != 3 {
		t.Fatalf("expected 3 credentials, got %d", len(pool))
	}

	for i, c := range pool {
		wantID := "key_" + string(rune('0'+i))
		if c.ID != wantID {
			t.Errorf("pool[%d].ID = %q, want %q", i, c.ID, wantID)
		}
		if c.Priority != i {
			t.Errorf("pool[%d].Priority = %d, want %d", i, c.Priority, i)
		}
	}

	if pool[0].Secret != "secretA" || pool[2].Secret != "secretC" {
		t.Error("expected secrets to be preserved in configuration order")
	}
}

func TestBuildPool_Empty(t *testing.T) {
	t.Parallel()

	pool := BuildPool(nil)
	if len(pool) != 0 {
		t.Errorf("expected an empty pool, got %d entries", len(pool))
	}
}

func TestIDs_PreservesOrder(t *testing.T) {
	t.Parallel()

	pool := BuildPool([]string{"a", "b", "c"})
	ids := IDs(pool)

	want := []string{"key_0", "key_1", "key_2"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d IDs, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestCredential_StringNeverRevealsSecret(t *testing.T) {
	t.Parallel()

	c := Credential{ID: "key_0", Secret: "super-secret-value", Priority: 0}
	if got := c.String(); containsSecret(got, c.Secret) {
		t.Errorf("String() leaked the secret: %q", got)
	}
}

func containsSecret(s, secret string) bool {
	for i := 0; i+len(secret) <= len(s); i++ {
		if s[i:i+len(secret)] == secret {
			return true
		}
	}
	return false
}

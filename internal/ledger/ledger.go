// Package ledger implements the Shared Ledger: atomic per-credential,
// per-calendar-day usage and error counters visible across every owm-relay
// worker process.
//
// The teacher's keypool package tracks rate-limit state in-process
// (internal/keypool/key.go's KeyMetadata). owm-relay's quota state must
// instead survive and be shared across independent worker processes, so the
// production Ledger implementation (redis.go) is backed by Redis, grounded
// on ineyio-inferrouter's quota/redis.Store (quota/redis/redis.go) — the same
// atomic-Lua-script, lazy-reset shape, narrowed to this package's simpler
// per-day counter keys. An in-memory implementation (memory.go) exists only
// to back tests that would otherwise need a live Redis instance.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TTL is the safe upper bound placed on every Ledger key. Correctness comes
// from encoding DayKey in the key itself, not from TTL precision: the TTL
// only exists so stale keys eventually disappear, so it is pinned generously
// past one calendar day rather than tuned tightly.
const TTL = 48 * time.Hour

// ErrLedgerUnavailable is returned by the read paths (GetUsage, GetErrors,
// ListAvailable) when the backing store cannot be reached. Reads fail hard:
// the Selector has no correct fallback to a credential it cannot verify is
// under quota.
var ErrLedgerUnavailable = errors.New("ledger: backend unavailable")

// DayKey identifies a calendar day in whatever zone the Ledger was
// configured with (spec.md §3's local time by default; SPEC_FULL.md §7
// allows pinning to a fixed zone via LEDGER_TZ).
type DayKey string

// Today returns the current DayKey in loc.
func Today(loc *time.Location) DayKey {
	return DayKeyFor(time.Now().In(loc))
}

// DayKeyFor returns the DayKey for t, formatted YYYY-MM-DD in t's own zone.
// Callers should pass t already converted to the Ledger's configured zone.
func DayKeyFor(t time.Time) DayKey {
	return DayKey(t.Format("2006-01-02"))
}

// CredentialUsage is one row of a ListAvailable snapshot.
type CredentialUsage struct {
	CredentialID string
	Usage        int64
	Errors       int64
}

// Ledger tracks per-credential, per-day usage and consecutive-error counts.
//
// Increment methods are fail-soft: a backend hiccup is logged by the
// implementation and must never abort the caller's in-flight request, since
// the upstream call the increment is recording has already happened.
// Read methods are fail-hard: they return ErrLedgerUnavailable when the
// backend cannot be reached, because the Selector has no safe default for a
// credential whose quota state it cannot confirm.
type Ledger interface {
	// IncrementUsage atomically increments the usage counter for
	// (credID, day) and returns the new count. Called exactly once per
	// successful upstream call.
	IncrementUsage(ctx context.Context, credID string, day DayKey) (int64, error)

	// IncrementError atomically increments the consecutive-error counter
	// for (credID, day) and returns the new count. Called exactly once per
	// attributable upstream failure.
	IncrementError(ctx context.Context, credID string, day DayKey) (int64, error)

	// GetUsage returns the usage counter for (credID, day), or 0 if absent.
	GetUsage(ctx context.Context, credID string, day DayKey) (int64, error)

	// GetErrors returns the error counter for (credID, day), or 0 if absent.
	GetErrors(ctx context.Context, credID string, day DayKey) (int64, error)

	// ListAvailable returns a usage/error snapshot for every ID in credIDs
	// on day, in the same order as credIDs. A credential absent from the
	// backend reports zero for both counters.
	ListAvailable(ctx context.Context, credIDs []string, day DayKey) ([]CredentialUsage, error)

	// Reset clears all Ledger state. Test-only: production code never calls it.
	Reset(ctx context.Context) error
}

func usageKey(credID string, day DayKey) string {
	return fmt.Sprintf("usage:%s:%s", credID, day)
}

func errorsKey(credID string, day DayKey) string {
	return fmt.Sprintf("errors:%s:%s", credID, day)
}

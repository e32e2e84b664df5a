package ledger

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// incrementScript atomically increments a counter key and, only on its first
// write, attaches the Ledger's TTL. Matches ineyio-inferrouter's
// reserveScript/commitScript pattern of doing the read-modify-write entirely
// inside Lua (quota/redis/redis.go) so no other client can observe a counter
// between the INCR and the EXPIRE.
//
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
var incrementScript = goredis.NewScript(`
local v = redis.call("INCR", KEYS[1])
if v == 1 then
    redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return v
`)

// Store is the production Ledger, backed by Redis. Each credential/day pair
// is two independent string counters (usage:<credID>:<day>,
// errors:<credID>:<day>) rather than ineyio-inferrouter's single account
// hash, because spec.md §6 fixes this exact key layout for operability.
type Store struct {
	client goredis.Cmdable
	ttlSec int64
}

// New creates a Redis-backed Ledger. client must already be connected.
func New(client goredis.Cmdable) *Store {
	return &Store{
		client: client,
		ttlSec: int64(TTL.Seconds()),
	}
}

func (s *Store) IncrementUsage(ctx context.Context, credID string, day DayKey) (int64, error) {
	return s.incrementSoft(ctx, usageKey(credID, day))
}

func (s *Store) IncrementError(ctx context.Context, credID string, day DayKey) (int64, error) {
	return s.incrementSoft(ctx, errorsKey(credID, day))
}

// incrementSoft performs the atomic increment and logs, rather than
// propagates, a backend failure: the upstream call being recorded has
// already happened, so a Ledger write failure must not turn into a caller
// facing error (spec.md §4.1's fail-soft increment semantics).
func (s *Store) incrementSoft(ctx context.Context, key string) (int64, error) {
	v, err := incrementScript.Run(ctx, s.client, []string{key}, s.ttlSec).Int64()
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("ledger: increment failed, continuing")
		return 0, nil
	}
	return v, nil
}

func (s *Store) GetUsage(ctx context.Context, credID string, day DayKey) (int64, error) {
	return s.getCounter(ctx, usageKey(credID, day))
}

func (s *Store) GetErrors(ctx context.Context, credID string, day DayKey) (int64, error) {
	return s.getCounter(ctx, errorsKey(credID, day))
}

func (s *Store) getCounter(ctx context.Context, key string) (int64, error) {
	v, err := s.client.Get(ctx, key).Int64()
	if err != nil {
		if err == goredis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
	}
	return v, nil
}

// ListAvailable fetches a usage/error snapshot for every credential in one
// round trip via MGET, following ineyio-inferrouter's Remaining (which uses
// HMGet for the same reason: one network call instead of one per field).
func (s *Store) ListAvailable(ctx context.Context, credIDs []string, day DayKey) ([]CredentialUsage, error) {
	if len(credIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(credIDs)*2)
	for _, id := range credIDs {
		keys = append(keys, usageKey(id, day), errorsKey(id, day))
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
	}

	rows := make([]CredentialUsage, len(credIDs))
	for i, id := range credIDs {
		rows[i] = CredentialUsage{
			CredentialID: id,
			Usage:        parseCounter(vals[i*2]),
			Errors:       parseCounter(vals[i*2+1]),
		}
	}
	return rows, nil
}

func parseCounter(v any) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0
	}
	return n
}

// Reset deletes every key this Store manages. Test-only: it scans the whole
// keyspace for usage:/errors: prefixes, which is unsafe against a shared
// production Redis instance and is never called outside tests.
func (s *Store) Reset(ctx context.Context) error {
	for _, prefix := range []string{"usage:*", "errors:*"} {
		iter := s.client.Scan(ctx, 0, prefix, 0).Iterator()
		for iter.Next(ctx) {
			if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
				return fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
		}
	}
	return nil
}

var _ Ledger = (*Store)(nil)

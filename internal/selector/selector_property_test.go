package selector

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Hzrr97/open-weather-router-api/internal/credential"
	"github.com/Hzrr97/open-weather-router-api/internal/ledger"
)

// Property-based tests for SelectAll's ranking and eligibility rules
// (spec.md §3's usage/error invariants, §4.2's fixed ranking).

func TestSelectAll_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	// Property 1: a credential at or over DailyLimit never appears in the result.
	properties.Property("usage at or over DailyLimit excludes the credential", prop.ForAll(
		func(dailyLimit int, usage int64) bool {
			if dailyLimit <= 0 {
				return true
			}

			pool := credential.BuildPool([]string{"secretA"})
			led := ledger.NewMemory()
			ctx := context.Background()
			day := ledger.DayKey("2026-08-06")

			for range usage {
				_, _ = led.IncrementUsage(ctx, pool[0].ID, day)
			}

			sel := New(pool, led, fixedLimit(dailyLimit))
			result, err := sel.SelectAll(ctx, day)

			if usage >= int64(dailyLimit) {
				return err == ErrNoCredentialsAvailable && len(result) == 0
			}
			return err == nil && len(result) == 1
		},
		gen.IntRange(1, 50),
		gen.Int64Range(0, 60),
	))

	// Property 2: a credential at or over MaxErrors never appears in the result.
	properties.Property("errors at or over MaxErrors excludes the credential", prop.ForAll(
		func(errorCount int64) bool {
			pool := credential.BuildPool([]string{"secretA"})
			led := ledger.NewMemory()
			ctx := context.Background()
			day := ledger.DayKey("2026-08-06")

			for range errorCount {
				_, _ = led.IncrementError(ctx, pool[0].ID, day)
			}

			sel := New(pool, led, fixedLimit(1000))
			result, err := sel.SelectAll(ctx, day)

			if errorCount >= int64(sel.maxErrors) {
				return err == ErrNoCredentialsAvailable && len(result) == 0
			}
			return err == nil && len(result) == 1
		},
		gen.Int64Range(0, 10),
	))

	// Property 3: among eligible credentials, the result is sorted by usage
	// ascending, ties broken by priority ascending — regardless of pool order.
	properties.Property("result is ordered by usage then priority", prop.ForAll(
		func(usages []int64) bool {
			if len(usages) == 0 || len(usages) > 8 {
				return true
			}

			secrets := make([]string, len(usages))
			for i := range secrets {
				secrets[i] = "secret"
			}
			pool := credential.BuildPool(secrets)
			led := ledger.NewMemory()
			ctx := context.Background()
			day := ledger.DayKey("2026-08-06")

			for i, u := range usages {
				for range u % 500 {
					_, _ = led.IncrementUsage(ctx, pool[i].ID, day)
				}
			}

			sel := New(pool, led, fixedLimit(1000))
			result, err := sel.SelectAll(ctx, day)
			if err != nil {
				return false
			}

			rows, _ := led.ListAvailable(ctx, credential.IDs(pool), day)
			usageByID := make(map[string]int64, len(rows))
			for _, r := range rows {
				usageByID[r.CredentialID] = r.Usage
			}

			for i := 1; i < len(result); i++ {
				prev, cur := result[i-1], result[i]
				pu, cu := usageByID[prev.ID], usageByID[cur.ID]
				if pu > cu {
					return false
				}
				if pu == cu && prev.Priority > cur.Priority {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(0, 2000)),
	))

	properties.TestingRun(t)
}

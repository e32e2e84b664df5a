// Package selector picks which upstream credential a request should try
// next, based on a fresh Ledger snapshot.
//
// Grounded on the teacher's keypool.LeastLoadedSelector
// (internal/keypool/least_loaded.go), which filters to available keys with
// lo.Filter then picks by a capacity score. Unlike the teacher's selector,
// availability here comes from the shared Ledger rather than in-process
// state, and the ranking is a fixed (usage asc, priority asc) sort rather
// than a pluggable strategy, since spec.md §4.2 names exactly one ranking
// with no randomization.
package selector

import (
	"context"
	"errors"
	"sort"

	"github.com/samber/lo"

	"github.com/Hzrr97/open-weather-router-api/internal/config"
	"github.com/Hzrr97/open-weather-router-api/internal/credential"
	"github.com/Hzrr97/open-weather-router-api/internal/ledger"
)

// ErrNoCredentialsAvailable is returned when every configured credential is
// over its daily usage limit or has hit the consecutive-error cap for the
// given day. The Fetch Pipeline maps this to a 429 response.
var ErrNoCredentialsAvailable = errors.New("selector: no credentials available")

// Selector ranks the configured credential pool against the Shared Ledger.
type Selector struct {
	pool      []credential.Credential
	ledger    ledger.Ledger
	maxErrors int

	// cfg is read live on every SelectAll call rather than snapshotted at
	// construction, so a reloaded DailyLimit actually reaches the running
	// Selector instead of updating a Runtime pointer nothing here reads
	// again.
	cfg config.RuntimeConfig
}

// New creates a Selector over pool, reading quota state from led and the
// daily limit live from cfg.
func New(pool []credential.Credential, led ledger.Ledger, cfg config.RuntimeConfig) *Selector {
	return &Selector{
		pool:      pool,
		ledger:    led,
		cfg:       cfg,
		maxErrors: config.MaxErrors,
	}
}

// SelectAll returns every credential eligible for day, ordered by (usage
// ascending, priority ascending) — spec.md §4.2's fixed ranking. A
// credential is eligible when usage < DailyLimit and errors < MaxErrors.
// Returns ErrNoCredentialsAvailable if the pool is empty after filtering,
// or ledger.ErrLedgerUnavailable if the Ledger's read path fails (the
// Selector requires a readable Ledger and has no safe fallback).
func (s *Selector) SelectAll(ctx context.Context, day ledger.DayKey) ([]credential.Credential, error) {
	rows, err := s.ledger.ListAvailable(ctx, credential.IDs(s.pool), day)
	if err != nil {
		return nil, err
	}

	usageByID := make(map[string]ledger.CredentialUsage, len(rows))
	for _, row := range rows {
		usageByID[row.CredentialID] = row
	}

	dailyLimit := int64(s.cfg.Get().DailyLimit)
	eligible := lo.Filter(s.pool, func(c credential.Credential, _ int) bool {
		row := usageByID[c.ID]
		return row.Usage < dailyLimit && row.Errors < int64(s.maxErrors)
	})

	if len(eligible) == 0 {
		return nil, ErrNoCredentialsAvailable
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		ui, uj := usageByID[eligible[i].ID].Usage, usageByID[eligible[j].ID].Usage
		if ui != uj {
			return ui < uj
		}
		return eligible[i].Priority < eligible[j].Priority
	})

	return eligible, nil
}

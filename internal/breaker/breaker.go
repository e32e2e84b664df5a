// Package breaker provides a fast, in-process circuit breaker per
// credential, complementing the Shared Ledger's day-scoped 3-strike error
// block (internal/ledger). The Ledger's block is durable and cross-process
// but only visible on the next Selector read; a credential whose upstream
// has just started failing still eats a handful of slow, doomed requests
// before the Ledger's count catches up. The breaker trips within-process
// the moment consecutive failures cross its threshold, so the Fetch
// Pipeline can skip a clearly-unhealthy credential immediately rather than
// paying its timeout again.
//
// Grounded on the teacher's health package (internal/health/circuit.go,
// tracker.go, config.go), narrowed from cc-relay's per-provider breaker to
// owm-relay's per-credential one, and built on gobreaker's
// TwoStepCircuitBreaker: the Fetch Pipeline needs to ask "can I attempt
// this credential" and report "did that attempt succeed" as two separate
// steps around its own upstream call, rather than handing gobreaker a
// closure to execute itself.
package breaker

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// Default tuning, deliberately tighter than the teacher's provider-level
// defaults: a credential is one upstream account behind one HTTP client,
// not a whole provider, so a smaller failure threshold and shorter open
// window keep the pipeline responsive to recovery.
const (
	DefaultFailureThreshold = 3
	DefaultOpenDuration     = 10_000 // milliseconds
	DefaultHalfOpenProbes   = 1
)

// ErrCircuitOpen is returned by Allow when the named credential's breaker
// is open.
var ErrCircuitOpen = errors.New("breaker: circuit is open")

// State mirrors gobreaker's state enum.
type State = gobreaker.State

// State constants, re-exported for callers that don't want to import
// gobreaker directly.
const (
	StateClosed   = gobreaker.StateClosed
	StateOpen     = gobreaker.StateOpen
	StateHalfOpen = gobreaker.StateHalfOpen
)

// Tracker manages one circuit breaker per credential ID, created lazily on
// first use, following the teacher's Tracker (internal/health/tracker.go).
// Like the teacher, each breaker is a TwoStepCircuitBreaker: Allow grants
// permission to proceed and returns a done func the caller invokes with the
// outcome once the upstream call finishes.
type Tracker struct {
	mu       sync.RWMutex
	circuits map[string]*gobreaker.TwoStepCircuitBreaker[struct{}]
	logger   *zerolog.Logger
}

// NewTracker builds an empty Tracker. logger may be nil to disable state
// change logging.
func NewTracker(logger *zerolog.Logger) *Tracker {
	return &Tracker{
		circuits: make(map[string]*gobreaker.TwoStepCircuitBreaker[struct{}]),
		logger:   logger,
	}
}

func (t *Tracker) getOrCreate(credID string) *gobreaker.TwoStepCircuitBreaker[struct{}] {
	t.mu.RLock()
	cb, ok := t.circuits[credID]
	t.mu.RUnlock()
	if ok {
		return cb
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if cb, ok = t.circuits[credID]; ok {
		return cb
	}

	settings := gobreaker.Settings{
		Name:        credID,
		MaxRequests: DefaultHalfOpenProbes,
		Timeout:     DefaultOpenDuration * time.Millisecond,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= DefaultFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if t.logger == nil {
				return
			}
			event := t.logger.Info()
			if to == gobreaker.StateOpen {
				event = t.logger.Warn()
			}
			event.Str("credential_id", name).Str("from", from.String()).Str("to", to.String()).
				Msg("credential circuit breaker state change")
		},
	}

	cb = gobreaker.NewTwoStepCircuitBreaker[struct{}](settings)
	t.circuits[credID] = cb
	return cb
}

// Allow reports whether an upstream call to credID may proceed. On success
// it returns a done func the caller must invoke exactly once with the
// call's outcome; on ErrCircuitOpen, done is nil and no call should be made.
func (t *Tracker) Allow(credID string) (done func(success bool), err error) {
	cb := t.getOrCreate(credID)
	d, gerr := cb.Allow()
	if gerr != nil {
		return nil, ErrCircuitOpen
	}
	return func(success bool) {
		if success {
			d(nil)
			return
		}
		d(errFailed)
	}, nil
}

var errFailed = errors.New("breaker: reported failure")

// State returns credID's current breaker state, StateClosed if it has never
// been observed.
func (t *Tracker) State(credID string) State {
	t.mu.RLock()
	cb, ok := t.circuits[credID]
	t.mu.RUnlock()
	if !ok {
		return StateClosed
	}
	return cb.State()
}

// IsOpen reports whether credID's breaker currently blocks requests.
func (t *Tracker) IsOpen(credID string) bool {
	return t.State(credID) == StateOpen
}

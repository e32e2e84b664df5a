// Package credential models the pool of upstream API credentials owm-relay
// multiplexes requests across.
//
// Unlike the teacher's keypool.KeyMetadata (internal/keypool/key.go), which
// carries its own mutable rate-limit and health state, a Credential here is
// an immutable value: usage and error counts live in the Shared Ledger
// (internal/ledger), not on the credential itself, since quota state must be
// visible across worker processes and a credential struct is per-process.
package credential

import "fmt"

// Credential identifies one upstream API key and its fixed selection priority.
type Credential struct {
	// ID is the stable identifier used as the Ledger's key component,
	// formed as "key_<n>" where n is the credential's position in the
	// configured pool (spec.md §3).
	ID string

	// Secret is the upstream API key value. Never rendered in logs or error
	// payloads.
	Secret string

	// Priority is the tiebreaker used by the Selector when two credentials
	// have equal usage: lower priority wins. Priority equals the
	// credential's position in configuration order.
	Priority int
}

// String returns a representation safe for logging: the ID and priority,
// never the secret.
func (c Credential) String() string {
	return fmt.Sprintf("Credential[%s priority=%d]", c.ID, c.Priority)
}

// BuildPool derives the ordered Credential pool from a list of raw API key
// secrets, assigning "key_<n>" IDs and priority=index in the order given.
// Order is significant: it is config order, and is preserved verbatim as the
// Selector's tiebreak.
func BuildPool(secrets []string) []Credential {
	pool := make([]Credential, len(secrets))
	for i, secret := range secrets {
		pool[i] = Credential{
			ID:       fmt.Sprintf("key_%d", i),
			Secret:   secret,
			Priority: i,
		}
	}
	return pool
}

// IDs returns the IDs of every credential in pool, in order.
func IDs(pool []Credential) []string {
	ids := make([]string, len(pool))
	for i, c := range pool {
		ids[i] = c.ID
	}
	return ids
}

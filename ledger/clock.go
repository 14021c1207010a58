package ledger

import "time"

// =============================================================================
// CLOCK - Injectable time source
// =============================================================================

// Clock supplies timestamps for transactions and request records.
// Inject a fixed implementation in tests for deterministic output.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

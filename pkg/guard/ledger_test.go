package guard

import (
	"testing"
	"time"
)

func TestAttemptLedger(t *testing.T) {
	const window = 60 * time.Second

	t.Run("attempts are append-only", func(t *testing.T) {
		l := newAttemptLedger()
		l.record("a", true, 3, window)
		l.record("b", false, 3, window)
		l.record("c", false, 3, window)
		if len(l.attempts) != 3 {
			t.Fatalf("ledger holds %d attempts, want 3", len(l.attempts))
		}
	})

	t.Run("success never breaches even at threshold 1", func(t *testing.T) {
		l := newAttemptLedger()
		if l.record("a", true, 1, window) {
			t.Fatal("successful attempt reported a breach")
		}
	})

	t.Run("threshold counts failures only", func(t *testing.T) {
		l := newAttemptLedger()
		l.record("a", false, 2, window)
		l.record("a", true, 2, window)
		if !l.record("a", false, 2, window) {
			t.Fatal("second failure did not breach threshold 2")
		}
	})

	t.Run("identifiers are opaque and not grouped", func(t *testing.T) {
		// The window is evaluated over all failures regardless of who
		// made them.
		l := newAttemptLedger()
		l.record("alice", false, 2, window)
		if !l.record("bob", false, 2, window) {
			t.Fatal("failures from distinct identifiers were not combined")
		}
	})

	t.Run("stale failures age out", func(t *testing.T) {
		l := newAttemptLedger()
		now := time.Now()
		l.now = func() time.Time { return now }

		l.record("a", false, 2, window)
		now = now.Add(window + time.Second)
		if l.record("a", false, 2, window) {
			t.Fatal("aged-out failure still counted")
		}
	})
}

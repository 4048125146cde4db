package guard

import "time"

// accessAttempt is an immutable record of a single access attempt.
// Timestamps carry Go's monotonic clock reading, so window evaluation is
// immune to wall-clock adjustment.
type accessAttempt struct {
	at         time.Time
	identifier string
	success    bool
}

// attemptLedger is an append-only log of access attempts. Entries are never
// mutated or removed; failures older than the window simply stop matching
// the window predicate on later evaluations.
type attemptLedger struct {
	attempts []accessAttempt
	now      func() time.Time // swapped out in tests
}

func newAttemptLedger() *attemptLedger {
	return &attemptLedger{now: time.Now}
}

// record appends an attempt and, when it is a failure, counts the failures
// whose timestamp lies inside [now-window, now]. It returns true when that
// count reaches threshold. Successes are recorded for audit only: they are
// never counted toward the threshold and never clear prior failures.
func (l *attemptLedger) record(identifier string, success bool, threshold int, window time.Duration) bool {
	now := l.now()
	l.attempts = append(l.attempts, accessAttempt{at: now, identifier: identifier, success: success})

	if success {
		return false
	}

	failures := 0
	for _, a := range l.attempts {
		if !a.success && now.Sub(a.at) <= window {
			failures++
		}
	}
	return failures >= threshold
}

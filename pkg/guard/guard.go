package guard

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/grey-heron/Deadbolt/pkg/config"
)

// Incident is the in-memory record of a triggered destruct sequence. The
// guard never writes logs; callers that need persistence or alerting read
// the incident after the fact or hook the OnDestruct observer.
type Incident struct {
	ID     string    // random UUID minted when the guard trips
	Reason string    // human-readable trigger description
	At     time.Time // trip time, UTC
	Wiped  []string
	Failed []string
}

// Guard composes the attempt ledger, the integrity verifier and the secure
// eraser behind a one-way Active-to-Locked state machine. A fresh Guard
// always starts Active with an empty ledger; nothing persists across
// process restarts.
//
// Guard has no internal locking. Concurrent use from multiple goroutines
// requires an external mutex around its public methods.
type Guard struct {
	cfg            *config.GuardConfig
	ledger         *attemptLedger
	protectedPaths []string
	locked         bool
	incident       *Incident
}

// New validates cfg and returns an unlocked Guard. Paths listed in
// cfg.ProtectedPaths are pre-registered in order.
func New(cfg *config.GuardConfig) (*Guard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Guard{cfg: cfg, ledger: newAttemptLedger()}
	for _, p := range cfg.ProtectedPaths {
		g.RegisterProtectedPath(p)
	}
	return g, nil
}

// RegisterProtectedPath adds path to the set wiped on destruct. Insertion
// order defines wipe order; registering the same path twice is a no-op.
// Allowed in either state.
func (g *Guard) RegisterProtectedPath(path string) {
	for _, p := range g.protectedPaths {
		if p == path {
			return
		}
	}
	g.protectedPaths = append(g.protectedPaths, path)
}

// IsLocked reports whether the guard has tripped. Once true it remains
// true for the life of the instance.
func (g *Guard) IsLocked() bool { return g.locked }

// Incident returns the record of the destruct sequence, or nil while the
// guard is still Active.
func (g *Guard) Incident() *Incident { return g.incident }

// RecordAttempt appends an access attempt to the ledger and returns true
// when the failed-attempt threshold inside the sliding window has been
// reached. The first breach while Active locks the guard and runs the
// destruct sequence; breaches reported after that still return true but
// never wipe a second time.
func (g *Guard) RecordAttempt(identifier string, success bool) bool {
	breached := g.ledger.record(identifier, success, g.cfg.MaxAttempts, g.cfg.Window())
	if breached && !g.locked {
		g.triggerDestruct(fmt.Sprintf(
			"failed-attempt threshold reached (%d failures in %gs)",
			g.cfg.MaxAttempts, g.cfg.WindowSeconds))
	}
	return breached
}

// VerifyFirmware streams the image at path through SHA-256 and compares
// the lowercase hex digest to the configured expected digest. A match
// returns (true, nil) with no side effect. A mismatch locks the guard,
// runs the destruct sequence and returns (false, nil) — the mismatch is a
// normal outcome, not an error. ErrNoExpectedDigest is returned, with no
// state change, when verification was never configured; read errors
// likewise leave the state untouched.
func (g *Guard) VerifyFirmware(path string) (bool, error) {
	if g.cfg.ExpectedDigest == "" {
		return false, ErrNoExpectedDigest
	}

	digest, err := fileDigest(path)
	if err != nil {
		return false, err
	}

	if digest == g.cfg.ExpectedDigest {
		return true, nil
	}

	if !g.locked {
		g.triggerDestruct(fmt.Sprintf(
			"firmware verification failed for %s (expected %s, got %s)",
			path, g.cfg.ExpectedDigest, digest))
	}
	return false, nil
}

// DestructNow wipes every registered path immediately, in insertion order.
// It is the manual panic button: it does not change lock state (the
// internal trigger path locks first, then wipes). Both the wiped and
// failed lists are always returned; the error is a *WipeError exactly when
// the failed list is non-empty.
func (g *Guard) DestructNow() (*WipeResult, error) {
	res := wipeAll(g.protectedPaths)
	if len(res.Failed) > 0 {
		return res, &WipeError{Failed: res.Failed}
	}
	return res, nil
}

// triggerDestruct is the fail-secure destruct sequence. The lock is set
// before any wipe is attempted, so it holds even when wiping fails
// entirely. The observer receives the true partial wiped list exactly
// once; failed paths are surfaced through the incident record rather than
// discarded.
func (g *Guard) triggerDestruct(reason string) {
	g.locked = true

	res, _ := g.DestructNow()

	g.incident = &Incident{
		ID:     uuid.NewString(),
		Reason: reason,
		At:     time.Now().UTC(),
		Wiped:  res.Wiped,
		Failed: res.Failed,
	}

	if g.cfg.OnDestruct != nil {
		g.cfg.OnDestruct(res.Wiped)
	}
}

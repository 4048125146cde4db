// Package guard implements a tamper-response guard. It tracks failed access
// attempts over a sliding monotonic-clock window, verifies firmware image
// integrity against an expected SHA-256 digest, and on a qualifying failure
// locks itself and securely wipes every registered protected path. The lock
// is one-way for the lifetime of the instance; there is deliberately no
// reset or unlock.
//
// A Guard performs no internal synchronization. Callers invoking it from
// multiple goroutines must serialize access with their own mutex.
package guard

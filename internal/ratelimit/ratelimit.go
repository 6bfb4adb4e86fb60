// Package ratelimit provides the admission gate that sits in front of
// every tool invocation.
package ratelimit

import "golang.org/x/time/rate"

// Gate is a token-bucket admission check. It is safe for concurrent use.
type Gate struct {
	limiter *rate.Limiter
}

// New returns a Gate sustaining rps requests per second with a burst equal
// to the sustained rate. A rate below one is clamped to one.
func New(rps int) *Gate {
	if rps < 1 {
		rps = 1
	}
	return &Gate{limiter: rate.NewLimiter(rate.Limit(rps), rps)}
}

// Permissive returns a gate for trusted callers (1000 rps).
func Permissive() *Gate { return New(1000) }

// Moderate returns the default gate (100 rps).
func Moderate() *Gate { return New(100) }

// Strict returns a gate for untrusted callers (10 rps).
func Strict() *Gate { return New(10) }

// Check consumes one token if available. It never blocks; a false return
// means the request must be rejected.
func (g *Gate) Check() bool {
	return g.limiter.Allow()
}

// Limit returns the sustained rate in requests per second.
func (g *Gate) Limit() int {
	return int(g.limiter.Limit())
}

// Package randx provides the process-wide random source used outside tests.
package randx

import "lukechampine.com/frand"

// Source draws from frand's global generator, which is seeded from the OS
// and safe for concurrent use. Tests inject *math/rand.Rand instead.
type Source struct{}

// Intn returns a uniform int in [0, n). It panics if n <= 0.
func (Source) Intn(n int) int { return frand.Intn(n) }

// Shuffle permutes n elements using swap.
func (Source) Shuffle(n int, swap func(i, j int)) { frand.Shuffle(n, swap) }

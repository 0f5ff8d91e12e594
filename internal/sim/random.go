package sim

import (
	"math/rand/v2"
	"time"
)

// Source supplies randomness for IDs, sizes and generated names.
// Tests inject a deterministic implementation.
type Source interface {
	// IntN returns a value in [0, n)
	IntN(n int) int
}

// NewSource returns a PCG-backed source. A zero seed is replaced by the
// current time.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

const hexDigits = "0123456789abcdef"

func randomHex(src Source, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = hexDigits[src.IntN(len(hexDigits))]
	}
	return string(b)
}

package random

import (
	"crypto/rand"
	"math/big"
)

// Random is the entropy source for shuffles and room codes
type Random interface {
	// Intn returns a value in [0, n)
	Intn(n int) int

	// String returns length characters drawn from alphabet
	String(length int, alphabet string) string
}

// Secure draws from crypto/rand
type Secure struct{}

var _ Random = Secure{}

// New returns a crypto-backed Random
func New() Secure {
	return Secure{}
}

func (Secure) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func (s Secure) String(length int, alphabet string) string {
	if length <= 0 || alphabet == "" {
		return ""
	}
	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[s.Intn(len(alphabet))]
	}
	return string(out)
}

// Shuffle permutes n elements in place with Fisher-Yates, walking from the
// last index down and swapping each with a uniformly chosen index at or
// below it.
func Shuffle(r Random, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}

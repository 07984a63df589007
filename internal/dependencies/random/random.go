package random

import (
	"crypto/rand"
	"math/big"
)

// Random is the source behind session codes, spy draws and hint choice.
// Tests swap it for a scripted one.
type Random interface {
	// Intn returns a random int in [0, n), or 0 when n <= 0
	Intn(n int) int

	// String draws length characters from alphabet
	String(length int, alphabet string) string
}

// CryptoRandom draws from crypto/rand so codes and roles cannot be predicted
type CryptoRandom struct{}

// New creates a CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails if the OS source is broken
		panic("random: crypto source failed: " + err.Error())
	}
	return int(v.Int64())
}

func (r *CryptoRandom) String(length int, alphabet string) string {
	return fromAlphabet(r, length, alphabet)
}

func fromAlphabet(r Random, length int, alphabet string) string {
	if length <= 0 || alphabet == "" {
		return ""
	}
	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(out)
}

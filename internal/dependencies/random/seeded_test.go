package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededRandomIsReproducible(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)

	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
	assert.Equal(t, a.String(6, "ABC"), b.String(6, "ABC"))
}

func TestSeededRandomBounds(t *testing.T) {
	r := NewSeeded(7)

	for i := 0; i < 200; i++ {
		v := r.Intn(5)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 5)
	}
	assert.Equal(t, 0, r.Intn(0))
	assert.Equal(t, "", r.String(0, "ABC"))
	assert.Equal(t, "", r.String(3, ""))
}

func TestCryptoRandomString(t *testing.T) {
	r := New()

	s := r.String(6, "XY")
	assert.Len(t, s, 6)
	for _, c := range s {
		assert.Contains(t, "XY", string(c))
	}
}

func TestCryptoRandomIntnBounds(t *testing.T) {
	r := New()

	for i := 0; i < 200; i++ {
		v := r.Intn(3)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 3)
	}
	assert.Equal(t, 0, r.Intn(0))
	assert.Equal(t, "", r.String(4, ""))
}

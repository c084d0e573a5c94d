package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashTCVKN(t *testing.T) {
	h := HashTCVKN("12345678901")

	// SHA-256 hex, 64 karakter, deterministik
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashTCVKN("12345678901"))
	assert.Equal(t, h, HashTCVKN("  12345678901  "))
	assert.NotEqual(t, h, HashTCVKN("12345678902"))
}

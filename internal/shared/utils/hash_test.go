package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashString(t *testing.T) {
	// sha256("") is a fixed, well-known value
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashString(""))
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(`() => fetch("https://evil.com")`)
	b := Fingerprint(`() => fetch("https://evil.com")`)
	c := Fingerprint(`() => fetch("https://other.com")`)

	assert.Len(t, a, FingerprintLength)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, HashString("x")[:FingerprintLength], Fingerprint("x"))
}

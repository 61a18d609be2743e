package pkce

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_VerifierIs32RawBytes(t *testing.T) {
	c := Generate()

	raw, err := base64.RawURLEncoding.DecodeString(c.Verifier)
	require.NoError(t, err)
	assert.Len(t, raw, VerifierBytes)
	assert.Len(t, c.Verifier, 43)
}

func TestGenerate_ChallengeIsSHA256OfVerifier(t *testing.T) {
	for range 20 {
		c := Generate()

		decoded, err := base64.RawURLEncoding.DecodeString(c.Challenge)
		require.NoError(t, err)

		sum := sha256.Sum256([]byte(c.Verifier))
		assert.Equal(t, sum[:], decoded)
	}
}

func TestGenerate_URLSafeWithoutPadding(t *testing.T) {
	c := Generate()

	for _, s := range []string{c.Verifier, c.Challenge} {
		assert.NotContains(t, s, "=")
		assert.NotContains(t, s, "+")
		assert.NotContains(t, s, "/")
	}
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)

	for range 100 {
		c := Generate()
		assert.False(t, seen[c.Verifier], "verifier repeated")
		seen[c.Verifier] = true
	}
}

func TestVerify(t *testing.T) {
	c := Generate()

	assert.True(t, Verify(c.Verifier, c.Challenge))
	assert.False(t, Verify(c.Verifier, Generate().Challenge))
	assert.False(t, Verify(c.Verifier, ""))
	assert.Equal(t, "S256", c.Method())
}

// RFC 7636 Appendix B test vector.
func TestVerify_RFCVector(t *testing.T) {
	assert.True(t, Verify(
		"dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk",
		"E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
	))
}

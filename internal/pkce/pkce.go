// Package pkce generates Proof Key for Code Exchange pairs (RFC 7636) for the
// OAuth2 authorization-code flow.
package pkce

import (
	"crypto/subtle"

	"golang.org/x/oauth2"
)

// Method is the only challenge method produced here.
const Method = "S256"

// VerifierBytes is the amount of randomness in a verifier. Encoded as
// unpadded base64url it yields a 43-character verifier, the RFC minimum.
const VerifierBytes = 32

// Challenge is a verifier/challenge pair for one authorization attempt.
// The verifier stays local until the code exchange; only the challenge is
// sent with the authorization request.
type Challenge struct {
	Verifier  string
	Challenge string
}

// Generate returns a fresh pair: 32 bytes from crypto/rand encoded as unpadded
// base64url, and the unpadded base64url SHA-256 of that verifier string.
func Generate() Challenge {
	verifier := oauth2.GenerateVerifier()

	return Challenge{
		Verifier:  verifier,
		Challenge: oauth2.S256ChallengeFromVerifier(verifier),
	}
}

// Method returns the challenge method, always "S256".
func (Challenge) Method() string {
	return Method
}

// Verify reports whether challenge is the S256 challenge of verifier.
func Verify(verifier, challenge string) bool {
	want := oauth2.S256ChallengeFromVerifier(verifier)

	return subtle.ConstantTimeCompare([]byte(want), []byte(challenge)) == 1
}

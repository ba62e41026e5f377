package crypto

import (
	"crypto/rand"
	"encoding/base64"
)

// NewSessionToken returns 32 bytes of entropy base64url-encoded. Tokens
// are opaque handles; all session state lives server-side.
func NewSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

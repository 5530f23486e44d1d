package secrets

import (
	"crypto/rand"
	"encoding/base64"

	dErrors "gfe/pkg/domain-errors"
)

// Generate returns 32 bytes from crypto/rand encoded as unpadded base64url.
func Generate() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate secret")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

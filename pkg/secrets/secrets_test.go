package secrets

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	seen := make(map[string]struct{}, 256)
	for range 256 {
		s, err := Generate()
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(s)
		require.NoError(t, err)
		assert.Len(t, raw, 32)

		_, dup := seen[s]
		assert.False(t, dup, "duplicate secret %q", s)
		seen[s] = struct{}{}
	}
}

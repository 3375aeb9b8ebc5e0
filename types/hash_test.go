package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFromHex(t *testing.T) {
	src := strings.Repeat("ab", HASH_BYTE_LEN)
	h, err := HashFromHex(src)
	require.NoError(t, err)
	assert.Equal(t, src, h.String())
	assert.Equal(t, "abababab", h.Prefix())
	assert.False(t, h.IsZero())

	_, err = HashFromHex("zz")
	assert.Error(t, err)

	_, err = HashFromHex("abcd")
	assert.Error(t, err)
}

func TestHash_IsZero(t *testing.T) {
	assert.True(t, Hash{}.IsZero())
}

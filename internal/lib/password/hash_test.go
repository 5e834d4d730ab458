package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHashAndCompare(t *testing.T) {
	hash, err := GetHash("secret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-password", hash)

	assert.NoError(t, CompareHash(hash, "secret-password"))
	assert.Error(t, CompareHash(hash, "wrong-password"))
}

func TestGetHash_DifferentSalts(t *testing.T) {
	h1, err := GetHash("secret-password")
	require.NoError(t, err)
	h2, err := GetHash("secret-password")
	require.NoError(t, err)

	// bcrypt солит каждый хэш отдельно
	assert.NotEqual(t, h1, h2)
}

package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerkleRoot_SmallInputs(t *testing.T) {
	empty, err := MerkleRoot(SHA256, nil)
	require.NoError(t, err)
	want, err := SHA256.Sum(nil)
	require.NoError(t, err)
	assert.Equal(t, want, empty)

	single, err := MerkleRoot(SHA256, [][]byte{[]byte("only")})
	require.NoError(t, err)
	want, err = SHA256.Sum([]byte("only"))
	require.NoError(t, err)
	assert.Equal(t, want, single)
}

func TestMerkleRoot_Deterministic(t *testing.T) {
	leaves := [][]byte{[]byte("a"), []byte("b"), []byte("c")}

	first, err := MerkleRoot(SHA256, leaves)
	require.NoError(t, err)
	second, err := MerkleRoot(SHA256, leaves)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 32)
}

func TestMerkleRoot_LeafChangeChangesRoot(t *testing.T) {
	a, err := MerkleRoot(XXH64, [][]byte{[]byte("a"), []byte("b")})
	require.NoError(t, err)
	b, err := MerkleRoot(XXH64, [][]byte{[]byte("a"), []byte("c")})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

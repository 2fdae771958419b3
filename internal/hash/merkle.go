package hash

import (
	"fmt"

	mt "github.com/txaty/go-merkletree"
)

type leaf []byte

func (l leaf) Serialize() ([]byte, error) {
	return l, nil
}

// MerkleRoot builds a binary merkle tree over leaves, in the given order,
// and returns its root. go-merkletree needs at least two blocks, so zero
// and one leaf are hashed directly.
func MerkleRoot(alg Algorithm, leaves [][]byte) ([]byte, error) {
	alg = alg.OrDefault()

	switch len(leaves) {
	case 0:
		return alg.Sum(nil)
	case 1:
		return alg.Sum(leaves[0])
	}

	blocks := make([]mt.DataBlock, len(leaves))
	for i, l := range leaves {
		blocks[i] = leaf(l)
	}

	tree, err := mt.New(&mt.Config{
		HashFunc: alg.Sum,
		Mode:     mt.ModeTreeBuild,
	}, blocks)
	if err != nil {
		return nil, fmt.Errorf("failed to build merkle tree: %w", err)
	}

	return tree.Root, nil
}

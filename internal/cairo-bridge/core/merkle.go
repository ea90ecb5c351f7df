package core

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/sha3"
)

const (
	leafPrefix byte = 0x00
	nodePrefix byte = 0x01
)

// MerkleTree commits to an ordered list of leaves
type MerkleTree struct {
	root   []byte
	leaves [][]byte
	levels [][][]byte
}

// ProofNode represents a node in a Merkle authentication path
type ProofNode struct {
	Hash    []byte `json:"hash"`
	IsRight bool   `json:"is_right"` // sibling sits to the right of the running hash
}

// NewMerkleTree creates a new Merkle tree from the given leaf data
func NewMerkleTree(data [][]byte) (*MerkleTree, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot create Merkle tree with empty data")
	}

	leaves := make([][]byte, len(data))
	for i, item := range data {
		leaves[i] = hashLeaf(item)
	}

	levels := [][][]byte{leaves}
	currentLevel := leaves

	for len(currentLevel) > 1 {
		nextLevel := make([][]byte, 0, (len(currentLevel)+1)/2)
		for i := 0; i < len(currentLevel); i += 2 {
			right := currentLevel[i]
			if i+1 < len(currentLevel) {
				right = currentLevel[i+1]
			}
			// An odd trailing node is paired with itself.
			nextLevel = append(nextLevel, hashNode(currentLevel[i], right))
		}
		levels = append(levels, nextLevel)
		currentLevel = nextLevel
	}

	return &MerkleTree{
		root:   currentLevel[0],
		leaves: leaves,
		levels: levels,
	}, nil
}

// Root returns the Merkle root
func (mt *MerkleTree) Root() []byte {
	return append([]byte(nil), mt.root...)
}

// Size returns the number of leaves
func (mt *MerkleTree) Size() int {
	return len(mt.leaves)
}

// Proof generates the authentication path for the leaf at index
func (mt *MerkleTree) Proof(index int) ([]ProofNode, error) {
	if index < 0 || index >= len(mt.leaves) {
		return nil, fmt.Errorf("index %d out of range [0, %d)", index, len(mt.leaves))
	}

	proof := make([]ProofNode, 0, len(mt.levels)-1)
	currentIndex := index

	for level := 0; level < len(mt.levels)-1; level++ {
		currentLevel := mt.levels[level]

		var siblingIndex int
		var isRight bool
		if currentIndex%2 == 0 {
			siblingIndex = currentIndex + 1
			isRight = true
		} else {
			siblingIndex = currentIndex - 1
			isRight = false
		}
		if siblingIndex >= len(currentLevel) {
			siblingIndex = currentIndex
		}

		proof = append(proof, ProofNode{
			Hash:    append([]byte(nil), currentLevel[siblingIndex]...),
			IsRight: isRight,
		})
		currentIndex /= 2
	}

	return proof, nil
}

// VerifyProof checks that leaf sits at index under root. The path length must
// match a tree of the given size.
func VerifyProof(root []byte, leaf []byte, proof []ProofNode, index, size int) bool {
	if index < 0 || index >= size || len(proof) != treeDepth(size) {
		return false
	}

	hash := hashLeaf(leaf)
	currentIndex := index
	for _, node := range proof {
		if node.IsRight != (currentIndex%2 == 0) {
			return false
		}
		if node.IsRight {
			hash = hashNode(hash, node.Hash)
		} else {
			hash = hashNode(node.Hash, hash)
		}
		currentIndex /= 2
	}

	return bytes.Equal(hash, root)
}

// MerkleRoot computes the Merkle root of the given data
func MerkleRoot(data [][]byte) ([]byte, error) {
	tree, err := NewMerkleTree(data)
	if err != nil {
		return nil, err
	}
	return tree.Root(), nil
}

func treeDepth(size int) int {
	depth := 0
	for size > 1 {
		size = (size + 1) / 2
		depth++
	}
	return depth
}

func hashLeaf(data []byte) []byte {
	h := sha3.New256()
	h.Write([]byte{leafPrefix})
	h.Write(data)
	return h.Sum(nil)
}

func hashNode(left, right []byte) []byte {
	h := sha3.New256()
	h.Write([]byte{nodePrefix})
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}

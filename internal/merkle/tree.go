package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ProofStep is one element of an inclusion proof: the sibling hash at a level
// and which side of the concatenation it sits on.
type ProofStep struct {
	Hash string `json:"hash"`
	Left bool   `json:"left"`
}

// Tree is a binary Merkle tree over hex-encoded leaf hashes. Adjacent leaves
// are paired and hashed over their concatenated raw digest bytes; a level
// with an odd node count promotes its last node unchanged to the next level.
// Verification must use the identical rule or proofs will not validate.
type Tree struct {
	root   string
	leaves []string
	levels [][]string
}

// New builds a tree over leaves. At least one leaf is required; an anchoring
// run with nothing to anchor never constructs a tree.
func New(leaves []string) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("merkle tree requires at least one leaf")
	}

	level := make([]string, len(leaves))
	copy(level, leaves)
	levels := [][]string{level}

	for len(level) > 1 {
		next := make([]string, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				parent, err := hashPair(level[i], level[i+1])
				if err != nil {
					return nil, err
				}
				next = append(next, parent)
			} else {
				next = append(next, level[i])
			}
		}
		levels = append(levels, next)
		level = next
	}

	return &Tree{
		root:   level[0],
		leaves: levels[0],
		levels: levels,
	}, nil
}

// Root returns the tree's root hash.
func (t *Tree) Root() string {
	return t.root
}

// Leaves returns the leaf hashes in tree order.
func (t *Tree) Leaves() []string {
	out := make([]string, len(t.leaves))
	copy(out, t.leaves)
	return out
}

// Prove returns the inclusion proof for the leaf at index: the sibling hashes
// with orientation flags sufficient to recompute the root from that leaf.
// A promoted odd node contributes no step at that level.
func (t *Tree) Prove(index int) ([]ProofStep, error) {
	if index < 0 || index >= len(t.leaves) {
		return nil, fmt.Errorf("leaf index %d out of range [0,%d)", index, len(t.leaves))
	}

	proof := []ProofStep{}
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := index ^ 1
		if sibling < len(level) {
			proof = append(proof, ProofStep{
				Hash: level[sibling],
				Left: sibling < index,
			})
		}
		index /= 2
	}
	return proof, nil
}

// ProveLeaf returns the inclusion proof for a leaf hash, locating it first.
func (t *Tree) ProveLeaf(leaf string) ([]ProofStep, error) {
	for i, candidate := range t.leaves {
		if candidate == leaf {
			return t.Prove(i)
		}
	}
	return nil, fmt.Errorf("leaf %s not in tree", leaf)
}

// VerifyProof recomputes the root from a leaf hash and a proof and compares
// against the expected root.
func VerifyProof(leaf string, proof []ProofStep, root string) bool {
	current := leaf
	for _, step := range proof {
		var err error
		if step.Left {
			current, err = hashPair(step.Hash, current)
		} else {
			current, err = hashPair(current, step.Hash)
		}
		if err != nil {
			return false
		}
	}
	return current == root
}

func hashPair(left, right string) (string, error) {
	lb, err := hex.DecodeString(left)
	if err != nil {
		return "", fmt.Errorf("left node is not hex: %w", err)
	}
	rb, err := hex.DecodeString(right)
	if err != nil {
		return "", fmt.Errorf("right node is not hex: %w", err)
	}
	h := sha256.New()
	h.Write(lb)
	h.Write(rb)
	return hex.EncodeToString(h.Sum(nil)), nil
}

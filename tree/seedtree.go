package tree

import (
	"errors"

	"picnic3-signature/internal/xof"
)

// ErrSeedOpening rejects seed openings that do not reconstruct.
var ErrSeedOpening = errors.New("tree: malformed seed opening")

// SeedTree derives numLeaves seeds from a root seed. Each node expands
// into its children through the XOF, bound to the salt, the repetition
// index and the node position, so no two nodes anywhere in a signing
// session share an expansion stream.
type SeedTree struct {
	l        layout
	seedSize int
	digest   int
	have     []bool
	nodes    []byte
}

func newSeedTree(numLeaves, seedSize, digestSize int) *SeedTree {
	l := newLayout(numLeaves)
	return &SeedTree{
		l:        l,
		seedSize: seedSize,
		digest:   digestSize,
		have:     make([]bool, l.numNodes),
		nodes:    make([]byte, l.numNodes*seedSize),
	}
}

func (st *SeedTree) node(i int) []byte {
	return st.nodes[i*st.seedSize : (i+1)*st.seedSize]
}

// expand derives every reachable descendant of the nodes already present.
func (st *SeedTree) expand(salt []byte, rep uint16) {
	for i := 0; i < st.l.numNodes; i++ {
		left, right := 2*i+1, 2*i+2
		if !st.have[i] || !st.l.childExists(left) {
			continue
		}
		h := xof.NewPrefixed(st.digest, xof.Prefix1)
		h.Update(st.node(i))
		h.Update(salt)
		h.UpdateU16LE(rep)
		h.UpdateU16LE(uint16(i))
		h.Squeeze(st.node(left))
		st.have[left] = true
		if st.l.childExists(right) {
			h.Squeeze(st.node(right))
			st.have[right] = true
		}
	}
}

// GenerateSeeds builds the full tree of numLeaves seeds below rootSeed.
func GenerateSeeds(numLeaves int, rootSeed, salt []byte, rep uint16, seedSize, digestSize int) *SeedTree {
	st := newSeedTree(numLeaves, seedSize, digestSize)
	copy(st.node(0), rootSeed)
	st.have[0] = true
	st.expand(salt, rep)
	return st
}

// Leaf returns leaf t. Leaves that could not be derived (hidden during
// reconstruction) read as all zero.
func (st *SeedTree) Leaf(t int) []byte {
	return st.node(st.l.leafNode(t))
}

// Leaves returns all leaf seeds in order.
func (st *SeedTree) Leaves() [][]byte {
	out := make([][]byte, st.l.numLeaves)
	for t := range out {
		out[t] = st.Leaf(t)
	}
	return out
}

// RevealSeeds returns the node data conveying every leaf outside hide.
func (st *SeedTree) RevealSeeds(hide []uint16) ([]byte, error) {
	flags, err := includedFlags(st.l.numLeaves, hide)
	if err != nil {
		return nil, err
	}
	var out []byte
	for _, i := range st.l.cover(complement(flags)) {
		out = append(out, st.node(i)...)
	}
	return out, nil
}

// RevealSeedsSize returns the byte length RevealSeeds would produce for a
// tree of numLeaves leaves, without tree data.
func RevealSeedsSize(numLeaves int, hide []uint16, seedSize int) (int, error) {
	flags, err := includedFlags(numLeaves, hide)
	if err != nil {
		return 0, err
	}
	l := newLayout(numLeaves)
	return len(l.cover(complement(flags))) * seedSize, nil
}

// ReconstructSeeds rebuilds the tree from a revealed opening, deriving all
// leaves outside hide. The opening must be length-exact.
func ReconstructSeeds(numLeaves int, hide []uint16, data, salt []byte, rep uint16, seedSize, digestSize int) (*SeedTree, error) {
	flags, err := includedFlags(numLeaves, hide)
	if err != nil {
		return nil, err
	}
	st := newSeedTree(numLeaves, seedSize, digestSize)
	cover := st.l.cover(complement(flags))
	if len(data) != len(cover)*seedSize {
		return nil, ErrSeedOpening
	}
	for k, i := range cover {
		copy(st.node(i), data[k*seedSize:(k+1)*seedSize])
		st.have[i] = true
	}
	st.expand(salt, rep)
	return st, nil
}

// Clear zeroizes all node material.
func (st *SeedTree) Clear() {
	for i := range st.nodes {
		st.nodes[i] = 0
	}
	for i := range st.have {
		st.have[i] = false
	}
}

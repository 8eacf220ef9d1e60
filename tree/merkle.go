package tree

import (
	"bytes"
	"errors"

	"picnic3-signature/internal/xof"
)

// ErrMerkle rejects Merkle openings that do not reconstruct a consistent
// tree.
var ErrMerkle = errors.New("tree: malformed merkle opening")

// MerkleTree is a salted digest tree over per-round commitments. Leaf
// digests are stored verbatim; an interior node hashes its children
// together with the salt and its own position.
type MerkleTree struct {
	l      layout
	digest int
	have   []bool
	nodes  []byte
}

// NewMerkle returns an empty tree for numLeaves digest-size leaves.
func NewMerkle(numLeaves, digestSize int) *MerkleTree {
	l := newLayout(numLeaves)
	return &MerkleTree{
		l:      l,
		digest: digestSize,
		have:   make([]bool, l.numNodes),
		nodes:  make([]byte, l.numNodes*digestSize),
	}
}

func (mt *MerkleTree) node(i int) []byte {
	return mt.nodes[i*mt.digest : (i+1)*mt.digest]
}

func (mt *MerkleTree) hashParent(p int, salt []byte, out []byte) {
	h := xof.NewPrefixed(mt.digest, xof.Prefix3)
	h.Update(mt.node(2*p + 1))
	if mt.l.childExists(2*p + 2) {
		h.Update(mt.node(2*p + 2))
	}
	h.Update(salt)
	h.UpdateU16LE(uint16(p))
	h.Squeeze(out)
}

// Build fills the tree from a complete set of leaf digests.
func (mt *MerkleTree) Build(leafDigests [][]byte, salt []byte) {
	for t := 0; t < mt.l.numLeaves; t++ {
		copy(mt.node(mt.l.leafNode(t)), leafDigests[t])
		mt.have[mt.l.leafNode(t)] = true
	}
	for p := (mt.l.numNodes - 2) / 2; p >= 0; p-- {
		if mt.l.exists[p] && mt.l.childExists(2*p+1) {
			mt.hashParent(p, salt, mt.node(p))
			mt.have[p] = true
		}
	}
}

// Root returns the root digest.
func (mt *MerkleTree) Root() []byte {
	return mt.node(0)
}

// Open returns the node data a verifier needs to account for the listed
// missing leaves when recomputing the root.
func (mt *MerkleTree) Open(missing []uint16) ([]byte, error) {
	flags, err := includedFlags(mt.l.numLeaves, missing)
	if err != nil {
		return nil, err
	}
	var out []byte
	for _, i := range mt.l.cover(flags) {
		out = append(out, mt.node(i)...)
	}
	return out, nil
}

// OpenSize returns the byte length Open would produce, without tree data.
func OpenSize(numLeaves int, missing []uint16, digestSize int) (int, error) {
	flags, err := includedFlags(numLeaves, missing)
	if err != nil {
		return 0, err
	}
	l := newLayout(numLeaves)
	return len(l.cover(flags)) * digestSize, nil
}

// AddNodes installs a received opening covering the missing leaves. The
// data must be length-exact.
func (mt *MerkleTree) AddNodes(missing []uint16, data []byte) error {
	flags, err := includedFlags(mt.l.numLeaves, missing)
	if err != nil {
		return err
	}
	cover := mt.l.cover(flags)
	if len(data) != len(cover)*mt.digest {
		return ErrMerkle
	}
	for k, i := range cover {
		copy(mt.node(i), data[k*mt.digest:(k+1)*mt.digest])
		mt.have[i] = true
	}
	return nil
}

// Verify installs the known leaf digests (nil entries are the missing
// leaves) and recomputes the tree upward. It fails if a leaf collides with
// an installed node, if a recomputed node contradicts an installed one, or
// if the root cannot be derived.
func (mt *MerkleTree) Verify(leafDigests [][]byte, salt []byte) error {
	for t := 0; t < mt.l.numLeaves; t++ {
		if leafDigests[t] == nil {
			continue
		}
		i := mt.l.leafNode(t)
		if mt.have[i] {
			return ErrMerkle
		}
		copy(mt.node(i), leafDigests[t])
		mt.have[i] = true
	}
	computed := make([]byte, mt.digest)
	for p := (mt.l.numNodes - 2) / 2; p >= 0; p-- {
		if !mt.l.exists[p] || !mt.l.childExists(2*p+1) {
			continue
		}
		if !mt.have[2*p+1] || (mt.l.childExists(2*p+2) && !mt.have[2*p+2]) {
			continue
		}
		mt.hashParent(p, salt, computed)
		if mt.have[p] {
			if !bytes.Equal(computed, mt.node(p)) {
				return ErrMerkle
			}
			continue
		}
		copy(mt.node(p), computed)
		mt.have[p] = true
	}
	if !mt.have[0] {
		return ErrMerkle
	}
	return nil
}

package tree

import (
	"bytes"
	"math/rand"
	"testing"
)

const (
	testSeedSize   = 16
	testDigestSize = 32
)

func testSalt() []byte {
	return bytes.Repeat([]byte{0x5a}, 32)
}

func TestSeedTreeDeterministic(t *testing.T) {
	root := bytes.Repeat([]byte{7}, testSeedSize)
	a := GenerateSeeds(16, root, testSalt(), 3, testSeedSize, testDigestSize)
	b := GenerateSeeds(16, root, testSalt(), 3, testSeedSize, testDigestSize)
	for i := 0; i < 16; i++ {
		if !bytes.Equal(a.Leaf(i), b.Leaf(i)) {
			t.Fatalf("leaf %d not deterministic", i)
		}
	}
	c := GenerateSeeds(16, root, testSalt(), 4, testSeedSize, testDigestSize)
	if bytes.Equal(a.Leaf(0), c.Leaf(0)) {
		t.Fatal("repetition index must separate trees")
	}
}

func TestSeedTreeRevealReconstruct(t *testing.T) {
	for _, leaves := range []int{16, 250, 13} {
		root := bytes.Repeat([]byte{9}, testSeedSize)
		st := GenerateSeeds(leaves, root, testSalt(), 0, testSeedSize, testDigestSize)

		rng := rand.New(rand.NewSource(int64(leaves)))
		hide := []uint16{uint16(rng.Intn(leaves)), uint16(rng.Intn(leaves)), 0}

		data, err := st.RevealSeeds(hide)
		if err != nil {
			t.Fatal(err)
		}
		size, err := RevealSeedsSize(leaves, hide, testSeedSize)
		if err != nil {
			t.Fatal(err)
		}
		if size != len(data) {
			t.Fatalf("RevealSeedsSize = %d, reveal produced %d", size, len(data))
		}

		re, err := ReconstructSeeds(leaves, hide, data, testSalt(), 0, testSeedSize, testDigestSize)
		if err != nil {
			t.Fatal(err)
		}
		hidden := map[uint16]bool{}
		for _, h := range hide {
			hidden[h] = true
		}
		zero := make([]byte, testSeedSize)
		for i := 0; i < leaves; i++ {
			if hidden[uint16(i)] {
				if !bytes.Equal(re.Leaf(i), zero) {
					t.Fatalf("hidden leaf %d must not be derivable", i)
				}
				continue
			}
			if !bytes.Equal(re.Leaf(i), st.Leaf(i)) {
				t.Fatalf("leaf %d not reconstructed (leaves=%d)", i, leaves)
			}
		}
	}
}

func TestSeedTreeRejectsBadOpening(t *testing.T) {
	root := bytes.Repeat([]byte{1}, testSeedSize)
	st := GenerateSeeds(16, root, testSalt(), 0, testSeedSize, testDigestSize)
	hide := []uint16{5}
	data, _ := st.RevealSeeds(hide)

	if _, err := ReconstructSeeds(16, hide, data[:len(data)-1], testSalt(), 0, testSeedSize, testDigestSize); err == nil {
		t.Fatal("truncated opening must be rejected")
	}
	if _, err := ReconstructSeeds(16, hide, append(data, 0), testSalt(), 0, testSeedSize, testDigestSize); err == nil {
		t.Fatal("oversized opening must be rejected")
	}
	if _, err := st.RevealSeeds([]uint16{16}); err == nil {
		t.Fatal("out-of-range hide list must be rejected")
	}
	if _, err := RevealSeedsSize(16, []uint16{99}, testSeedSize); err == nil {
		t.Fatal("out-of-range size query must be rejected")
	}
}

func TestSeedTreeRevealHidesSeeds(t *testing.T) {
	root := bytes.Repeat([]byte{3}, testSeedSize)
	st := GenerateSeeds(16, root, testSalt(), 0, testSeedSize, testDigestSize)
	hide := []uint16{11}
	data, _ := st.RevealSeeds(hide)
	if bytes.Contains(data, st.Leaf(11)) {
		t.Fatal("revealed data must not contain the hidden leaf seed")
	}
}

func merkleLeaves(n int) [][]byte {
	rng := rand.New(rand.NewSource(42))
	out := make([][]byte, n)
	for i := range out {
		out[i] = make([]byte, testDigestSize)
		rng.Read(out[i])
	}
	return out
}

func TestMerkleOpenVerify(t *testing.T) {
	for _, n := range []int{16, 250} {
		leaves := merkleLeaves(n)
		mt := NewMerkle(n, testDigestSize)
		mt.Build(leaves, testSalt())

		missing := []uint16{0, uint16(n / 2), uint16(n - 1)}
		isMissing := map[uint16]bool{}
		for _, m := range missing {
			isMissing[m] = true
		}
		opening, err := mt.Open(missing)
		if err != nil {
			t.Fatal(err)
		}
		size, err := OpenSize(n, missing, testDigestSize)
		if err != nil {
			t.Fatal(err)
		}
		if size != len(opening) {
			t.Fatalf("OpenSize = %d, opening is %d", size, len(opening))
		}

		partial := make([][]byte, n)
		for i := range partial {
			if !isMissing[uint16(i)] {
				partial[i] = leaves[i]
			}
		}
		re := NewMerkle(n, testDigestSize)
		if err := re.AddNodes(missing, opening); err != nil {
			t.Fatal(err)
		}
		if err := re.Verify(partial, testSalt()); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(re.Root(), mt.Root()) {
			t.Fatal("reconstructed root differs")
		}
	}
}

func TestMerkleTamperedLeafChangesRoot(t *testing.T) {
	n := 32
	leaves := merkleLeaves(n)
	mt := NewMerkle(n, testDigestSize)
	mt.Build(leaves, testSalt())

	missing := []uint16{3}
	opening, _ := mt.Open(missing)

	partial := make([][]byte, n)
	for i := range partial {
		if i != 3 {
			partial[i] = append([]byte(nil), leaves[i]...)
		}
	}
	partial[7][0] ^= 1

	re := NewMerkle(n, testDigestSize)
	if err := re.AddNodes(missing, opening); err != nil {
		t.Fatal(err)
	}
	if err := re.Verify(partial, testSalt()); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(re.Root(), mt.Root()) {
		t.Fatal("tampered leaf must change the root")
	}
}

func TestMerkleRejectsBadOpening(t *testing.T) {
	n := 16
	leaves := merkleLeaves(n)
	mt := NewMerkle(n, testDigestSize)
	mt.Build(leaves, testSalt())
	missing := []uint16{2, 9}
	opening, _ := mt.Open(missing)

	re := NewMerkle(n, testDigestSize)
	if err := re.AddNodes(missing, opening[:len(opening)-1]); err == nil {
		t.Fatal("short opening must be rejected")
	}
	re = NewMerkle(n, testDigestSize)
	if err := re.AddNodes([]uint16{99}, opening); err == nil {
		t.Fatal("out-of-range missing list must be rejected")
	}

	// a cover that also claims an opened leaf must collide in Verify
	re = NewMerkle(n, testDigestSize)
	if err := re.AddNodes([]uint16{2, 9, 4}, mustOpen(t, mt, []uint16{2, 9, 4})); err != nil {
		t.Fatal(err)
	}
	partial := make([][]byte, n)
	for i := range partial {
		if i != 2 && i != 9 {
			partial[i] = leaves[i]
		}
	}
	if err := re.Verify(partial, testSalt()); err == nil {
		t.Fatal("overlapping cover must be rejected")
	}
}

func mustOpen(t *testing.T, mt *MerkleTree, missing []uint16) []byte {
	t.Helper()
	data, err := mt.Open(missing)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// Package lowmc implements the LowMC block cipher as used by the
// signature scheme: plain evaluation for key generation, the offline
// auxiliary-tape phase that fixes multiplication-gate masks, and the
// online masked simulation across all MPC parties.
//
// Only full S-box-layer instances are supported (state width n equal to
// 3m), which covers every parameter set of the scheme. Round matrices and
// constants are derived from a fixed XOF stream per shape, redrawing any
// linear layer that is not invertible.
package lowmc

import (
	"math/bits"

	"picnic3-signature/internal/bitio"
	"picnic3-signature/internal/xof"
)

// Instance holds one LowMC parameterization with its round material.
type Instance struct {
	N  int // state and key width in bits
	M  int // S-boxes per round
	R  int // rounds
	IO int // bytes per state/key block

	km   []matrix // key matrices K_0..K_R
	lm   []matrix // linear layers L_0..L_{R-1}
	rc   [][]byte // round constants RC_0..RC_{R-1}
	mder matrix   // L_{R-1}^-1 * K_R, for the final-round derived masks
}

// matrix is row-major over GF(2); each row is IO bytes with padding bits
// clear.
type matrix [][]byte

const instanceLabel = "lowmc-instance"

// Generate derives the instance for shape (n, m, r). The derivation is
// deterministic; the same shape always yields the same instance.
func Generate(n, m, r int) *Instance {
	if n != 3*m {
		panic("lowmc: state width must equal 3*m")
	}
	inst := &Instance{N: n, M: m, R: r, IO: bitio.NumBytes(n)}
	h := xof.New(32)
	h.Update([]byte(instanceLabel))
	h.UpdateU16LE(uint16(n))
	h.UpdateU16LE(uint16(m))
	h.UpdateU16LE(uint16(r))

	inst.km = make([]matrix, r+1)
	for i := range inst.km {
		inst.km[i] = inst.squeezeMatrix(h)
	}
	inst.lm = make([]matrix, r)
	for i := range inst.lm {
		for {
			cand := inst.squeezeMatrix(h)
			if _, ok := inst.invert(cand); ok {
				inst.lm[i] = cand
				break
			}
		}
	}
	inst.rc = make([][]byte, r)
	for i := range inst.rc {
		inst.rc[i] = inst.squeezeRow(h)
	}
	linv, ok := inst.invert(inst.lm[r-1])
	if !ok {
		panic("lowmc: linear layer not invertible")
	}
	inst.mder = inst.matMul(linv, inst.km[r])
	return inst
}

// ViewBytes returns the transcript size per party: one broadcast bit per
// AND gate.
func (inst *Instance) ViewBytes() int {
	return bitio.NumBytes(3 * inst.R * inst.M)
}

// TapeBytes returns the per-party random tape length.
func (inst *Instance) TapeBytes() int {
	return 2 * inst.ViewBytes()
}

func (inst *Instance) squeezeRow(h *xof.Context) []byte {
	row := make([]byte, inst.IO)
	h.Squeeze(row)
	bitio.ZeroPadding(row, inst.N)
	return row
}

func (inst *Instance) squeezeMatrix(h *xof.Context) matrix {
	m := make(matrix, inst.N)
	for i := range m {
		m[i] = inst.squeezeRow(h)
	}
	return m
}

// mulVec computes mat * v over GF(2); v carries n bits in IO bytes.
func (inst *Instance) mulVec(mat matrix, v []byte) []byte {
	out := make([]byte, inst.IO)
	for i, row := range mat {
		var acc byte
		for b := 0; b < inst.IO; b++ {
			acc ^= row[b] & v[b]
		}
		bitio.Set(out, i, byte(bits.OnesCount8(acc)&1))
	}
	return out
}

// mulWords applies mat to a vector of per-party share words.
func (inst *Instance) mulWords(mat matrix, w []uint64) []uint64 {
	out := make([]uint64, inst.N)
	for i, row := range mat {
		var acc uint64
		for b, rb := range row {
			for ; rb != 0; rb &= rb - 1 {
				acc ^= w[8*b+bits.TrailingZeros8(rb)]
			}
		}
		out[i] = acc
	}
	return out
}

// matMul returns a*b as a matrix acting like x -> a(b(x)).
func (inst *Instance) matMul(a, b matrix) matrix {
	out := make(matrix, inst.N)
	for i, row := range a {
		acc := make([]byte, inst.IO)
		for j := 0; j < inst.N; j++ {
			if bitio.Get(row, j) == 1 {
				bitio.XorBytes(acc, acc, b[j], inst.IO)
			}
		}
		out[i] = acc
	}
	return out
}

// invert returns mat^-1 via Gauss-Jordan elimination, or ok=false if mat
// is singular.
func (inst *Instance) invert(mat matrix) (matrix, bool) {
	n := inst.N
	work := make(matrix, n)
	id := make(matrix, n)
	for i := range work {
		work[i] = append([]byte(nil), mat[i]...)
		id[i] = make([]byte, inst.IO)
		bitio.Set(id[i], i, 1)
	}
	for c := 0; c < n; c++ {
		pivot := -1
		for r := c; r < n; r++ {
			if bitio.Get(work[r], c) == 1 {
				pivot = r
				break
			}
		}
		if pivot < 0 {
			return nil, false
		}
		work[c], work[pivot] = work[pivot], work[c]
		id[c], id[pivot] = id[pivot], id[c]
		for r := 0; r < n; r++ {
			if r != c && bitio.Get(work[r], c) == 1 {
				bitio.XorBytes(work[r], work[r], work[c], inst.IO)
				bitio.XorBytes(id[r], id[r], id[c], inst.IO)
			}
		}
	}
	return id, true
}

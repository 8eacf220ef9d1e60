package lowmc

import "picnic3-signature/internal/bitio"

// Encrypt evaluates the cipher in plain: out = LowMC(key, pt). Both
// inputs carry n bits in IO bytes with zero padding.
func (inst *Instance) Encrypt(key, pt []byte) []byte {
	st := inst.mulVec(inst.km[0], key)
	bitio.XorBytes(st, st, pt, inst.IO)
	for j := 0; j < inst.R; j++ {
		st = inst.sboxPlain(st)
		st = inst.mulVec(inst.lm[j], st)
		bitio.XorBytes(st, st, inst.rc[j], inst.IO)
		rk := inst.mulVec(inst.km[j+1], key)
		bitio.XorBytes(st, st, rk, inst.IO)
	}
	return st
}

// sboxPlain applies the 3-bit S-box to every triple. Bits (c, b, a) sit at
// positions (3g, 3g+1, 3g+2) and map to (a^b^c^ab, a^b^ca, a^bc).
func (inst *Instance) sboxPlain(st []byte) []byte {
	out := make([]byte, inst.IO)
	for g := 0; g < inst.N; g += 3 {
		a := bitio.Get(st, g+2)
		b := bitio.Get(st, g+1)
		c := bitio.Get(st, g)
		bitio.Set(out, g+2, a^(b&c))
		bitio.Set(out, g+1, a^b^(c&a))
		bitio.Set(out, g, a^b^c^(a&b))
	}
	return out
}

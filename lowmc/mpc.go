package lowmc

import (
	"bytes"
	"errors"

	"picnic3-signature/internal/bitio"
)

// ErrSimulation reports that the online simulation did not reproduce the
// public output.
var ErrSimulation = errors.New("lowmc: online simulation output mismatch")

// ComputeAux runs the offline phase over the tape parity. key is the
// XOR of all parties' key-mask shares (the first IO bytes of the tape
// parity). For every AND gate the last party's helper share is fixed so
// that the helper parity equals the product of the gate's input masks;
// each fixed bit is appended to t.AuxBits. The caller must set t.Pos to n
// and t.AuxPos to 0 beforehand.
//
// The tape bit budget per round is 2n: n helper shares followed by n
// fresh output-mask shares. The final round draws no fresh shares; its
// output masks are derived from the key shares so that the masks on the
// cipher output cancel (see SimulateOnline).
func (inst *Instance) ComputeAux(key []byte, t *RandomTape) {
	last := len(t.Tape) - 1
	mask := inst.mulVec(inst.km[0], key)
	for j := 0; j < inst.R; j++ {
		for base := 0; base < inst.N; base += 3 {
			a := bitio.Get(mask, base+2)
			b := bitio.Get(mask, base+1)
			c := bitio.Get(mask, base)
			for _, want := range [3]byte{a & b, b & c, c & a} {
				parity := bitio.Get(t.Parity, t.Pos)
				cur := bitio.Get(t.Tape[last], t.Pos)
				fixed := want ^ parity ^ cur
				bitio.Set(t.Tape[last], t.Pos, fixed)
				bitio.Set(t.AuxBits, t.AuxPos, fixed)
				t.AuxPos++
				t.Pos++
			}
		}
		if j == inst.R-1 {
			break
		}
		fresh := make([]byte, inst.IO)
		for i := 0; i < inst.N; i++ {
			bitio.Set(fresh, i, bitio.Get(t.Parity, t.Pos))
			t.Pos++
		}
		mask = inst.nextMask(mask, fresh, key, j)
	}
}

// nextMask propagates the state mask through the S-box output masks and
// the round's linear layer and key addition.
func (inst *Instance) nextMask(mask, fresh, key []byte, j int) []byte {
	out := make([]byte, inst.IO)
	for base := 0; base < inst.N; base += 3 {
		a := bitio.Get(mask, base+2)
		b := bitio.Get(mask, base+1)
		c := bitio.Get(mask, base)
		bitio.Set(out, base+2, a^bitio.Get(fresh, base+1))
		bitio.Set(out, base+1, a^b^bitio.Get(fresh, base+2))
		bitio.Set(out, base, a^b^c^bitio.Get(fresh, base))
	}
	next := inst.mulVec(inst.lm[j], out)
	rk := inst.mulVec(inst.km[j+1], key)
	bitio.XorBytes(next, next, rk, inst.IO)
	return next
}

// SimulateOnline replays the offline tape bits from position zero and
// runs the masked evaluation, appending one broadcast bit per party per
// AND gate to msgs. When msgs.Unopened is non-negative that party's
// broadcasts are taken from its recorded transcript and its own
// transcript is left untouched. The masked output must equal pk; the
// final round's output masks are derived per party from the key shares so
// that they cancel, which makes this check independent of any single
// party's tape.
func (inst *Instance) SimulateOnline(maskedKey []byte, t *RandomTape, msgs *Msgs, pt, pk []byte) error {
	parties := len(t.Tape)

	keyW := make([]uint64, inst.N)
	for i := range keyW {
		keyW[i] = t.word()
	}
	st := inst.mulVec(inst.km[0], maskedKey)
	bitio.XorBytes(st, st, pt, inst.IO)
	stW := inst.mulWords(inst.km[0], keyW)

	hw := make([]uint64, inst.N)
	for j := 0; j < inst.R; j++ {
		for g := range hw {
			hw[g] = t.word()
		}
		var fw []uint64
		if j < inst.R-1 {
			fw = make([]uint64, inst.N)
			for g := range fw {
				fw[g] = t.word()
			}
		} else {
			fw = inst.finalFresh(keyW, stW)
		}

		newSt := make([]byte, inst.IO)
		newW := make([]uint64, inst.N)
		for base := 0; base < inst.N; base += 3 {
			aPub := bitio.Get(st, base+2)
			bPub := bitio.Get(st, base+1)
			cPub := bitio.Get(st, base)
			sa, sb, sc := stW[base+2], stW[base+1], stW[base]

			mAB := inst.mpcAND(aPub, bPub, sa, sb, hw[base], fw[base], msgs, parties)
			mBC := inst.mpcAND(bPub, cPub, sb, sc, hw[base+1], fw[base+1], msgs, parties)
			mCA := inst.mpcAND(cPub, aPub, sc, sa, hw[base+2], fw[base+2], msgs, parties)

			bitio.Set(newSt, base+2, aPub^mBC)
			bitio.Set(newSt, base+1, aPub^bPub^mCA)
			bitio.Set(newSt, base, aPub^bPub^cPub^mAB)
			newW[base+2] = sa ^ fw[base+1]
			newW[base+1] = sa ^ sb ^ fw[base+2]
			newW[base] = sa ^ sb ^ sc ^ fw[base]
		}

		st = inst.mulVec(inst.lm[j], newSt)
		bitio.XorBytes(st, st, inst.rc[j], inst.IO)
		rk := inst.mulVec(inst.km[j+1], maskedKey)
		bitio.XorBytes(st, st, rk, inst.IO)
		stW = inst.mulWords(inst.lm[j], newW)
		rkW := inst.mulWords(inst.km[j+1], keyW)
		for i := range stW {
			stW[i] ^= rkW[i]
		}
	}

	if !bytes.Equal(st, pk[:inst.IO]) {
		return ErrSimulation
	}
	return nil
}

// finalFresh derives the last round's fresh-mask shares. Solving
// L(sboxOut(in, fresh)) + K_R(key) = 0 for fresh gives, per party,
// Q^-1(L^-1 K_R keyShare + P inShare) with P the linear part of the
// S-box mask map and Q its fresh-mask placement.
func (inst *Instance) finalFresh(keyW, stW []uint64) []uint64 {
	target := inst.mulWords(inst.mder, keyW)
	fw := make([]uint64, inst.N)
	for base := 0; base < inst.N; base += 3 {
		sa, sb, sc := stW[base+2], stW[base+1], stW[base]
		fw[base+1] = target[base+2] ^ sa
		fw[base+2] = target[base+1] ^ sa ^ sb
		fw[base] = target[base] ^ sa ^ sb ^ sc
	}
	return fw
}

// mpcAND evaluates one masked AND gate: every party's broadcast share is
// appended to its transcript and the masked product bit is returned.
func (inst *Instance) mpcAND(aPub, bPub byte, sa, sb, helper, fresh uint64, msgs *Msgs, parties int) byte {
	s := helper ^ fresh
	if aPub == 1 {
		s ^= sb
	}
	if bPub == 1 {
		s ^= sa
	}
	if msgs.Unopened >= 0 {
		rec := bitio.Get(msgs.Msgs[msgs.Unopened], msgs.Pos)
		s = s&^(1<<uint(msgs.Unopened)) | uint64(rec)<<uint(msgs.Unopened)
	}
	for p := 0; p < parties; p++ {
		if p == msgs.Unopened {
			continue
		}
		bitio.Set(msgs.Msgs[p], msgs.Pos, byte(s>>uint(p))&1)
	}
	msgs.Pos++
	return bitio.Parity64(s) ^ (aPub & bPub)
}

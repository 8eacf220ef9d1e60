package sign

import (
	"picnic3-signature/internal/bitio"
	"picnic3-signature/internal/xof"
	"picnic3-signature/lowmc"
)

// createRandomTapes expands the per-party seeds of repetition t into the
// parties' random tapes, four lanes at a time. Each lane absorbs its own
// seed, the common salt, the repetition index and its party index.
func createRandomTapes(tapes *lowmc.RandomTape, seeds [][]byte, salt []byte, t uint16, p *Params) {
	tapeLen := p.LowMC.TapeBytes()
	for i := 0; i < p.Parties; i += 4 {
		h := xof.NewX4(p.Digest)
		h.Update4(seeds[i], seeds[i+1], seeds[i+2], seeds[i+3])
		h.Update1(salt)
		h.UpdateU16LE(t)
		h.UpdateU16s([4]uint16{uint16(i), uint16(i + 1), uint16(i + 2), uint16(i + 3)})
		h.Squeeze4(tapes.Tape[i][:tapeLen], tapes.Tape[i+1][:tapeLen],
			tapes.Tape[i+2][:tapeLen], tapes.Tape[i+3][:tapeLen])
	}
}

// computeAuxTape runs the offline phase for one repetition: it reduces
// all tapes into the parity tape, interprets the leading bytes as the
// key-mask block, lets the cipher fix the last party's multiplication
// masks, and rewinds the tape cursor so the online phase replays the same
// bits. When inputMasks is non-nil the reduced key masks are written out.
func computeAuxTape(tapes *lowmc.RandomTape, inputMasks []byte, p *Params) {
	inst := p.LowMC
	tapeLen := inst.TapeBytes()

	for i := range tapes.Parity {
		tapes.Parity[i] = 0
	}
	for _, tp := range tapes.Tape {
		bitio.XorBytes(tapes.Parity, tapes.Parity, tp, tapeLen)
	}
	key := make([]byte, inst.IO)
	copy(key, tapes.Parity[:inst.IO])
	bitio.ZeroPadding(key, inst.N)

	tapes.Pos = inst.N
	tapes.AuxPos = 0
	for i := range tapes.AuxBits {
		tapes.AuxBits[i] = 0
	}
	inst.ComputeAux(key, tapes)

	if inputMasks != nil {
		copy(inputMasks, key)
	}
	// the online execution must consume the exact bits the offline phase saw
	tapes.Pos = 0
}

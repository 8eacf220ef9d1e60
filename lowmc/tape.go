package lowmc

import "picnic3-signature/internal/bitio"

// RandomTape holds the per-repetition random tapes of all parties, the
// XOR of all tapes, and the auxiliary bits fixed for the last party
// during the offline phase. Pos is the bit cursor for tape consumption;
// AuxPos the write cursor into AuxBits.
type RandomTape struct {
	Tape    [][]byte
	Parity  []byte
	AuxBits []byte
	Pos     int
	AuxPos  int
}

// NewRandomTape allocates tapes for the given party count and view size.
func NewRandomTape(parties, viewBytes int) *RandomTape {
	t := &RandomTape{
		Tape:    make([][]byte, parties),
		Parity:  make([]byte, 2*viewBytes),
		AuxBits: make([]byte, viewBytes),
	}
	for i := range t.Tape {
		t.Tape[i] = make([]byte, 2*viewBytes)
	}
	return t
}

// word gathers one bit from every party's tape at Pos and advances the
// cursor. Bit p of the result is party p's share.
func (t *RandomTape) word() uint64 {
	var w uint64
	for p := range t.Tape {
		w |= uint64(bitio.Get(t.Tape[p], t.Pos)) << uint(p)
	}
	t.Pos++
	return w
}

// SetAuxBits writes the n*r auxiliary bits back into the last party's
// tape at the positions the offline phase fixed them: bit i of round j
// lands at n + 2nj + i.
func (inst *Instance) SetAuxBits(t *RandomTape, aux []byte) {
	last := len(t.Tape) - 1
	in := 0
	for j := 0; j < inst.R; j++ {
		for i := 0; i < inst.N; i++ {
			bitio.Set(t.Tape[last], inst.N+inst.N*2*j+i, bitio.Get(aux, in))
			in++
		}
	}
}

// Msgs collects the per-party broadcast transcripts of one repetition.
// Unopened is the party whose transcript is installed rather than
// simulated during verification, or -1 when signing.
type Msgs struct {
	Msgs     [][]byte
	Pos      int
	Unopened int
}

// NewMsgs allocates transcripts for the given party count and view size.
func NewMsgs(parties, viewBytes int) *Msgs {
	m := &Msgs{Msgs: make([][]byte, parties), Unopened: -1}
	for i := range m.Msgs {
		m.Msgs[i] = make([]byte, viewBytes)
	}
	return m
}

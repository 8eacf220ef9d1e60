package lowmc

import (
	"bytes"
	"math/rand"
	"testing"

	"picnic3-signature/internal/bitio"
)

var testInst = Generate(21, 7, 2)

const testParties = 16

// fillTapes deterministically populates all party tapes.
func fillTapes(t *RandomTape, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for _, tp := range t.Tape {
		rng.Read(tp)
	}
}

// offline reduces the tapes, runs the aux phase and rewinds, returning
// the key-mask parity.
func offline(inst *Instance, t *RandomTape) []byte {
	for i := range t.Parity {
		t.Parity[i] = 0
	}
	for _, tp := range t.Tape {
		bitio.XorBytes(t.Parity, t.Parity, tp, len(t.Parity))
	}
	key := make([]byte, inst.IO)
	copy(key, t.Parity[:inst.IO])
	bitio.ZeroPadding(key, inst.N)
	t.Pos = inst.N
	t.AuxPos = 0
	inst.ComputeAux(key, t)
	t.Pos = 0
	return key
}

func randomBlock(inst *Instance, rng *rand.Rand) []byte {
	b := make([]byte, inst.IO)
	rng.Read(b)
	bitio.ZeroPadding(b, inst.N)
	return b
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(21, 7, 2)
	b := Generate(21, 7, 2)
	rng := rand.New(rand.NewSource(1))
	key := randomBlock(a, rng)
	pt := randomBlock(a, rng)
	if !bytes.Equal(a.Encrypt(key, pt), b.Encrypt(key, pt)) {
		t.Fatal("instance generation must be deterministic")
	}
}

func TestGenerateRejectsBadShape(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for n != 3m")
		}
	}()
	Generate(20, 7, 2)
}

func TestLinearLayersInvertible(t *testing.T) {
	for j, lm := range testInst.lm {
		inv, ok := testInst.invert(lm)
		if !ok {
			t.Fatalf("linear layer %d not invertible", j)
		}
		rng := rand.New(rand.NewSource(int64(j)))
		v := randomBlock(testInst, rng)
		round := testInst.mulVec(inv, testInst.mulVec(lm, v))
		if !bytes.Equal(round, v) {
			t.Fatalf("inverse of layer %d does not round-trip", j)
		}
	}
}

func TestEncryptDependsOnInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	key := randomBlock(testInst, rng)
	pt := randomBlock(testInst, rng)
	out := testInst.Encrypt(key, pt)
	if !bitio.PaddingBitsZero(out, testInst.IO, testInst.N) {
		t.Fatal("ciphertext padding bits must be zero")
	}
	key2 := append([]byte(nil), key...)
	key2[0] ^= 1
	if bytes.Equal(out, testInst.Encrypt(key2, pt)) {
		t.Fatal("flipping a key bit must change the output")
	}
	pt2 := append([]byte(nil), pt...)
	pt2[0] ^= 1
	if bytes.Equal(out, testInst.Encrypt(key, pt2)) {
		t.Fatal("flipping a plaintext bit must change the output")
	}
}

func TestSimulateOnlineMatchesPlain(t *testing.T) {
	inst := testInst
	rng := rand.New(rand.NewSource(3))
	sk := randomBlock(inst, rng)
	pt := randomBlock(inst, rng)
	pk := inst.Encrypt(sk, pt)

	tapes := NewRandomTape(testParties, inst.ViewBytes())
	fillTapes(tapes, 99)
	keyMask := offline(inst, tapes)

	maskedKey := make([]byte, inst.IO)
	bitio.XorBytes(maskedKey, keyMask, sk, inst.IO)

	msgs := NewMsgs(testParties, inst.ViewBytes())
	if err := inst.SimulateOnline(maskedKey, tapes, msgs, pt, pk); err != nil {
		t.Fatalf("simulation rejected a correct witness: %v", err)
	}
	if msgs.Pos != 3*inst.R*inst.M {
		t.Fatalf("transcript is %d bits, want %d", msgs.Pos, 3*inst.R*inst.M)
	}
}

func TestSimulateOnlineRejectsWrongOutput(t *testing.T) {
	inst := testInst
	rng := rand.New(rand.NewSource(4))
	sk := randomBlock(inst, rng)
	pt := randomBlock(inst, rng)
	pk := inst.Encrypt(sk, pt)
	pk[0] ^= 1

	tapes := NewRandomTape(testParties, inst.ViewBytes())
	fillTapes(tapes, 100)
	keyMask := offline(inst, tapes)
	maskedKey := make([]byte, inst.IO)
	bitio.XorBytes(maskedKey, keyMask, sk, inst.IO)

	msgs := NewMsgs(testParties, inst.ViewBytes())
	if err := inst.SimulateOnline(maskedKey, tapes, msgs, pt, pk); err == nil {
		t.Fatal("simulation must reject a wrong public output")
	}
}

func TestSetAuxBitsRestoresFixedTape(t *testing.T) {
	inst := testInst
	tapes := NewRandomTape(testParties, inst.ViewBytes())
	fillTapes(tapes, 101)

	fresh := NewRandomTape(testParties, inst.ViewBytes())
	fillTapes(fresh, 101)

	offline(inst, tapes)

	inst.SetAuxBits(fresh, tapes.AuxBits)
	last := testParties - 1
	if !bytes.Equal(fresh.Tape[last], tapes.Tape[last]) {
		t.Fatal("SetAuxBits must reproduce the fixed last-party tape")
	}
}

func TestSimulateOnlineWithUnopenedParty(t *testing.T) {
	inst := testInst
	rng := rand.New(rand.NewSource(5))
	sk := randomBlock(inst, rng)
	pt := randomBlock(inst, rng)
	pk := inst.Encrypt(sk, pt)

	// signer run
	tapes := NewRandomTape(testParties, inst.ViewBytes())
	fillTapes(tapes, 102)
	keyMask := offline(inst, tapes)
	maskedKey := make([]byte, inst.IO)
	bitio.XorBytes(maskedKey, keyMask, sk, inst.IO)
	signed := NewMsgs(testParties, inst.ViewBytes())
	if err := inst.SimulateOnline(maskedKey, tapes, signed, pt, pk); err != nil {
		t.Fatal(err)
	}

	for _, u := range []int{0, 7, testParties - 1} {
		// verifier run: same tapes with the aux bits installed, the
		// unopened party zeroed and its transcript taken from the proof
		re := NewRandomTape(testParties, inst.ViewBytes())
		fillTapes(re, 102)
		inst.SetAuxBits(re, tapes.AuxBits)
		for i := range re.Tape[u] {
			re.Tape[u][i] = 0
		}

		msgs := NewMsgs(testParties, inst.ViewBytes())
		copy(msgs.Msgs[u], signed.Msgs[u])
		msgs.Unopened = u
		if err := inst.SimulateOnline(maskedKey, re, msgs, pt, pk); err != nil {
			t.Fatalf("unopened=%d: %v", u, err)
		}
		for p := 0; p < testParties; p++ {
			if !bytes.Equal(msgs.Msgs[p], signed.Msgs[p]) {
				t.Fatalf("unopened=%d: party %d transcript diverges", u, p)
			}
		}
	}
}

func TestSimulateOnlineRejectsTamperedTranscript(t *testing.T) {
	inst := testInst
	rng := rand.New(rand.NewSource(6))
	sk := randomBlock(inst, rng)
	pt := randomBlock(inst, rng)
	pk := inst.Encrypt(sk, pt)

	tapes := NewRandomTape(testParties, inst.ViewBytes())
	fillTapes(tapes, 103)
	keyMask := offline(inst, tapes)
	maskedKey := make([]byte, inst.IO)
	bitio.XorBytes(maskedKey, keyMask, sk, inst.IO)
	signed := NewMsgs(testParties, inst.ViewBytes())
	if err := inst.SimulateOnline(maskedKey, tapes, signed, pt, pk); err != nil {
		t.Fatal(err)
	}

	u := 3
	re := NewRandomTape(testParties, inst.ViewBytes())
	fillTapes(re, 103)
	inst.SetAuxBits(re, tapes.AuxBits)
	for i := range re.Tape[u] {
		re.Tape[u][i] = 0
	}
	msgs := NewMsgs(testParties, inst.ViewBytes())
	copy(msgs.Msgs[u], signed.Msgs[u])
	msgs.Msgs[u][0] ^= 1
	msgs.Unopened = u
	if err := inst.SimulateOnline(maskedKey, re, msgs, pt, pk); err == nil {
		t.Fatal("tampered unopened transcript must be rejected")
	}
}

// Package picnic exposes the caller-facing surface of the signature
// scheme: parameter sets, key generation, signing and verification, and
// key serialization.
package picnic

import (
	"fmt"
	"sync"

	"picnic3-signature/internal/bitio"
	"picnic3-signature/lowmc"
	"picnic3-signature/sign"
)

// Params identifies one protocol instance. All values are public and
// immutable; the cipher shape is (StateBits, SBoxes, CipherRounds) with
// StateBits = 3*SBoxes.
type Params struct {
	Name    string
	Digest  int
	Seed    int
	Parties int
	Rounds  int
	Opened  int

	StateBits    int
	SBoxes       int
	CipherRounds int
}

// The standard parameter sets, and a reduced instance for tests and
// experimentation.
var (
	Picnic3L1 = Params{Name: "picnic3-L1", Digest: 32, Seed: 16, Parties: 16,
		Rounds: 250, Opened: 36, StateBits: 129, SBoxes: 43, CipherRounds: 4}
	Picnic3L3 = Params{Name: "picnic3-L3", Digest: 48, Seed: 24, Parties: 16,
		Rounds: 419, Opened: 52, StateBits: 192, SBoxes: 64, CipherRounds: 4}
	Picnic3L5 = Params{Name: "picnic3-L5", Digest: 64, Seed: 32, Parties: 16,
		Rounds: 601, Opened: 68, StateBits: 255, SBoxes: 85, CipherRounds: 4}
	Picnic3Test = Params{Name: "picnic3-test", Digest: 32, Seed: 16, Parties: 16,
		Rounds: 16, Opened: 6, StateBits: 21, SBoxes: 7, CipherRounds: 2}
)

// IOSize returns the byte length of keys, plaintexts and public outputs.
func (p Params) IOSize() int { return bitio.NumBytes(p.StateBits) }

// Validate checks the structural invariants of the parameter set.
func (p Params) Validate() error {
	if p.Parties <= 0 || p.Parties%4 != 0 {
		return fmt.Errorf("picnic: parties (%d) must be a positive multiple of 4", p.Parties)
	}
	if p.Opened <= 0 || p.Opened >= p.Rounds {
		return fmt.Errorf("picnic: opened rounds (%d) must be in (0, %d)", p.Opened, p.Rounds)
	}
	if bitio.CeilLog2(p.Rounds) < 4 || bitio.CeilLog2(p.Parties) < 4 {
		return fmt.Errorf("picnic: challenge chunks need at least 4 bits")
	}
	if p.StateBits != 3*p.SBoxes {
		return fmt.Errorf("picnic: state width (%d) must equal 3*SBoxes", p.StateBits)
	}
	if p.CipherRounds <= 0 {
		return fmt.Errorf("picnic: cipher rounds must be positive")
	}
	if p.Digest <= 0 || p.Seed <= 0 {
		return fmt.Errorf("picnic: digest and seed sizes must be positive")
	}
	return nil
}

var (
	instMu    sync.Mutex
	instances = map[[3]int]*lowmc.Instance{}
)

func instance(p Params) *lowmc.Instance {
	key := [3]int{p.StateBits, p.SBoxes, p.CipherRounds}
	instMu.Lock()
	defer instMu.Unlock()
	inst, ok := instances[key]
	if !ok {
		inst = lowmc.Generate(p.StateBits, p.SBoxes, p.CipherRounds)
		instances[key] = inst
	}
	return inst
}

// core resolves the parameter set into the signing core's form.
func (p Params) core() (*sign.Params, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &sign.Params{
		Digest:  p.Digest,
		Seed:    p.Seed,
		Parties: p.Parties,
		Rounds:  p.Rounds,
		Opened:  p.Opened,
		LowMC:   instance(p),
	}, nil
}

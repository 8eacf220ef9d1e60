// Package sign implements the core of the signature scheme: the tape
// engine feeding the MPC repetitions, the commitment layers, Fiat-Shamir
// challenge derivation, the sign and verify drivers, and the bit-exact
// wire codec.
package sign

import (
	"errors"
	"fmt"

	"picnic3-signature/lowmc"
)

// SaltSize is the fixed salt length in bytes.
const SaltSize = 32

// Params bundles one immutable protocol instance.
type Params struct {
	Digest  int // hash digest size in bytes
	Seed    int // seed size in bytes
	Parties int // MPC parties per repetition, multiple of 4
	Rounds  int // total repetitions
	Opened  int // repetitions opened by the challenge
	LowMC   *lowmc.Instance
}

func (p *Params) view() int { return p.LowMC.ViewBytes() }

func (p *Params) io() int { return p.LowMC.IO }

// Verification failure kinds. The public API collapses all of them into a
// single rejection; they are distinguished here for tests and debugging.
var (
	ErrMalformedSize     = errors.New("sign: signature length mismatch")
	ErrMalformedPadding  = errors.New("sign: nonzero padding bits")
	ErrSeedOpening       = errors.New("sign: seed opening rejected")
	ErrSimulation        = errors.New("sign: online simulation rejected")
	ErrMerkle            = errors.New("sign: merkle opening rejected")
	ErrChallengeMismatch = errors.New("sign: challenge mismatch")
)

// commitments is a fixed-size list of digests, one per party or per
// repetition depending on the layer.
type commitments struct {
	hashes [][]byte
}

func newCommitments(count, digestSize int) *commitments {
	c := &commitments{hashes: make([][]byte, count)}
	for i := range c.hashes {
		c.hashes[i] = make([]byte, digestSize)
	}
	return c
}

// proof carries the opening of one challenged repetition.
type proof struct {
	seedInfo []byte
	aux      []byte // nil iff the unopened party is the last one
	input    []byte
	msgs     []byte
	commit   []byte
	unopened uint16
}

// signature is the in-memory form of a signature; the wire form is
// produced by serialize and recovered by deserialize.
type signature struct {
	challenge  []byte
	salt       []byte
	iSeedInfo  []byte
	cvInfo     []byte
	challengeC []uint16
	challengeP []uint16
	proofs     []*proof // indexed by repetition; nil outside challengeC
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

func internalErr(op string, err error) error {
	return fmt.Errorf("sign: %s: %w", op, err)
}

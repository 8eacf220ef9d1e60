package sign

import (
	"picnic3-signature/internal/bitio"
	"picnic3-signature/tree"
)

// The wire format is a plain concatenation: challenge, salt, the
// initial-seed opening, the view-tree opening, then per opened
// repetition in ascending order the per-repetition seed opening, the
// auxiliary bits (absent when the unopened party is the last), the masked
// input, the unopened party's transcript and its commitment. No length is
// ever written; every length is recomputed from the challenge.

func serializedSize(sig *signature, p *Params) int {
	size := p.Digest + SaltSize + len(sig.iSeedInfo) + len(sig.cvInfo)
	for _, pr := range sig.proofs {
		if pr == nil {
			continue
		}
		size += len(pr.seedInfo) + len(pr.aux) + p.io() + p.view() + p.Digest
	}
	return size
}

func serialize(sig *signature, p *Params) []byte {
	out := make([]byte, 0, serializedSize(sig, p))
	out = append(out, sig.challenge...)
	out = append(out, sig.salt...)
	out = append(out, sig.iSeedInfo...)
	out = append(out, sig.cvInfo...)
	for t := 0; t < p.Rounds; t++ {
		pr := sig.proofs[t]
		if pr == nil {
			continue
		}
		out = append(out, pr.seedInfo...)
		if pr.aux != nil {
			out = append(out, pr.aux...)
		}
		out = append(out, pr.input...)
		out = append(out, pr.msgs...)
		out = append(out, pr.commit...)
	}
	return out
}

// deserialize parses a signature byte string. The challenge lists and all
// opening lengths are recomputed, the total length must match exactly,
// and every padded field must have zero padding bits.
func deserialize(b []byte, p *Params) (*signature, error) {
	ioSize, view := p.io(), p.view()
	last := uint16(p.Parties - 1)
	auxBits := 3 * p.LowMC.R * p.LowMC.M

	if len(b) < p.Digest+SaltSize {
		return nil, ErrMalformedSize
	}
	sig := &signature{
		challenge: clone(b[:p.Digest]),
		salt:      clone(b[p.Digest : p.Digest+SaltSize]),
	}
	sig.challengeC, sig.challengeP = expandChallenge(sig.challenge, p)

	iSeedLen, err := tree.RevealSeedsSize(p.Rounds, sig.challengeC, p.Seed)
	if err != nil {
		return nil, ErrMalformedSize
	}
	cvLen, err := tree.OpenSize(p.Rounds, missingLeaves(sig.challengeC, p), p.Digest)
	if err != nil {
		return nil, ErrMalformedSize
	}

	seedLens := make([]int, p.Opened)
	required := p.Digest + SaltSize + iSeedLen + cvLen
	for i := range sig.challengeC {
		seedLens[i], err = tree.RevealSeedsSize(p.Parties, []uint16{sig.challengeP[i]}, p.Seed)
		if err != nil {
			return nil, ErrMalformedSize
		}
		required += seedLens[i] + p.Digest + ioSize + view
		if sig.challengeP[i] != last {
			required += view
		}
	}
	if len(b) != required {
		return nil, ErrMalformedSize
	}

	off := p.Digest + SaltSize
	take := func(n int) []byte {
		out := clone(b[off : off+n])
		off += n
		return out
	}
	sig.iSeedInfo = take(iSeedLen)
	sig.cvInfo = take(cvLen)

	sig.proofs = make([]*proof, p.Rounds)
	for t := 0; t < p.Rounds; t++ {
		if !contains(sig.challengeC, uint16(t)) {
			continue
		}
		i := indexOf(sig.challengeC, uint16(t))
		u := sig.challengeP[i]
		pr := &proof{unopened: u}
		pr.seedInfo = take(seedLens[i])
		if u != last {
			pr.aux = take(view)
			if !bitio.PaddingBitsZero(pr.aux, view, auxBits) {
				return nil, ErrMalformedPadding
			}
		}
		pr.input = take(ioSize)
		if !bitio.PaddingBitsZero(pr.input, ioSize, p.LowMC.N) {
			return nil, ErrMalformedPadding
		}
		pr.msgs = take(view)
		if !bitio.PaddingBitsZero(pr.msgs, view, auxBits) {
			return nil, ErrMalformedPadding
		}
		pr.commit = take(p.Digest)
		sig.proofs[t] = pr
	}
	return sig, nil
}

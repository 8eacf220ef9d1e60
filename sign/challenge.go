package sign

import (
	"picnic3-signature/internal/bitio"
	"picnic3-signature/internal/xof"
)

// bitsToChunks splits in into little-endian chunks of chunkBits bits,
// LSB first within the bit stream. Chunk i reads bits [i*chunkBits,
// (i+1)*chunkBits); trailing bits that do not fill a chunk are dropped.
func bitsToChunks(chunkBits int, in []byte) []uint16 {
	out := make([]uint16, len(in)*8/chunkBits)
	for i := range out {
		var v uint16
		for j := 0; j < chunkBits; j++ {
			v |= uint16(bitio.Get(in, i*chunkBits+j)) << uint(j)
		}
		out[i] = v
	}
	return out
}

func appendUnique(list []uint16, v uint16) []uint16 {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func contains(list []uint16, v uint16) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func indexOf(list []uint16, v uint16) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	panic("sign: indexOf on absent value")
}

// expandChallenge derives the two challenge lists from the signature
// digest: the set of opened repetitions (unique, insertion order) and the
// per-opened-repetition unopened party (duplicates allowed). Both phases
// consume a rolling buffer that is rehashed at the end of every outer
// iteration; the rehash closing the first phase always happens before the
// second phase starts, which fixes the wire format.
func expandChallenge(sigH []byte, p *Params) (challengeC, challengeP []uint16) {
	bitsC := bitio.CeilLog2(p.Rounds)
	bitsP := bitio.CeilLog2(p.Parties)

	h := clone(sigH)
	rehash := func() {
		next := xof.NewPrefixed(p.Digest, xof.Prefix1)
		next.Update(h)
		next.Squeeze(h)
	}

	for len(challengeC) < p.Opened {
		for _, v := range bitsToChunks(bitsC, h) {
			if int(v) < p.Rounds {
				challengeC = appendUnique(challengeC, v)
			}
			if len(challengeC) == p.Opened {
				break
			}
		}
		rehash()
	}

	for len(challengeP) < p.Opened {
		for _, v := range bitsToChunks(bitsP, h) {
			if int(v) < p.Parties {
				challengeP = append(challengeP, v)
			}
			if len(challengeP) == p.Opened {
				break
			}
		}
		rehash()
	}
	return challengeC, challengeP
}

// hcp computes the Fiat-Shamir digest over the per-repetition commitment
// hashes, the view-tree root, the salt, the public values and the
// message, then expands it into the challenge lists.
func hcp(ch *commitments, hCv, salt, pubKey, plaintext, message []byte, p *Params) (sigH []byte, challengeC, challengeP []uint16) {
	h := xof.New(p.Digest)
	for t := 0; t < p.Rounds; t++ {
		h.Update(ch.hashes[t])
	}
	h.Update(hCv)
	h.Update(salt)
	h.Update(pubKey[:p.io()])
	h.Update(plaintext[:p.io()])
	h.Update(message)
	sigH = make([]byte, p.Digest)
	h.Squeeze(sigH)
	// the digest is published as the challenge, so it is public from here on
	declassify(sigH)

	challengeC, challengeP = expandChallenge(sigH, p)
	return sigH, challengeC, challengeP
}

// declassify marks key-derived data as public for constant-time analysis
// tooling. It has no runtime effect.
func declassify([]byte) {}

// missingLeaves lists the repetitions outside challengeC in ascending
// order.
func missingLeaves(challengeC []uint16, p *Params) []uint16 {
	out := make([]uint16, 0, p.Rounds-p.Opened)
	for t := 0; t < p.Rounds; t++ {
		if !contains(challengeC, uint16(t)) {
			out = append(out, uint16(t))
		}
	}
	return out
}

package sign

import (
	"bytes"

	"picnic3-signature/lowmc"
	"picnic3-signature/tree"
)

// Verify checks a serialized signature on message against the public key
// material. It returns nil for a valid signature and one of the package
// error kinds otherwise; callers exposing a public API should collapse
// all kinds into a single rejection.
func Verify(pubKey, plaintext, message, sigBytes []byte, p *Params) error {
	inst := p.LowMC
	view := p.view()
	last := p.Parties - 1

	sig, err := deserialize(sigBytes, p)
	if err != nil {
		return err
	}

	iSeeds, err := tree.ReconstructSeeds(p.Rounds, sig.challengeC, sig.iSeedInfo, sig.salt, 0, p.Seed, p.Digest)
	if err != nil {
		return ErrSeedOpening
	}
	defer iSeeds.Clear()

	ch := newCommitments(p.Rounds, p.Digest)
	tapes := make([]*lowmc.RandomTape, p.Rounds)
	var window [4]*commitments
	t4 := p.Rounds / 4 * 4

	for t := 0; t < p.Rounds; t++ {
		opened := contains(sig.challengeC, uint16(t))

		var seedT *tree.SeedTree
		if !opened {
			seedT = tree.GenerateSeeds(p.Parties, iSeeds.Leaf(t), sig.salt, uint16(t), p.Seed, p.Digest)
		} else {
			u := sig.challengeP[indexOf(sig.challengeC, uint16(t))]
			seedT, err = tree.ReconstructSeeds(p.Parties, []uint16{u}, sig.proofs[t].seedInfo, sig.salt, uint16(t), p.Seed, p.Digest)
			if err != nil {
				return ErrSeedOpening
			}
		}

		// one party per opened repetition has a bogus seed; its tape is
		// never consumed
		tapes[t] = lowmc.NewRandomTape(p.Parties, view)
		createRandomTapes(tapes[t], seedT.Leaves(), sig.salt, uint16(t), p)

		c := newCommitments(p.Parties, p.Digest)
		leaves := seedT.Leaves()
		for j := 0; j < p.Parties; j += 4 {
			commitX4(c.hashes[j:j+4], leaves[j:j+4], sig.salt, uint16(t), uint16(j), p)
		}
		if !opened {
			computeAuxTape(tapes[t], nil, p)
			commit(c.hashes[last], seedT.Leaf(last), tapes[t].AuxBits, sig.salt, uint16(t), uint16(last), p)
		} else {
			u := int(sig.proofs[t].unopened)
			if u != last {
				commit(c.hashes[last], seedT.Leaf(last), sig.proofs[t].aux, sig.salt, uint16(t), uint16(last), p)
			}
			copy(c.hashes[u], sig.proofs[t].commit)
		}

		window[t%4] = c
		if t >= t4 {
			commitH(ch.hashes[t], c, p)
		} else if (t+1)%4 == 0 {
			commitHX4(ch.hashes[t-3:t+1], window[:], p)
		}
		seedT.Clear()
	}

	// re-run the online phase of every opened repetition with the
	// unopened party's transcript taken from the proof
	cvHashes := make([][]byte, p.Rounds)
	msgs := lowmc.NewMsgs(p.Parties, view)
	for i, tv := range sig.challengeC {
		t := int(tv)
		u := int(sig.challengeP[i])
		pr := sig.proofs[t]

		if pr.aux != nil {
			inst.SetAuxBits(tapes[t], pr.aux)
		}
		for j := range tapes[t].Tape[u] {
			tapes[t].Tape[u][j] = 0
		}
		copy(msgs.Msgs[u], pr.msgs)
		msgs.Unopened = u
		msgs.Pos = 0
		tapes[t].Pos = 0

		if err := inst.SimulateOnline(pr.input, tapes[t], msgs, plaintext, pubKey); err != nil {
			return ErrSimulation
		}
		digest := make([]byte, p.Digest)
		commitV(digest, pr.input, msgs, p)
		cvHashes[t] = digest
	}

	treeCv := tree.NewMerkle(p.Rounds, p.Digest)
	if err := treeCv.AddNodes(missingLeaves(sig.challengeC, p), sig.cvInfo); err != nil {
		return ErrMerkle
	}
	if err := treeCv.Verify(cvHashes, sig.salt); err != nil {
		return ErrMerkle
	}

	challenge, _, _ := hcp(ch, treeCv.Root(), sig.salt, pubKey, plaintext, message, p)
	if !bytes.Equal(challenge, sig.challenge) {
		return ErrChallengeMismatch
	}
	return nil
}

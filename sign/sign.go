package sign

import (
	"picnic3-signature/internal/bitio"
	"picnic3-signature/internal/xof"
	"picnic3-signature/lowmc"
	"picnic3-signature/tree"
)

// computeSaltAndRootSeed derives the session salt and the root of the
// initial-seeds tree from the key material and the message. Signing is
// fully deterministic: no other entropy enters the scheme.
func computeSaltAndRootSeed(privateKey, pubKey, plaintext, message []byte, p *Params) (salt, root []byte) {
	buf := make([]byte, SaltSize+p.Seed)
	h := xof.New(p.Digest)
	h.Update(privateKey[:p.io()])
	h.Update(message)
	h.Update(pubKey[:p.io()])
	h.Update(plaintext[:p.io()])
	h.UpdateU16LE(uint16(p.LowMC.N))
	h.Squeeze(buf)
	return buf[:SaltSize], buf[SaltSize:]
}

// Sign produces a serialized signature on message under the given key
// material, where pubKey = LowMC(privateKey, plaintext). A failure
// indicates an internal inconsistency, not a property of the inputs.
func Sign(privateKey, pubKey, plaintext, message []byte, p *Params) ([]byte, error) {
	inst := p.LowMC
	ioSize, view := p.io(), p.view()
	last := p.Parties - 1

	salt, root := computeSaltAndRootSeed(privateKey, pubKey, plaintext, message, p)
	iSeeds := tree.GenerateSeeds(p.Rounds, root, salt, 0, p.Seed, p.Digest)
	defer iSeeds.Clear()

	tapes := make([]*lowmc.RandomTape, p.Rounds)
	seeds := make([]*tree.SeedTree, p.Rounds)
	inputs := make([][]byte, p.Rounds)
	msgs := make([]*lowmc.Msgs, p.Rounds)
	partyC := make([]*commitments, p.Rounds)
	defer func() {
		for _, s := range seeds {
			if s != nil {
				s.Clear()
			}
		}
	}()

	for t := 0; t < p.Rounds; t++ {
		seeds[t] = tree.GenerateSeeds(p.Parties, iSeeds.Leaf(t), salt, uint16(t), p.Seed, p.Digest)
		tapes[t] = lowmc.NewRandomTape(p.Parties, view)
		createRandomTapes(tapes[t], seeds[t].Leaves(), salt, uint16(t), p)

		inputs[t] = make([]byte, ioSize)
		computeAuxTape(tapes[t], inputs[t], p)

		partyC[t] = newCommitments(p.Parties, p.Digest)
		leaves := seeds[t].Leaves()
		for j := 0; j < p.Parties; j += 4 {
			commitX4(partyC[t].hashes[j:j+4], leaves[j:j+4], salt, uint16(t), uint16(j), p)
		}
		commit(partyC[t].hashes[last], seeds[t].Leaf(last), tapes[t].AuxBits, salt, uint16(t), uint16(last), p)
	}

	for t := 0; t < p.Rounds; t++ {
		maskedKey := inputs[t]
		bitio.XorBytes(maskedKey, maskedKey, privateKey, ioSize)
		bitio.ZeroPadding(maskedKey, inst.N)

		msgs[t] = lowmc.NewMsgs(p.Parties, view)
		if err := inst.SimulateOnline(maskedKey, tapes[t], msgs[t], plaintext, pubKey); err != nil {
			return nil, internalErr("online simulation", err)
		}
	}

	ch := newCommitments(p.Rounds, p.Digest)
	cv := newCommitments(p.Rounds, p.Digest)
	t4 := p.Rounds / 4 * 4
	for t := 0; t < t4; t += 4 {
		commitHX4(ch.hashes[t:t+4], partyC[t:t+4], p)
		commitVX4(cv.hashes[t:t+4], inputs[t:t+4], msgs[t:t+4], p)
	}
	for t := t4; t < p.Rounds; t++ {
		commitH(ch.hashes[t], partyC[t], p)
		commitV(cv.hashes[t], inputs[t], msgs[t], p)
	}

	treeCv := tree.NewMerkle(p.Rounds, p.Digest)
	treeCv.Build(cv.hashes, salt)

	sig := &signature{salt: clone(salt)}
	sig.challenge, sig.challengeC, sig.challengeP = hcp(ch, treeCv.Root(), salt, pubKey, plaintext, message, p)

	var err error
	if sig.cvInfo, err = treeCv.Open(missingLeaves(sig.challengeC, p)); err != nil {
		return nil, internalErr("merkle opening", err)
	}
	if sig.iSeedInfo, err = iSeeds.RevealSeeds(sig.challengeC); err != nil {
		return nil, internalErr("seed reveal", err)
	}

	sig.proofs = make([]*proof, p.Rounds)
	for i, tv := range sig.challengeC {
		t := int(tv)
		u := sig.challengeP[i]
		pr := &proof{unopened: u}
		if pr.seedInfo, err = seeds[t].RevealSeeds([]uint16{u}); err != nil {
			return nil, internalErr("seed reveal", err)
		}
		if int(u) != last {
			pr.aux = clone(tapes[t].AuxBits)
		}
		pr.input = clone(inputs[t])
		pr.msgs = clone(msgs[t].Msgs[u])
		pr.commit = clone(partyC[t].hashes[u])
		sig.proofs[t] = pr
	}

	return serialize(sig, p), nil
}

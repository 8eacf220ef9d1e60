package sign

import (
	"picnic3-signature/internal/bitio"
	"picnic3-signature/internal/xof"
	"picnic3-signature/lowmc"
)

// commit computes the per-party commitment C[t][j] over the party's seed,
// its auxiliary bits when present, the salt and the (t, j) position.
// There is no explicit domain tag; the absorb order is the tag.
func commit(digest, seed, aux, salt []byte, t, j uint16, p *Params) {
	h := xof.New(p.Digest)
	h.Update(seed)
	if aux != nil {
		h.Update(aux)
	}
	h.Update(salt)
	h.UpdateU16LE(t)
	h.UpdateU16LE(j)
	h.Squeeze(digest)
}

// commitX4 commits four consecutive parties of one repetition. Auxiliary
// bits are never absorbed here; the last party is always recommitted
// singly with them.
func commitX4(digests, seeds [][]byte, salt []byte, t, j uint16, p *Params) {
	h := xof.NewX4(p.Digest)
	h.Update4(seeds[0], seeds[1], seeds[2], seeds[3])
	h.Update1(salt)
	h.UpdateU16LE(t)
	h.UpdateU16s([4]uint16{j, j + 1, j + 2, j + 3})
	h.Squeeze4(digests[0], digests[1], digests[2], digests[3])
}

// commitH hashes one repetition's party commitments, ascending party
// order, into Ch[t].
func commitH(digest []byte, c *commitments, p *Params) {
	h := xof.New(p.Digest)
	for i := 0; i < p.Parties; i++ {
		h.Update(c.hashes[i])
	}
	h.Squeeze(digest)
}

// commitHX4 is commitH over four repetitions in lockstep.
func commitHX4(digests [][]byte, cs []*commitments, p *Params) {
	h := xof.NewX4(p.Digest)
	for i := 0; i < p.Parties; i++ {
		h.Update4(cs[0].hashes[i], cs[1].hashes[i], cs[2].hashes[i], cs[3].hashes[i])
	}
	h.Squeeze4(digests[0], digests[1], digests[2], digests[3])
}

// commitV hashes the masked input and every party's transcript into
// Cv[t].
func commitV(digest, input []byte, m *lowmc.Msgs, p *Params) {
	h := xof.New(p.Digest)
	h.Update(input)
	n := bitio.NumBytes(m.Pos)
	for i := 0; i < p.Parties; i++ {
		h.Update(m.Msgs[i][:n])
	}
	h.Squeeze(digest)
}

// commitVX4 is commitV over four repetitions in lockstep.
func commitVX4(digests, inputs [][]byte, ms []*lowmc.Msgs, p *Params) {
	h := xof.NewX4(p.Digest)
	h.Update4(inputs[0], inputs[1], inputs[2], inputs[3])
	n := bitio.NumBytes(ms[0].Pos)
	for i := 0; i < p.Parties; i++ {
		h.Update4(ms[0].Msgs[i][:n], ms[1].Msgs[i][:n], ms[2].Msgs[i][:n], ms[3].Msgs[i][:n])
	}
	h.Squeeze4(digests[0], digests[1], digests[2], digests[3])
}

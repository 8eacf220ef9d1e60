// Package xof wraps the SHAKE extendable-output functions behind the small
// absorb/squeeze surface the signature scheme needs: digest-size driven
// instantiation, an optional one-byte domain prefix, little-endian uint16
// absorption, and a four-lane variant whose per-lane byte streams are
// identical to the scalar context.
package xof

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// Domain-prefix bytes absorbed before any other input when a context is
// created with NewPrefixed.
const (
	Prefix1 byte = 0x01
	Prefix3 byte = 0x03
)

// Context is a single absorb/squeeze hash state.
type Context struct {
	h sha3.ShakeHash
}

// New returns a context sized for digestSize-byte outputs: SHAKE128 for
// digests up to 32 bytes, SHAKE256 above.
func New(digestSize int) *Context {
	if digestSize <= 32 {
		return &Context{h: sha3.NewShake128()}
	}
	return &Context{h: sha3.NewShake256()}
}

// NewPrefixed returns a context that has already absorbed the given
// domain-prefix byte.
func NewPrefixed(digestSize int, prefix byte) *Context {
	c := New(digestSize)
	c.Update([]byte{prefix})
	return c
}

// Update absorbs p.
func (c *Context) Update(p []byte) {
	if _, err := c.h.Write(p); err != nil {
		panic("xof: shake write failed")
	}
}

// UpdateU16LE absorbs v as two little-endian bytes.
func (c *Context) UpdateU16LE(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	c.Update(buf[:])
}

// Squeeze fills out with output bytes. It may be called repeatedly; no
// Update may follow.
func (c *Context) Squeeze(out []byte) {
	if _, err := c.h.Read(out); err != nil {
		panic("xof: shake read failed")
	}
}

// X4 runs four independent lanes in lockstep. Lane i sees exactly the byte
// stream a scalar Context would; the grouping exists so call sites mirror
// the batched hashing structure of the protocol.
type X4 struct {
	lane [4]*Context
}

// NewX4 returns four lanes sized like New(digestSize).
func NewX4(digestSize int) *X4 {
	var x X4
	for i := range x.lane {
		x.lane[i] = New(digestSize)
	}
	return &x
}

// Update4 absorbs one buffer per lane.
func (x *X4) Update4(p0, p1, p2, p3 []byte) {
	x.lane[0].Update(p0)
	x.lane[1].Update(p1)
	x.lane[2].Update(p2)
	x.lane[3].Update(p3)
}

// Update1 absorbs the same buffer into every lane.
func (x *X4) Update1(p []byte) {
	for _, l := range x.lane {
		l.Update(p)
	}
}

// UpdateU16LE absorbs the same value into every lane.
func (x *X4) UpdateU16LE(v uint16) {
	for _, l := range x.lane {
		l.UpdateU16LE(v)
	}
}

// UpdateU16s absorbs one value per lane.
func (x *X4) UpdateU16s(vs [4]uint16) {
	for i, l := range x.lane {
		l.UpdateU16LE(vs[i])
	}
}

// Squeeze4 fills one output buffer per lane.
func (x *X4) Squeeze4(o0, o1, o2, o3 []byte) {
	x.lane[0].Squeeze(o0)
	x.lane[1].Squeeze(o1)
	x.lane[2].Squeeze(o2)
	x.lane[3].Squeeze(o3)
}

package picnic

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tuneinsight/lattigo/v4/utils"

	"picnic3-signature/internal/bitio"
)

// PublicKey holds the public cipher output C = LowMC(sk, P) and the
// public plaintext P.
type PublicKey struct {
	Params Params
	C      []byte
	P      []byte
}

// PrivateKey holds the secret key bits together with the public part.
type PrivateKey struct {
	PublicKey
	SK []byte
}

// ErrKeyFormat rejects malformed key encodings.
var ErrKeyFormat = errors.New("picnic: malformed key encoding")

// GenerateKey samples a fresh key pair for the parameter set.
func GenerateKey(p Params) (*PrivateKey, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	prng, err := utils.NewPRNG()
	if err != nil {
		return nil, fmt.Errorf("picnic: prng: %w", err)
	}
	ioSize := p.IOSize()
	sk := make([]byte, ioSize)
	pt := make([]byte, ioSize)
	if _, err := prng.Read(sk); err != nil {
		return nil, fmt.Errorf("picnic: sample key: %w", err)
	}
	if _, err := prng.Read(pt); err != nil {
		return nil, fmt.Errorf("picnic: sample plaintext: %w", err)
	}
	bitio.ZeroPadding(sk, p.StateBits)
	bitio.ZeroPadding(pt, p.StateBits)

	priv := &PrivateKey{SK: sk}
	priv.Params = p
	priv.P = pt
	priv.C = instance(p).Encrypt(sk, pt)
	return priv, nil
}

// MarshalBinary encodes the public key as C || P.
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, 2*pk.Params.IOSize())
	out = append(out, pk.C...)
	out = append(out, pk.P...)
	return out, nil
}

// UnmarshalPublicKey decodes C || P for the given parameter set,
// rejecting wrong lengths and nonzero padding bits.
func UnmarshalPublicKey(p Params, b []byte) (*PublicKey, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ioSize := p.IOSize()
	if len(b) != 2*ioSize {
		return nil, ErrKeyFormat
	}
	pk := &PublicKey{Params: p,
		C: append([]byte(nil), b[:ioSize]...),
		P: append([]byte(nil), b[ioSize:]...),
	}
	if !bitio.PaddingBitsZero(pk.C, ioSize, p.StateBits) ||
		!bitio.PaddingBitsZero(pk.P, ioSize, p.StateBits) {
		return nil, ErrKeyFormat
	}
	return pk, nil
}

// MarshalBinary encodes the private key as sk || C || P.
func (sk *PrivateKey) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, 3*sk.Params.IOSize())
	out = append(out, sk.SK...)
	out = append(out, sk.C...)
	out = append(out, sk.P...)
	return out, nil
}

// UnmarshalPrivateKey decodes sk || C || P for the given parameter set
// and checks that the public part matches the secret key.
func UnmarshalPrivateKey(p Params, b []byte) (*PrivateKey, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ioSize := p.IOSize()
	if len(b) != 3*ioSize {
		return nil, ErrKeyFormat
	}
	priv := &PrivateKey{SK: append([]byte(nil), b[:ioSize]...)}
	priv.Params = p
	priv.C = append([]byte(nil), b[ioSize:2*ioSize]...)
	priv.P = append([]byte(nil), b[2*ioSize:]...)
	if !bitio.PaddingBitsZero(priv.SK, ioSize, p.StateBits) ||
		!bitio.PaddingBitsZero(priv.C, ioSize, p.StateBits) ||
		!bitio.PaddingBitsZero(priv.P, ioSize, p.StateBits) {
		return nil, ErrKeyFormat
	}
	if got := instance(p).Encrypt(priv.SK, priv.P); !bytes.Equal(got, priv.C) {
		return nil, ErrKeyFormat
	}
	return priv, nil
}

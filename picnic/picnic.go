package picnic

import (
	"errors"

	"picnic3-signature/measure"
	"picnic3-signature/prof"
	"picnic3-signature/sign"
)

// ErrVerificationFailed is the only rejection Verify reports; the
// internal failure kind is never surfaced across the API boundary.
var ErrVerificationFailed = errors.New("picnic: invalid signature")

// Sign produces a signature on message. Signing is deterministic: the
// same key and message always yield byte-identical signatures.
func Sign(priv *PrivateKey, message []byte) ([]byte, error) {
	core, err := priv.Params.core()
	if err != nil {
		return nil, err
	}
	if measure.Enabled {
		defer prof.Span(priv.Params.Name + "/sign")()
	}
	sig, err := sign.Sign(priv.SK, priv.C, priv.P, message, core)
	if err != nil {
		return nil, err
	}
	if measure.Enabled {
		measure.Global.Add("picnic/signature/bytes", int64(len(sig)))
		measure.Global.Add("picnic/message/bytes", int64(len(message)))
	}
	return sig, nil
}

// Verify checks a signature on message under pub.
func Verify(pub *PublicKey, message, sig []byte) error {
	core, err := pub.Params.core()
	if err != nil {
		return err
	}
	if measure.Enabled {
		defer prof.Span(pub.Params.Name + "/verify")()
	}
	if sign.Verify(pub.C, pub.P, message, sig, core) != nil {
		return ErrVerificationFailed
	}
	return nil
}

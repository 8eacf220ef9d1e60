package picnic

import (
	"bytes"
	"testing"

	"picnic3-signature/internal/bitio"
)

func TestParamsValidate(t *testing.T) {
	for _, p := range []Params{Picnic3L1, Picnic3L3, Picnic3L5, Picnic3Test} {
		if err := p.Validate(); err != nil {
			t.Fatalf("%s: %v", p.Name, err)
		}
	}
	bad := Picnic3Test
	bad.Parties = 10
	if bad.Validate() == nil {
		t.Fatal("party count not divisible by 4 must fail")
	}
	bad = Picnic3Test
	bad.Opened = bad.Rounds
	if bad.Validate() == nil {
		t.Fatal("opened >= rounds must fail")
	}
	bad = Picnic3Test
	bad.StateBits = 20
	if bad.Validate() == nil {
		t.Fatal("state width != 3m must fail")
	}
	bad = Picnic3Test
	bad.Rounds = 8
	if bad.Validate() == nil {
		t.Fatal("too few rounds for 4-bit chunks must fail")
	}
}

func TestGenerateKeyConsistent(t *testing.T) {
	priv, err := GenerateKey(Picnic3Test)
	if err != nil {
		t.Fatal(err)
	}
	p := Picnic3Test
	if len(priv.SK) != p.IOSize() || len(priv.C) != p.IOSize() || len(priv.P) != p.IOSize() {
		t.Fatal("key component sizes mismatch")
	}
	for _, b := range [][]byte{priv.SK, priv.C, priv.P} {
		if !bitio.PaddingBitsZero(b, p.IOSize(), p.StateBits) {
			t.Fatal("key material must have zero padding bits")
		}
	}
	if !bytes.Equal(instance(p).Encrypt(priv.SK, priv.P), priv.C) {
		t.Fatal("public output does not match the secret key")
	}
}

func TestSignVerifyTestSet(t *testing.T) {
	priv, err := GenerateKey(Picnic3Test)
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("some signed statement")
	sig, err := Sign(priv, msg)
	if err != nil {
		t.Fatal(err)
	}
	if err := Verify(&priv.PublicKey, msg, sig); err != nil {
		t.Fatal(err)
	}
	if err := Verify(&priv.PublicKey, []byte("other statement"), sig); err != ErrVerificationFailed {
		t.Fatalf("got %v, want %v", err, ErrVerificationFailed)
	}
}

func TestSignVerifyL1(t *testing.T) {
	if testing.Short() {
		t.Skip("full parameter set")
	}
	priv, err := GenerateKey(Picnic3L1)
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("abc")
	sig, err := Sign(priv, msg)
	if err != nil {
		t.Fatal(err)
	}
	if err := Verify(&priv.PublicKey, msg, sig); err != nil {
		t.Fatal(err)
	}

	sig2, err := Sign(priv, msg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(sig, sig2) {
		t.Fatal("signing must be deterministic")
	}

	mut := append([]byte(nil), sig...)
	mut[0] ^= 1
	if err := Verify(&priv.PublicKey, msg, mut); err != ErrVerificationFailed {
		t.Fatalf("got %v, want %v", err, ErrVerificationFailed)
	}
	if err := Verify(&priv.PublicKey, msg, sig[:len(sig)-1]); err != ErrVerificationFailed {
		t.Fatalf("got %v, want %v", err, ErrVerificationFailed)
	}
}

func TestKeyMarshalRoundTrip(t *testing.T) {
	priv, err := GenerateKey(Picnic3Test)
	if err != nil {
		t.Fatal(err)
	}
	pubBytes, err := priv.PublicKey.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	pub, err := UnmarshalPublicKey(Picnic3Test, pubBytes)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pub.C, priv.C) || !bytes.Equal(pub.P, priv.P) {
		t.Fatal("public key round-trip mismatch")
	}

	privBytes, err := priv.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	priv2, err := UnmarshalPrivateKey(Picnic3Test, privBytes)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(priv2.SK, priv.SK) {
		t.Fatal("private key round-trip mismatch")
	}

	if _, err := UnmarshalPublicKey(Picnic3Test, pubBytes[:len(pubBytes)-1]); err == nil {
		t.Fatal("short public key must be rejected")
	}
	bad := append([]byte(nil), privBytes...)
	bad[0] ^= 1
	if _, err := UnmarshalPrivateKey(Picnic3Test, bad); err == nil {
		t.Fatal("inconsistent private key must be rejected")
	}
}

func TestSignaturesDifferAcrossKeys(t *testing.T) {
	a, err := GenerateKey(Picnic3Test)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateKey(Picnic3Test)
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("shared message")
	sigA, err := Sign(a, msg)
	if err != nil {
		t.Fatal(err)
	}
	if err := Verify(&b.PublicKey, msg, sigA); err != ErrVerificationFailed {
		t.Fatal("signature must not verify under another key")
	}
}

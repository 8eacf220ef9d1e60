// Command picnic3 is a small file-based front end for key generation,
// signing and verification.
//
//	picnic3 keygen -params picnic3-L1 -out key
//	picnic3 sign   -params picnic3-L1 -key key.sk -msg message.bin -out sig.bin
//	picnic3 verify -params picnic3-L1 -key key.pk -msg message.bin -sig sig.bin
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"

	"picnic3-signature/picnic"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		log.Fatal("usage: picnic3 keygen|sign|verify [flags]")
	}
	switch os.Args[1] {
	case "keygen":
		keygen(os.Args[2:])
	case "sign":
		signCmd(os.Args[2:])
	case "verify":
		verifyCmd(os.Args[2:])
	default:
		log.Fatalf("unknown subcommand %q", os.Args[1])
	}
}

func paramsByName(name string) picnic.Params {
	for _, p := range []picnic.Params{picnic.Picnic3L1, picnic.Picnic3L3, picnic.Picnic3L5, picnic.Picnic3Test} {
		if p.Name == name {
			return p
		}
	}
	log.Fatalf("unknown parameter set %q", name)
	return picnic.Params{}
}

func writeHexFile(path string, data []byte) {
	if err := os.WriteFile(path, []byte(hex.EncodeToString(data)+"\n"), 0o600); err != nil {
		log.Fatal(err)
	}
}

func readHexFile(path string) []byte {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	for len(raw) > 0 && (raw[len(raw)-1] == '\n' || raw[len(raw)-1] == '\r') {
		raw = raw[:len(raw)-1]
	}
	data, err := hex.DecodeString(string(raw))
	if err != nil {
		log.Fatalf("%s: %v", path, err)
	}
	return data
}

func keygen(args []string) {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	name := fs.String("params", picnic.Picnic3L1.Name, "parameter set")
	out := fs.String("out", "picnic3", "output path prefix (.pk/.sk appended)")
	fs.Parse(args)

	p := paramsByName(*name)
	priv, err := picnic.GenerateKey(p)
	if err != nil {
		log.Fatal(err)
	}
	pkBytes, err := priv.PublicKey.MarshalBinary()
	if err != nil {
		log.Fatal(err)
	}
	skBytes, err := priv.MarshalBinary()
	if err != nil {
		log.Fatal(err)
	}
	writeHexFile(*out+".pk", pkBytes)
	writeHexFile(*out+".sk", skBytes)
	fmt.Printf("wrote %s.pk and %s.sk (%s)\n", *out, *out, p.Name)
}

func signCmd(args []string) {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	name := fs.String("params", picnic.Picnic3L1.Name, "parameter set")
	keyPath := fs.String("key", "picnic3.sk", "private key file")
	msgPath := fs.String("msg", "", "message file")
	out := fs.String("out", "picnic3.sig", "signature output file")
	fs.Parse(args)

	p := paramsByName(*name)
	priv, err := picnic.UnmarshalPrivateKey(p, readHexFile(*keyPath))
	if err != nil {
		log.Fatal(err)
	}
	msg, err := os.ReadFile(*msgPath)
	if err != nil {
		log.Fatal(err)
	}
	sig, err := picnic.Sign(priv, msg)
	if err != nil {
		log.Fatal(err)
	}
	writeHexFile(*out, sig)
	fmt.Printf("wrote %s (%d bytes)\n", *out, len(sig))
}

func verifyCmd(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	name := fs.String("params", picnic.Picnic3L1.Name, "parameter set")
	keyPath := fs.String("key", "picnic3.pk", "public key file")
	msgPath := fs.String("msg", "", "message file")
	sigPath := fs.String("sig", "picnic3.sig", "signature file")
	fs.Parse(args)

	p := paramsByName(*name)
	pub, err := picnic.UnmarshalPublicKey(p, readHexFile(*keyPath))
	if err != nil {
		log.Fatal(err)
	}
	msg, err := os.ReadFile(*msgPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := picnic.Verify(pub, msg, readHexFile(*sigPath)); err != nil {
		log.Fatal("signature INVALID")
	}
	fmt.Println("signature valid")
}

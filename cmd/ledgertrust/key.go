package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"flag"
	"fmt"
	"io"

	"xdao.co/ledgertrust/keys"
)

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printKeyUsage(errOut)
		return 2
	}
	switch args[0] {
	case "gen":
		return cmdKeyGen(args[1:], out, errOut)
	case "sign":
		return cmdKeySign(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n\n", args[0])
		printKeyUsage(errOut)
		return 2
	}
}

func printKeyUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: ledgertrust key <subcommand> ...")
	fmt.Fprintln(w, "subcommands: gen, sign")
}

// signerSeed resolves --seed-hex and the optional --role into an ed25519 seed.
func signerSeed(seedHex, role string) ([]byte, error) {
	seed, err := keys.ParseSeedHex(seedHex)
	if err != nil {
		return nil, fmt.Errorf("invalid --seed-hex: %w", err)
	}
	if role == "" {
		return seed, nil
	}
	return keys.DeriveRoleSeed(seed, role)
}

func cmdKeyGen(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key gen", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var seedHex string
	var role string
	fs.StringVar(&seedHex, "seed-hex", "", "Ed25519 seed (32 bytes hex); random when omitted")
	fs.StringVar(&role, "role", "", "Derive a role-specific key from the seed")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: ledgertrust key gen [--seed-hex <64hex>] [--role <role>]")
		return 2
	}

	if seedHex == "" {
		seed := make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "generate seed: %v\n", err)
			return 1
		}
		seedHex = hex.EncodeToString(seed)
		fmt.Fprintf(errOut, "seed-hex: %s\n", seedHex)
	}
	seed, err := signerSeed(seedHex, role)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	pub, _, err := keys.Ed25519FromSeed(seed)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	_, _ = fmt.Fprintln(out, pub)
	return 0
}

func cmdKeySign(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key sign", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var seedHex string
	var role string
	var hashAlg string
	var message string
	fs.StringVar(&seedHex, "seed-hex", "", "Ed25519 seed (32 bytes hex)")
	fs.StringVar(&role, "role", "", "Sign with a role-specific key derived from the seed")
	fs.StringVar(&hashAlg, "hash", keys.HashSHA256, "Message digest")
	fs.StringVar(&message, "message", "", "Message to sign")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if seedHex == "" || fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: ledgertrust key sign --seed-hex <64hex> [--role <role>] [--hash <alg>] --message <text>")
		return 2
	}
	seed, err := signerSeed(seedHex, role)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	pub, priv, err := keys.Ed25519FromSeed(seed)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	sig, err := keys.SignEd25519([]byte(message), hashAlg, priv)
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}
	fmt.Fprintf(errOut, "signer: %s\n", pub)
	_, _ = fmt.Fprintln(out, base64.StdEncoding.EncodeToString(sig))
	return 0
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "composite":
		return cmdComposite(args[1:], out, errOut)
	case "party":
		return cmdParty(args[1:], out, errOut)
	case "timestamp":
		return cmdTimestamp(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "ledgertrust: composite keys, parties and timestamp windows")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  ledgertrust key gen [--seed-hex <64hex>] [--role <role>]")
	fmt.Fprintln(w, "  ledgertrust key sign --seed-hex <64hex> [--role <role>] [--hash sha256|sha512|sha3-256] --message <text>")
	fmt.Fprintln(w, "  ledgertrust composite build [--threshold N] --key [W*]<key> [--key ...]")
	fmt.Fprintln(w, "  ledgertrust composite inspect <key>")
	fmt.Fprintln(w, "  ledgertrust composite check [--signed <leaf> ...] [--message <text> --sig <leaf>,<b64sig> ...] [--explain] <key>")
	fmt.Fprintln(w, "  ledgertrust party show --name <name> --key <key>")
	fmt.Fprintln(w, "  ledgertrust party anon --key <key>")
	fmt.Fprintln(w, "  ledgertrust party resolve [--config <path>] [--target host:port] (--name <name> | --key <key>)")
	fmt.Fprintln(w, "  ledgertrust timestamp check [--config <path>] [--tolerance 30s] [--now <RFC3339>] [--before <RFC3339>] [--after <RFC3339>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - <key> is a leaf (alg:base64) or a canonical composite such as 2(1*ed25519:...,1*ed25519:...)")
	fmt.Fprintln(w, "  - --seed-hex must be 32 bytes (64 hex chars) ed25519 seed")
	fmt.Fprintln(w, "  - composite build with --threshold 0 (default) requires every child")
	fmt.Fprintln(w, "  - exit status: 0 ok, 1 rejected or failed, 2 usage error")
	fmt.Fprintln(w, "  - LEDGERTRUST_* environment variables override --config values")
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

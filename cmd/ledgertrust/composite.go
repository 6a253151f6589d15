package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"xdao.co/ledgertrust/compositekey"
	"xdao.co/ledgertrust/keys"
)

func cmdComposite(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: ledgertrust composite <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: build, inspect, check")
		return 2
	}
	switch args[0] {
	case "build":
		return cmdCompositeBuild(args[1:], out, errOut)
	case "inspect":
		return cmdCompositeInspect(args[1:], out, errOut)
	case "check":
		return cmdCompositeCheck(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown composite subcommand: %s\n", args[0])
		return 2
	}
}

// parseWeighted splits "W*<key>" into its weight and key. Without a numeric
// "W*" prefix the weight is 1.
func parseWeighted(s string) (*compositekey.Key, int, error) {
	weight := 1
	if i := strings.IndexByte(s, '*'); i > 0 {
		if w, err := strconv.Atoi(s[:i]); err == nil {
			weight = w
			s = s[i+1:]
		}
	}
	k, err := compositekey.Parse(s)
	if err != nil {
		return nil, 0, err
	}
	return k, weight, nil
}

func cmdCompositeBuild(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("composite build", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var threshold int
	var children stringList
	fs.IntVar(&threshold, "threshold", 0, "Required weight; 0 means the sum of all weights")
	fs.Var(&children, "key", "Child as [W*]<key> (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if len(children) == 0 || fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: ledgertrust composite build [--threshold N] --key [W*]<key> [--key ...]")
		return 2
	}

	b := compositekey.NewBuilder()
	for _, c := range children {
		k, w, err := parseWeighted(c)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --key %q: %v\n", c, err)
			return 1
		}
		b.AddChild(k, w)
	}
	k, err := b.Build(threshold)
	if err != nil {
		fmt.Fprintf(errOut, "build: %v (rule %s)\n", err, compositekey.RuleID(err))
		return 1
	}
	_, _ = fmt.Fprintln(out, k)
	return 0
}

func cmdCompositeInspect(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("composite inspect", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: ledgertrust composite inspect <key>")
		return 2
	}
	k, err := compositekey.Parse(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "invalid key: %v\n", err)
		return 1
	}
	id, err := k.CID()
	if err != nil {
		fmt.Fprintf(errOut, "cid: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "canonical: %s\n", k)
	fmt.Fprintf(out, "base58: %s\n", k.Base58())
	fmt.Fprintf(out, "cid: %s\n", id)
	fmt.Fprintf(out, "hash: %016x\n", k.Hash())
	fmt.Fprintf(out, "threshold: %d/%d\n", k.Threshold(), k.TotalWeight())
	fmt.Fprintf(out, "depth: %d\n", k.Depth())
	fmt.Fprintf(out, "nodes: %d\n", k.NodeCount())
	for _, leaf := range k.Leaves() {
		fmt.Fprintf(out, "leaf: %s\n", leaf)
	}
	return 0
}

func cmdCompositeCheck(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("composite check", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var signed stringList
	var sigs stringList
	var message string
	var hashAlg string
	var explain bool
	fs.Var(&signed, "signed", "Leaf key taken as having signed (repeatable)")
	fs.Var(&sigs, "sig", "Signature as <leaf>,<base64> over --message (repeatable)")
	fs.StringVar(&message, "message", "", "Message the --sig signatures cover")
	fs.StringVar(&hashAlg, "hash", keys.HashSHA256, "Message digest for --sig")
	fs.BoolVar(&explain, "explain", false, "Print per-node evidence")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: ledgertrust composite check [--signed <leaf> ...] [--message <text> --sig <leaf>,<b64sig> ...] [--explain] <key>")
		return 2
	}
	k, err := compositekey.Parse(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "invalid key: %v\n", err)
		return 1
	}

	var set compositekey.KeySet
	for _, s := range signed {
		pk, err := keys.ParsePublicKey(s)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --signed %q: %v\n", s, err)
			return 1
		}
		set.Add(pk)
	}
	if len(sigs) > 0 {
		parsed := make([]compositekey.Signature, 0, len(sigs))
		for _, s := range sigs {
			keyText, sigText, ok := strings.Cut(s, ",")
			if !ok {
				fmt.Fprintf(errOut, "invalid --sig %q: expected <leaf>,<base64>\n", s)
				return 2
			}
			pk, err := keys.ParsePublicKey(keyText)
			if err != nil {
				fmt.Fprintf(errOut, "invalid --sig key: %v\n", err)
				return 1
			}
			b, err := base64.StdEncoding.DecodeString(sigText)
			if err != nil {
				fmt.Fprintf(errOut, "invalid --sig signature: %v\n", err)
				return 1
			}
			parsed = append(parsed, compositekey.Signature{PublicKey: pk, Bytes: b})
		}
		valid, err := k.SignedBy([]byte(message), parsed, hashAlg)
		if err != nil {
			fmt.Fprintf(errOut, "verify: %v\n", err)
			return 1
		}
		for _, pk := range valid.Keys() {
			set.Add(pk)
		}
	}

	ok := k.IsFulfilledBy(set)
	if explain {
		printVerdict(out, k.Explain(set), 0)
	}
	if !ok {
		_, _ = fmt.Fprintln(out, "not fulfilled")
		return 1
	}
	_, _ = fmt.Fprintln(out, "fulfilled")
	return 0
}

func printVerdict(w io.Writer, v compositekey.Verdict, depth int) {
	indent := strings.Repeat("  ", depth)
	mark := "-"
	if v.Satisfied {
		mark = "+"
	}
	if v.Leaf {
		fmt.Fprintf(w, "%s%s %d*%s: %s\n", indent, mark, v.Weight, v.Key, strings.Join(v.Reasons, "; "))
		return
	}
	fmt.Fprintf(w, "%s%s %d*node %d/%d: %s\n", indent, mark, v.Weight, v.Observed, v.Threshold, strings.Join(v.Reasons, "; "))
	for _, c := range v.Children {
		printVerdict(w, c, depth+1)
	}
}

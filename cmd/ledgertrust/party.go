package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"xdao.co/ledgertrust/compositekey"
	"xdao.co/ledgertrust/config"
	"xdao.co/ledgertrust/identity/grpcident"
	"xdao.co/ledgertrust/internal/logging"
	"xdao.co/ledgertrust/party"
)

func cmdParty(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: ledgertrust party <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: show, anon, resolve")
		return 2
	}
	switch args[0] {
	case "show":
		return cmdPartyShow(args[1:], out, errOut)
	case "anon":
		return cmdPartyAnon(args[1:], out, errOut)
	case "resolve":
		return cmdPartyResolve(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown party subcommand: %s\n", args[0])
		return 2
	}
}

func printParty(w io.Writer, p party.Party) {
	if full, ok := p.(party.Full); ok {
		fmt.Fprintf(w, "name: %s\n", full.Name())
	}
	fmt.Fprintf(w, "owning-key: %s\n", p.OwningKey())
	fmt.Fprintf(w, "base58: %s\n", p.OwningKey().Base58())
	fmt.Fprintf(w, "hash: %016x\n", p.Hash())
}

func cmdPartyShow(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("party show", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var name string
	var keyText string
	fs.StringVar(&name, "name", "", "Legal name")
	fs.StringVar(&keyText, "key", "", "Owning key")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if keyText == "" || fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: ledgertrust party show --name <name> --key <key>")
		return 2
	}
	k, err := compositekey.Parse(keyText)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --key: %v\n", err)
		return 1
	}
	p, err := party.NewFull(name, k)
	if err != nil {
		fmt.Fprintf(errOut, "invalid party: %v (rule %s)\n", err, party.RuleID(err))
		return 1
	}
	printParty(out, p)
	return 0
}

func cmdPartyAnon(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("party anon", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var keyText string
	fs.StringVar(&keyText, "key", "", "Owning key")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if keyText == "" || fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: ledgertrust party anon --key <key>")
		return 2
	}
	k, err := compositekey.Parse(keyText)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --key: %v\n", err)
		return 1
	}
	p, err := party.NewAnonymised(k)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	printParty(out, p)
	return 0
}

func cmdPartyResolve(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("party resolve", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var cfgPath string
	var target string
	var name string
	var keyText string
	fs.StringVar(&cfgPath, "config", "", "Config file (JSON or YAML)")
	fs.StringVar(&target, "target", "", "Identity service host:port (overrides config)")
	fs.StringVar(&name, "name", "", "Legal name to resolve")
	fs.StringVar(&keyText, "key", "", "Key to resolve")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if (name == "") == (keyText == "") || fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: ledgertrust party resolve [--config <path>] [--target host:port] (--name <name> | --key <key>)")
		return 2
	}

	cfg, code := loadConfig(cfgPath, errOut)
	if code != 0 {
		return code
	}
	if target != "" {
		cfg.Identity.Target = target
	}
	if strings.TrimSpace(cfg.Identity.Target) == "" {
		fmt.Fprintln(errOut, "missing identity target (--target, config identity.target or "+config.EnvIdentityTarget+")")
		return 2
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	client, err := grpcident.Dial(cfg.Identity.Target, grpcident.DialOptions{Timeout: cfg.Identity.Timeout.Std(), Logger: logger})
	if err != nil {
		fmt.Fprintf(errOut, "dial %s: %v\n", cfg.Identity.Target, err)
		return 1
	}
	defer client.Close()
	return resolveParty(client, cfg.Identity.Timeout.Std(), name, keyText, out, errOut)
}

func resolveParty(client *grpcident.Client, timeout time.Duration, name, keyText string, out io.Writer, errOut io.Writer) int {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var (
		p   party.Full
		err error
	)
	if name != "" {
		p, err = client.LookupName(ctx, name)
	} else {
		k, perr := compositekey.Parse(keyText)
		if perr != nil {
			fmt.Fprintf(errOut, "invalid --key: %v\n", perr)
			return 1
		}
		p, err = client.LookupKey(ctx, k)
	}
	if errors.Is(err, grpcident.ErrNotFound) {
		fmt.Fprintln(errOut, "party not found")
		return 1
	}
	if err != nil {
		fmt.Fprintf(errOut, "resolve: %v\n", err)
		return 1
	}
	printParty(out, p)
	return 0
}

// loadConfig reads path (or the defaults) and applies environment overrides.
// A non-zero code is the exit status to return.
func loadConfig(path string, errOut io.Writer) (config.Config, int) {
	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.LoadFile(path)
		if err != nil {
			fmt.Fprintf(errOut, "config: %v\n", err)
			return cfg, 2
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintln(errOut, err)
		return cfg, 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(errOut, err)
		return cfg, 2
	}
	return cfg, 0
}

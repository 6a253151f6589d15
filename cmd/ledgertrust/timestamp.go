package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"xdao.co/ledgertrust/clock"
	"xdao.co/ledgertrust/config"
	"xdao.co/ledgertrust/internal/logging"
	"xdao.co/ledgertrust/timestamp"
)

func cmdTimestamp(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 || args[0] != "check" {
		fmt.Fprintln(errOut, "usage: ledgertrust timestamp check [--config <path>] [--tolerance 30s] [--now <RFC3339>] [--before <RFC3339>] [--after <RFC3339>]")
		return 2
	}
	return cmdTimestampCheck(args[1:], out, errOut)
}

func parseInstant(flagName, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", flagName, err)
	}
	return &t, nil
}

func cmdTimestampCheck(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("timestamp check", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var cfgPath string
	var tolerance time.Duration
	var nowText string
	var beforeText string
	var afterText string
	fs.StringVar(&cfgPath, "config", "", "Config file (JSON or YAML)")
	fs.DurationVar(&tolerance, "tolerance", -1, "Allowed drift (overrides config)")
	fs.StringVar(&nowText, "now", "", "Check against this instant instead of the configured clock")
	fs.StringVar(&beforeText, "before", "", "Before bound: must not be more than the tolerance in the past")
	fs.StringVar(&afterText, "after", "", "After bound: must not be more than the tolerance in the future")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: ledgertrust timestamp check [--config <path>] [--tolerance 30s] [--now <RFC3339>] [--before <RFC3339>] [--after <RFC3339>]")
		return 2
	}

	before, err := parseInstant("before", beforeText)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	after, err := parseInstant("after", afterText)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	now, err := parseInstant("now", nowText)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	cmd, err := timestamp.NewCommand(before, after)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	cfg, code := loadConfig(cfgPath, errOut)
	if code != 0 {
		return code
	}
	if tolerance >= 0 {
		cfg.Timestamp.Tolerance = config.Duration(tolerance)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	var checker *timestamp.Checker
	if now != nil {
		checker = timestamp.NewChecker(
			timestamp.WithClock(clock.NewManual(*now)),
			timestamp.WithTolerance(cfg.Timestamp.Tolerance.Std()),
			timestamp.WithLogger(logger),
		)
	} else {
		checker, err = cfg.NewChecker(logger)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
	}

	switch err := checker.Check(cmd); {
	case err == nil:
		fmt.Fprintf(out, "valid %s tolerance %s\n", cmd, checker.Tolerance())
		return 0
	case errors.Is(err, timestamp.ErrTooLate), errors.Is(err, timestamp.ErrTooEarly):
		fmt.Fprintf(out, "invalid %s: %v\n", cmd, err)
		return 1
	default:
		fmt.Fprintln(errOut, err)
		return 1
	}
}

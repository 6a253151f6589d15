package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"xdao.co/ledgertrust/identity"
	"xdao.co/ledgertrust/identity/grpcident"
	"xdao.co/ledgertrust/internal/logging"
)

func main() {
	fs := flag.NewFlagSet("ledgertrust-identityd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7070", "listen address")
	directory := fs.String("parties", "", "Party directory file (JSON or YAML list of {name, key})")
	logLevel := fs.String("log-level", "info", "Log level")
	logFormat := fs.String("log-format", "console", "Log format (console or json)")

	_ = fs.Parse(os.Args[1:])
	if *directory == "" {
		fmt.Fprintln(os.Stderr, "missing --parties")
		os.Exit(2)
	}

	logger, err := logging.New(*logLevel, *logFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	mem, err := identity.LoadDirectory(*directory)
	if err != nil {
		logger.Error("load party directory", zap.Error(err))
		os.Exit(2)
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		logger.Error("listen", zap.Error(err))
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcident.RegisterIdentityServer(s, &grpcident.Server{Identity: mem, Logger: logger})

	logger.Info("identity service listening",
		zap.String("addr", lis.Addr().String()),
		zap.Int("parties", len(mem.Parties())))
	if err := s.Serve(lis); err != nil {
		logger.Error("serve", zap.Error(err))
		os.Exit(1)
	}
}

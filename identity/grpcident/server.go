package grpcident

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/ledgertrust/compositekey"
	"xdao.co/ledgertrust/identity"
	"xdao.co/ledgertrust/party"
)

// Server exposes an identity.Service over the Identity gRPC service.
type Server struct {
	UnimplementedIdentityServer
	Identity identity.Service

	// Logger is optional.
	Logger *zap.Logger
}

func (s *Server) PartyFromKey(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Identity == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing identity service")
	}
	key, err := compositekey.UnmarshalBinaryKey(in.GetValue())
	if err != nil {
		return nil, mapErr(fmt.Errorf("%w: %v", ErrInvalidKey, err))
	}
	p, ok := s.Identity.PartyFromKey(key)
	s.logger().Debug("identity lookup by key", zap.Stringer("key", key), zap.Bool("found", ok))
	return s.reply(p, ok)
}

func (s *Server) PartyFromName(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Identity == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing identity service")
	}
	p, ok := s.Identity.PartyFromName(in.GetValue())
	s.logger().Debug("identity lookup by name", zap.String("name", in.GetValue()), zap.Bool("found", ok))
	return s.reply(p, ok)
}

func (s *Server) reply(p party.Full, ok bool) (*wrapperspb.BytesValue, error) {
	if !ok {
		return nil, mapErr(ErrNotFound)
	}
	b, err := encodeParty(p)
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Bytes(b), nil
}

func (s *Server) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

package grpcident

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// IdentityServer is the server API for the Identity gRPC service.
//
// Requests and replies are protobuf well-known wrapper types, so no
// protoc/codegen toolchain is needed:
//
//	service Identity {
//	  // key: composite key in binary form; reply: party record.
//	  rpc PartyFromKey(google.protobuf.BytesValue) returns (google.protobuf.BytesValue);
//	  // name: legal name; reply: party record.
//	  rpc PartyFromName(google.protobuf.StringValue) returns (google.protobuf.BytesValue);
//	}
type IdentityServer interface {
	PartyFromKey(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	PartyFromName(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
}

// UnimplementedIdentityServer can be embedded to have forward compatible implementations.
type UnimplementedIdentityServer struct{}

func (UnimplementedIdentityServer) PartyFromKey(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method PartyFromKey not implemented")
}
func (UnimplementedIdentityServer) PartyFromName(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method PartyFromName not implemented")
}

// RegisterIdentityServer registers the Identity service on a gRPC server.
func RegisterIdentityServer(s grpc.ServiceRegistrar, srv IdentityServer) {
	s.RegisterService(&Identity_ServiceDesc, srv)
}

// IdentityClient is the client API for the Identity gRPC service.
type IdentityClient interface {
	PartyFromKey(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	PartyFromName(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

const (
	serviceName         = "xdao.ledgertrust.identity.v1.Identity"
	methodPartyFromKey  = "/" + serviceName + "/PartyFromKey"
	methodPartyFromName = "/" + serviceName + "/PartyFromName"
)

type identityClient struct{ cc grpc.ClientConnInterface }

func NewIdentityClient(cc grpc.ClientConnInterface) IdentityClient { return &identityClient{cc: cc} }

func (c *identityClient) PartyFromKey(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, methodPartyFromKey, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityClient) PartyFromName(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, methodPartyFromName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _Identity_PartyFromKey_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServer).PartyFromKey(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPartyFromKey}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IdentityServer).PartyFromKey(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Identity_PartyFromName_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServer).PartyFromName(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPartyFromName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IdentityServer).PartyFromName(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Identity_ServiceDesc is the grpc.ServiceDesc for Identity service.
var Identity_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*IdentityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PartyFromKey", Handler: _Identity_PartyFromKey_Handler},
		{MethodName: "PartyFromName", Handler: _Identity_PartyFromName_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "identity.proto",
}

package grpcident

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/ledgertrust/compositekey"
	"xdao.co/ledgertrust/identity"
	"xdao.co/ledgertrust/party"
)

// Client implements identity.Service over an Identity gRPC service.
//
// The identity.Service methods report transport failures as "not found";
// use LookupKey and LookupName to see the underlying error.
type Client struct {
	cc     *grpc.ClientConn
	client IdentityClient
	logger *zap.Logger

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int

	// Logger is optional.
	Logger *zap.Logger
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return NewClient(cc, opts.Logger), nil
}

// NewClient wraps an existing connection. Close closes cc.
func NewClient(cc *grpc.ClientConn, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cc: cc, client: NewIdentityClient(cc), logger: logger}
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// LookupKey resolves key remotely. A miss is ErrNotFound.
func (c *Client) LookupKey(ctx context.Context, key *compositekey.Key) (party.Full, error) {
	b, err := key.MarshalBinary()
	if err != nil {
		return party.Full{}, err
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.PartyFromKey(ctx, wrapperspb.Bytes(b))
	if err != nil {
		return party.Full{}, mapRPC(err)
	}
	return decodeParty(reply.GetValue())
}

// LookupName resolves a legal name remotely. A miss is ErrNotFound.
func (c *Client) LookupName(ctx context.Context, name string) (party.Full, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.PartyFromName(ctx, wrapperspb.String(name))
	if err != nil {
		return party.Full{}, mapRPC(err)
	}
	return decodeParty(reply.GetValue())
}

func (c *Client) PartyFromKey(key *compositekey.Key) (party.Full, bool) {
	if key == nil {
		return party.Full{}, false
	}
	p, err := c.LookupKey(context.Background(), key)
	return c.result(p, err, zap.Stringer("key", key))
}

func (c *Client) PartyFromName(name string) (party.Full, bool) {
	p, err := c.LookupName(context.Background(), name)
	return c.result(p, err, zap.String("name", name))
}

func (c *Client) result(p party.Full, err error, query zap.Field) (party.Full, bool) {
	if err != nil {
		if err != ErrNotFound {
			c.logger.Debug("identity lookup failed", query, zap.Error(err))
		}
		return party.Full{}, false
	}
	return p, true
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}

var _ identity.Service = (*Client)(nil)

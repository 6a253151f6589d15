package grpcident

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/ledgertrust/compositekey"
)

var (
	// ErrNotFound means the remote service has no party for the query.
	ErrNotFound = errors.New("grpcident: party not found")
	// ErrInvalidKey means the queried key was rejected as malformed.
	ErrInvalidKey = errors.New("grpcident: invalid composite key")
)

// mapErr converts a lookup failure into a status for the wire.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, ErrNotFound.Error())
	case errors.Is(err, ErrInvalidKey), errors.Is(err, compositekey.ErrInvalidEncoding):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// mapRPC converts a status received from the server back into package errors.
func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument:
		return ErrInvalidKey
	default:
		return err
	}
}

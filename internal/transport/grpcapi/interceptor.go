package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/identity"
)

const (
	HeaderUserID   = "x-user-id"
	HeaderUserName = "x-user-name"
)

type contextKey struct{}

// AuthInterceptor trusts the identity forwarded by the gateway in metadata.
// x-user-id carries the caller's email.
func AuthInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "metadata is not provided")
	}

	values := md.Get(HeaderUserID)
	if len(values) == 0 || values[0] == "" {
		return nil, status.Error(codes.Unauthenticated, "x-user-id header is missing")
	}

	var name string
	if names := md.Get(HeaderUserName); len(names) > 0 {
		name = names[0]
	}

	p, err := identity.New(values[0], name)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}
	return handler(context.WithValue(ctx, contextKey{}, p), req)
}

// WithCaller attaches the caller's identity to an outgoing call.
func WithCaller(ctx context.Context, email, name string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, HeaderUserID, email, HeaderUserName, name)
}

func callerFrom(ctx context.Context) identity.Participant {
	p, _ := ctx.Value(contextKey{}).(identity.Participant)
	return p
}

package grpcapi

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/observability"
)

// MapError converts a domain error into a gRPC status error.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	var (
		identityErr *domain.IdentityError
		orphanErr   *domain.OrphanedConversationError
		storageErr  *domain.StorageError
	)

	switch {
	case errors.As(err, &identityErr):
		return status.Error(codes.Unauthenticated, err.Error())

	case errors.As(err, &orphanErr):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, domain.ErrUnreadableDocument):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, domain.ErrConversationNotFound),
		errors.Is(err, domain.ErrProfileNotFound):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, domain.ErrInvalidMessage),
		errors.Is(err, domain.ErrMessageTooLarge),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrSelfConversation):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.As(err, &storageErr):
		if storageErr.Timeout {
			return status.Error(codes.DeadlineExceeded, err.Error())
		}
		return status.Error(codes.Unavailable, err.Error())

	default:
		observability.GetLogger(context.Background()).Error("internal gRPC error", zap.Error(err))
		return status.Error(codes.Internal, "internal server error")
	}
}

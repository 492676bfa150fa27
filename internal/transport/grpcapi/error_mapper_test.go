package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode codes.Code
	}{
		{
			name:     "Nil error",
			err:      nil,
			wantCode: codes.OK,
		},
		{
			name:     "Missing identity",
			err:      &domain.IdentityError{Reason: "sender identity is missing"},
			wantCode: codes.Unauthenticated,
		},
		{
			name:     "Orphaned conversation",
			err:      &domain.OrphanedConversationError{ParticipantID: "bob", ConversationID: "c1"},
			wantCode: codes.FailedPrecondition,
		},
		{
			name:     "Unreadable stored document",
			err:      fmt.Errorf("write: %w", domain.ErrUnreadableDocument),
			wantCode: codes.FailedPrecondition,
		},
		{
			name:     "Conversation not found",
			err:      domain.ErrConversationNotFound,
			wantCode: codes.NotFound,
		},
		{
			name:     "Profile not found",
			err:      fmt.Errorf("lookup: %w", domain.ErrProfileNotFound),
			wantCode: codes.NotFound,
		},
		{
			name:     "Invalid message",
			err:      domain.ErrInvalidMessage,
			wantCode: codes.InvalidArgument,
		},
		{
			name:     "Self conversation",
			err:      domain.ErrSelfConversation,
			wantCode: codes.InvalidArgument,
		},
		{
			name:     "Storage unavailable",
			err:      domain.NewStorageError("write", "/a/conversations", errors.New("connection refused")),
			wantCode: codes.Unavailable,
		},
		{
			name:     "Storage timeout",
			err:      domain.NewStorageError("read", "/a/conversations", context.DeadlineExceeded),
			wantCode: codes.DeadlineExceeded,
		},
		{
			name:     "Already gRPC error",
			err:      status.Error(codes.AlreadyExists, "already exists"),
			wantCode: codes.AlreadyExists,
		},
		{
			name:     "Unknown error",
			err:      errors.New("boom"),
			wantCode: codes.Internal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Errorf("MapError(nil) = %v, want nil", got)
				}
				return
			}
			if code := status.Code(got); code != tt.wantCode {
				t.Errorf("MapError(%v) code = %v, want %v", tt.err, code, tt.wantCode)
			}
		})
	}
}

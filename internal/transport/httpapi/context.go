package httpapi

import (
	"context"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/identity"
)

type ctxKey int

const (
	participantKey ctxKey = iota
	requestIDKey
)

func InjectParticipant(ctx context.Context, p identity.Participant) context.Context {
	return context.WithValue(ctx, participantKey, p)
}

// ParticipantFrom returns the caller authenticated by the JWT middleware, or
// a zero participant.
func ParticipantFrom(ctx context.Context) identity.Participant {
	p, _ := ctx.Value(participantKey).(identity.Participant)
	return p
}

func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

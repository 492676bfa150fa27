// Package repair resumes sends that stopped part way. It consumes the
// send.partial events published by the service and replays the steps they
// name, falling back to rebuilding a summary from the log when the
// recipient's entry is missing altogether.
package repair

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/application"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/events"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/observability"
)

type Resumer interface {
	ResumeSend(ctx context.Context, cmd application.SendCommand, partial *domain.PartialSendError) (*application.SendResult, error)
	Repair(ctx context.Context, cmd application.RepairCommand) (*domain.ConversationSummary, error)
}

type Worker struct {
	svc     Resumer
	backoff time.Duration
}

type Option func(*Worker)

// WithBackoff delays every resume so a store that is still down is not hit
// in a tight loop by the events its own failures produce.
func WithBackoff(d time.Duration) Option {
	return func(w *Worker) { w.backoff = d }
}

func New(svc Resumer, opts ...Option) *Worker {
	w := &Worker{svc: svc}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Handle(ctx context.Context, record []byte) {
	log := observability.GetLogger(ctx)

	env, err := events.Decode(record)
	if err != nil {
		log.Error("repair: error decoding event", zap.Error(err))
		return
	}
	if env.Type != events.TypeSendPartial {
		return
	}

	var payload events.SendPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		log.Error("repair: error decoding send payload", zap.Error(err))
		return
	}

	if w.backoff > 0 {
		select {
		case <-time.After(w.backoff):
		case <-ctx.Done():
			return
		}
	}

	if err := w.resume(ctx, payload); err != nil {
		log.Warn("repair: send still incomplete",
			zap.String("conversation_id", payload.ConversationID),
			zap.String("message_id", payload.Message.ID),
			zap.Error(err),
		)
		return
	}
	log.Info("repair: send completed",
		zap.String("conversation_id", payload.ConversationID),
		zap.String("message_id", payload.Message.ID),
	)
}

func (w *Worker) resume(ctx context.Context, payload events.SendPayload) error {
	sender := payload.Sender.Identity()
	recipient := payload.Recipient.Identity()

	cmd := application.SendCommand{
		Sender:         sender,
		Recipient:      recipient,
		ConversationID: payload.ConversationID,
		Message:        payload.Message.Domain(sender.ID),
	}
	_, err := w.svc.ResumeSend(ctx, cmd, payload.PartialError())

	var orphan *domain.OrphanedConversationError
	if !errors.As(err, &orphan) {
		return err
	}

	// The summary is gone from one side; rebuild it from the log instead.
	rc := application.RepairCommand{
		Participant:    recipient,
		Peer:           sender,
		ConversationID: payload.ConversationID,
	}
	if orphan.ParticipantID == sender.ID {
		rc.Participant, rc.Peer = sender, recipient
	}
	_, rerr := w.svc.Repair(ctx, rc)
	return rerr
}

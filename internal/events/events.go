// Package events describes the conversation events the service publishes and
// hands them to a Publisher.
package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/identity"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/observability"
)

const (
	TypeMessageSent          = "message.sent"
	TypeSendPartial          = "send.partial"
	TypeConversationRepaired = "conversation.repaired"
)

const SchemaVersion = 1

type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

type Envelope struct {
	Type          string          `json:"type"`
	SchemaVersion int             `json:"schema_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

type Participant struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type Message struct {
	ID                string    `json:"id"`
	Kind              string    `json:"kind"`
	Body              string    `json:"body"`
	SentAt            time.Time `json:"sent_at"`
	SenderDisplayName string    `json:"sender_display_name"`
}

type StepOutcome struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// SendPayload carries everything needed to resume a send elsewhere.
type SendPayload struct {
	ConversationID  string                 `json:"conversation_id"`
	NewConversation bool                   `json:"new_conversation"`
	Sender          Participant            `json:"sender"`
	Recipient       Participant            `json:"recipient"`
	Message         Message                `json:"message"`
	Steps           map[string]StepOutcome `json:"steps,omitempty"`
}

type RepairPayload struct {
	ConversationID string `json:"conversation_id"`
	ParticipantID  string `json:"participant_id"`
	PeerID         string `json:"peer_id"`
}

func FromParticipant(p identity.Participant) Participant {
	return Participant{ID: p.ID, Email: p.Email, DisplayName: p.DisplayName}
}

func (p Participant) Identity() identity.Participant {
	return identity.Participant{ID: p.ID, Email: p.Email, DisplayName: p.DisplayName}
}

func FromMessage(m domain.Message) Message {
	return Message{
		ID:                m.ID,
		Kind:              string(m.Kind),
		Body:              m.Body,
		SentAt:            m.SentAt,
		SenderDisplayName: m.SenderDisplayName,
	}
}

func (m Message) Domain(senderID string) domain.Message {
	return domain.Message{
		ID:                m.ID,
		SenderID:          senderID,
		SenderDisplayName: m.SenderDisplayName,
		Body:              m.Body,
		SentAt:            m.SentAt,
		Kind:              domain.MessageKind(m.Kind),
	}
}

// StepsFrom flattens the outcome of a partial send.
func StepsFrom(perr *domain.PartialSendError) map[string]StepOutcome {
	if perr == nil {
		return nil
	}
	out := make(map[string]StepOutcome, len(perr.Steps))
	for step, o := range perr.Steps {
		so := StepOutcome{Status: string(o.Status)}
		if o.Err != nil {
			so.Error = o.Err.Error()
		}
		out[string(step)] = so
	}
	return out
}

// PartialError rebuilds the partial send described by the payload. Causes are
// not carried across, only which steps still have to run.
func (p SendPayload) PartialError() *domain.PartialSendError {
	perr := &domain.PartialSendError{
		ConversationID:  p.ConversationID,
		MessageID:       p.Message.ID,
		NewConversation: p.NewConversation,
		Steps:           make(map[domain.Step]domain.StepOutcome, len(p.Steps)),
	}
	for step, o := range p.Steps {
		perr.Steps[domain.Step(step)] = domain.StepOutcome{Status: domain.StepStatus(o.Status)}
	}
	return perr
}

// Emitter publishes events without letting publish failures reach callers.
type Emitter struct {
	pub Publisher
	log *zap.Logger
	now func() time.Time
}

func NewEmitter(pub Publisher, log *zap.Logger) *Emitter {
	return &Emitter{pub: pub, log: log, now: time.Now}
}

func (e *Emitter) Emit(ctx context.Context, eventType, key string, payload any) {
	if e == nil || e.pub == nil {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		e.log.Error("marshal event payload", zap.String("type", eventType), zap.Error(err))
		return
	}
	env, err := json.Marshal(Envelope{
		Type:          eventType,
		SchemaVersion: SchemaVersion,
		OccurredAt:    e.now().UTC(),
		Payload:       body,
	})
	if err != nil {
		e.log.Error("marshal event envelope", zap.String("type", eventType), zap.Error(err))
		return
	}

	if err := e.pub.Publish(ctx, key, env); err != nil {
		observability.EventPublishFailuresTotal.WithLabelValues(eventType).Inc()
		e.log.Warn("event publish failed",
			zap.String("type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// Decode splits an envelope read from the event stream.
func Decode(value []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(value, &env)
	return env, err
}

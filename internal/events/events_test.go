package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func TestEmitWrapsPayloadInEnvelope(t *testing.T) {
	pub := &mockPublisher{}
	e := NewEmitter(pub, zap.NewNop())
	e.now = func() time.Time { return time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC) }

	var published []byte
	pub.On("Publish", mock.Anything, "c1", mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(2).([]byte) }).
		Return(nil).Once()

	e.Emit(context.Background(), TypeConversationRepaired, "c1", RepairPayload{ConversationID: "c1", ParticipantID: "ann-x-com"})
	pub.AssertExpectations(t)

	env, err := Decode(published)
	require.NoError(t, err)
	assert.Equal(t, TypeConversationRepaired, env.Type)
	assert.Equal(t, SchemaVersion, env.SchemaVersion)

	var payload RepairPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "ann-x-com", payload.ParticipantID)
}

func TestEmitSwallowsPublishFailure(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	assert.NotPanics(t, func() {
		NewEmitter(pub, zap.NewNop()).Emit(context.Background(), TypeMessageSent, "c1", SendPayload{})
	})
	pub.AssertExpectations(t)
}

func TestNilEmitterIsNoop(t *testing.T) {
	var e *Emitter
	assert.NotPanics(t, func() { e.Emit(context.Background(), TypeMessageSent, "c1", nil) })
}

func TestPartialErrorRoundTrip(t *testing.T) {
	perr := &domain.PartialSendError{
		ConversationID: "c1",
		MessageID:      "m1",
		Steps: map[domain.Step]domain.StepOutcome{
			domain.StepLogAppend:      {Status: domain.StepSucceeded},
			domain.StepSenderIndex:    {Status: domain.StepSucceeded},
			domain.StepRecipientIndex: {Status: domain.StepFailed, Err: errors.New("timeout")},
		},
	}

	payload := SendPayload{ConversationID: "c1", Message: Message{ID: "m1"}, Steps: StepsFrom(perr)}
	assert.Equal(t, "timeout", payload.Steps[string(domain.StepRecipientIndex)].Error)

	back := payload.PartialError()
	assert.Equal(t, []domain.Step{domain.StepRecipientIndex}, back.Pending())
}

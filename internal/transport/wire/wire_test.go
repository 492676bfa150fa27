package wire

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
)

func TestMessageDomainDropsSender(t *testing.T) {
	m := Message{ID: "m1", Kind: "text", Body: "hi", SentAt: time.Unix(10, 0).UTC(), SenderID: "mallory", SenderName: "M"}
	d := m.Domain()
	assert.Empty(t, d.SenderID)
	assert.Empty(t, d.SenderDisplayName)
	assert.Equal(t, domain.KindText, d.Kind)
}

func TestPartialSendKeepsPendingSteps(t *testing.T) {
	steps := FromSteps(map[domain.Step]domain.StepOutcome{
		domain.StepLogAppend:      {Status: domain.StepSucceeded},
		domain.StepSenderIndex:    {Status: domain.StepSucceeded},
		domain.StepRecipientIndex: {Status: domain.StepFailed, Err: errors.New("unavailable")},
	})
	assert.Equal(t, "unavailable", steps["recipient_index"].Error)

	perr := PartialSend("c1", true, Message{ID: "m1"}, steps)
	assert.Equal(t, "m1", perr.MessageID)
	assert.True(t, perr.NewConversation)
	assert.Equal(t, []domain.Step{domain.StepRecipientIndex}, perr.Pending())
}

func TestFromReport(t *testing.T) {
	r := FromReport(domain.DecodeReport{
		Skipped:     []domain.DecodeError{{Record: "message", Index: 2, Reason: "missing id"}},
		Unsupported: []domain.UnsupportedKind{{Index: 3, MessageID: "m4", Kind: domain.KindPhoto}},
	})
	assert.Equal(t, []Skipped{{Index: 2, Reason: "missing id"}}, r.Skipped)
	assert.Equal(t, []Unsupported{{Index: 3, MessageID: "m4", Kind: "photo"}}, r.Unsupported)
}

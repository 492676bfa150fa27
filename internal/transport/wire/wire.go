// Package wire holds the JSON shapes shared by the HTTP and gRPC transports.
package wire

import (
	"time"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/application"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
)

type Message struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Body       string    `json:"body"`
	SentAt     time.Time `json:"sent_at"`
	SenderID   string    `json:"sender_id,omitempty"`
	SenderName string    `json:"sender_name,omitempty"`
	IsRead     bool      `json:"is_read"`
}

type Latest struct {
	Timestamp time.Time `json:"timestamp"`
	Preview   string    `json:"preview"`
	IsRead    bool      `json:"is_read"`
}

type Summary struct {
	ConversationID string `json:"conversation_id"`
	PeerID         string `json:"peer_id"`
	PeerName       string `json:"peer_name"`
	LatestMessage  Latest `json:"latest_message"`
}

type Skipped struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type Unsupported struct {
	Index     int    `json:"index"`
	MessageID string `json:"message_id"`
	Kind      string `json:"kind"`
}

// Report is embedded in list responses.
type Report struct {
	Skipped     []Skipped     `json:"skipped,omitempty"`
	Unsupported []Unsupported `json:"unsupported,omitempty"`
}

type Step struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func FromMessage(m domain.Message) Message {
	return Message{
		ID:         m.ID,
		Kind:       string(m.Kind),
		Body:       m.Body,
		SentAt:     m.SentAt,
		SenderID:   m.SenderID,
		SenderName: m.SenderDisplayName,
		IsRead:     m.IsRead,
	}
}

// Domain returns the message as submitted by a client. The sender is always
// taken from the authenticated caller, never from the request.
func (m Message) Domain() domain.Message {
	return domain.Message{
		ID:     m.ID,
		Kind:   domain.MessageKind(m.Kind),
		Body:   m.Body,
		SentAt: m.SentAt,
	}
}

func FromSummary(s domain.ConversationSummary) Summary {
	return Summary{
		ConversationID: s.ConversationID,
		PeerID:         s.PeerID,
		PeerName:       s.PeerDisplayName,
		LatestMessage: Latest{
			Timestamp: s.LatestMessage.Timestamp,
			Preview:   s.LatestMessage.PreviewText,
			IsRead:    s.LatestMessage.IsRead,
		},
	}
}

func FromSummaries(in []domain.ConversationSummary) []Summary {
	out := make([]Summary, 0, len(in))
	for _, s := range in {
		out = append(out, FromSummary(s))
	}
	return out
}

func FromMessages(in []domain.Message) []Message {
	out := make([]Message, 0, len(in))
	for _, m := range in {
		out = append(out, FromMessage(m))
	}
	return out
}

func FromUsers(in []domain.DirectoryEntry) []User {
	out := make([]User, 0, len(in))
	for _, e := range in {
		out = append(out, User{Name: e.Name, Email: e.Email})
	}
	return out
}

func FromReport(r domain.DecodeReport) Report {
	var out Report
	for _, s := range r.Skipped {
		out.Skipped = append(out.Skipped, Skipped{Index: s.Index, Reason: s.Reason})
	}
	for _, u := range r.Unsupported {
		out.Unsupported = append(out.Unsupported, Unsupported{Index: u.Index, MessageID: u.MessageID, Kind: string(u.Kind)})
	}
	return out
}

func FromSteps(steps map[domain.Step]domain.StepOutcome) map[string]Step {
	out := make(map[string]Step, len(steps))
	for step, o := range steps {
		s := Step{Status: string(o.Status)}
		if o.Err != nil {
			s.Error = o.Err.Error()
		}
		out[string(step)] = s
	}
	return out
}

// PartialSend rebuilds the partial failure a client hands back to resume a
// send. Only step statuses survive the round trip.
func PartialSend(conversationID string, newConversation bool, msg Message, steps map[string]Step) *domain.PartialSendError {
	perr := &domain.PartialSendError{
		ConversationID:  conversationID,
		MessageID:       msg.ID,
		NewConversation: newConversation,
		Steps:           make(map[domain.Step]domain.StepOutcome, len(steps)),
	}
	for step, s := range steps {
		perr.Steps[domain.Step(step)] = domain.StepOutcome{Status: domain.StepStatus(s.Status)}
	}
	return perr
}

type ConversationList struct {
	Conversations []Summary `json:"conversations"`
	Report
}

type MessageList struct {
	Messages []Message `json:"messages"`
	Report
}

type UserList struct {
	Users []User `json:"users"`
	Report
}

func NewConversationList(in []domain.ConversationSummary, r domain.DecodeReport) ConversationList {
	return ConversationList{Conversations: FromSummaries(in), Report: FromReport(r)}
}

func NewMessageList(in []domain.Message, r domain.DecodeReport) MessageList {
	return MessageList{Messages: FromMessages(in), Report: FromReport(r)}
}

func NewUserList(in []domain.DirectoryEntry, r domain.DecodeReport) UserList {
	return UserList{Users: FromUsers(in), Report: FromReport(r)}
}

type SendRequest struct {
	ConversationID string  `json:"conversation_id"`
	RecipientEmail string  `json:"recipient_email"`
	RecipientName  string  `json:"recipient_name"`
	Message        Message `json:"message"`
}

// ResumeRequest is a partial SendResult handed back by the client together
// with the recipient it was addressed to.
type ResumeRequest struct {
	SendRequest
	NewConversation bool            `json:"new_conversation"`
	Steps           map[string]Step `json:"steps"`
}

func (r ResumeRequest) Partial() *domain.PartialSendError {
	return PartialSend(r.ConversationID, r.NewConversation, r.Message, r.Steps)
}

// SendResult carries Steps only when the send is incomplete.
type SendResult struct {
	ConversationID  string          `json:"conversation_id"`
	MessageID       string          `json:"message_id"`
	NewConversation bool            `json:"new_conversation"`
	Message         Message         `json:"message"`
	Steps           map[string]Step `json:"steps,omitempty"`
}

func (r SendResult) Partial() bool {
	return len(r.Steps) > 0
}

func FromSendResult(res *application.SendResult, perr *domain.PartialSendError) SendResult {
	out := SendResult{
		ConversationID:  res.ConversationID,
		MessageID:       res.MessageID,
		NewConversation: res.NewConversation,
		Message:         FromMessage(res.Message),
	}
	if perr != nil {
		out.Steps = FromSteps(perr.Steps)
	}
	return out
}
